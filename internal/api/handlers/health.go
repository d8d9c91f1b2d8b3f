package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"jobscout/internal/api/middleware"
	"jobscout/internal/background"
	"jobscout/internal/logging"
	"jobscout/pkg/models"
)

// Version is reported by the health endpoints
var Version = "dev"

var startTime = time.Now()

// Pinger checks a dependency is reachable
type Pinger interface {
	Ping(ctx context.Context) error
}

// SessionCounter reports how many sessions are live
type SessionCounter interface {
	Len() int
}

// TaskReporter lists background task outcomes
type TaskReporter interface {
	Results() []background.TaskResult
}

// HealthDeps are the dependencies inspected by readiness and status checks
type HealthDeps struct {
	Storage         Pinger
	ProviderKeySet  bool
	Sessions        SessionCounter
	Tasks           TaskReporter
	ReadinessBudget time.Duration
}

// HealthHandler handles health check requests
func HealthHandler(c echo.Context) error {
	logging.LogWithRequestID(middleware.RequestID(c)).Debug("Health check requested", map[string]interface{}{})

	return c.JSON(http.StatusOK, models.HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now(),
		Version:   Version,
		Uptime:    time.Since(startTime),
		Checks: map[string]string{
			"api": "ok",
		},
	})
}

// LivenessHandler handles liveness probe requests
func LivenessHandler(c echo.Context) error {
	return c.JSON(http.StatusOK, models.HealthResponse{
		Status:    "alive",
		Timestamp: time.Now(),
		Version:   Version,
		Uptime:    time.Since(startTime),
	})
}

// ReadinessHandler reports ready when saved-jobs storage answers. A missing
// provider key is reported but does not fail readiness.
func ReadinessHandler(deps HealthDeps) echo.HandlerFunc {
	return func(c echo.Context) error {
		budget := deps.ReadinessBudget
		if budget <= 0 {
			budget = 2 * time.Second
		}
		ctx, cancel := context.WithTimeout(c.Request().Context(), budget)
		defer cancel()

		checks := map[string]string{"api": "ok"}
		status, code := "ready", http.StatusOK

		if deps.Storage != nil {
			if err := deps.Storage.Ping(ctx); err != nil {
				checks["storage"] = "unavailable: " + err.Error()
				status, code = "not_ready", http.StatusServiceUnavailable
			} else {
				checks["storage"] = "ok"
			}
		}
		if deps.ProviderKeySet {
			checks["provider_key"] = "ok"
		} else {
			checks["provider_key"] = "missing"
		}

		return c.JSON(code, models.HealthResponse{
			Status:    status,
			Timestamp: time.Now(),
			Version:   Version,
			Uptime:    time.Since(startTime),
			Checks:    checks,
		})
	}
}

// StatusHandler provides detailed service status
func StatusHandler(deps HealthDeps) echo.HandlerFunc {
	return func(c echo.Context) error {
		resp := map[string]interface{}{
			"status":    "operational",
			"timestamp": time.Now(),
			"version":   Version,
			"uptime":    time.Since(startTime).String(),
		}
		if deps.Sessions != nil {
			resp["sessions"] = deps.Sessions.Len()
		}
		if deps.Tasks != nil {
			resp["tasks"] = deps.Tasks.Results()
		}
		return c.JSON(http.StatusOK, resp)
	}
}
