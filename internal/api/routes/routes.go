package routes

import (
	"net/http"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"

	"jobscout/internal/api/handlers"
	"jobscout/internal/api/middleware"
	"jobscout/internal/api/validation"
	"jobscout/internal/config"
	"jobscout/internal/logging"
	"jobscout/internal/provider"
	"jobscout/internal/session"
)

// Provider is what the API needs from the search provider client
type Provider interface {
	handlers.Prober
	handlers.StatsSource
}

// Deps are the collaborators the routes are wired to
type Deps struct {
	Config   *config.Config
	Sessions *session.Registry
	Provider Provider
	// ProviderStatus answers the status endpoint. When nil a cache in
	// front of Provider is used.
	ProviderStatus handlers.Prober
	Health         handlers.HealthDeps
	Logger         logging.Logger
}

// NewEcho returns an Echo instance with the validator installed
func NewEcho() *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = validation.New()
	return e
}

// SetupRoutes configures all API routes
func SetupRoutes(e *echo.Echo, deps Deps) {
	logger := deps.Logger
	if logger == nil {
		logger = logging.NewNopLogger()
	}

	// Global middleware
	e.Use(echomiddleware.Recover())
	e.Use(middleware.RequestValidation())
	e.Use(middleware.RequestLogger(logger))
	e.Use(middleware.CORSConfig(deps.Config.Server.AllowedOrigins))
	e.Use(middleware.TimeoutConfig(deps.Config.Server.RequestTimeout))

	// Health check routes
	health := e.Group("/health")
	{
		health.GET("", handlers.HealthHandler)
		health.GET("/live", handlers.LivenessHandler)
		health.GET("/ready", handlers.ReadinessHandler(deps.Health))
	}
	e.GET("/status", handlers.StatusHandler(deps.Health))

	status := deps.ProviderStatus
	if status == nil {
		status = provider.NewStatusCache(deps.Provider, deps.Config.Provider.StatusMaxAge)
	}

	v1 := e.Group("/api/v1")
	{
		prov := v1.Group("/provider")
		{
			prov.GET("/status", handlers.ProviderStatusHandler(status))
			prov.GET("/stats", handlers.ProviderStatsHandler(deps.Provider))
		}

		// everything below belongs to a session
		withSession := middleware.Sessions(deps.Sessions, logger)

		search := v1.Group("/search", withSession)
		{
			search.GET("", handlers.SearchStateHandler())
			search.POST("", handlers.SearchHandler())
			search.POST("/more", handlers.LoadMoreHandler())
		}

		saved := v1.Group("/saved", withSession)
		{
			saved.GET("", handlers.SavedJobsHandler())
			saved.POST("/toggle", handlers.ToggleSaveHandler())
		}

		selection := v1.Group("/selection", withSession)
		{
			selection.GET("", handlers.DetailHandler())
			selection.PUT("", handlers.SelectJobHandler())
			selection.DELETE("", handlers.ClearSelectionHandler())
		}

		v1.POST("/scroll/visibility", handlers.VisibilityHandler(), withSession)
	}

	// Root route
	e.GET("/", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{
			"service": "jobscout",
			"version": handlers.Version,
			"status":  "running",
		})
	})
}
