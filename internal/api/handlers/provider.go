package handlers

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"jobscout/internal/provider"
	"jobscout/pkg/models"
)

// Prober checks provider connectivity
type Prober interface {
	CheckConnection(ctx context.Context) provider.ConnectionStatus
}

// StatsSource reports provider call counters
type StatsSource interface {
	Stats() provider.Stats
}

// ProviderStatusHandler reports provider connectivity as p sees it. p is
// expected to cache, since each real check is a billed search.
func ProviderStatusHandler(p Prober) echo.HandlerFunc {
	return func(c echo.Context) error {
		st := p.CheckConnection(c.Request().Context())
		code := http.StatusOK
		if !st.OK {
			code = http.StatusServiceUnavailable
		}
		return c.JSON(code, models.ProviderStatusResponse{
			OK:         st.OK,
			StatusCode: st.StatusCode,
			Message:    st.Message,
			Latency:    st.Latency,
			CheckedAt:  st.CheckedAt,
		})
	}
}

// ProviderStatsHandler returns throttle settings and per-endpoint counters
func ProviderStatsHandler(src StatsSource) echo.HandlerFunc {
	return func(c echo.Context) error {
		return c.JSON(http.StatusOK, src.Stats())
	}
}
