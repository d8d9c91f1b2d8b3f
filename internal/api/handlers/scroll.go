package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"jobscout/internal/api/middleware"
	"jobscout/internal/logging"
	"jobscout/pkg/models"
)

// VisibilityHandler records that a rendered result entered or left the
// viewport. When the watched last result becomes visible the next page is
// fetched before the response is written.
func VisibilityHandler() echo.HandlerFunc {
	return func(c echo.Context) error {
		s := middleware.Session(c)

		var req models.VisibilityRequest
		if ce := bindAndValidate(c, &req); ce != nil {
			return respondError(c, ce, "")
		}

		fired := s.Tracker.Report(c.Request().Context(), req.Target, req.Visible)
		if fired > 0 {
			logging.LogWithSession(s.ID).Debug("Visibility triggered callbacks", map[string]interface{}{
				"request_id": middleware.RequestID(c),
				"target":     req.Target,
				"fired":      fired,
			})
		}
		return c.JSON(http.StatusOK, stateResponse(c, s))
	}
}
