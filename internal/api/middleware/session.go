package middleware

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"jobscout/internal/logging"
	"jobscout/internal/session"
	"jobscout/pkg/models"
	"jobscout/pkg/utils"
)

// HeaderSessionID carries the client's session id in both directions
const HeaderSessionID = "X-Session-ID"

// Sessions resolves the caller's session, creating one when the header is
// missing or malformed. The id is echoed back so clients can keep it.
func Sessions(registry *session.Registry, logger logging.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			id := c.Request().Header.Get(HeaderSessionID)
			if !utils.IsValidSessionID(id) {
				id = utils.GenerateSessionID()
			}

			s, err := registry.GetOrCreate(c.Request().Context(), id)
			if err != nil {
				logger.WithError(err).Error("Failed to open session", map[string]interface{}{
					"request_id": RequestID(c),
					"session_id": id,
				})
				return c.JSON(http.StatusServiceUnavailable, models.ErrorResponse{
					Error:     "session_unavailable",
					Message:   "Could not open a search session. Please try again.",
					RequestID: RequestID(c),
					Timestamp: time.Now(),
				})
			}

			c.Set(ContextKeySession, s)
			req := c.Request()
			c.SetRequest(req.WithContext(logging.ContextWithFields(req.Context(), map[string]interface{}{
				"session_id": s.ID,
			})))
			c.Response().Header().Set(HeaderSessionID, s.ID)
			return next(c)
		}
	}
}

// Session returns the session resolved by Sessions
func Session(c echo.Context) *session.Session {
	s, _ := c.Get(ContextKeySession).(*session.Session)
	return s
}
