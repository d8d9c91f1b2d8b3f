package middleware

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"jobscout/internal/logging"
	"jobscout/pkg/models"
	"jobscout/pkg/utils"
)

// Context keys set by this package
const (
	ContextKeyRequestID = "request_id"
	ContextKeySession   = "session"
)

// MaxBodySize is the largest request body accepted
const MaxBodySize = 1024 * 1024

// RequestValidation assigns a request id, honoring a caller-supplied one,
// and rejects oversized bodies before they are read
func RequestValidation() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			requestID := c.Request().Header.Get(echo.HeaderXRequestID)
			if requestID == "" || len(requestID) > 128 {
				requestID = utils.GenerateRequestID()
			}
			c.Set(ContextKeyRequestID, requestID)
			c.Response().Header().Set(echo.HeaderXRequestID, requestID)
			req := c.Request()
			c.SetRequest(req.WithContext(logging.ContextWithFields(req.Context(), map[string]interface{}{
				"request_id": requestID,
			})))

			if c.Request().ContentLength > MaxBodySize {
				return c.JSON(http.StatusRequestEntityTooLarge, models.ErrorResponse{
					Error:     "request_too_large",
					Message:   "Request body too large",
					RequestID: requestID,
					Timestamp: time.Now(),
				})
			}
			return next(c)
		}
	}
}

// RequestID returns the id assigned by RequestValidation
func RequestID(c echo.Context) string {
	if id, ok := c.Get(ContextKeyRequestID).(string); ok {
		return id
	}
	return ""
}
