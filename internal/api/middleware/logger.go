package middleware

import (
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"jobscout/internal/logging"
	"jobscout/pkg/utils"
)

// RequestLogger writes one entry per request through the app logger
func RequestLogger(logger logging.Logger) echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRemoteIP:  true,
		LogError:     true,
		HandleError:  true,
		LogRequestID: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			fields := map[string]interface{}{
				"request_id": RequestID(c),
				"method":     v.Method,
				"uri":        v.URI,
				"status":     v.Status,
				"latency":    utils.FormatDuration(v.Latency),
				"remote_ip":  v.RemoteIP,
			}
			if sid := c.Response().Header().Get(HeaderSessionID); sid != "" {
				fields["session_id"] = sid
			}

			switch {
			case v.Error != nil:
				logger.WithError(v.Error).Error("Request failed", fields)
			case v.Status >= 500:
				logger.Warn("Request completed with server error", fields)
			default:
				logger.Info("Request completed", fields)
			}
			return nil
		},
	})
}
