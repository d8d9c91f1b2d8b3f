package middleware

import (
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

// CORSConfig returns CORS middleware configuration. Browsers need to read
// the session and request id headers back.
func CORSConfig(origins []string) echo.MiddlewareFunc {
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	return middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     origins,
		AllowMethods:     []string{echo.GET, echo.POST, echo.PUT, echo.DELETE, echo.OPTIONS},
		AllowHeaders:     []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, HeaderSessionID, echo.HeaderXRequestID},
		ExposeHeaders:    []string{HeaderSessionID, echo.HeaderXRequestID},
		AllowCredentials: false,
		MaxAge:           86400,
	})
}
