package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"jobscout/internal/api/middleware"
	"jobscout/internal/api/validation"
	"jobscout/internal/jobs"
	"jobscout/internal/logging"
	"jobscout/internal/provider"
	"jobscout/internal/session"
	"jobscout/pkg/models"
	"jobscout/pkg/utils"
)

var errorCodes = map[int]string{
	http.StatusBadRequest:          "validation_failed",
	http.StatusNotFound:            "not_found",
	http.StatusRequestTimeout:      "timeout",
	http.StatusConflict:            "session_closed",
	http.StatusBadGateway:          "provider_error",
	http.StatusServiceUnavailable:  "storage_unavailable",
	http.StatusInternalServerError: "internal_error",
}

// toCustomError classifies err for the API. userMessage, when set, is the
// text the aggregator already chose for a failed fetch.
func toCustomError(err error, userMessage string) *utils.CustomError {
	if ce, ok := utils.AsCustomError(err); ok {
		return ce
	}

	var ve *jobs.ValidationError
	switch {
	case errors.As(err, &ve):
		return utils.NewValidationError(ve.Message)
	case errors.Is(err, jobs.ErrClosed), errors.Is(err, session.ErrClosed):
		return &utils.CustomError{
			Code:    http.StatusConflict,
			Message: "Session closed",
			Detail:  "Your search session expired. Please retry.",
		}
	case errors.Is(err, provider.ErrInvalidArgument):
		return utils.NewValidationError(err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		return utils.NewTimeoutError(utils.GetStringOrDefault(userMessage, "Request timed out"))
	case errors.Is(err, provider.ErrProvider), errors.Is(err, provider.ErrTransport):
		return utils.NewUpstreamError(userMessage)
	default:
		return utils.NewInternalServerError(utils.GetStringOrDefault(userMessage, "Internal server error"))
	}
}

func respondError(c echo.Context, err error, userMessage string) error {
	ce := toCustomError(err, userMessage)
	code, ok := errorCodes[ce.Code]
	if !ok {
		code = "error"
	}
	message := ce.Message
	if ce.Detail != "" {
		message = ce.Detail
	}

	logger := logging.LogWithRequestID(middleware.RequestID(c))
	fields := map[string]interface{}{
		"status": ce.Code,
		"path":   c.Path(),
	}
	if ce.Code >= http.StatusInternalServerError {
		logger.WithError(err).Error("Request failed", fields)
	} else {
		logger.WithError(err).Debug("Request rejected", fields)
	}

	return c.JSON(ce.Code, models.ErrorResponse{
		Error:     code,
		Message:   message,
		RequestID: middleware.RequestID(c),
		Timestamp: time.Now(),
	})
}

// bindAndValidate decodes the body into req and runs the registered validator
func bindAndValidate(c echo.Context, req interface{}) *utils.CustomError {
	if err := c.Bind(req); err != nil {
		return utils.NewBadRequestError("Invalid request format")
	}
	if err := c.Validate(req); err != nil {
		return utils.NewValidationError(validation.Describe(err))
	}
	return nil
}
