package jobs

import (
	"context"
	"errors"

	"jobscout/internal/provider"
)

// ErrClosed is returned by every operation after Close
var ErrClosed = errors.New("aggregator closed")

// ErrSuperseded is returned when a newer fetch was issued while this one was
// in flight. Its response was discarded and state reflects the newer fetch.
var ErrSuperseded = errors.New("superseded by a newer request")

// ValidationError rejects input before any I/O
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// IsValidation reports whether err is a *ValidationError
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

const (
	msgEmptyQuery = "Please enter a search query."
	msgMissingID  = "Job has no job_id."

	msgTransport = "Could not reach the job search service. Check your connection and try again."
	msgProvider  = "The job search service returned an error. Please try again."
	msgUnknown   = "Something went wrong while searching. Please try again."
)

// describe turns a fetch error into the text shown next to the results.
// Rate limiting deliberately reads like any other provider failure.
func describe(err error) string {
	switch {
	case errors.Is(err, provider.ErrProvider):
		return msgProvider
	case errors.Is(err, provider.ErrTransport),
		errors.Is(err, context.DeadlineExceeded),
		errors.Is(err, context.Canceled):
		return msgTransport
	default:
		return msgUnknown
	}
}
