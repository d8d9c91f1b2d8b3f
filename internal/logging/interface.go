package logging

import (
	"context"

	"jobscout/internal/logging/types"
)

// Aliases so callers only import this package
type (
	LogLevel      = types.LogLevel
	LogEntry      = types.LogEntry
	LogAdapter    = types.LogAdapter
	Logger        = types.Logger
	AdapterConfig = types.AdapterConfig
)

const (
	DebugLevel = types.DebugLevel
	InfoLevel  = types.InfoLevel
	WarnLevel  = types.WarnLevel
	ErrorLevel = types.ErrorLevel
	FatalLevel = types.FatalLevel
)

// ContextWithFields attaches request-scoped fields (request id, session id)
// that Logger.WithContext picks up further down the call chain
func ContextWithFields(ctx context.Context, fields map[string]interface{}) context.Context {
	return types.ContextWithFields(ctx, fields)
}
