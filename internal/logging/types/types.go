// Package types holds the logging vocabulary shared by the logger and its
// adapters, kept separate so adapters need not import the logger.
package types

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// LogLevel represents the severity level of a log entry
type LogLevel int

const (
	DebugLevel LogLevel = iota
	InfoLevel
	WarnLevel
	ErrorLevel
	FatalLevel
)

var levelNames = [...]string{
	DebugLevel: "debug",
	InfoLevel:  "info",
	WarnLevel:  "warn",
	ErrorLevel: "error",
	FatalLevel: "fatal",
}

// String returns the lower-case name, "info" for out-of-range values
func (l LogLevel) String() string {
	if l < DebugLevel || l > FatalLevel {
		return levelNames[InfoLevel]
	}
	return levelNames[l]
}

// MarshalText lets levels appear by name in JSON and YAML
func (l LogLevel) MarshalText() ([]byte, error) {
	return []byte(l.String()), nil
}

// UnmarshalText accepts any name ParseLevel accepts
func (l *LogLevel) UnmarshalText(text []byte) error {
	level, ok := ParseLevel(string(text))
	if !ok {
		return fmt.Errorf("unknown log level %q", text)
	}
	*l = level
	return nil
}

// ParseLevel maps a case-insensitive level name to a LogLevel. "warning"
// is accepted for warn.
func ParseLevel(s string) (LogLevel, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "warning" {
		return WarnLevel, true
	}
	for level, name := range levelNames {
		if name == s {
			return LogLevel(level), true
		}
	}
	return InfoLevel, false
}

// LogEntry represents a single log entry
type LogEntry struct {
	Level     LogLevel               `json:"level"`
	Message   string                 `json:"message"`
	Timestamp time.Time              `json:"timestamp"`
	Fields    map[string]interface{} `json:"fields,omitempty"`
}

// LogAdapter defines the interface for log output adapters
type LogAdapter interface {
	// Write writes a log entry to the adapter's destination
	Write(entry *LogEntry) error
	Close() error
	// Health reports whether the destination is still writable
	Health() error
	Name() string
}

// Logger defines the main logging interface
type Logger interface {
	Debug(message string, fields ...map[string]interface{})
	Info(message string, fields ...map[string]interface{})
	Warn(message string, fields ...map[string]interface{})
	Error(message string, fields ...map[string]interface{})
	Fatal(message string, fields ...map[string]interface{})

	// WithContext adds the fields attached to ctx by ContextWithFields
	WithContext(ctx context.Context) Logger
	WithField(key string, value interface{}) Logger
	WithFields(fields map[string]interface{}) Logger
	WithError(err error) Logger

	Log(level LogLevel, message string, fields ...map[string]interface{})

	SetLevel(level LogLevel)
	GetLevel() LogLevel

	AddAdapter(adapter LogAdapter) error
	RemoveAdapter(adapterName string) error

	Close() error
}

// AdapterConfig represents configuration for a specific adapter
type AdapterConfig struct {
	Name    string                 `yaml:"name"`
	Type    string                 `yaml:"type"`
	Enabled bool                   `yaml:"enabled"`
	Options map[string]interface{} `yaml:"options"`
}

type fieldsKey struct{}

// ContextWithFields returns a copy of ctx carrying fields for loggers that
// later call WithContext. Fields already on ctx are kept unless overwritten.
func ContextWithFields(ctx context.Context, fields map[string]interface{}) context.Context {
	merged := make(map[string]interface{}, len(fields))
	for k, v := range FieldsFromContext(ctx) {
		merged[k] = v
	}
	for k, v := range fields {
		merged[k] = v
	}
	return context.WithValue(ctx, fieldsKey{}, merged)
}

// FieldsFromContext returns the fields attached by ContextWithFields. The
// map must not be modified.
func FieldsFromContext(ctx context.Context) map[string]interface{} {
	if ctx == nil {
		return nil
	}
	fields, _ := ctx.Value(fieldsKey{}).(map[string]interface{})
	return fields
}
