package logging

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"
	"time"

	"jobscout/internal/logging/types"
)

// adapterSet is shared by a logger and every logger derived from it
type adapterSet struct {
	mu       sync.RWMutex
	adapters map[string]types.LogAdapter
	level    LogLevel
}

// MultiLogger is the main implementation of the Logger interface
type MultiLogger struct {
	set    *adapterSet
	fields map[string]interface{}
}

// NewMultiLogger creates a new MultiLogger instance
func NewMultiLogger() *MultiLogger {
	return &MultiLogger{
		set: &adapterSet{
			adapters: make(map[string]types.LogAdapter),
			level:    InfoLevel,
		},
		fields: make(map[string]interface{}),
	}
}

// NewNopLogger returns a logger with no adapters. Used as the default
// for components constructed without one.
func NewNopLogger() Logger {
	return NewMultiLogger()
}

// Debug logs a debug message
func (l *MultiLogger) Debug(message string, fields ...map[string]interface{}) {
	l.Log(DebugLevel, message, fields...)
}

// Info logs an info message
func (l *MultiLogger) Info(message string, fields ...map[string]interface{}) {
	l.Log(InfoLevel, message, fields...)
}

// Warn logs a warning message
func (l *MultiLogger) Warn(message string, fields ...map[string]interface{}) {
	l.Log(WarnLevel, message, fields...)
}

// Error logs an error message
func (l *MultiLogger) Error(message string, fields ...map[string]interface{}) {
	l.Log(ErrorLevel, message, fields...)
}

// Fatal logs a fatal message and exits
func (l *MultiLogger) Fatal(message string, fields ...map[string]interface{}) {
	l.Log(FatalLevel, message, fields...)
	l.Close()
	os.Exit(1)
}

// Log logs a message at the specified level
func (l *MultiLogger) Log(level LogLevel, message string, fields ...map[string]interface{}) {
	l.set.mu.RLock()
	defer l.set.mu.RUnlock()

	if level < l.set.level || len(l.set.adapters) == 0 {
		return
	}

	entry := &types.LogEntry{
		Level:     level,
		Message:   message,
		Timestamp: time.Now().UTC(),
		Fields:    l.mergeFields(fields...),
	}

	for name, adapter := range l.set.adapters {
		if err := adapter.Write(entry); err != nil {
			// stderr, not the logger, so a broken adapter cannot recurse
			fmt.Fprintf(os.Stderr, "logging adapter %s error: %v\n", name, err)
		}
	}
}

// WithContext returns a new logger carrying the fields attached to ctx
func (l *MultiLogger) WithContext(ctx context.Context) Logger {
	return l.derive(l.mergeFields(types.FieldsFromContext(ctx)))
}

// WithField returns a new logger with the specified field
func (l *MultiLogger) WithField(key string, value interface{}) Logger {
	fields := l.copyFields()
	fields[key] = value
	return l.derive(fields)
}

// WithFields returns a new logger with the specified fields
func (l *MultiLogger) WithFields(fields map[string]interface{}) Logger {
	return l.derive(l.mergeFields(fields))
}

// WithError returns a new logger carrying err under the "error" field
func (l *MultiLogger) WithError(err error) Logger {
	if err == nil {
		return l.derive(l.copyFields())
	}
	return l.WithField("error", err.Error())
}

// SetLevel sets the minimum log level for this logger and all derived loggers
func (l *MultiLogger) SetLevel(level LogLevel) {
	l.set.mu.Lock()
	defer l.set.mu.Unlock()
	l.set.level = level
}

// GetLevel returns the current log level
func (l *MultiLogger) GetLevel() LogLevel {
	l.set.mu.RLock()
	defer l.set.mu.RUnlock()
	return l.set.level
}

// AddAdapter adds a new log adapter
func (l *MultiLogger) AddAdapter(adapter types.LogAdapter) error {
	l.set.mu.Lock()
	defer l.set.mu.Unlock()

	name := adapter.Name()
	if _, exists := l.set.adapters[name]; exists {
		return fmt.Errorf("adapter %s already exists", name)
	}

	l.set.adapters[name] = adapter
	return nil
}

// RemoveAdapter removes a log adapter
func (l *MultiLogger) RemoveAdapter(adapterName string) error {
	l.set.mu.Lock()
	defer l.set.mu.Unlock()

	adapter, exists := l.set.adapters[adapterName]
	if !exists {
		return fmt.Errorf("adapter %s not found", adapterName)
	}

	if err := adapter.Close(); err != nil {
		return fmt.Errorf("failed to close adapter %s: %w", adapterName, err)
	}

	delete(l.set.adapters, adapterName)
	return nil
}

// AdapterNames lists the registered adapters in name order
func (l *MultiLogger) AdapterNames() []string {
	l.set.mu.RLock()
	defer l.set.mu.RUnlock()

	names := make([]string, 0, len(l.set.adapters))
	for name := range l.set.adapters {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Close closes all adapters
func (l *MultiLogger) Close() error {
	l.set.mu.Lock()
	defer l.set.mu.Unlock()

	var errors []string
	for name, adapter := range l.set.adapters {
		if err := adapter.Close(); err != nil {
			errors = append(errors, fmt.Sprintf("adapter %s: %v", name, err))
		}
	}
	l.set.adapters = make(map[string]types.LogAdapter)

	if len(errors) > 0 {
		return fmt.Errorf("failed to close adapters: %s", strings.Join(errors, ", "))
	}

	return nil
}

func (l *MultiLogger) derive(fields map[string]interface{}) *MultiLogger {
	return &MultiLogger{set: l.set, fields: fields}
}

func (l *MultiLogger) copyFields() map[string]interface{} {
	fields := make(map[string]interface{}, len(l.fields))
	for k, v := range l.fields {
		fields[k] = v
	}
	return fields
}

func (l *MultiLogger) mergeFields(additionalFields ...map[string]interface{}) map[string]interface{} {
	fields := l.copyFields()
	for _, fieldMap := range additionalFields {
		for k, v := range fieldMap {
			fields[k] = v
		}
	}
	return fields
}

// ParseLogLevel parses a level name, falling back to info for unknown names
func ParseLogLevel(levelStr string) LogLevel {
	level, _ := types.ParseLevel(levelStr)
	return level
}
