package adapters

import (
	"fmt"
	"io"
	"os"
	"sync"

	"jobscout/internal/logging/types"
)

// StdoutAdapter writes formatted entries to a stream, stdout unless configured otherwise
type StdoutAdapter struct {
	name      string
	format    string
	colorized bool
	out       io.Writer
	mu        sync.Mutex
}

// StdoutConfig represents configuration for the stdout adapter
type StdoutConfig struct {
	Format    string    `yaml:"format"`    // json or text
	Colorized bool      `yaml:"colorized"` // enable colored output
	Writer    io.Writer `yaml:"-"`
}

// NewStdoutAdapter creates a new stdout adapter
func NewStdoutAdapter(name string, config StdoutConfig) *StdoutAdapter {
	out := config.Writer
	if out == nil {
		out = os.Stdout
	}
	return &StdoutAdapter{
		name:      name,
		format:    config.Format,
		colorized: config.Colorized,
		out:       out,
	}
}

// Write writes a log entry to the stream
func (a *StdoutAdapter) Write(entry *types.LogEntry) error {
	output, err := formatEntry(entry, a.format, a.colorized)
	if err != nil {
		return fmt.Errorf("failed to format log entry: %w", err)
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	_, err = fmt.Fprintln(a.out, output)
	return err
}

// Close is a no-op, the stream is owned by the caller
func (a *StdoutAdapter) Close() error {
	return nil
}

// Health always succeeds
func (a *StdoutAdapter) Health() error {
	return nil
}

// Name returns the name of the adapter
func (a *StdoutAdapter) Name() string {
	return a.name
}
