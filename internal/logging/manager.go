package logging

import (
	"fmt"
	"os"
	"sync"

	"jobscout/internal/config"
	"jobscout/internal/logging/adapters"
)

// Manager manages the logging system initialization and configuration
type Manager struct {
	factory *AdapterFactory
	logger  *MultiLogger
}

// NewManager creates a new logging manager
func NewManager() *Manager {
	return &Manager{
		factory: NewAdapterFactory(),
		logger:  NewMultiLogger(),
	}
}

// Initialize initializes the logging system from configuration. When no
// adapters are listed a single stream adapter is built from format/output.
func (m *Manager) Initialize(cfg *config.Config) error {
	m.logger.SetLevel(ParseLogLevel(cfg.Logging.Level))

	if len(cfg.Logging.Adapters) == 0 {
		return m.initializeDefault(cfg)
	}

	for _, ac := range cfg.Logging.Adapters {
		if !ac.Enabled {
			continue
		}

		adapter, err := m.factory.CreateAdapter(AdapterConfig{
			Name:    ac.Name,
			Type:    ac.Type,
			Enabled: ac.Enabled,
			Options: ac.Options,
		})
		if err != nil {
			return fmt.Errorf("failed to create adapter %s: %w", ac.Name, err)
		}

		if err := m.logger.AddAdapter(adapter); err != nil {
			return fmt.Errorf("failed to add adapter %s: %w", ac.Name, err)
		}
	}

	return nil
}

func (m *Manager) initializeDefault(cfg *config.Config) error {
	out := os.Stdout
	if cfg.Logging.Output == "stderr" {
		out = os.Stderr
	}

	adapter := adapters.NewStdoutAdapter("default", adapters.StdoutConfig{
		Format: cfg.Logging.Format,
		Writer: out,
	})
	if err := m.logger.AddAdapter(adapter); err != nil {
		return fmt.Errorf("failed to add default adapter: %w", err)
	}
	return nil
}

// GetLogger returns the initialized logger
func (m *Manager) GetLogger() Logger {
	return m.logger
}

// Close closes the logging system
func (m *Manager) Close() error {
	if m.logger != nil {
		return m.logger.Close()
	}
	return nil
}

var (
	globalMu      sync.Mutex
	globalManager *Manager
)

// InitializeLogging initializes the global logging system
func InitializeLogging(cfg *config.Config) error {
	manager := NewManager()
	if err := manager.Initialize(cfg); err != nil {
		manager.Close()
		return err
	}

	globalMu.Lock()
	globalManager = manager
	globalMu.Unlock()
	return nil
}

// GetGlobalLogger returns the global logger, falling back to JSON on stdout
// when InitializeLogging has not run
func GetGlobalLogger() Logger {
	globalMu.Lock()
	defer globalMu.Unlock()

	if globalManager == nil {
		manager := NewManager()
		manager.logger.AddAdapter(adapters.NewStdoutAdapter("fallback_stdout", adapters.StdoutConfig{Format: "json"}))
		globalManager = manager
	}
	return globalManager.GetLogger()
}

// CloseLogging closes the global logging system
func CloseLogging() error {
	globalMu.Lock()
	defer globalMu.Unlock()

	if globalManager != nil {
		return globalManager.Close()
	}
	return nil
}

// LogWithRequestID returns the global logger tagged with a request ID
func LogWithRequestID(requestID string) Logger {
	return GetGlobalLogger().WithField("request_id", requestID)
}

// LogWithSession returns the global logger tagged with a session ID
func LogWithSession(sessionID string) Logger {
	return GetGlobalLogger().WithField("session_id", sessionID)
}
