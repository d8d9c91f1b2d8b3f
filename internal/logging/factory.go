package logging

import (
	"fmt"

	"jobscout/internal/logging/adapters"
	"jobscout/internal/logging/types"
)

// AdapterFactory creates logging adapters based on configuration
type AdapterFactory struct{}

// NewAdapterFactory creates a new adapter factory
func NewAdapterFactory() *AdapterFactory {
	return &AdapterFactory{}
}

// CreateAdapter creates a logging adapter based on the provided configuration
func (f *AdapterFactory) CreateAdapter(adapterConfig types.AdapterConfig) (types.LogAdapter, error) {
	switch adapterConfig.Type {
	case "stdout":
		return adapters.NewStdoutAdapter(adapterConfig.Name, adapters.StdoutConfig{
			Format:    getStringOption(adapterConfig.Options, "format", "json"),
			Colorized: getBoolOption(adapterConfig.Options, "colorized", false),
		}), nil
	case "file":
		path := getStringOption(adapterConfig.Options, "file_path", "")
		if path == "" {
			return nil, fmt.Errorf("file_path is required for file adapter")
		}
		return adapters.NewFileAdapter(adapterConfig.Name, adapters.FileConfig{
			FilePath:    path,
			Format:      getStringOption(adapterConfig.Options, "format", "json"),
			MaxSize:     getInt64Option(adapterConfig.Options, "max_size", 0),
			MaxBackups:  int(getInt64Option(adapterConfig.Options, "max_backups", 10)),
			Compress:    getBoolOption(adapterConfig.Options, "compress", false),
			CreateDirs:  getBoolOption(adapterConfig.Options, "create_dirs", true),
			SyncOnWrite: getBoolOption(adapterConfig.Options, "sync_on_write", false),
		})
	default:
		return nil, fmt.Errorf("unsupported adapter type: %s", adapterConfig.Type)
	}
}

func getStringOption(options map[string]interface{}, key string, defaultValue string) string {
	if str, ok := options[key].(string); ok {
		return str
	}
	return defaultValue
}

// yaml.v3 decodes integers as int, JSON decoding yields float64
func getInt64Option(options map[string]interface{}, key string, defaultValue int64) int64 {
	switch v := options[key].(type) {
	case int:
		return int64(v)
	case int64:
		return v
	case float64:
		return int64(v)
	}
	return defaultValue
}

func getBoolOption(options map[string]interface{}, key string, defaultValue bool) bool {
	if b, ok := options[key].(bool); ok {
		return b
	}
	return defaultValue
}
