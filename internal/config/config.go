package config

import (
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"jobscout/internal/logging/types"
)

// Storage backends for saved jobs
const (
	StorageFile     = "file"
	StorageRedis    = "redis"
	StoragePostgres = "postgres"
)

// LogAdapterConfig describes one logging output
type LogAdapterConfig struct {
	Name    string                 `yaml:"name"`
	Type    string                 `yaml:"type"`
	Enabled bool                   `yaml:"enabled"`
	Options map[string]interface{} `yaml:"options"`
}

// Config represents the application configuration
type Config struct {
	Server struct {
		Port         int           `yaml:"port" default:"8080"`
		Host         string        `yaml:"host" default:"0.0.0.0"`
		ReadTimeout  time.Duration `yaml:"read_timeout" default:"30s"`
		WriteTimeout time.Duration `yaml:"write_timeout" default:"30s"`
		IdleTimeout  time.Duration `yaml:"idle_timeout" default:"60s"`

		RequestTimeout time.Duration `yaml:"request_timeout" default:"45s"`
		AllowedOrigins []string      `yaml:"allowed_origins"`
	} `yaml:"server"`

	Provider struct {
		BaseURL   string        `yaml:"base_url" default:"https://jsearch.p.rapidapi.com"`
		APIKey    string        `yaml:"api_key"`
		APIHost   string        `yaml:"api_host" default:"jsearch.p.rapidapi.com"`
		NumPages  int           `yaml:"num_pages" default:"1"`
		Timeout   time.Duration `yaml:"timeout" default:"30s"`
		RateLimit int           `yaml:"rate_limit" default:"60"` // requests per minute
		Burst     int           `yaml:"burst" default:"5"`
		// StatusMaxAge bounds how stale the status endpoint may be
		StatusMaxAge time.Duration `yaml:"status_max_age" default:"5m"`
	} `yaml:"provider"`

	Storage struct {
		Backend string `yaml:"backend" default:"file"`
		Key     string `yaml:"key" default:"saved_jobs"`
		FileDir string `yaml:"file_dir" default:"data"`
	} `yaml:"storage"`

	Redis struct {
		URL      string        `yaml:"url" default:"redis://localhost:6379"`
		Password string        `yaml:"password"`
		DB       int           `yaml:"db" default:"0"`
		Timeout  time.Duration `yaml:"timeout" default:"5s"`
	} `yaml:"redis"`

	Postgres struct {
		URL      string `yaml:"url"`
		MaxConns int32  `yaml:"max_conns" default:"4"`
	} `yaml:"postgres"`

	Sessions struct {
		IdleTimeout   time.Duration `yaml:"idle_timeout" default:"2h"`
		SweepSchedule string        `yaml:"sweep_schedule" default:"@every 10m"`
		ProbeSchedule string        `yaml:"probe_schedule" default:"@every 5m"`
	} `yaml:"sessions"`

	GRPC struct {
		Enabled bool `yaml:"enabled" default:"true"`
	} `yaml:"grpc"`

	Logging struct {
		Level  string `yaml:"level" default:"info"`
		Format string `yaml:"format" default:"json"`
		Output string `yaml:"output" default:"stdout"`

		Adapters []LogAdapterConfig `yaml:"adapters"`
	} `yaml:"logging"`
}

var (
	bracedVar = regexp.MustCompile(`\$\{([^}]+)\}`)
	bareVar   = regexp.MustCompile(`\$([A-Za-z_][A-Za-z0-9_]*)`)
)

// expandEnvVars expands environment variables in a string using ${VAR} or $VAR syntax.
// Unknown variables are left in place.
func expandEnvVars(s string) string {
	s = bracedVar.ReplaceAllStringFunc(s, func(match string) string {
		if val := os.Getenv(match[2 : len(match)-1]); val != "" {
			return val
		}
		return match
	})

	return bareVar.ReplaceAllStringFunc(s, func(match string) string {
		if val := os.Getenv(match[1:]); val != "" {
			return val
		}
		return match
	})
}

// Default returns a configuration populated with built-in defaults only
func Default() *Config {
	config := &Config{}

	config.Server.Port = 8080
	config.Server.Host = "0.0.0.0"
	config.Server.ReadTimeout = 30 * time.Second
	config.Server.WriteTimeout = 30 * time.Second
	config.Server.IdleTimeout = 60 * time.Second
	config.Server.RequestTimeout = 45 * time.Second

	config.Provider.BaseURL = "https://jsearch.p.rapidapi.com"
	config.Provider.APIHost = "jsearch.p.rapidapi.com"
	config.Provider.NumPages = 1
	config.Provider.Timeout = 30 * time.Second
	config.Provider.RateLimit = 60
	config.Provider.Burst = 5
	config.Provider.StatusMaxAge = 5 * time.Minute

	config.Storage.Backend = StorageFile
	config.Storage.Key = "saved_jobs"
	config.Storage.FileDir = "data"

	config.Redis.URL = "redis://localhost:6379"
	config.Redis.Timeout = 5 * time.Second

	config.Postgres.MaxConns = 4

	config.Sessions.IdleTimeout = 2 * time.Hour
	config.Sessions.SweepSchedule = "@every 10m"
	config.Sessions.ProbeSchedule = "@every 5m"

	config.GRPC.Enabled = true

	config.Logging.Level = "info"
	config.Logging.Format = "json"
	config.Logging.Output = "stdout"

	return config
}

// LoadConfig loads configuration from file and environment variables
func LoadConfig(configPath string) (*Config, error) {
	// Load .env file if it exists (ignore errors if file doesn't exist)
	_ = godotenv.Load()

	config := Default()

	if configPath != "" {
		if data, err := os.ReadFile(configPath); err == nil {
			if err := yaml.Unmarshal([]byte(expandEnvVars(string(data))), config); err != nil {
				return nil, fmt.Errorf("parse %s: %w", configPath, err)
			}
		}
	}

	config.loadFromEnv()

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// Validate rejects settings the service cannot run with
func (c *Config) Validate() error {
	switch c.Storage.Backend {
	case StorageFile, StorageRedis, StoragePostgres:
	default:
		return fmt.Errorf("unsupported storage backend %q", c.Storage.Backend)
	}
	if c.Storage.Backend == StoragePostgres && c.Postgres.URL == "" {
		return fmt.Errorf("postgres storage requires DATABASE_URL")
	}
	if strings.TrimSpace(c.Storage.Key) == "" {
		return fmt.Errorf("storage key must not be empty")
	}
	if c.Provider.BaseURL == "" {
		return fmt.Errorf("provider base_url is required")
	}
	if c.Provider.NumPages < 1 {
		return fmt.Errorf("provider num_pages must be positive, got %d", c.Provider.NumPages)
	}
	if c.Provider.RateLimit < 1 || c.Provider.Burst < 1 {
		return fmt.Errorf("provider rate_limit and burst must be positive")
	}
	if _, ok := types.ParseLevel(c.Logging.Level); !ok {
		return fmt.Errorf("unknown logging level %q", c.Logging.Level)
	}
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server port out of range: %d", c.Server.Port)
	}
	return nil
}

// MissingAPIKey reports whether provider calls will be sent without credentials
func (c *Config) MissingAPIKey() bool {
	return strings.TrimSpace(c.Provider.APIKey) == ""
}

// Address is the listen address for the HTTP/gRPC multiplexer
func (c *Config) Address() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

// loadFromEnv loads configuration from environment variables
func (c *Config) loadFromEnv() {
	if port := os.Getenv("PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			c.Server.Port = p
		}
	}

	if host := os.Getenv("HOST"); host != "" {
		c.Server.Host = host
	}

	if origins := os.Getenv("CORS_ALLOWED_ORIGINS"); origins != "" {
		c.Server.AllowedOrigins = nil
		for _, o := range strings.Split(origins, ",") {
			if o = strings.TrimSpace(o); o != "" {
				c.Server.AllowedOrigins = append(c.Server.AllowedOrigins, o)
			}
		}
	}

	if baseURL := os.Getenv("JOBS_API_BASE_URL"); baseURL != "" {
		c.Provider.BaseURL = baseURL
	}

	if apiKey := os.Getenv("JOBS_API_KEY"); apiKey != "" {
		c.Provider.APIKey = apiKey
	}

	if apiHost := os.Getenv("JOBS_API_HOST"); apiHost != "" {
		c.Provider.APIHost = apiHost
	}

	if numPages := os.Getenv("JOBS_NUM_PAGES"); numPages != "" {
		if n, err := strconv.Atoi(numPages); err == nil {
			c.Provider.NumPages = n
		}
	}

	if rateLimit := os.Getenv("JOBS_RATE_LIMIT"); rateLimit != "" {
		if n, err := strconv.Atoi(rateLimit); err == nil {
			c.Provider.RateLimit = n
		}
	}

	if backend := os.Getenv("STORAGE_BACKEND"); backend != "" {
		c.Storage.Backend = strings.ToLower(backend)
	}

	if key := os.Getenv("SAVED_JOBS_KEY"); key != "" {
		c.Storage.Key = key
	}

	if dir := os.Getenv("SAVED_JOBS_DIR"); dir != "" {
		c.Storage.FileDir = dir
	}

	if redisURL := os.Getenv("REDIS_URL"); redisURL != "" {
		c.Redis.URL = redisURL
	}

	if redisPassword := os.Getenv("REDIS_PASSWORD"); redisPassword != "" {
		c.Redis.Password = redisPassword
	}

	if redisDB := os.Getenv("REDIS_DB"); redisDB != "" {
		if db, err := strconv.Atoi(redisDB); err == nil {
			c.Redis.DB = db
		}
	}

	if redisTimeout := os.Getenv("REDIS_TIMEOUT"); redisTimeout != "" {
		if timeout, err := time.ParseDuration(redisTimeout); err == nil {
			c.Redis.Timeout = timeout
		}
	}

	if dbURL := os.Getenv("DATABASE_URL"); dbURL != "" {
		c.Postgres.URL = dbURL
	}

	if idle := os.Getenv("SESSION_IDLE_TIMEOUT"); idle != "" {
		if d, err := time.ParseDuration(idle); err == nil {
			c.Sessions.IdleTimeout = d
		}
	}

	if grpcEnabled := os.Getenv("GRPC_ENABLED"); grpcEnabled != "" {
		c.GRPC.Enabled = grpcEnabled == "true" || grpcEnabled == "1"
	}

	if logLevel := os.Getenv("LOG_LEVEL"); logLevel != "" {
		c.Logging.Level = logLevel
	}

	if logFormat := os.Getenv("LOG_FORMAT"); logFormat != "" {
		c.Logging.Format = logFormat
	}
}
