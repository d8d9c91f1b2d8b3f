// Package storage persists saved-job sets. Each set is one JSON array of
// full postings stored under a key; a write replaces the whole set.
package storage

import (
	"context"
	"encoding/json"
	"fmt"

	"jobscout/internal/config"
	"jobscout/internal/logging"
	"jobscout/pkg/models"
)

// Backend stores saved-job sets by key
type Backend interface {
	Load(ctx context.Context, key string) ([]models.JobPosting, error)
	Save(ctx context.Context, key string, jobs []models.JobPosting) error
	Ping(ctx context.Context) error
	Close() error
	Name() string
}

// KeyedStore binds a Backend to one key
type KeyedStore struct {
	backend Backend
	key     string
}

// ForKey returns the store for key
func ForKey(b Backend, key string) *KeyedStore {
	return &KeyedStore{backend: b, key: key}
}

// Key is the storage key this store reads and writes
func (s *KeyedStore) Key() string {
	return s.key
}

// Load reads the saved set. A missing key is an empty set.
func (s *KeyedStore) Load(ctx context.Context) ([]models.JobPosting, error) {
	return s.backend.Load(ctx, s.key)
}

// Save replaces the saved set
func (s *KeyedStore) Save(ctx context.Context, jobs []models.JobPosting) error {
	return s.backend.Save(ctx, s.key, jobs)
}

// SessionKey scopes the configured base key to one session
func SessionKey(base, sessionID string) string {
	if sessionID == "" {
		return base
	}
	return base + ":" + sessionID
}

// Open creates the backend selected by cfg.Storage.Backend
func Open(ctx context.Context, cfg *config.Config, logger logging.Logger) (Backend, error) {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	logger = logger.WithField("component", "storage")

	var (
		b   Backend
		err error
	)
	switch cfg.Storage.Backend {
	case config.StorageFile, "":
		b, err = NewFileBackend(cfg.Storage.FileDir)
	case config.StorageRedis:
		b, err = NewRedisBackend(cfg)
	case config.StoragePostgres:
		b, err = NewPostgresBackend(ctx, cfg.Postgres.URL, cfg.Postgres.MaxConns)
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Storage.Backend)
	}
	if err != nil {
		return nil, fmt.Errorf("open %s storage: %w", cfg.Storage.Backend, err)
	}

	logger.Info("Saved jobs storage ready", map[string]interface{}{
		"backend": b.Name(),
		"key":     cfg.Storage.Key,
	})
	return b, nil
}

func encode(jobs []models.JobPosting) ([]byte, error) {
	if jobs == nil {
		jobs = []models.JobPosting{}
	}
	data, err := json.Marshal(jobs)
	if err != nil {
		return nil, fmt.Errorf("encode saved jobs: %w", err)
	}
	return data, nil
}

func decode(data []byte) ([]models.JobPosting, error) {
	if len(data) == 0 {
		return []models.JobPosting{}, nil
	}
	var jobs []models.JobPosting
	if err := json.Unmarshal(data, &jobs); err != nil {
		return nil, fmt.Errorf("decode saved jobs: %w", err)
	}
	if jobs == nil {
		jobs = []models.JobPosting{}
	}
	return jobs, nil
}
