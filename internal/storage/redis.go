package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"jobscout/internal/config"
	"jobscout/pkg/models"
)

// RedisBackend stores each set as a string value with no expiry
type RedisBackend struct {
	client *redis.Client
}

// NewRedisBackend connects using cfg.Redis. An empty URL means localhost;
// an unparsable one is an error.
func NewRedisBackend(cfg *config.Config) (*RedisBackend, error) {
	opts := &redis.Options{Addr: "localhost:6379"}
	if u := strings.TrimSpace(cfg.Redis.URL); u != "" {
		var err error
		if opts, err = redis.ParseURL(u); err != nil {
			return nil, fmt.Errorf("parse redis url: %w", err)
		}
	}
	if cfg.Redis.Password != "" {
		opts.Password = cfg.Redis.Password
	}
	if cfg.Redis.DB != 0 {
		opts.DB = cfg.Redis.DB
	}

	timeout := cfg.Redis.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	opts.DialTimeout = timeout
	opts.ReadTimeout = timeout
	opts.WriteTimeout = timeout

	return NewRedisBackendFromClient(redis.NewClient(opts)), nil
}

// NewRedisBackendFromClient wraps an existing client
func NewRedisBackendFromClient(client *redis.Client) *RedisBackend {
	return &RedisBackend{client: client}
}

// Load reads the set stored under key
func (b *RedisBackend) Load(ctx context.Context, key string) ([]models.JobPosting, error) {
	data, err := b.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return []models.JobPosting{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("redis get %s: %w", key, err)
	}
	return decode(data)
}

// Save replaces the set stored under key. Saved jobs never expire.
func (b *RedisBackend) Save(ctx context.Context, key string, jobs []models.JobPosting) error {
	data, err := encode(jobs)
	if err != nil {
		return err
	}
	if err := b.client.Set(ctx, key, data, 0).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}

// Ping tests the Redis connection
func (b *RedisBackend) Ping(ctx context.Context) error {
	return b.client.Ping(ctx).Err()
}

// Close closes the Redis connection
func (b *RedisBackend) Close() error {
	return b.client.Close()
}

// Name returns the backend name
func (b *RedisBackend) Name() string {
	return "redis"
}
