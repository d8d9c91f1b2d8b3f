// Package testutil holds helpers for integration tests that need Redis or
// Postgres. Tests are skipped when the service is not reachable.
package testutil

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

// RedisURL is the test Redis address, from TEST_REDIS_URL
func RedisURL() string {
	if v := os.Getenv("TEST_REDIS_URL"); v != "" {
		return v
	}
	return "redis://localhost:6379/15"
}

// DatabaseURL is the test Postgres DSN, from TEST_DATABASE_URL. Empty
// means no database is configured.
func DatabaseURL() string {
	return os.Getenv("TEST_DATABASE_URL")
}

// SetupTestRedis returns a client on a flushed test database or skips t
func SetupTestRedis(t testing.TB) *redis.Client {
	t.Helper()

	opts, err := redis.ParseURL(RedisURL())
	if err != nil {
		t.Skipf("invalid TEST_REDIS_URL: %v", err)
	}
	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		t.Skipf("Redis not available for testing at %s: %v", opts.Addr, err)
	}
	client.FlushDB(ctx)

	t.Cleanup(func() {
		client.FlushDB(context.Background())
		client.Close()
	})
	return client
}

// SkipIfNoTestDB skips t unless a reachable test database is configured
func SkipIfNoTestDB(t testing.TB) string {
	t.Helper()

	dsn := DatabaseURL()
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		t.Skip("Test database not available:", err)
	}
	defer pool.Close()

	if err := pool.Ping(ctx); err != nil {
		t.Skip("Test database not available:", err)
	}
	return dsn
}
