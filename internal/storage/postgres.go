package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"jobscout/pkg/models"
)

const createSavedJobsTable = `
	CREATE TABLE IF NOT EXISTS saved_jobs (
		key        TEXT PRIMARY KEY,
		jobs       JSONB NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`

// PostgresBackend stores each set as one jsonb row keyed by key
type PostgresBackend struct {
	pool *pgxpool.Pool
}

// NewPostgresBackend connects, verifies the connection and creates the
// table when missing
func NewPostgresBackend(ctx context.Context, databaseURL string, maxConns int32) (*PostgresBackend, error) {
	if databaseURL == "" {
		return nil, fmt.Errorf("postgres url is required")
	}

	poolCfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse postgres url: %w", err)
	}
	if maxConns > 0 {
		poolCfg.MaxConns = maxConns
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("pgxpool.NewWithConfig: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres ping failed: %w", err)
	}

	b := &PostgresBackend{pool: pool}
	if err := b.migrate(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return b, nil
}

func (b *PostgresBackend) migrate(ctx context.Context) error {
	if _, err := b.pool.Exec(ctx, createSavedJobsTable); err != nil {
		return fmt.Errorf("create saved_jobs table: %w", err)
	}
	return nil
}

// Load reads the set stored under key
func (b *PostgresBackend) Load(ctx context.Context, key string) ([]models.JobPosting, error) {
	var data []byte
	err := b.pool.QueryRow(ctx, `SELECT jobs FROM saved_jobs WHERE key = $1`, key).Scan(&data)
	if errors.Is(err, pgx.ErrNoRows) {
		return []models.JobPosting{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load saved jobs: %w", err)
	}
	return decode(data)
}

// Save replaces the set stored under key
func (b *PostgresBackend) Save(ctx context.Context, key string, jobs []models.JobPosting) error {
	data, err := encode(jobs)
	if err != nil {
		return err
	}

	_, err = b.pool.Exec(ctx, `
		INSERT INTO saved_jobs (key, jobs, updated_at)
		VALUES ($1, $2::jsonb, now())
		ON CONFLICT (key) DO UPDATE SET jobs = EXCLUDED.jobs, updated_at = EXCLUDED.updated_at`,
		key, string(data))
	if err != nil {
		return fmt.Errorf("save saved jobs: %w", err)
	}
	return nil
}

// Ping verifies the pool can reach the database
func (b *PostgresBackend) Ping(ctx context.Context) error {
	return b.pool.Ping(ctx)
}

// Close closes the pool
func (b *PostgresBackend) Close() error {
	b.pool.Close()
	return nil
}

// Name returns the backend name
func (b *PostgresBackend) Name() string {
	return "postgres"
}
