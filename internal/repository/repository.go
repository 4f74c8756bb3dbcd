// Package repository provides database access layer.
package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hpnchanel/usersvc/internal/apperr"
)

// PoolConfig tunes the connection pool.
type PoolConfig struct {
	MaxConns int32
	MinConns int32
}

// Repository provides database access methods.
type Repository struct {
	pool *pgxpool.Pool
}

// New creates a new Repository with a connection pool.
// Connectivity and credential failures are reported as connection errors.
func New(ctx context.Context, databaseURL string, poolCfg PoolConfig) (*Repository, error) {
	config, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, apperr.Connection("failed to parse database URL", err)
	}

	// Connection pool settings
	config.MaxConns = 10
	config.MinConns = 2
	if poolCfg.MaxConns > 0 {
		config.MaxConns = poolCfg.MaxConns
	}
	if poolCfg.MinConns > 0 && poolCfg.MinConns <= config.MaxConns {
		config.MinConns = poolCfg.MinConns
	}

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, apperr.Connection("failed to create connection pool", err)
	}

	// Verify connection
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, apperr.Connection("failed to ping database", err)
	}

	return &Repository{pool: pool}, nil
}

// NewFromPool wraps an existing pool.
func NewFromPool(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Ping checks database connectivity.
func (r *Repository) Ping(ctx context.Context) error {
	return r.pool.Ping(ctx)
}

// Close closes the database connection pool.
func (r *Repository) Close() {
	r.pool.Close()
}

// Pool returns the underlying connection pool.
// Use sparingly - prefer adding methods to Repository.
func (r *Repository) Pool() *pgxpool.Pool {
	return r.pool
}

// Stats returns a short description of pool usage for logs.
func (r *Repository) Stats() string {
	s := r.pool.Stat()
	return fmt.Sprintf("total=%d idle=%d acquired=%d", s.TotalConns(), s.IdleConns(), s.AcquiredConns())
}
