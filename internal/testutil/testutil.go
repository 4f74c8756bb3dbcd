// Package testutil holds helpers shared by integration tests.
package testutil

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hpnchanel/usersvc/internal/migrations"
	"github.com/hpnchanel/usersvc/internal/model"
)

// RequireEnv returns an environment variable or skips the test if missing.
func RequireEnv(t testing.TB, key string) string {
	t.Helper()
	value := os.Getenv(key)
	if value == "" {
		t.Skipf("%s not set", key)
	}
	return value
}

const advisoryLockID int64 = 7340021

// AcquireDBLock grabs a global advisory lock to serialize DB tests across packages.
func AcquireDBLock(ctx context.Context, pool *pgxpool.Pool) (func() error, error) {
	conn, err := pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire connection: %w", err)
	}

	if _, err := conn.Exec(ctx, "SELECT pg_advisory_lock($1)", advisoryLockID); err != nil {
		conn.Release()
		return nil, fmt.Errorf("acquire advisory lock: %w", err)
	}

	unlock := func() error {
		defer conn.Release()
		if _, err := conn.Exec(ctx, "SELECT pg_advisory_unlock($1)", advisoryLockID); err != nil {
			return fmt.Errorf("release advisory lock: %w", err)
		}
		return nil
	}

	return unlock, nil
}

// NewPool connects to DATABASE_URL, takes the test lock and rebuilds the
// users schema. Everything is released when the test ends.
func NewPool(t testing.TB) *pgxpool.Pool {
	t.Helper()
	dbURL := RequireEnv(t, "DATABASE_URL")
	ctx := context.Background()

	pool, err := pgxpool.New(ctx, dbURL)
	if err != nil {
		t.Fatalf("connect postgres: %v", err)
	}
	t.Cleanup(pool.Close)

	unlock, err := AcquireDBLock(ctx, pool)
	if err != nil {
		t.Fatalf("lock database: %v", err)
	}
	t.Cleanup(func() {
		if err := unlock(); err != nil {
			t.Errorf("unlock database: %v", err)
		}
	})

	if err := ResetUsersSchema(ctx, pool); err != nil {
		t.Fatalf("reset schema: %v", err)
	}
	return pool
}

// DropUsersSchema removes the users table and the migration bookkeeping.
func DropUsersSchema(ctx context.Context, pool *pgxpool.Pool) error {
	stmt := fmt.Sprintf("DROP TABLE IF EXISTS users; DROP TABLE IF EXISTS %s", migrations.MigrationsTable)
	if _, err := pool.Exec(ctx, stmt); err != nil {
		return fmt.Errorf("drop users schema: %w", err)
	}
	return nil
}

// ResetUsersSchema drops the users schema and migrates it back up.
func ResetUsersSchema(ctx context.Context, pool *pgxpool.Pool) error {
	if err := DropUsersSchema(ctx, pool); err != nil {
		return err
	}
	if err := migrations.Apply(ctx, pool, DiscardLogger()); err != nil {
		return fmt.Errorf("apply migrations: %w", err)
	}
	return nil
}

// DiscardLogger returns a logger that drops everything.
func DiscardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// ============================================================================
// Test Data Factories
// ============================================================================

// NewTestUser creates an active user with sensible defaults.
func NewTestUser(t testing.TB, username string) *model.User {
	t.Helper()
	now := time.Now().UTC().Truncate(time.Microsecond)
	email := username + "@example.com"
	return &model.User{
		ID:        uuid.New().String(),
		Username:  username,
		Email:     &email,
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

var uniqueSeq atomic.Uint64

// UniqueID generates a unique ID for tests.
func UniqueID(prefix string) string {
	return fmt.Sprintf("%s-%d-%d", prefix, time.Now().UnixNano(), uniqueSeq.Add(1))
}
