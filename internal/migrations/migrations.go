// Package migrations applies the embedded, versioned schema migrations.
package migrations

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	pgxmigrate "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"

	"github.com/hpnchanel/usersvc/internal/apperr"
)

// MigrationsTable records the applied version.
const MigrationsTable = "schema_migrations"

//go:embed sql/*.sql
var files embed.FS

// Files returns the embedded migration files rooted at their directory.
func Files() fs.FS {
	sub, err := fs.Sub(files, "sql")
	if err != nil {
		panic(err)
	}
	return sub
}

// Apply runs every pending up migration in version order.
// A failure part way leaves the schema as the failed migration left it;
// no rollback is attempted.
func Apply(ctx context.Context, pool *pgxpool.Pool, logger *slog.Logger) error {
	logger.Info("running database migrations")

	m, err := newMigrator(pool, logger)
	if err != nil {
		logger.Error("database migration failed", slog.String("error", err.Error()))
		return apperr.Migration("failed to initialize migrations", err)
	}
	defer func() {
		if srcErr, dbErr := m.Close(); srcErr != nil || dbErr != nil {
			logger.Warn("failed to close migrator",
				slog.Any("source_error", srcErr),
				slog.Any("database_error", dbErr),
			)
		}
	}()

	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			m.GracefulStop <- true
		case <-done:
		}
	}()

	err = m.Up()
	switch {
	case errors.Is(err, migrate.ErrNoChange):
		logger.Info("database schema is up to date")
	case err != nil:
		logger.Error("database migration failed", slog.String("error", err.Error()))
		return apperr.Migration("failed to apply migrations", err)
	}

	version, dirty, err := m.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		return apperr.Migration("failed to read migration version", err)
	}
	if dirty {
		return apperr.Migration("failed to apply migrations", fmt.Errorf("schema version %d is dirty", version))
	}

	logger.Info("database migrations completed successfully", slog.Uint64("version", uint64(version)))
	return nil
}

func newMigrator(pool *pgxpool.Pool, logger *slog.Logger) (*migrate.Migrate, error) {
	src, err := iofs.New(files, "sql")
	if err != nil {
		return nil, fmt.Errorf("open migration source: %w", err)
	}

	db := stdlib.OpenDBFromPool(pool)
	driver, err := pgxmigrate.WithInstance(db, &pgxmigrate.Config{
		MigrationsTable: MigrationsTable,
	})
	if err != nil {
		_ = src.Close()
		_ = db.Close()
		return nil, fmt.Errorf("open migration driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", src, "pgx5", driver)
	if err != nil {
		_ = src.Close()
		_ = driver.Close()
		return nil, fmt.Errorf("create migrator: %w", err)
	}
	m.Log = &slogAdapter{logger: logger}

	return m, nil
}

// slogAdapter satisfies migrate.Logger.
type slogAdapter struct {
	logger *slog.Logger
}

func (l *slogAdapter) Printf(format string, v ...any) {
	l.logger.Info(strings.TrimSpace(fmt.Sprintf(format, v...)), slog.String("component", "migrate"))
}

func (l *slogAdapter) Verbose() bool {
	return false
}
