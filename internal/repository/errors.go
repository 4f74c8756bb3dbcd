package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/hpnchanel/usersvc/internal/apperr"
)

// ErrUserNotFound is returned when no row matches.
var ErrUserNotFound = apperr.NotFound("User not found")

// PostgreSQL error codes inspected by the repository.
const (
	pgUniqueViolation  = "23505"
	pgNotNullViolation = "23502"
)

// classify wraps a driver error into the error taxonomy.
// Failures to reach the backend are connection errors; everything else is a store error.
func classify(msg string, err error) error {
	if isConnectionFailure(err) {
		return apperr.Connection(msg, err)
	}
	return apperr.Store(msg, err)
}

func isConnectionFailure(err error) bool {
	var connErr *pgconn.ConnectError
	if errors.As(err, &connErr) {
		return true
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	// SafeToRetry is set when the statement never reached the server.
	return pgconn.SafeToRetry(err) && !isPgError(err)
}

func isPgError(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr)
}

// isUniqueViolation checks if the error is a PostgreSQL unique constraint violation.
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation
}

// isNotNullViolation checks if the error is a PostgreSQL not-null constraint violation.
func isNotNullViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgNotNullViolation
}
