// Package apperr classifies failures into a small fixed set of kinds.
// The service layer only classifies; the transport decides status codes.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind identifies a class of failure.
type Kind int

const (
	// KindStore covers any persistence failure not otherwise classified.
	KindStore Kind = iota
	// KindNotFound means no matching record.
	KindNotFound
	// KindConnection means the pool or backend is unreachable.
	KindConnection
	// KindMigration means schema setup failed.
	KindMigration
	// KindValidation means the request could not be decoded or misses a required field.
	KindValidation
)

// String returns the kind's wire code.
func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "NOT_FOUND"
	case KindConnection:
		return "CONNECTION_ERROR"
	case KindMigration:
		return "MIGRATION_ERROR"
	case KindValidation:
		return "VALIDATION_ERROR"
	default:
		return "STORE_ERROR"
	}
}

// Error is a classified error.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports a match against another *Error of the same kind, so that
// errors.Is(err, &Error{Kind: KindNotFound}) works without comparing messages.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && t.Message == "" && t.Err == nil
}

// NotFound builds a KindNotFound error. The message may echo the resource id.
func NotFound(format string, args ...any) *Error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf(format, args...)}
}

// Validation builds a KindValidation error.
func Validation(message string, err error) *Error {
	return &Error{Kind: KindValidation, Message: message, Err: err}
}

// Connection wraps a connectivity failure.
func Connection(message string, err error) *Error {
	return &Error{Kind: KindConnection, Message: message, Err: err}
}

// Migration wraps a schema migration failure.
func Migration(message string, err error) *Error {
	return &Error{Kind: KindMigration, Message: message, Err: err}
}

// Store wraps a persistence failure.
func Store(message string, err error) *Error {
	return &Error{Kind: KindStore, Message: message, Err: err}
}

// Sentinel values for errors.Is checks.
var (
	ErrNotFound   = &Error{Kind: KindNotFound}
	ErrValidation = &Error{Kind: KindValidation}
	ErrConnection = &Error{Kind: KindConnection}
	ErrMigration  = &Error{Kind: KindMigration}
	ErrStore      = &Error{Kind: KindStore}
)

// KindOf returns the kind of err. Unclassified errors are treated as store failures.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindStore
}

// HTTPStatus maps a kind to its transport status.
func HTTPStatus(kind Kind) int {
	switch kind {
	case KindNotFound:
		return http.StatusNotFound
	case KindValidation:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

const internalMessage = "An internal error occurred"

// PublicMessage returns the text safe to send to a caller.
// Store, connection and migration detail never leaves the process.
func PublicMessage(err error) string {
	var e *Error
	if !errors.As(err, &e) {
		return internalMessage
	}
	switch e.Kind {
	case KindNotFound, KindValidation:
		return e.Message
	default:
		return internalMessage
	}
}
