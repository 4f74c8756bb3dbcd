package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestKindOf(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want Kind
	}{
		{"not found", NotFound("user %s not found", "abc"), KindNotFound},
		{"wrapped not found", fmt.Errorf("get: %w", NotFound("missing")), KindNotFound},
		{"validation", Validation("username is required", nil), KindValidation},
		{"connection", Connection("ping failed", errors.New("refused")), KindConnection},
		{"migration", Migration("apply failed", errors.New("syntax")), KindMigration},
		{"store", Store("insert failed", errors.New("23505")), KindStore},
		{"plain error", errors.New("boom"), KindStore},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := KindOf(tt.err); got != tt.want {
				t.Errorf("KindOf() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestHTTPStatus(t *testing.T) {
	t.Parallel()

	tests := map[Kind]int{
		KindNotFound:   http.StatusNotFound,
		KindValidation: http.StatusBadRequest,
		KindConnection: http.StatusInternalServerError,
		KindMigration:  http.StatusInternalServerError,
		KindStore:      http.StatusInternalServerError,
	}

	for kind, want := range tests {
		if got := HTTPStatus(kind); got != want {
			t.Errorf("HTTPStatus(%v) = %d, want %d", kind, got, want)
		}
	}
}

func TestPublicMessage_RedactsInternalDetail(t *testing.T) {
	t.Parallel()

	secret := `duplicate key value violates unique constraint "users_pkey"`
	for _, err := range []error{
		Store("failed to create user", errors.New(secret)),
		Connection("failed to ping database", errors.New(secret)),
		Migration("failed to apply migrations", errors.New(secret)),
		errors.New(secret),
	} {
		msg := PublicMessage(err)
		if msg != internalMessage {
			t.Errorf("PublicMessage(%v) = %q, want generic message", err, msg)
		}
	}
}

func TestPublicMessage_EchoesNotFound(t *testing.T) {
	t.Parallel()

	err := fmt.Errorf("update: %w", NotFound("User not found"))
	if got := PublicMessage(err); got != "User not found" {
		t.Errorf("PublicMessage() = %q", got)
	}
}

func TestErrorsIs_MatchesByKind(t *testing.T) {
	t.Parallel()

	err := fmt.Errorf("wrap: %w", NotFound("user 1 not found"))
	if !errors.Is(err, ErrNotFound) {
		t.Error("expected errors.Is to match ErrNotFound")
	}
	if errors.Is(err, ErrStore) {
		t.Error("did not expect errors.Is to match ErrStore")
	}
}

func TestError_UnwrapKeepsCause(t *testing.T) {
	t.Parallel()

	cause := errors.New("connection refused")
	err := Connection("failed to ping database", cause)
	if !errors.Is(err, cause) {
		t.Error("expected cause to be reachable through Unwrap")
	}
	if err.Error() != "failed to ping database: connection refused" {
		t.Errorf("unexpected Error(): %s", err.Error())
	}
}
