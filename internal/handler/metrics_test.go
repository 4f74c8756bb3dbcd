package handler

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/hpnchanel/usersvc/internal/metrics"
)

func TestMetricsHandler(t *testing.T) {
	rec := metrics.NewInMemory()
	rec.IncUserCreated()
	rec.IncUserCreated()
	rec.IncUserDeleted()
	rec.IncErrorResponse("VALIDATION_ERROR")
	rec.IncErrorResponse("NOT_FOUND")

	h := NewMetricsHandler(rec)
	w := httptest.NewRecorder()
	h.Metrics(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}

	body := w.Body.String()
	for _, want := range []string{
		"usersvc_users_created_total 2\n",
		"usersvc_users_updated_total 0\n",
		"usersvc_users_deleted_total 1\n",
		`usersvc_error_responses_total{code="NOT_FOUND"} 1`,
		`usersvc_error_responses_total{code="VALIDATION_ERROR"} 1`,
	} {
		if !strings.Contains(body, want) {
			t.Errorf("metrics output missing %q:\n%s", want, body)
		}
	}

	if strings.Index(body, "NOT_FOUND") > strings.Index(body, "VALIDATION_ERROR") {
		t.Error("error codes should be sorted")
	}
}

func TestMetricsHandler_NoSnapshotter(t *testing.T) {
	h := NewMetricsHandler(nil)
	w := httptest.NewRecorder()
	h.Metrics(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("expected status 503, got %d", w.Code)
	}
}
