package middleware

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/hpnchanel/usersvc/internal/cache"
	"github.com/hpnchanel/usersvc/internal/metrics"
)

type fakeLimiter struct {
	result *cache.RateLimitResult
	err    error
	gotIP  string
}

func (f *fakeLimiter) CheckIPRateLimit(ctx context.Context, ip string, rps, burst int) (*cache.RateLimitResult, error) {
	f.gotIP = ip
	return f.result, f.err
}

func newRateLimited(limiter IPLimiter, rec metrics.Recorder) http.Handler {
	cfg := RateLimitConfig{
		Logger:  slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil)),
		Limiter: limiter,
		Metrics: rec,
		RPS:     1,
		Burst:   2,
	}
	return RateLimitIP(cfg)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
}

func TestRateLimitIP_Allowed(t *testing.T) {
	limiter := &fakeLimiter{result: &cache.RateLimitResult{Allowed: true, Remaining: 1, ResetAt: time.Now()}}
	handler := newRateLimited(limiter, nil)

	req := httptest.NewRequest(http.MethodGet, "/users", nil)
	req.RemoteAddr = "203.0.113.7:51234"
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("expected status 200, got %d", rec.Code)
	}
	if limiter.gotIP != "203.0.113.7" {
		t.Errorf("limiter saw ip %q, want host without port", limiter.gotIP)
	}
	if rec.Header().Get("X-RateLimit-Remaining") != "1" {
		t.Errorf("unexpected remaining header: %q", rec.Header().Get("X-RateLimit-Remaining"))
	}
}

func TestRateLimitIP_Rejected(t *testing.T) {
	limiter := &fakeLimiter{result: &cache.RateLimitResult{Allowed: false, RetryAfter: 3 * time.Second, ResetAt: time.Now()}}
	rec := metrics.NewInMemory()
	handler := newRateLimited(limiter, rec)

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/users", nil))

	if w.Code != http.StatusTooManyRequests {
		t.Errorf("expected status 429, got %d", w.Code)
	}
	if w.Header().Get("Retry-After") != "3" {
		t.Errorf("expected Retry-After 3, got %q", w.Header().Get("Retry-After"))
	}
	if rec.Snapshot().RateLimited != 1 {
		t.Error("expected rate limited counter to increase")
	}
}

func TestRateLimitIP_FailsOpen(t *testing.T) {
	handler := newRateLimited(&fakeLimiter{err: errors.New("redis down")}, nil)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/users", nil))

	if rec.Code != http.StatusOK {
		t.Errorf("expected request to pass when limiter fails, got %d", rec.Code)
	}
}
