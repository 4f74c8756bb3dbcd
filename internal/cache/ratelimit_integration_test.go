//go:build integration

package cache

import (
	"context"
	"testing"

	"github.com/hpnchanel/usersvc/internal/testutil"
)

func TestIntegrationCheckIPRateLimit_ExhaustsBurst(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration tests in short mode")
	}

	ctx := context.Background()
	redisURL := testutil.RequireEnv(t, "REDIS_URL")

	c, err := New(ctx, redisURL)
	if err != nil {
		t.Fatalf("connect redis: %v", err)
	}
	t.Cleanup(func() { _ = c.Close() })

	ip := testutil.UniqueID("ip")
	t.Cleanup(func() {
		_ = c.client.Del(ctx, rateLimitIPPrefix+hashIP(ip)).Err()
	})

	const burst = 3
	for i := 0; i < burst; i++ {
		result, err := c.CheckIPRateLimit(ctx, ip, 1, burst)
		if err != nil {
			t.Fatalf("check %d: %v", i, err)
		}
		if !result.Allowed {
			t.Fatalf("request %d should be allowed within burst", i)
		}
	}

	result, err := c.CheckIPRateLimit(ctx, ip, 1, burst)
	if err != nil {
		t.Fatalf("final check: %v", err)
	}
	if result.Allowed {
		t.Error("request beyond burst should be rejected")
	}
	if result.RetryAfter <= 0 {
		t.Errorf("expected positive RetryAfter, got %s", result.RetryAfter)
	}
}

func TestIntegrationNew_BadURL(t *testing.T) {
	if _, err := New(context.Background(), "not-a-redis-url"); err == nil {
		t.Fatal("expected error for invalid Redis URL")
	}
}
