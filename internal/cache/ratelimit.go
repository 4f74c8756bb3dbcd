package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	// rateLimitIPPrefix is the Redis key prefix for IP rate limits.
	rateLimitIPPrefix = "usersvc:ratelimit:ip:"
	// rateLimitIPTTL is the TTL for IP rate limit keys.
	rateLimitIPTTL = 10 * time.Second
)

// RateLimitResult contains the result of a rate limit check.
type RateLimitResult struct {
	Allowed    bool
	Remaining  int64
	ResetAt    time.Time
	RetryAfter time.Duration
}

// tokenBucketScript refills and consumes a token atomically.
// Returns {allowed, retry_after_seconds, remaining_tokens}.
var tokenBucketScript = redis.NewScript(`
	local key = KEYS[1]
	local rate = tonumber(ARGV[1])
	local burst = tonumber(ARGV[2])
	local now = tonumber(ARGV[3])
	local ttl = tonumber(ARGV[4])

	local data = redis.call('HMGET', key, 'tokens', 'last_update')
	local tokens = tonumber(data[1]) or burst
	local last_update = tonumber(data[2]) or now

	tokens = math.min(burst, tokens + ((now - last_update) * rate))

	local allowed = 0
	local retry_after = 0
	if tokens >= 1 then
		tokens = tokens - 1
		allowed = 1
	else
		retry_after = math.ceil((1 - tokens) / rate)
	end

	redis.call('HSET', key, 'tokens', tokens, 'last_update', now)
	redis.call('EXPIRE', key, ttl)

	return {allowed, retry_after, math.floor(tokens)}
`)

// CheckIPRateLimit checks and updates the token bucket for an IP address.
// The IP is hashed so raw addresses are never stored.
func (c *Cache) CheckIPRateLimit(ctx context.Context, ip string, ratePerSecond, burst int) (*RateLimitResult, error) {
	if ratePerSecond <= 0 || burst <= 0 {
		return &RateLimitResult{Allowed: true, Remaining: int64(burst), ResetAt: time.Now()}, nil
	}

	key := rateLimitIPPrefix + hashIP(ip)
	now := time.Now()

	result, err := tokenBucketScript.Run(ctx, c.client,
		[]string{key},
		ratePerSecond, burst, now.Unix(), int(rateLimitIPTTL.Seconds()),
	).Int64Slice()
	if err != nil {
		return nil, fmt.Errorf("rate limit script failed: %w", err)
	}
	if len(result) != 3 {
		return nil, fmt.Errorf("rate limit script returned %d values", len(result))
	}

	return &RateLimitResult{
		Allowed:    result[0] == 1,
		Remaining:  result[2],
		ResetAt:    now.Add(time.Second / time.Duration(ratePerSecond)),
		RetryAfter: time.Duration(result[1]) * time.Second,
	}, nil
}

// hashIP creates a truncated SHA256 hash of an IP address.
func hashIP(ip string) string {
	hash := sha256.Sum256([]byte(ip))
	return hex.EncodeToString(hash[:8])
}
