package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// rateLimitPrefix namespaces token buckets away from cached responses,
// which are keyed by request URI and always start with "/".
const rateLimitPrefix = "ratelimit:"

// RateLimitResult contains the result of a rate limit check.
type RateLimitResult struct {
	Allowed   bool
	Remaining int64
	// ResetAt is when the bucket will be full again.
	ResetAt time.Time
	// RetryAfter is zero when Allowed.
	RetryAfter time.Duration
}

// takeTokenScript refills a bucket for the time elapsed since its last use
// and takes one token if available. Clock values are unix milliseconds.
// Returns {allowed, wait_ms, remaining, full_ms}.
var takeTokenScript = redis.NewScript(`
local key = KEYS[1]
local rate = tonumber(ARGV[1])
local burst = tonumber(ARGV[2])
local now = tonumber(ARGV[3])
local ttl = tonumber(ARGV[4])

local state = redis.call('HMGET', key, 'tokens', 'ts')
local tokens = tonumber(state[1]) or burst
local ts = tonumber(state[2]) or now

if now > ts then
	tokens = math.min(burst, tokens + (now - ts) * rate)
end

local allowed = 0
local wait = 0
if tokens >= 1 then
	tokens = tokens - 1
	allowed = 1
else
	wait = math.ceil((1 - tokens) / rate)
end

local full = math.ceil((burst - tokens) / rate)

redis.call('HSET', key, 'tokens', tostring(tokens), 'ts', now)
redis.call('PEXPIRE', key, ttl)

return {allowed, wait, math.floor(tokens), full}
`)

// CheckIPRateLimit takes a token from the bucket of ip within scope (for
// example "login"). The bucket holds burst tokens and refills at
// ratePerSecond. The IP is hashed so raw addresses are never stored.
// Store errors are returned; callers decide whether to fail open.
func (c *Cache) CheckIPRateLimit(ctx context.Context, scope, ip string, ratePerSecond, burst int) (*RateLimitResult, error) {
	if ratePerSecond <= 0 || burst <= 0 {
		return nil, fmt.Errorf("invalid rate limit: %d/s with burst %d", ratePerSecond, burst)
	}
	return c.takeToken(ctx, rateLimitKey(scope, ip), ratePerSecond, burst, time.Now())
}

func (c *Cache) takeToken(ctx context.Context, key string, ratePerSecond, burst int, now time.Time) (*RateLimitResult, error) {
	perMilli := float64(ratePerSecond) / 1000
	// A bucket left alone this long is full again, so its key can go.
	ttl := time.Duration(burst)*time.Second/time.Duration(ratePerSecond) + time.Second

	reply, err := takeTokenScript.Run(ctx, c.client,
		[]string{key},
		perMilli, burst, now.UnixMilli(), ttl.Milliseconds(),
	).Int64Slice()
	if err != nil {
		return nil, fmt.Errorf("rate limit %s: %w", key, err)
	}
	if len(reply) != 4 {
		return nil, fmt.Errorf("rate limit %s: unexpected reply %v", key, reply)
	}

	return &RateLimitResult{
		Allowed:    reply[0] == 1,
		Remaining:  reply[2],
		ResetAt:    now.Add(time.Duration(reply[3]) * time.Millisecond),
		RetryAfter: time.Duration(reply[1]) * time.Millisecond,
	}, nil
}

func rateLimitKey(scope, ip string) string {
	return rateLimitPrefix + scope + ":" + hashIP(ip)
}

// hashIP creates a truncated SHA256 hash of an IP address.
func hashIP(ip string) string {
	hash := sha256.Sum256([]byte(ip))
	return hex.EncodeToString(hash[:8])
}
