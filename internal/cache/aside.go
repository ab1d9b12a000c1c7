package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	// DefaultTTL is the lifetime of entries written by Remember.
	DefaultTTL = time.Hour

	// scanBatchSize is the COUNT hint for SCAN during invalidation.
	scanBatchSize = 100
)

// Common cache errors.
var (
	ErrCacheMiss = errors.New("cache miss")
)

// Get returns the value stored under key.
// Returns ErrCacheMiss if not found.
func (c *Cache) Get(ctx context.Context, key string) (string, error) {
	val, err := c.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrCacheMiss
	}
	if err != nil {
		return "", fmt.Errorf("redis get failed: %w", err)
	}
	return val, nil
}

// Set stores value under key with the given TTL.
func (c *Cache) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	if err := c.client.Set(ctx, key, value, ttl).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

// Remember returns the JSON value cached under key, or computes it with fn
// and caches the result for DefaultTTL. Errors from fn are never cached.
// A failed write after a miss is logged and the computed value is still
// returned.
func Remember[T any](ctx context.Context, c *Cache, key string, fn func(context.Context) (T, error)) (T, error) {
	var zero T

	raw, err := c.Get(ctx, key)
	switch {
	case err == nil:
		var cached T
		if jsonErr := json.Unmarshal([]byte(raw), &cached); jsonErr == nil {
			c.metrics.IncCacheHit()
			return cached, nil
		}
		c.logger.Warn("cache_payload_corrupt", "key", key)
	case !errors.Is(err, ErrCacheMiss):
		return zero, err
	}

	c.metrics.IncCacheMiss()

	val, err := fn(ctx)
	if err != nil {
		return zero, err
	}

	payload, err := json.Marshal(val)
	if err != nil {
		c.logger.Warn("cache_encode_failed", "key", key, "error", err)
		c.metrics.IncCacheWriteFailure()
		return val, nil
	}
	if err := c.Set(ctx, key, string(payload), DefaultTTL); err != nil {
		c.logger.Warn("cache_write_failed", "key", key, "error", err)
		c.metrics.IncCacheWriteFailure()
	}

	return val, nil
}

// DeleteCache removes every key matching keyPattern and returns how many
// were removed. Only '*' is a wildcard; a pattern without one is deleted
// as an exact key.
func (c *Cache) DeleteCache(ctx context.Context, keyPattern string) (int64, error) {
	if !strings.Contains(keyPattern, "*") {
		n, err := c.client.Del(ctx, keyPattern).Result()
		if err != nil {
			return 0, fmt.Errorf("redis del failed: %w", err)
		}
		c.metrics.AddCacheInvalidated(n)
		return n, nil
	}

	match := globPattern(keyPattern)

	var (
		cursor  uint64
		removed int64
	)
	for {
		keys, next, err := c.client.Scan(ctx, cursor, match, scanBatchSize).Result()
		if err != nil {
			return removed, fmt.Errorf("redis scan failed: %w", err)
		}
		if len(keys) > 0 {
			n, err := c.client.Del(ctx, keys...).Result()
			if err != nil {
				return removed, fmt.Errorf("redis del failed: %w", err)
			}
			removed += n
		}
		cursor = next
		if cursor == 0 {
			break
		}
	}

	c.metrics.AddCacheInvalidated(removed)
	return removed, nil
}

// Invalidate deletes every pattern in order, stopping at the first error.
func (c *Cache) Invalidate(ctx context.Context, patterns ...string) error {
	for _, p := range patterns {
		if _, err := c.DeleteCache(ctx, p); err != nil {
			return fmt.Errorf("invalidate %q: %w", p, err)
		}
	}
	return nil
}

// globPattern escapes every Redis glob metacharacter except '*'.
func globPattern(pattern string) string {
	var b strings.Builder
	b.Grow(len(pattern) + 4)
	for _, r := range pattern {
		switch r {
		case '?', '[', ']', '\\':
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}
