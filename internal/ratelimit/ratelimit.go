// Package ratelimit provides a Redis-backed fixed-window limiter. It is
// used to throttle credential-recovery requests per email address.
package ratelimit

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// Limiter allows at most `limit` hits per key within `window`. A nil
// Limiter, or one without a Redis client, allows everything; throttling is
// a hardening layer, not a correctness requirement.
type Limiter struct {
	client *redis.Client
	prefix string
	limit  int64
	window time.Duration
}

// NewLimiter builds a fixed-window limiter.
func NewLimiter(client *redis.Client, prefix string, limit int, window time.Duration) *Limiter {
	if prefix == "" {
		prefix = "ratelimit"
	}
	return &Limiter{client: client, prefix: prefix, limit: int64(limit), window: window}
}

// Allow records a hit for the key and reports whether it is within the
// window's budget. Redis errors fail open.
func (l *Limiter) Allow(ctx context.Context, key string) bool {
	if l == nil || l.client == nil || l.limit <= 0 {
		return true
	}

	fullKey := l.prefix + ":" + key
	count, err := l.client.Incr(ctx, fullKey).Result()
	if err != nil {
		return true
	}
	if count == 1 {
		l.client.Expire(ctx, fullKey, l.window)
	}
	return count <= l.limit
}
