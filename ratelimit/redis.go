package ratelimit

import (
	"context"
	"fmt"
	"strings"
	"time"

	rdb "github.com/redis/go-redis/v9"
)

// Redis is a fixed-window limiter (INCR + EXPIRE per window), the same
// algorithm as the teacher's internal/rate.RedisLimiter, generalized here to
// gate magic-link issuance instead of HTTP requests.
type Redis struct {
	Client *rdb.Client
	Prefix string
	Max    int64
	Window time.Duration
}

// NewRedis builds a Redis limiter. prefix defaults to "ml:issue:" when empty.
func NewRedis(client *rdb.Client, prefix string, max int64, window time.Duration) *Redis {
	if prefix == "" {
		prefix = "ml:issue:"
	}
	return &Redis{Client: client, Prefix: prefix, Max: max, Window: window}
}

// Allow satisfies magiclink.IssueLimiter. subject is typically the token's
// sub or the caller's IP — whatever dimension the host wants to bound.
func (l *Redis) Allow(subject string) (bool, error) {
	ctx := context.Background()
	now := time.Now().UTC()
	winStart := now.Truncate(l.Window)
	key := fmt.Sprintf("%s%s:%d", l.Prefix, strings.ReplaceAll(subject, " ", "_"), winStart.Unix())

	pipe := l.Client.TxPipeline()
	incr := pipe.Incr(ctx, key)
	_, err := pipe.Exec(ctx)
	if err != nil {
		return false, fmt.Errorf("ratelimit: redis incr: %w", err)
	}
	if incr.Val() == 1 {
		if err := l.Client.Expire(ctx, key, l.Window).Err(); err != nil {
			return false, fmt.Errorf("ratelimit: redis expire: %w", err)
		}
	}
	return incr.Val() <= l.Max, nil
}

// Inspect returns the current Result for subject without incrementing,
// useful for returning Retry-After headers from a host handler.
func (l *Redis) Inspect(subject string) (Result, error) {
	ctx := context.Background()
	now := time.Now().UTC()
	winStart := now.Truncate(l.Window)
	key := fmt.Sprintf("%s%s:%d", l.Prefix, strings.ReplaceAll(subject, " ", "_"), winStart.Unix())

	hits, err := l.Client.Get(ctx, key).Int64()
	if err != nil && err != rdb.Nil {
		return Result{}, fmt.Errorf("ratelimit: redis get: %w", err)
	}
	ttl, err := l.Client.TTL(ctx, key).Result()
	if err != nil {
		return Result{}, fmt.Errorf("ratelimit: redis ttl: %w", err)
	}
	remaining := l.Max - hits
	if remaining < 0 {
		remaining = 0
	}
	return Result{Allowed: hits < l.Max, Remaining: remaining, RetryAfter: ttl}, nil
}
