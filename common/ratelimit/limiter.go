package ratelimit

import (
	"context"
	_ "embed"
	"fmt"
	"time"

	"github.com/bleep-bloop-bloob/openupm/common/logger"
	"github.com/redis/go-redis/v9"
)

//go:embed rate_limit.lua
var rateLimitScript string

// Result contains the outcome of a rate limit check
type Result struct {
	Allowed           bool
	CurrentCount      int64
	Limit             int64
	RetryAfterSeconds int64 // 0 if allowed
}

// Limiter is a fixed-window rate limiter backed by Redis and a Lua script
type Limiter struct {
	redis  *redis.Client
	script *redis.Script
	prefix string
	limit  int64
	window time.Duration
	log    *logger.Logger
}

// NewLimiter creates a limiter allowing limit hits per key per window
func NewLimiter(client *redis.Client, keyPrefix string, limit int64, window time.Duration, log *logger.Logger) *Limiter {
	return &Limiter{
		redis:  client,
		script: redis.NewScript(rateLimitScript),
		prefix: keyPrefix,
		limit:  limit,
		window: window,
		log:    log,
	}
}

// Key returns the Redis key counting hits for name
func (l *Limiter) Key(name string) string {
	return fmt.Sprintf("%s:rate_limit:%s", l.prefix, name)
}

// Allow records a hit for name and reports whether it is within the limit
func (l *Limiter) Allow(ctx context.Context, name string) (*Result, error) {
	key := l.Key(name)
	windowSec := int64(l.window / time.Second)
	if windowSec < 1 {
		windowSec = 1
	}

	raw, err := l.script.Run(ctx, l.redis, []string{key}, l.limit, windowSec).Result()
	if err != nil {
		return nil, fmt.Errorf("rate limit check failed: %w", err)
	}

	values, ok := raw.([]interface{})
	if !ok || len(values) != 4 {
		return nil, fmt.Errorf("unexpected script result format: %v", raw)
	}
	ints := make([]int64, len(values))
	for i, v := range values {
		n, ok := v.(int64)
		if !ok {
			return nil, fmt.Errorf("unexpected script result value: %v", v)
		}
		ints[i] = n
	}

	result := &Result{
		Allowed:           ints[0] == 1,
		CurrentCount:      ints[1],
		Limit:             ints[2],
		RetryAfterSeconds: ints[3],
	}

	if !result.Allowed {
		l.log.Warn("rate limit exceeded",
			"key", key,
			"current", result.CurrentCount,
			"limit", result.Limit,
			"retry_after", result.RetryAfterSeconds)
	}

	return result, nil
}

// Reset clears the counter for name
func (l *Limiter) Reset(ctx context.Context, name string) error {
	return l.redis.Del(ctx, l.Key(name)).Err()
}
