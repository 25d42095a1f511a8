package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/bleep-bloop-bloob/openupm/common/logger"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLimiter(t *testing.T, limit int64) (*Limiter, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewLimiter(client, "openupm", limit, time.Minute, logger.Discard()), mr
}

func TestAllow_WithinAndOverLimit(t *testing.T) {
	limiter, _ := newTestLimiter(t, 2)
	ctx := context.Background()

	for i := 1; i <= 2; i++ {
		result, err := limiter.Allow(ctx, "com.example.pkg")
		require.NoError(t, err)
		assert.True(t, result.Allowed)
		assert.Equal(t, int64(i), result.CurrentCount)
	}

	result, err := limiter.Allow(ctx, "com.example.pkg")
	require.NoError(t, err)
	assert.False(t, result.Allowed)
	assert.Equal(t, int64(2), result.Limit)
	assert.Greater(t, result.RetryAfterSeconds, int64(0))

	other, err := limiter.Allow(ctx, "com.example.other")
	require.NoError(t, err)
	assert.True(t, other.Allowed, "keys are counted independently")
}

func TestAllow_WindowExpires(t *testing.T) {
	limiter, mr := newTestLimiter(t, 1)
	ctx := context.Background()

	_, err := limiter.Allow(ctx, "pkg")
	require.NoError(t, err)
	result, err := limiter.Allow(ctx, "pkg")
	require.NoError(t, err)
	require.False(t, result.Allowed)

	mr.FastForward(time.Minute + time.Second)

	result, err = limiter.Allow(ctx, "pkg")
	require.NoError(t, err)
	assert.True(t, result.Allowed)
}

func TestReset(t *testing.T) {
	limiter, mr := newTestLimiter(t, 1)
	ctx := context.Background()

	_, err := limiter.Allow(ctx, "pkg")
	require.NoError(t, err)
	require.True(t, mr.Exists("openupm:rate_limit:pkg"))

	require.NoError(t, limiter.Reset(ctx, "pkg"))
	assert.False(t, mr.Exists("openupm:rate_limit:pkg"))
}
