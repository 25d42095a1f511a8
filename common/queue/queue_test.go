package queue

import (
	"context"
	"testing"
	"time"

	"github.com/bleep-bloop-bloob/openupm/common/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testJob(id string, delay time.Duration) JobSpec {
	return JobSpec{
		ID:      id,
		Name:    "build-release",
		Payload: JobPayload{PackageName: "com.example.pkg", Version: "1.0.0"},
		Delay:   delay,
		Timeout: time.Hour,
	}
}

func TestMemoryQueue_IdempotentOnID(t *testing.T) {
	q := NewMemoryQueue(logger.Discard())
	ctx := context.Background()

	added, err := q.Enqueue(ctx, testJob("build-release:com.example.pkg:1.0.0", 0))
	require.NoError(t, err)
	assert.True(t, added)

	added, err = q.Enqueue(ctx, testJob("build-release:com.example.pkg:1.0.0", time.Minute))
	require.NoError(t, err)
	assert.False(t, added)

	added, err = q.Enqueue(ctx, testJob("build-release:com.example.pkg:1.1.0", time.Minute))
	require.NoError(t, err)
	assert.True(t, added)

	jobs := q.Jobs()
	require.Len(t, jobs, 2)
	assert.Equal(t, time.Duration(0), jobs[0].Delay, "duplicate must not overwrite the first job")
	assert.Equal(t, "build-release:com.example.pkg:1.1.0", jobs[1].ID)
}

func TestMemoryQueue_RejectsInvalidJobs(t *testing.T) {
	q := NewMemoryQueue(logger.Discard())

	_, err := q.Enqueue(context.Background(), testJob("", 0))
	assert.Error(t, err)

	_, err = q.Enqueue(context.Background(), testJob("x", -time.Second))
	assert.Error(t, err)
}

func TestMemoryQueue_CancelledContext(t *testing.T) {
	q := NewMemoryQueue(logger.Discard())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := q.Enqueue(ctx, testJob("x", 0))
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, q.Jobs())
}

func TestMemoryQueue_Close(t *testing.T) {
	q := NewMemoryQueue(logger.Discard())
	_, err := q.Enqueue(context.Background(), testJob("x", 0))
	require.NoError(t, err)

	require.NoError(t, q.Close())
	assert.Empty(t, q.Jobs())
}
