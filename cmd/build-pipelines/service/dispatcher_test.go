package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/bleep-bloop-bloob/openupm/common/config"
	"github.com/bleep-bloop-bloob/openupm/common/logger"
	"github.com/bleep-bloop-bloob/openupm/common/models"
	"github.com/bleep-bloop-bloob/openupm/common/queue"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testJobConfig() config.BuildReleaseJobConfig {
	return config.BuildReleaseJobConfig{
		Name:             "build-release",
		Interval:         30 * time.Second,
		Timeout:          time.Hour,
		RetryableReasons: []string{"build_timeout", "internal_error"},
	}
}

func TestBuildReleaseJobID(t *testing.T) {
	assert.Equal(t, "build-release:com.example.pkg:1.0.0-preview.1",
		BuildReleaseJobID("build-release", "com.example.pkg", "1.0.0-preview.1"))
}

func TestDispatch_StaggersOnlyEnqueuedJobs(t *testing.T) {
	q := queue.NewMemoryQueue(logger.Discard())
	dispatcher := NewJobDispatcher(q, testJobConfig(), logger.Discard())

	releases := []*models.Release{
		release("1.0.0", "v1.0.0", "a", models.ReleaseStatePending, models.ReasonNone),
		release("1.1.0", "v1.1.0", "b", models.ReleaseStateSucceeded, models.ReasonNone),
		release("1.2.0", "v1.2.0", "c", models.ReleaseStateFailed, models.ReasonBuildTimeout),
		release("1.3.0", "v1.3.0", "d", models.ReleaseStateFailed, models.ReasonPackageNameNotMatch),
		release("1.4.0", "v1.4.0", "e", models.ReleaseStatePending, models.ReasonNone),
	}

	count, err := dispatcher.Dispatch(context.Background(), releases)
	require.NoError(t, err)
	assert.Equal(t, 3, count)

	jobs := q.Jobs()
	require.Len(t, jobs, 3)

	expected := []struct {
		id    string
		delay time.Duration
	}{
		{"build-release:com.example.pkg:1.0.0", 0},
		{"build-release:com.example.pkg:1.2.0", 30 * time.Second},
		{"build-release:com.example.pkg:1.4.0", 60 * time.Second},
	}
	for i, want := range expected {
		assert.Equal(t, want.id, jobs[i].ID)
		assert.Equal(t, want.delay, jobs[i].Delay)
		assert.Equal(t, "build-release", jobs[i].Name)
		assert.Equal(t, time.Hour, jobs[i].Timeout)
	}
	assert.Equal(t, queue.JobPayload{PackageName: "com.example.pkg", Version: "1.2.0"}, jobs[1].Payload)
}

func TestDispatch_RepeatedRunIsNoopForQueue(t *testing.T) {
	q := queue.NewMemoryQueue(logger.Discard())
	dispatcher := NewJobDispatcher(q, testJobConfig(), logger.Discard())
	releases := []*models.Release{
		release("1.0.0", "v1.0.0", "a", models.ReleaseStatePending, models.ReasonNone),
		release("2.0.0", "v2.0.0", "b", models.ReleaseStatePending, models.ReasonNone),
	}

	_, err := dispatcher.Dispatch(context.Background(), releases)
	require.NoError(t, err)
	_, err = dispatcher.Dispatch(context.Background(), releases)
	require.NoError(t, err)

	assert.Len(t, q.Jobs(), 2)
}

func TestNeedsBuild(t *testing.T) {
	dispatcher := NewJobDispatcher(queue.NewMemoryQueue(logger.Discard()), testJobConfig(), logger.Discard())

	assert.True(t, dispatcher.NeedsBuild(release("1.0.0", "v1.0.0", "a", models.ReleaseStatePending, models.ReasonNone)))
	assert.False(t, dispatcher.NeedsBuild(release("1.0.0", "v1.0.0", "a", models.ReleaseStateSucceeded, models.ReasonNone)))
	assert.True(t, dispatcher.NeedsBuild(release("1.0.0", "v1.0.0", "a", models.ReleaseStateFailed, models.ReasonInternalError)))
	assert.False(t, dispatcher.NeedsBuild(release("1.0.0", "v1.0.0", "a", models.ReleaseStateFailed, models.ReasonVersionConflict)))
}

type failingQueue struct {
	calls int
	err   error
}

func (q *failingQueue) Enqueue(ctx context.Context, job queue.JobSpec) (bool, error) {
	q.calls++
	return false, q.err
}

func (q *failingQueue) Close() error { return nil }

func TestDispatch_EnqueueErrorPropagatesWithoutRetry(t *testing.T) {
	boom := errors.New("redis down")
	q := &failingQueue{err: boom}
	dispatcher := NewJobDispatcher(q, testJobConfig(), logger.Discard())

	releases := []*models.Release{
		release("1.0.0", "v1.0.0", "a", models.ReleaseStatePending, models.ReasonNone),
		release("2.0.0", "v2.0.0", "b", models.ReleaseStatePending, models.ReasonNone),
	}
	_, err := dispatcher.Dispatch(context.Background(), releases)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 1, q.calls)
}
