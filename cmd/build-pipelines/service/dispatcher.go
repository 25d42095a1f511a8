package service

import (
	"context"
	"fmt"
	"time"

	"github.com/bleep-bloop-bloob/openupm/common/config"
	"github.com/bleep-bloop-bloob/openupm/common/logger"
	"github.com/bleep-bloop-bloob/openupm/common/models"
	"github.com/bleep-bloop-bloob/openupm/common/queue"
)

// BuildReleaseJobID is the queue identity of a release build. Re-dispatching a
// release that is still queued reuses the id and is dropped by the queue.
func BuildReleaseJobID(jobName, packageName, version string) string {
	return fmt.Sprintf("%s:%s:%s", jobName, packageName, version)
}

// JobDispatcher enqueues build jobs for releases that still need one
type JobDispatcher struct {
	queue     queue.JobQueue
	name      string
	interval  time.Duration
	timeout   time.Duration
	retryable map[models.ReleaseReason]struct{}
	log       *logger.Logger
}

// NewJobDispatcher creates a dispatcher for the build-release job
func NewJobDispatcher(q queue.JobQueue, cfg config.BuildReleaseJobConfig, log *logger.Logger) *JobDispatcher {
	retryable := make(map[models.ReleaseReason]struct{}, len(cfg.RetryableReasons))
	for _, reason := range cfg.RetryableReasons {
		retryable[models.ReleaseReason(reason)] = struct{}{}
	}

	return &JobDispatcher{
		queue:     q,
		name:      cfg.Name,
		interval:  cfg.Interval,
		timeout:   cfg.Timeout,
		retryable: retryable,
		log:       log,
	}
}

// NeedsBuild reports whether a release should be (re)built
func (d *JobDispatcher) NeedsBuild(release *models.Release) bool {
	switch release.State {
	case models.ReleaseStateSucceeded:
		return false
	case models.ReleaseStateFailed:
		_, ok := d.retryable[release.Reason]
		return ok
	default:
		return true
	}
}

// Dispatch enqueues one job per release needing a build, in order. The k-th
// enqueued job is delayed by k intervals so builds start staggered. It returns
// how many jobs were handed to the queue.
func (d *JobDispatcher) Dispatch(ctx context.Context, releases []*models.Release) (int, error) {
	log := d.log.WithContext(ctx)

	count := 0
	for _, release := range releases {
		if !d.NeedsBuild(release) {
			continue
		}

		job := queue.JobSpec{
			ID:   BuildReleaseJobID(d.name, release.PackageName, release.Version),
			Name: d.name,
			Payload: queue.JobPayload{
				PackageName: release.PackageName,
				Version:     release.Version,
			},
			Delay:   d.interval * time.Duration(count),
			Timeout: d.timeout,
		}

		added, err := d.queue.Enqueue(ctx, job)
		if err != nil {
			return count, fmt.Errorf("failed to enqueue %s: %w", job.ID, err)
		}
		count++

		log.WithRelease(release.PackageName, release.Version).Info("dispatched build job",
			"job_id", job.ID,
			"delay", job.Delay,
			"state", release.State,
			"added", added,
		)
	}

	return count, nil
}
