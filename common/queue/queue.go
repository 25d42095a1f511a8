package queue

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/bleep-bloop-bloob/openupm/common/logger"
)

// JobQueue accepts build jobs. Enqueue must be idempotent on JobSpec.ID: a
// second job with a live id is dropped and reported as not added.
type JobQueue interface {
	Enqueue(ctx context.Context, job JobSpec) (bool, error)
	Close() error
}

// JobPayload identifies the release a job builds
type JobPayload struct {
	PackageName string `json:"packageName"`
	Version     string `json:"version"`
}

// JobSpec describes a job handed to the queue
type JobSpec struct {
	ID      string
	Name    string
	Payload JobPayload
	Delay   time.Duration
	Timeout time.Duration
}

// Validate checks the fields every queue implementation relies on
func (j JobSpec) Validate() error {
	if j.ID == "" {
		return fmt.Errorf("job id is required")
	}
	if j.Name == "" {
		return fmt.Errorf("job name is required")
	}
	if j.Delay < 0 {
		return fmt.Errorf("job %s: negative delay %s", j.ID, j.Delay)
	}
	return nil
}

// MemoryQueue is an in-process queue for development and tests
type MemoryQueue struct {
	jobs  []JobSpec
	index map[string]int
	mu    sync.RWMutex
	log   *logger.Logger
}

// NewMemoryQueue creates a new in-memory queue
func NewMemoryQueue(log *logger.Logger) *MemoryQueue {
	return &MemoryQueue{
		index: make(map[string]int),
		log:   log,
	}
}

// Enqueue stores the job unless one with the same id is already queued
func (q *MemoryQueue) Enqueue(ctx context.Context, job JobSpec) (bool, error) {
	if err := job.Validate(); err != nil {
		return false, err
	}
	if err := ctx.Err(); err != nil {
		return false, err
	}

	q.mu.Lock()
	defer q.mu.Unlock()

	if _, exists := q.index[job.ID]; exists {
		q.log.Debug("job already queued", "job_id", job.ID)
		return false, nil
	}

	q.index[job.ID] = len(q.jobs)
	q.jobs = append(q.jobs, job)
	return true, nil
}

// Jobs returns the queued jobs in insertion order
func (q *MemoryQueue) Jobs() []JobSpec {
	q.mu.RLock()
	defer q.mu.RUnlock()

	jobs := make([]JobSpec, len(q.jobs))
	copy(jobs, q.jobs)
	return jobs
}

// Close drops all queued jobs
func (q *MemoryQueue) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.log.Info("closing memory queue", "pending_jobs", len(q.jobs))
	q.jobs = nil
	q.index = make(map[string]int)
	return nil
}
