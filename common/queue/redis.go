package queue

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"time"

	"github.com/bleep-bloop-bloob/openupm/common/logger"
	"github.com/redis/go-redis/v9"
)

//go:embed enqueue.lua
var enqueueScript string

// RedisQueue stores jobs in Redis: a hash per job, a wait list for jobs ready
// now and a sorted set of delayed jobs scored by their due time in ms.
type RedisQueue struct {
	redis  *redis.Client
	script *redis.Script
	prefix string
	log    *logger.Logger
	now    func() time.Time
}

// NewRedisQueue creates a queue named name under keyPrefix
func NewRedisQueue(redisClient *redis.Client, keyPrefix, name string, log *logger.Logger) *RedisQueue {
	return &RedisQueue{
		redis:  redisClient,
		script: redis.NewScript(enqueueScript),
		prefix: fmt.Sprintf("%s:%s", keyPrefix, name),
		log:    log,
		now:    time.Now,
	}
}

// JobKey returns the hash key holding a job
func (q *RedisQueue) JobKey(id string) string {
	return fmt.Sprintf("%s:job:%s", q.prefix, id)
}

// WaitKey returns the list of jobs ready to run
func (q *RedisQueue) WaitKey() string {
	return q.prefix + ":wait"
}

// DelayedKey returns the sorted set of delayed jobs
func (q *RedisQueue) DelayedKey() string {
	return q.prefix + ":delayed"
}

// Enqueue atomically adds the job unless its id is already present
func (q *RedisQueue) Enqueue(ctx context.Context, job JobSpec) (bool, error) {
	if err := job.Validate(); err != nil {
		return false, err
	}

	data, err := json.Marshal(job.Payload)
	if err != nil {
		return false, fmt.Errorf("failed to encode job payload: %w", err)
	}

	keys := []string{q.JobKey(job.ID), q.WaitKey(), q.DelayedKey()}
	added, err := q.script.Run(ctx, q.redis, keys,
		job.ID,
		job.Name,
		string(data),
		job.Delay.Milliseconds(),
		job.Timeout.Milliseconds(),
		q.now().UnixMilli(),
	).Int64()
	if err != nil {
		q.log.Error("enqueue failed", "job_id", job.ID, "error", err)
		return false, fmt.Errorf("failed to enqueue job %s: %w", job.ID, err)
	}

	q.log.Debug("enqueue", "job_id", job.ID, "added", added == 1, "delay", job.Delay)
	return added == 1, nil
}

// Close is a no-op; the Redis client is owned by the caller
func (q *RedisQueue) Close() error {
	return nil
}
