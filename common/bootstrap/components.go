package bootstrap

import (
	"context"
	"errors"
	"fmt"

	"github.com/bleep-bloop-bloob/openupm/common/config"
	"github.com/bleep-bloop-bloob/openupm/common/db"
	"github.com/bleep-bloop-bloob/openupm/common/logger"
	"github.com/bleep-bloop-bloob/openupm/common/queue"
	rediscommon "github.com/bleep-bloop-bloob/openupm/common/redis"
)

// Components holds the initialized dependencies of a command. DB, Redis and
// Queue are nil when skipped; Redis is only connected for the redis queue.
type Components struct {
	Config *config.Config
	Logger *logger.Logger
	DB     *db.DB
	Redis  *rediscommon.Client
	Queue  queue.JobQueue

	cleanupFuncs []func() error
}

// Shutdown closes components in reverse order of opening. Safe to call more
// than once.
func (c *Components) Shutdown(ctx context.Context) error {
	if len(c.cleanupFuncs) == 0 {
		return nil
	}
	c.Logger.Info("shutting down components")

	var errs []error
	for i := len(c.cleanupFuncs) - 1; i >= 0; i-- {
		if err := c.cleanupFuncs[i](); err != nil {
			errs = append(errs, err)
			c.Logger.Warn("cleanup error", "error", err)
		}
	}
	c.cleanupFuncs = nil

	if len(errs) > 0 {
		return fmt.Errorf("shutdown errors: %w", errors.Join(errs...))
	}

	c.Logger.Info("shutdown complete")
	return nil
}

// Health checks every opened backend and reports all failures together
func (c *Components) Health(ctx context.Context) error {
	var errs []error

	if c.DB != nil {
		if err := c.DB.Health(ctx); err != nil {
			errs = append(errs, fmt.Errorf("database unhealthy: %w", err))
		}
	}
	if c.Redis != nil {
		if err := c.Redis.Ping(ctx); err != nil {
			errs = append(errs, fmt.Errorf("redis unhealthy: %w", err))
		}
	}

	return errors.Join(errs...)
}

func (c *Components) queueType() string {
	switch c.Queue.(type) {
	case nil:
		return "none"
	case *queue.MemoryQueue:
		return "memory"
	case *queue.RedisQueue:
		return "redis"
	default:
		return "custom"
	}
}

func (c *Components) addCleanup(fn func() error) {
	c.cleanupFuncs = append(c.cleanupFuncs, fn)
}
