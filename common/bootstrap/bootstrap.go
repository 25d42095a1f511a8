package bootstrap

import (
	"context"
	"fmt"

	"github.com/bleep-bloop-bloob/openupm/common/config"
	"github.com/bleep-bloop-bloob/openupm/common/db"
	"github.com/bleep-bloop-bloob/openupm/common/logger"
	"github.com/bleep-bloop-bloob/openupm/common/queue"
	rediscommon "github.com/bleep-bloop-bloob/openupm/common/redis"
)

// Setup initializes the components a command needs: configuration, logger,
// the release database and the build job queue. On error, whatever was
// already opened is closed.
func Setup(ctx context.Context, serviceName string, opts ...Option) (*Components, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}

	c := &Components{Config: o.customConfig, Logger: o.customLogger}

	if c.Config == nil {
		cfg, err := config.Load(serviceName)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		c.Config = cfg
	}
	if c.Logger == nil {
		c.Logger = logger.New(c.Config.Service.LogLevel, c.Config.Service.LogFormat)
	}

	c.Logger.Info("initializing service",
		"service", serviceName,
		"environment", c.Config.Service.Environment,
	)

	if !o.skipDB {
		if err := c.openDB(ctx, o.dbInitHook); err != nil {
			c.Shutdown(ctx)
			return nil, err
		}
	}

	if !o.skipQueue {
		if err := c.openQueue(ctx, o.queue); err != nil {
			c.Shutdown(ctx)
			return nil, err
		}
	}

	c.Logger.Info("service initialization complete",
		"service", serviceName,
		"db", c.DB != nil,
		"queue", c.queueType(),
		"redis", c.Redis != nil,
	)

	return c, nil
}

func (c *Components) openDB(ctx context.Context, initHook func(context.Context, *db.DB) error) error {
	c.Logger.Info("connecting to database")

	database, err := db.New(ctx, c.Config.Database, c.Logger)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	c.DB = database
	c.addCleanup(func() error {
		database.Close()
		return nil
	})

	if initHook != nil {
		c.Logger.Info("running database init hook")
		if err := initHook(ctx, database); err != nil {
			return fmt.Errorf("database init hook failed: %w", err)
		}
	}
	return nil
}

func (c *Components) openQueue(ctx context.Context, injected queue.JobQueue) error {
	qc := c.Config.Queue

	switch {
	case injected != nil:
		c.Queue = injected
	case qc.Type == "memory":
		c.Queue = queue.NewMemoryQueue(c.Logger)
	case qc.Type == "redis":
		client, err := rediscommon.Connect(ctx, c.Config.Redis, c.Logger)
		if err != nil {
			return fmt.Errorf("failed to connect to redis: %w", err)
		}
		c.Redis = client
		c.addCleanup(client.Close)

		c.Queue = queue.NewRedisQueue(client.Raw(), client.Prefix(), qc.Name, c.Logger)
	default:
		return fmt.Errorf("unknown queue type: %s", qc.Type)
	}

	c.Logger.Info("job queue ready", "type", c.queueType(), "name", qc.Name)
	c.addCleanup(c.Queue.Close)
	return nil
}
