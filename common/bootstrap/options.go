package bootstrap

import (
	"context"

	"github.com/bleep-bloop-bloob/openupm/common/config"
	"github.com/bleep-bloop-bloob/openupm/common/db"
	"github.com/bleep-bloop-bloob/openupm/common/logger"
	"github.com/bleep-bloop-bloob/openupm/common/queue"
)

// Option configures Setup
type Option func(*options)

type options struct {
	skipDB       bool
	skipQueue    bool
	customLogger *logger.Logger
	customConfig *config.Config
	queue        queue.JobQueue
	dbInitHook   func(context.Context, *db.DB) error
}

// WithoutDB skips the database
func WithoutDB() Option {
	return func(o *options) { o.skipDB = true }
}

// WithoutQueue skips the job queue, and with it Redis
func WithoutQueue() Option {
	return func(o *options) { o.skipQueue = true }
}

// WithCustomLogger uses log instead of building one from config
func WithCustomLogger(log *logger.Logger) Option {
	return func(o *options) { o.customLogger = log }
}

// WithCustomConfig uses cfg instead of loading from env
func WithCustomConfig(cfg *config.Config) Option {
	return func(o *options) { o.customConfig = cfg }
}

// WithQueue uses q instead of the configured queue type. Setup still closes
// it on Shutdown.
func WithQueue(q queue.JobQueue) Option {
	return func(o *options) { o.queue = q }
}

// WithDBInitHook runs hook once the database is connected, e.g. to apply the
// release schema
func WithDBInitHook(hook func(context.Context, *db.DB) error) Option {
	return func(o *options) { o.dbInitHook = hook }
}

func defaultOptions() *options {
	return &options{}
}
