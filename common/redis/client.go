package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/bleep-bloop-bloob/openupm/common/config"
	"github.com/bleep-bloop-bloob/openupm/common/logger"
	"github.com/redis/go-redis/v9"
)

const pingTimeout = 3 * time.Second

// Client is the shared Redis connection. Components that store keys in Redis
// namespace them under Prefix.
type Client struct {
	raw    *redis.Client
	addr   string
	prefix string
	log    *logger.Logger
}

// Connect dials Redis and verifies the connection with a PING
func Connect(ctx context.Context, cfg config.RedisConfig, log *logger.Logger) (*Client, error) {
	raw := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	c := &Client{
		raw:    raw,
		addr:   cfg.Addr(),
		prefix: cfg.KeyPrefix,
		log:    log,
	}
	if err := c.Ping(ctx); err != nil {
		raw.Close()
		return nil, err
	}

	log.Info("redis connected", "addr", c.addr, "db", cfg.DB, "key_prefix", c.prefix)
	return c, nil
}

// Raw returns the go-redis client for scripts and commands
func (c *Client) Raw() *redis.Client {
	return c.raw
}

// Prefix returns the key namespace
func (c *Client) Prefix() string {
	return c.prefix
}

// Ping checks the connection
func (c *Client) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	if err := c.raw.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("failed to ping redis at %s: %w", c.addr, err)
	}
	return nil
}

// Close closes the connection pool
func (c *Client) Close() error {
	c.log.Info("closing redis connection", "addr", c.addr)
	return c.raw.Close()
}
