package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all service configuration
type Config struct {
	Service  ServiceConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Queue    QueueConfig
	Jobs     JobsConfig
	Packages PackagesConfig
	Git      GitConfig
	Trigger  TriggerConfig
}

// ServiceConfig holds service-specific settings
type ServiceConfig struct {
	Name        string
	Port        int
	Environment string
	LogLevel    string
	LogFormat   string
}

// DatabaseConfig holds Postgres connection settings
type DatabaseConfig struct {
	Host        string
	Port        int
	Database    string
	User        string
	Password    string
	MaxConns    int
	MinConns    int
	MaxIdleTime time.Duration
	MaxLifetime time.Duration
}

// RedisConfig holds Redis connection settings
type RedisConfig struct {
	Host      string
	Port      int
	Password  string
	DB        int
	KeyPrefix string
}

// QueueConfig holds job queue settings
type QueueConfig struct {
	Type string // "memory" or "redis"
	Name string
}

// JobsConfig holds per-job scheduling settings
type JobsConfig struct {
	BuildRelease BuildReleaseJobConfig
}

// BuildReleaseJobConfig controls how build-release jobs are dispatched
type BuildReleaseJobConfig struct {
	Name             string
	Interval         time.Duration // stagger between consecutive jobs
	Timeout          time.Duration // passed through to the build executor
	RetryableReasons []string
}

// PackagesConfig holds package manifest settings
type PackagesConfig struct {
	ManifestDir string
	Concurrency int
}

// GitConfig holds remote tag listing settings
type GitConfig struct {
	Binary  string
	Timeout time.Duration
}

// TriggerConfig limits manual build-releases triggers per package over HTTP
type TriggerConfig struct {
	RateLimit  int64 // 0 disables the limit
	RateWindow time.Duration
}

// DefaultRetryableReasons are failure reasons worth another build attempt
var DefaultRetryableReasons = []string{
	"internal_error",
	"bad_gateway",
	"service_unavailable",
	"gateway_timeout",
	"build_timeout",
}

// Load loads configuration from environment variables
func Load(serviceName string) (*Config, error) {
	cfg := &Config{
		Service: ServiceConfig{
			Name:        serviceName,
			Port:        getEnvInt("PORT", 8080),
			Environment: getEnv("ENVIRONMENT", "development"),
			LogLevel:    getEnv("LOG_LEVEL", "info"),
			LogFormat:   getEnv("LOG_FORMAT", "text"),
		},
		Database: DatabaseConfig{
			Host:        getEnv("POSTGRES_HOST", "localhost"),
			Port:        getEnvInt("POSTGRES_PORT", 5432),
			Database:    getEnv("POSTGRES_DB", "openupm"),
			User:        getEnv("POSTGRES_USER", "openupm"),
			Password:    getEnv("POSTGRES_PASSWORD", "openupm"),
			MaxConns:    getEnvInt("POSTGRES_MAX_CONNS", 10),
			MinConns:    getEnvInt("POSTGRES_MIN_CONNS", 1),
			MaxIdleTime: getEnvDuration("POSTGRES_MAX_IDLE_TIME", 30*time.Minute),
			MaxLifetime: getEnvDuration("POSTGRES_MAX_LIFETIME", 1*time.Hour),
		},
		Redis: RedisConfig{
			Host:      getEnv("REDIS_HOST", "localhost"),
			Port:      getEnvInt("REDIS_PORT", 6379),
			Password:  getEnv("REDIS_PASSWORD", ""),
			DB:        getEnvInt("REDIS_DB", 0),
			KeyPrefix: getEnv("REDIS_KEY_PREFIX", "openupm"),
		},
		Queue: QueueConfig{
			Type: getEnv("QUEUE_TYPE", "redis"),
			Name: getEnv("QUEUE_NAME", "build-queue"),
		},
		Jobs: JobsConfig{
			BuildRelease: BuildReleaseJobConfig{
				Name:             getEnv("BUILD_RELEASE_JOB_NAME", "build-release"),
				Interval:         getEnvDuration("BUILD_RELEASE_INTERVAL", 30*time.Second),
				Timeout:          getEnvDuration("BUILD_RELEASE_TIMEOUT", 1*time.Hour),
				RetryableReasons: getEnvSlice("RETRYABLE_REASONS", DefaultRetryableReasons),
			},
		},
		Packages: PackagesConfig{
			ManifestDir: getEnv("PACKAGES_DIR", "data/packages"),
			Concurrency: getEnvInt("PACKAGES_CONCURRENCY", 4),
		},
		Git: GitConfig{
			Binary:  getEnv("GIT_BINARY", "git"),
			Timeout: getEnvDuration("GIT_LS_REMOTE_TIMEOUT", 60*time.Second),
		},
		Trigger: TriggerConfig{
			RateLimit:  int64(getEnvInt("TRIGGER_RATE_LIMIT", 6)),
			RateWindow: getEnvDuration("TRIGGER_RATE_WINDOW", time.Minute),
		},
	}

	return cfg, cfg.Validate()
}

// Validate checks if configuration is valid
func (c *Config) Validate() error {
	if c.Service.Port < 1 || c.Service.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Service.Port)
	}

	if c.Database.Host == "" {
		return fmt.Errorf("database host is required")
	}

	if c.Database.MaxConns < c.Database.MinConns {
		return fmt.Errorf("max_conns must be >= min_conns")
	}

	switch c.Queue.Type {
	case "memory", "redis":
	default:
		return fmt.Errorf("unknown queue type: %s", c.Queue.Type)
	}

	job := c.Jobs.BuildRelease
	if job.Name == "" {
		return fmt.Errorf("build release job name is required")
	}
	if job.Interval < 0 {
		return fmt.Errorf("build release interval must not be negative: %s", job.Interval)
	}
	if job.Timeout <= 0 {
		return fmt.Errorf("build release timeout must be positive: %s", job.Timeout)
	}

	if c.Packages.Concurrency < 1 {
		return fmt.Errorf("packages concurrency must be >= 1")
	}

	if c.Trigger.RateLimit < 0 {
		return fmt.Errorf("trigger rate limit must not be negative")
	}
	if c.Trigger.RateLimit > 0 && c.Trigger.RateWindow < time.Second {
		return fmt.Errorf("trigger rate window must be at least 1s: %s", c.Trigger.RateWindow)
	}

	return nil
}

// URL returns the PostgreSQL connection string
func (d DatabaseConfig) URL() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(d.User, d.Password),
		Host:     fmt.Sprintf("%s:%d", d.Host, d.Port),
		Path:     "/" + d.Database,
		RawQuery: "sslmode=disable",
	}
	return u.String()
}

// Addr returns the host:port address of Redis
func (r RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

// Helper functions

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func getEnvSlice(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	var items []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return items
}
