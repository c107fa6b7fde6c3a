// Package config defines service configuration structures and loading.
//
// Conventions:
// - Defaults come from New; Load layers an optional YAML file and
//   FASTBREAK_-prefixed environment variables on top.
// - External errors are wrapped via this package's sentinel kinds.
package config

import "runtime"

// Storage backend names accepted by the storage field.
const (
	StorageMemory   = "memory"
	StorageRedis    = "redis"
	StoragePostgres = "postgres"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// Storage selects the store backend: memory, redis, or postgres.
	Storage string `koanf:"storage"`

	// RedisAddr is the Redis address when storage is "redis".
	RedisAddr string `koanf:"redis_addr"`

	// PostgresDSN is the connection string when storage is "postgres".
	PostgresDSN string `koanf:"postgres_dsn"`

	// InitialBudget is the coin balance granted at team registration.
	InitialBudget float64 `koanf:"initial_budget"`

	// WorkerCount bounds concurrent team scoring during an advance.
	WorkerCount int `koanf:"worker_count"`

	// MaxPutRetries bounds retries after store version conflicts.
	MaxPutRetries int `koanf:"max_put_retries"`

	// RetryBackoffMS is the pause between conflict retries.
	RetryBackoffMS int `koanf:"retry_backoff_ms"`

	// RefundOnOverwrite credits back the displaced occupant's cost
	// when an acquisition overwrites a filled slot.
	RefundOnOverwrite bool `koanf:"refund_on_overwrite"`

	// MaxLeaderboardLimit caps GET /leaderboard/*?limit.
	MaxLeaderboardLimit int `koanf:"max_leaderboard_limit"`

	// FeedLatencyMinMS and FeedLatencyMaxMS simulate the external
	// stat provider's latency bounds for the in-memory feed.
	FeedLatencyMinMS int `koanf:"feed_latency_min_ms"`
	FeedLatencyMaxMS int `koanf:"feed_latency_max_ms"`
}

// New creates a Config with defaults.
func New() *Config {
	return &Config{
		LogLevel:            "info",
		Addr:                ":9080",
		Storage:             StorageMemory,
		RedisAddr:           "localhost:6379",
		InitialBudget:       100,
		WorkerCount:         runtime.NumCPU(),
		MaxPutRetries:       3,
		RetryBackoffMS:      25,
		RefundOnOverwrite:   false,
		MaxLeaderboardLimit: 100,
		FeedLatencyMinMS:    0,
		FeedLatencyMaxMS:    0,
	}
}
