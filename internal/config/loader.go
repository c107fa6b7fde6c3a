package config

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Load builds a Config by layering defaults, optional file, and env vars.
// Order of precedence (low -> high):
//  1. defaults (New)
//  2. file (YAML) if FASTBREAK_CONFIG is set
//  3. env (prefix FASTBREAK_)
func Load(ctx context.Context) (*Config, error) {
	base := New()

	k := koanf.New(".")

	if path := os.Getenv("FASTBREAK_CONFIG"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
		}
	}

	// Environment variables: FASTBREAK_ADDR, FASTBREAK_STORAGE, ...
	// Keys map to the koanf tags on the struct; underscores preserved.
	envProvider := env.Provider("FASTBREAK_", ".", func(s string) string {
		s = strings.ToLower(s)
		return strings.TrimPrefix(s, "fastbreak_")
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	if err := validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func validate(cfg *Config) error {
	if cfg.Addr == "" {
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	}
	switch cfg.Storage {
	case StorageMemory:
	case StorageRedis:
		if cfg.RedisAddr == "" {
			return fmt.Errorf("%w: redis_addr required for redis storage", ErrInvalidConfig)
		}
	case StoragePostgres:
		if cfg.PostgresDSN == "" {
			return fmt.Errorf("%w: postgres_dsn required for postgres storage", ErrInvalidConfig)
		}
	default:
		return fmt.Errorf("%w: unknown storage %q", ErrInvalidConfig, cfg.Storage)
	}
	if cfg.InitialBudget < 0 {
		return fmt.Errorf("%w: initial_budget must not be negative", ErrInvalidConfig)
	}
	if cfg.FeedLatencyMaxMS < cfg.FeedLatencyMinMS {
		return fmt.Errorf("%w: feed_latency_max_ms below feed_latency_min_ms", ErrInvalidConfig)
	}
	return nil
}
