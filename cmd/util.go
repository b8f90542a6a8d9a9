// Package cmd provides CLI commands for the orgmatch tool.
package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/redis/go-redis/v9"
	"gopkg.in/yaml.v3"

	"github.com/otherjamesbrown/orgmatch/config"
	"github.com/otherjamesbrown/orgmatch/pkg/alias"
	"github.com/otherjamesbrown/orgmatch/pkg/db"
	"github.com/otherjamesbrown/orgmatch/pkg/match"
	"github.com/otherjamesbrown/orgmatch/pkg/observability"
)

var (
	metricsOnce   sync.Once
	sharedMetrics *observability.Metrics
)

// commandMetrics returns the process-wide metrics set. Registration on the
// default registerer panics on duplicates, so it happens exactly once.
func commandMetrics() *observability.Metrics {
	metricsOnce.Do(func() {
		sharedMetrics = observability.DefaultMetrics()
	})
	return sharedMetrics
}

// getEnvOrDefault returns environment variable value or default.
func getEnvOrDefault(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

// printStructured renders payload to w as JSON or YAML.
func printStructured(w io.Writer, format config.OutputFormat, payload any) error {
	switch format {
	case config.OutputFormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(payload)
	case config.OutputFormatYAML:
		enc := yaml.NewEncoder(w)
		defer enc.Close()
		return enc.Encode(payload)
	default:
		return fmt.Errorf("unsupported output format: %q", format)
	}
}

// resolveFormat returns the effective output format for a command,
// preferring the per-command flag over the configured default.
func resolveFormat(flagValue string, cfg *config.CLIConfig) config.OutputFormat {
	if flagValue != "" {
		return config.OutputFormat(flagValue)
	}
	if cfg != nil && cfg.OutputFormat != "" {
		return cfg.OutputFormat
	}
	return config.OutputFormatText
}

// resolverConfig builds match thresholds from the configured overrides,
// keeping the resolver defaults for anything unset.
func resolverConfig(cfg *config.CLIConfig) match.Config {
	mc := match.DefaultConfig()
	if cfg == nil {
		return mc
	}
	if cfg.Resolver.Threshold > 0 {
		mc.Threshold = cfg.Resolver.Threshold
	}
	if cfg.Resolver.Margin > 0 {
		mc.Margin = cfg.Resolver.Margin
	}
	if cfg.Resolver.CandidateFloor > 0 {
		mc.CandidateFloor = cfg.Resolver.CandidateFloor
	}
	if cfg.Resolver.MaxCandidates > 0 {
		mc.MaxCandidates = cfg.Resolver.MaxCandidates
	}
	return mc
}

// connectToRedis establishes a Redis connection for the redis alias backend.
func connectToRedis(ctx context.Context, cfg *config.CLIConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr(),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("testing redis connection: %w", err)
	}

	return client, nil
}

// loadAliasStore loads the alias overrides from the configured backend.
func loadAliasStore(ctx context.Context, cfg *config.CLIConfig) (*alias.Store, error) {
	switch cfg.AliasBackend {
	case config.AliasBackendFile:
		path, err := cfg.AliasFilePath()
		if err != nil {
			return nil, err
		}
		fs, err := alias.OpenFile(path)
		if err != nil {
			return nil, err
		}
		return fs.Store, nil

	case config.AliasBackendPostgres:
		pool, err := db.Connect(ctx, db.ConfigFromEnv())
		if err != nil {
			return nil, fmt.Errorf("connecting to database: %w", err)
		}
		defer pool.Close()
		return alias.NewPostgresRepository(pool).Load(ctx)

	case config.AliasBackendRedis:
		client, err := connectToRedis(ctx, cfg)
		if err != nil {
			return nil, err
		}
		defer client.Close()
		return alias.NewRedisStore(client).Load(ctx)

	default:
		return nil, fmt.Errorf("unsupported alias backend: %q", cfg.AliasBackend)
	}
}

// setAlias records an external->canonical override in the configured backend.
func setAlias(ctx context.Context, cfg *config.CLIConfig, external, canonical string) error {
	switch cfg.AliasBackend {
	case config.AliasBackendFile:
		path, err := cfg.AliasFilePath()
		if err != nil {
			return err
		}
		fs, err := alias.OpenFile(path)
		if err != nil {
			return err
		}
		fs.Set(external, canonical)
		return fs.Save()

	case config.AliasBackendPostgres:
		pool, err := db.Connect(ctx, db.ConfigFromEnv())
		if err != nil {
			return fmt.Errorf("connecting to database: %w", err)
		}
		defer pool.Close()
		addedBy := getEnvOrDefault("USER", "orgmatch")
		return alias.NewPostgresRepository(pool).Upsert(ctx, external, canonical, addedBy)

	case config.AliasBackendRedis:
		client, err := connectToRedis(ctx, cfg)
		if err != nil {
			return err
		}
		defer client.Close()
		return alias.NewRedisStore(client).Set(ctx, external, canonical)

	default:
		return fmt.Errorf("unsupported alias backend: %q", cfg.AliasBackend)
	}
}
