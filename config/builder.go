package config

import (
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/jpalmerr/folio"
	"github.com/jpalmerr/folio/internal/logging"
	"github.com/jpalmerr/folio/internal/server"
)

// BuildClientOptions converts parsed configuration into SDK options.
func BuildClientOptions(cfg *Config) ([]folio.Option, error) {
	opts := []folio.Option{
		folio.WithBaseURL(cfg.BaseURL),
		folio.WithTimeout(cfg.Timeout.Duration()),
		folio.WithRetries(cfg.RetryCount()),
		folio.WithTaskPolling(cfg.News.InitialDelay.Duration(), cfg.News.Interval.Duration(), cfg.News.MaxAttempts),
	}

	if len(cfg.Headers) > 0 {
		opts = append(opts, folio.WithHeaders(mapToKeyValuePairs(cfg.Headers)...))
	}

	switch {
	case cfg.Auth.Token != "":
		opts = append(opts, folio.WithTokenSource(folio.StaticToken(cfg.Auth.Token)))
	case cfg.Auth.TokenCommand != "":
		ts, err := folio.NewCommandTokenSource(cfg.Auth.TokenCommand)
		if err != nil {
			return nil, fmt.Errorf("auth.token_command: %w", err)
		}
		opts = append(opts, folio.WithTokenSource(ts))
	}

	return opts, nil
}

// mapToKeyValuePairs converts a map to a sorted slice of key-value pairs.
func mapToKeyValuePairs(m map[string]string) []string {
	// sort keys for deterministic ordering
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	pairs := make([]string, 0, len(m)*2)
	for _, k := range keys {
		pairs = append(pairs, k, m[k])
	}
	return pairs
}

// BuildLogging converts the log section into a logger configuration.
func BuildLogging(cfg *Config) logging.Config {
	return logging.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		File:   cfg.Log.File,
		Rotate: cfg.Log.Rotate,
	}
}

// BuildMockServer converts the mock section into a server configuration.
func BuildMockServer(cfg *Config, logger *zap.Logger) server.Config {
	return server.Config{
		Token:        cfg.Mock.Token,
		TaskDuration: cfg.Mock.TaskDuration.Duration(),
		FailSymbols:  append([]string(nil), cfg.Mock.FailSymbols...),
		Logger:       logger,
		Now:          time.Now,
	}
}

// MockAddr is the listen address for the mock backend.
func MockAddr(cfg *Config) string {
	return fmt.Sprintf("127.0.0.1:%d", cfg.Mock.Port)
}
