package main

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/jpalmerr/folio"
	"github.com/jpalmerr/folio/config"
)

// newLogger creates a JSON logger for CLI use.
func newLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level}))
}

// loadConfig reads --config, or falls back to defaults plus environment.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	if path == "" {
		return config.Default()
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return cfg, nil
}

// newClient builds an SDK client from config and global flag overrides.
func newClient(cmd *cobra.Command) (*folio.Client, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}

	opts, err := config.BuildClientOptions(cfg)
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("base-url") {
		v, _ := flags.GetString("base-url")
		opts = append(opts, folio.WithBaseURL(v))
	}
	if flags.Changed("token") {
		v, _ := flags.GetString("token")
		opts = append(opts, folio.WithTokenSource(folio.StaticToken(v)))
	}
	if flags.Changed("timeout") {
		v, _ := flags.GetDuration("timeout")
		opts = append(opts, folio.WithTimeout(v))
	}
	if flags.Changed("retries") {
		v, _ := flags.GetInt("retries")
		opts = append(opts, folio.WithRetries(v))
	}

	verbose, _ := flags.GetBool("verbose")
	opts = append(opts, folio.WithLogger(newLogger(cmd.ErrOrStderr(), verbose)))

	c, err := folio.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create client: %w", err)
	}
	return c, nil
}

// withClient adapts a client-using handler to cobra's RunE.
func withClient(run func(cmd *cobra.Command, c *folio.Client, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		c, err := newClient(cmd)
		if err != nil {
			return err
		}
		defer c.Close()
		return run(cmd, c, args)
	}
}

func jsonOutput(cmd *cobra.Command) bool {
	v, _ := cmd.Flags().GetBool("json")
	return v
}
