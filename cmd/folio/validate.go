package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jpalmerr/folio/config"
)

// validateCmd validates a config file without contacting the API.
var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate a config file",
	Long: `Validate a folio configuration file without contacting the API.

This command parses the YAML or TOML, expands environment variables, applies
FOLIO_API_* overrides and validates all fields. It's useful for CI/CD
pipelines or pre-deployment checks.

Exit codes:
  0 - Config is valid
  1 - Config is invalid (error details printed to stderr)

Example:
  folio validate -c folio.yaml
  folio validate --config /etc/folio/folio.toml`,
	Args: cobra.NoArgs,
	RunE: runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, args []string) error {
	configFile, _ := cmd.Flags().GetString("config")
	if configFile == "" {
		return errors.New("--config is required")
	}

	cfg, err := config.Load(configFile)
	if err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if _, err := config.BuildClientOptions(cfg); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	auth := "none"
	switch {
	case cfg.Auth.Token != "":
		auth = "static token"
	case cfg.Auth.TokenCommand != "":
		auth = "token command"
	}

	out := cmd.OutOrStdout()
	printSuccess(out, "Config is valid!")
	fmt.Fprintf(out, "  Base URL:      %s\n", cfg.BaseURL)
	fmt.Fprintf(out, "  Timeout:       %s\n", cfg.Timeout.Duration())
	fmt.Fprintf(out, "  Retries:       %d\n", cfg.RetryCount())
	fmt.Fprintf(out, "  Auth:          %s\n", auth)
	fmt.Fprintf(out, "  News polling:  %s then every %s, %d attempts\n",
		cfg.News.InitialDelay.Duration(), cfg.News.Interval.Duration(), cfg.News.MaxAttempts)
	fmt.Fprintf(out, "  Mock backend:  port %d, tasks take %s\n", cfg.Mock.Port, cfg.Mock.TaskDuration.Duration())

	return nil
}
