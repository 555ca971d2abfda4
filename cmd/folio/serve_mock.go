package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/jpalmerr/folio/config"
	"github.com/jpalmerr/folio/internal/logging"
	"github.com/jpalmerr/folio/internal/server"
)

const shutdownTimeout = 10 * time.Second

// serveMockCmd runs the in-memory backend.
var serveMockCmd = &cobra.Command{
	Use:   "serve-mock",
	Short: "Run an in-memory Folio backend for local development",
	Long: `Run an in-memory implementation of the Folio API.

The server will:
  - Serve chats, messages, holdings, watchlist, securities and Plaid routes
  - Simulate news summary jobs that finish after mock.task_duration
  - Fail news jobs for symbols listed in mock.fail_symbols

The server runs until interrupted (Ctrl+C) or receives SIGTERM.

Example:
  folio serve-mock
  folio serve-mock -c folio.yaml --port 9000`,
	Args: cobra.NoArgs,
	RunE: runServeMock,
}

func init() {
	rootCmd.AddCommand(serveMockCmd)
	serveMockCmd.Flags().Int("port", 0, "listen port (overrides mock.port)")
}

func runServeMock(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("port") {
		cfg.Mock.Port, _ = cmd.Flags().GetInt("port")
	}

	logCfg := config.BuildLogging(cfg)
	if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
		logCfg.Level = "debug"
	}
	logger, err := logging.New(logCfg)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	srv := server.New(config.BuildMockServer(cfg, logger))

	ctx := cmd.Context()
	addr, err := srv.Start(ctx, config.MockAddr(cfg))
	if err != nil {
		return err
	}
	printSuccess(cmd.OutOrStdout(), "Mock backend listening on http://%s", addr)

	<-ctx.Done()
	select {
	case <-srv.Stopped():
		logger.Info("shutdown complete")
	case <-time.After(shutdownTimeout):
		logger.Warn("shutdown timed out")
	}
	return nil
}
