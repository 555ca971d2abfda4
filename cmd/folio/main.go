// Package main is the entry point for the folio CLI.
//
// The CLI is a thin layer over the folio SDK. Connection settings come from
// an optional YAML or TOML config file, FOLIO_API_* environment variables
// and global flags, in increasing order of precedence.
//
// Usage:
//
//	folio chats list                      # List chats
//	folio messages send CHAT_ID "Hi"      # Ask the assistant
//	folio news refresh AAPL MSFT --force  # Regenerate news summaries
//	folio serve-mock -c folio.yaml        # Run the in-memory backend
//	folio validate -c folio.yaml          # Validate configuration
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

// Version information - set by GoReleaser at build time via ldflags.
// Example: go build -ldflags "-X main.version=1.0.0"
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// rootCmd is the base command when called without subcommands.
var rootCmd = &cobra.Command{
	Use:   "folio",
	Short: "Command-line client for the Folio investment assistant",
	Long: `folio talks to the Folio REST API: AI chats, holdings, the watchlist,
securities search, Plaid linking and background news summaries.

Quick start:
  1. Run a local backend: folio serve-mock
  2. In another shell:    folio --token dev securities search apple
  3. Ask the assistant:   folio chats create && folio messages send CHAT_ID "How is AAPL?"

Example config (folio.yaml):
  base_url: https://api.folio.example
  timeout: 30s
  retries: 3
  auth:
    token: ${FOLIO_TOKEN}`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command.
// This is the main entry point called from main().
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		printError(rootCmd.ErrOrStderr(), err)
		os.Exit(1)
	}
}

func main() {
	Execute()
}

// versionCmd prints version information.
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Long:  `Print the version, commit hash, and build date of this folio binary.`,
	Run: func(cmd *cobra.Command, args []string) {
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "folio %s\n", version)
		fmt.Fprintf(out, "  commit: %s\n", commit)
		fmt.Fprintf(out, "  built:  %s\n", date)
	},
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringP("config", "c", "", "path to a YAML or TOML config file")
	pf.String("base-url", "", "API base URL (overrides config)")
	pf.String("token", "", "bearer token (overrides config)")
	pf.Duration("timeout", 0, "per-attempt request timeout (overrides config)")
	pf.Int("retries", -1, "retries after the first attempt (overrides config)")
	pf.Bool("json", false, "print raw JSON instead of tables")
	pf.BoolP("verbose", "v", false, "enable debug logging")

	rootCmd.AddCommand(versionCmd)
}
