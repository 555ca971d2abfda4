package main

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/jpalmerr/folio/config"
	"github.com/jpalmerr/folio/internal/server"
)

// execute runs the root command with args and returns captured output.
// Flag values persist on the global command tree, so they are reset first.
func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	t.Setenv(config.EnvBaseURL, "")
	t.Setenv(config.EnvToken, "")

	resetFlags(rootCmd)
	var stdout, stderr bytes.Buffer
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stderr)
	rootCmd.SetArgs(args)

	err := rootCmd.ExecuteContext(context.Background())
	return stdout.String(), stderr.String(), err
}

func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, sub := range cmd.Commands() {
		resetFlags(sub)
	}
}

// startBackend runs a mock backend for the duration of the test and
// returns its base URL.
func startBackend(t *testing.T, failSymbols ...string) string {
	t.Helper()

	srv := server.New(server.Config{
		Token:        "tok",
		TaskDuration: 50 * time.Millisecond,
		FailSymbols:  failSymbols,
	})
	ctx, cancel := context.WithCancel(context.Background())
	addr, err := srv.Start(ctx, "127.0.0.1:0")
	if err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	t.Cleanup(func() {
		cancel()
		<-srv.Stopped()
	})
	return "http://" + addr.String()
}
