package main

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/jpalmerr/folio/internal/server"
)

// StartMockBackend runs the in-memory Folio API until ctx is cancelled and
// returns its base URL. News tasks finish after taskDuration; symbols in
// failSymbols always fail.
func StartMockBackend(ctx context.Context, token string, taskDuration time.Duration, failSymbols ...string) (string, error) {
	logger, err := zap.NewDevelopment()
	if err != nil {
		return "", fmt.Errorf("failed to create logger: %w", err)
	}

	srv := server.New(server.Config{
		Token:        token,
		TaskDuration: taskDuration,
		FailSymbols:  failSymbols,
		Logger:       logger.WithOptions(zap.IncreaseLevel(zap.WarnLevel)),
	})
	addr, err := srv.Start(ctx, "127.0.0.1:0")
	if err != nil {
		return "", err
	}
	return "http://" + addr.String(), nil
}
