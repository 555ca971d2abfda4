package poller

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"runtime/debug"
	"time"

	"github.com/google/uuid"
)

// Default schedule. The initial delay sits just above the observed P99
// completion time (~106s) so the first check usually finds a terminal state.
const (
	DefaultInitialDelay = 110 * time.Second
	DefaultInterval     = 10 * time.Second
	DefaultMaxAttempts  = 4
)

// Phase classifies a single status observation.
type Phase int

const (
	// Pending means the job is still queued or processing.
	Pending Phase = iota

	// Succeeded is the terminal success state.
	Succeeded

	// Failed is the terminal failure state reported by the server.
	Failed
)

// State is a position in the poller lifecycle:
// idle → waiting_initial_delay → polling → {completed | failed | timed_out}.
type State string

const (
	StateIdle                State = "idle"
	StateWaitingInitialDelay State = "waiting_initial_delay"
	StatePolling             State = "polling"
	StateCompleted           State = "completed"
	StateFailed              State = "failed"
	StateTimedOut            State = "timed_out"
)

// Sleeper blocks for d or until ctx is done, whichever comes first.
type Sleeper func(ctx context.Context, d time.Duration) error

// Sleep is the default [Sleeper]. The underlying timer is stopped as soon as
// ctx is done, so a cancelled wait never leaves a pending timer behind.
func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// Config controls a poll run. Zero fields take the package defaults.
type Config struct {
	InitialDelay time.Duration
	Interval     time.Duration
	MaxAttempts  int
	Sleep        Sleeper
	Logger       *slog.Logger
}

func (c Config) withDefaults() Config {
	if c.InitialDelay <= 0 {
		c.InitialDelay = DefaultInitialDelay
	}
	if c.Interval <= 0 {
		c.Interval = DefaultInterval
	}
	if c.MaxAttempts <= 0 {
		c.MaxAttempts = DefaultMaxAttempts
	}
	if c.Sleep == nil {
		c.Sleep = Sleep
	}
	if c.Logger == nil {
		c.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return c
}

// FailedError is returned when a check observes the terminal failure state.
// Last holds that observation.
type FailedError[T any] struct {
	Attempts int
	Last     T
}

func (e *FailedError[T]) Error() string {
	return fmt.Sprintf("task reported failure on check %d", e.Attempts)
}

// ExhaustedError is returned when MaxAttempts checks all observed a pending
// state.
type ExhaustedError struct {
	Attempts int
}

func (e *ExhaustedError) Error() string {
	return fmt.Sprintf("task did not finish after %d attempts", e.Attempts)
}

// Run drives one poll to a terminal outcome.
//
// Run waits cfg.InitialDelay, then calls check. Every observation is passed to
// notify (if non-nil) before classify decides the transition. Pending
// observations schedule another check after cfg.Interval until
// cfg.MaxAttempts checks have been made. Checks never overlap.
//
// An error from check, or ctx ending during a wait, ends the run immediately
// with that error. The budget is a hard ceiling: no check is ever retried
// beyond MaxAttempts.
func Run[T any](ctx context.Context, cfg Config, check func(context.Context) (T, error), classify func(T) Phase, notify func(T)) (T, error) {
	cfg = cfg.withDefaults()
	var zero T

	cfg.Logger.Debug("task poll state", "state", StateWaitingInitialDelay, "delay", cfg.InitialDelay.String())
	if err := cfg.Sleep(ctx, cfg.InitialDelay); err != nil {
		return zero, err
	}

	for attempt := 1; ; attempt++ {
		cfg.Logger.Debug("task poll state", "state", StatePolling, "attempt", attempt)

		status, err := check(ctx)
		if err != nil {
			return zero, err
		}

		if notify != nil {
			notifySafe(cfg.Logger, notify, status)
		}

		switch classify(status) {
		case Succeeded:
			cfg.Logger.Debug("task poll state", "state", StateCompleted, "attempt", attempt)
			return status, nil
		case Failed:
			cfg.Logger.Debug("task poll state", "state", StateFailed, "attempt", attempt)
			return status, &FailedError[T]{Attempts: attempt, Last: status}
		}

		if attempt >= cfg.MaxAttempts {
			cfg.Logger.Debug("task poll state", "state", StateTimedOut, "attempt", attempt)
			return status, &ExhaustedError{Attempts: attempt}
		}

		if err := cfg.Sleep(ctx, cfg.Interval); err != nil {
			return zero, err
		}
	}
}

// notifySafe calls the observer with panic recovery.
// If the observer panics, the full stack trace is logged with a correlation
// ID and polling continues.
func notifySafe[T any](logger *slog.Logger, notify func(T), status T) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("status callback panicked",
				"correlation_id", uuid.NewString(),
				"panic", fmt.Sprintf("%v", r),
				"stack", string(debug.Stack()),
			)
		}
	}()
	notify(status)
}
