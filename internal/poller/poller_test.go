package poller

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"go.uber.org/goleak"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// recordingSleeper returns immediately and records every requested wait.
type recordingSleeper struct {
	mu    sync.Mutex
	waits []time.Duration
}

func (r *recordingSleeper) Sleep(ctx context.Context, d time.Duration) error {
	r.mu.Lock()
	r.waits = append(r.waits, d)
	r.mu.Unlock()
	return ctx.Err()
}

func (r *recordingSleeper) Waits() []time.Duration {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]time.Duration(nil), r.waits...)
}

type status string

func classifyStatus(s status) Phase {
	switch s {
	case "completed":
		return Succeeded
	case "failed":
		return Failed
	default:
		return Pending
	}
}

// sequence returns a check function that yields the given statuses in order,
// repeating the last one once exhausted.
func sequence(statuses ...status) (func(context.Context) (status, error), *int) {
	calls := 0
	var mu sync.Mutex
	return func(context.Context) (status, error) {
		mu.Lock()
		defer mu.Unlock()
		i := calls
		if i >= len(statuses) {
			i = len(statuses) - 1
		}
		calls++
		return statuses[i], nil
	}, &calls
}

func testConfig(s *recordingSleeper) Config {
	return Config{
		InitialDelay: 110 * time.Second,
		Interval:     10 * time.Second,
		MaxAttempts:  4,
		Sleep:        s.Sleep,
		Logger:       testLogger(),
	}
}

func TestRun_CompletesOnThirdCheck(t *testing.T) {
	s := &recordingSleeper{}
	check, calls := sequence("processing", "processing", "completed")

	var seen []status
	got, err := Run(context.Background(), testConfig(s), check, classifyStatus, func(st status) {
		seen = append(seen, st)
	})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if got != "completed" {
		t.Errorf("Run() = %q, want completed", got)
	}
	if *calls != 3 {
		t.Errorf("checks = %d, want 3", *calls)
	}
	if len(seen) != 3 {
		t.Errorf("notify calls = %d, want 3", len(seen))
	}

	want := []time.Duration{110 * time.Second, 10 * time.Second, 10 * time.Second}
	waits := s.Waits()
	if len(waits) != len(want) {
		t.Fatalf("waits = %v, want %v", waits, want)
	}
	for i := range want {
		if waits[i] != want[i] {
			t.Errorf("wait[%d] = %v, want %v", i, waits[i], want[i])
		}
	}
}

func TestRun_FailedStatus(t *testing.T) {
	s := &recordingSleeper{}
	check, calls := sequence("failed")

	_, err := Run(context.Background(), testConfig(s), check, classifyStatus, nil)

	var failed *FailedError[status]
	if !errors.As(err, &failed) {
		t.Fatalf("Run() error = %v, want *FailedError", err)
	}
	if failed.Attempts != 1 {
		t.Errorf("Attempts = %d, want 1", failed.Attempts)
	}
	if failed.Last != "failed" {
		t.Errorf("Last = %q, want failed", failed.Last)
	}
	if *calls != 1 {
		t.Errorf("checks = %d, want 1", *calls)
	}
}

func TestRun_ExhaustsBudget(t *testing.T) {
	s := &recordingSleeper{}
	check, calls := sequence("processing")

	notified := 0
	_, err := Run(context.Background(), testConfig(s), check, classifyStatus, func(status) { notified++ })

	var exhausted *ExhaustedError
	if !errors.As(err, &exhausted) {
		t.Fatalf("Run() error = %v, want *ExhaustedError", err)
	}
	if exhausted.Attempts != 4 {
		t.Errorf("Attempts = %d, want 4", exhausted.Attempts)
	}
	if *calls != 4 {
		t.Errorf("checks = %d, want exactly 4", *calls)
	}
	if notified != 4 {
		t.Errorf("notify calls = %d, want 4", notified)
	}
	// initial delay plus three intervals; no wait after the final check
	if got := len(s.Waits()); got != 4 {
		t.Errorf("waits = %d, want 4", got)
	}
}

func TestRun_CheckErrorStopsImmediately(t *testing.T) {
	s := &recordingSleeper{}
	boom := errors.New("connection refused")
	calls := 0
	check := func(context.Context) (status, error) {
		calls++
		if calls == 2 {
			return "", boom
		}
		return "processing", nil
	}

	_, err := Run(context.Background(), testConfig(s), check, classifyStatus, nil)
	if !errors.Is(err, boom) {
		t.Fatalf("Run() error = %v, want %v", err, boom)
	}
	if calls != 2 {
		t.Errorf("checks = %d, want 2", calls)
	}
}

func TestRun_UnknownStatusIsPending(t *testing.T) {
	s := &recordingSleeper{}
	check, calls := sequence("archived", "completed")

	if _, err := Run(context.Background(), testConfig(s), check, classifyStatus, nil); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if *calls != 2 {
		t.Errorf("checks = %d, want 2", *calls)
	}
}

func TestRun_NotifyPanicDoesNotStopPolling(t *testing.T) {
	s := &recordingSleeper{}
	check, calls := sequence("processing", "completed")

	got, err := Run(context.Background(), testConfig(s), check, classifyStatus, func(status) {
		panic("observer blew up")
	})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if got != "completed" {
		t.Errorf("Run() = %q, want completed", got)
	}
	if *calls != 2 {
		t.Errorf("checks = %d, want 2", *calls)
	}
}

func TestRun_CancelledDuringInitialDelay(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	check, calls := sequence("completed")
	_, err := Run(ctx, Config{Logger: testLogger()}, check, classifyStatus, nil)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Run() error = %v, want context.Canceled", err)
	}
	if *calls != 0 {
		t.Errorf("checks = %d, want 0", *calls)
	}
}

func TestConfig_Defaults(t *testing.T) {
	cfg := Config{}.withDefaults()
	if cfg.InitialDelay != DefaultInitialDelay {
		t.Errorf("InitialDelay = %v, want %v", cfg.InitialDelay, DefaultInitialDelay)
	}
	if cfg.Interval != DefaultInterval {
		t.Errorf("Interval = %v, want %v", cfg.Interval, DefaultInterval)
	}
	if cfg.MaxAttempts != DefaultMaxAttempts {
		t.Errorf("MaxAttempts = %d, want %d", cfg.MaxAttempts, DefaultMaxAttempts)
	}
	if cfg.Sleep == nil || cfg.Logger == nil {
		t.Error("withDefaults() left Sleep or Logger nil")
	}
}

func TestSleep(t *testing.T) {
	t.Run("elapses", func(t *testing.T) {
		if err := Sleep(context.Background(), time.Millisecond); err != nil {
			t.Errorf("Sleep() error = %v", err)
		}
	})

	t.Run("cancelled", func(t *testing.T) {
		defer goleak.VerifyNone(t)

		ctx, cancel := context.WithCancel(context.Background())
		go func() {
			time.Sleep(10 * time.Millisecond)
			cancel()
		}()

		start := time.Now()
		err := Sleep(ctx, time.Hour)
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Sleep() error = %v, want context.Canceled", err)
		}
		if elapsed := time.Since(start); elapsed > 5*time.Second {
			t.Errorf("Sleep() returned after %v, want prompt return", elapsed)
		}
	})

	t.Run("non-positive", func(t *testing.T) {
		if err := Sleep(context.Background(), 0); err != nil {
			t.Errorf("Sleep(0) error = %v", err)
		}
	})
}

func TestStart_CancelStopsWithoutFurtherChecks(t *testing.T) {
	defer goleak.VerifyNone(t)

	check, calls := sequence("processing")
	cfg := Config{
		InitialDelay: time.Hour,
		Interval:     time.Hour,
		Logger:       testLogger(),
	}

	h := Start(context.Background(), cfg, check, classifyStatus, nil)
	h.Cancel()

	select {
	case <-h.Done():
	case <-time.After(5 * time.Second):
		t.Fatal("handle did not finish after Cancel")
	}

	_, err := h.Wait()
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Wait() error = %v, want context.Canceled", err)
	}
	if *calls != 0 {
		t.Errorf("checks = %d, want 0", *calls)
	}

	// idempotent
	h.Cancel()
}

func TestStart_ReportsResult(t *testing.T) {
	defer goleak.VerifyNone(t)

	s := &recordingSleeper{}
	check, _ := sequence("processing", "completed")

	h := Start(context.Background(), testConfig(s), check, classifyStatus, nil)
	got, err := h.Wait()
	if err != nil {
		t.Fatalf("Wait() error = %v", err)
	}
	if got != "completed" {
		t.Errorf("Wait() = %q, want completed", got)
	}
}
