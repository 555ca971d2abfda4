package poller

import (
	"context"
	"sync"
)

// Handle is a poll running in the background, started with [Start].
//
// Cancel stops the run deterministically: a pending delay's timer is stopped
// and no further check is issued. All methods are safe for concurrent use.
type Handle[T any] struct {
	cancel context.CancelFunc
	done   chan struct{}

	mu     sync.Mutex
	result T
	err    error
}

// Start runs [Run] in its own goroutine and returns immediately.
func Start[T any](ctx context.Context, cfg Config, check func(context.Context) (T, error), classify func(T) Phase, notify func(T)) *Handle[T] {
	runCtx, cancel := context.WithCancel(ctx)
	h := &Handle[T]{
		cancel: cancel,
		done:   make(chan struct{}),
	}

	go func() {
		defer close(h.done)
		defer cancel()

		result, err := Run(runCtx, cfg, check, classify, notify)

		h.mu.Lock()
		h.result, h.err = result, err
		h.mu.Unlock()
	}()

	return h
}

// Cancel aborts the run. Safe to call multiple times and after completion.
func (h *Handle[T]) Cancel() {
	h.cancel()
}

// Done is closed once the run has finished.
func (h *Handle[T]) Done() <-chan struct{} {
	return h.done
}

// Wait blocks until the run finishes and returns its outcome.
func (h *Handle[T]) Wait() (T, error) {
	<-h.done
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.result, h.err
}
