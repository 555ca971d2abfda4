package folio

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"
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

// recordedRequest is what a test server saw.
type recordedRequest struct {
	Method string
	Path   string
	Query  string
	Header http.Header
	Body   string
}

// recorder is an httptest handler that captures requests and delegates the
// response to respond.
type recorder struct {
	mu       sync.Mutex
	requests []recordedRequest
	respond  func(w http.ResponseWriter, r *http.Request, n int)
}

func (rec *recorder) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)

	rec.mu.Lock()
	rec.requests = append(rec.requests, recordedRequest{
		Method: r.Method,
		Path:   r.URL.Path,
		Query:  r.URL.RawQuery,
		Header: r.Header.Clone(),
		Body:   string(body),
	})
	n := len(rec.requests)
	rec.mu.Unlock()

	if rec.respond == nil {
		writeJSON(w, http.StatusOK, map[string]any{})
		return
	}
	rec.respond(w, r, n)
}

func (rec *recorder) Requests() []recordedRequest {
	rec.mu.Lock()
	defer rec.mu.Unlock()
	return append([]recordedRequest(nil), rec.requests...)
}

func (rec *recorder) Last(t *testing.T) recordedRequest {
	t.Helper()
	reqs := rec.Requests()
	if len(reqs) == 0 {
		t.Fatal("no requests recorded")
	}
	return reqs[len(reqs)-1]
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// abort drops the connection without a response.
func abort(http.ResponseWriter, *http.Request, int) {
	panic(http.ErrAbortHandler)
}

// newTestClient starts a server around rec and returns a client pointed at
// it with a recording sleeper.
func newTestClient(t *testing.T, rec *recorder, opts ...Option) (*Client, *recordingSleeper) {
	t.Helper()

	server := httptest.NewServer(rec)
	t.Cleanup(server.Close)

	sleeper := &recordingSleeper{}
	base := []Option{
		WithBaseURL(server.URL),
		WithLogger(testLogger()),
		withSleeper(sleeper.Sleep),
	}

	client, err := New(append(base, opts...)...)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	t.Cleanup(client.Close)
	return client, sleeper
}
