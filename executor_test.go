package folio

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func TestDo_DefaultHeaders(t *testing.T) {
	rec := &recorder{}
	client, _ := newTestClient(t, rec)

	if _, err := client.Do(context.Background(), Request{Path: "/api/chats/"}); err != nil {
		t.Fatalf("Do() error = %v", err)
	}

	got := rec.Last(t)
	if got.Method != http.MethodGet {
		t.Errorf("Method = %v, want GET", got.Method)
	}
	if ct := got.Header.Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q, want application/json", ct)
	}
	if a := got.Header.Get("Accept"); a != "application/json" {
		t.Errorf("Accept = %q, want application/json", a)
	}
	if auth := got.Header.Get("Authorization"); auth != "" {
		t.Errorf("Authorization = %q, want none without a token source", auth)
	}
	if got.Header.Get("X-Request-ID") == "" {
		t.Error("X-Request-ID missing")
	}
}

func TestDo_BearerTokenMintedPerAttempt(t *testing.T) {
	rec := &recorder{respond: func(w http.ResponseWriter, r *http.Request, n int) {
		if n < 3 {
			abort(w, r, n)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"ok": "yes"})
	}}

	var minted atomic.Int32
	ts := TokenFunc(func() (string, error) {
		n := minted.Add(1)
		return "token-" + string(rune('0'+n)), nil
	})

	client, _ := newTestClient(t, rec, WithTokenSource(ts))

	if _, err := client.Do(context.Background(), Request{Path: "/x"}); err != nil {
		t.Fatalf("Do() error = %v", err)
	}

	if minted.Load() != 3 {
		t.Errorf("tokens minted = %d, want 3 (one per attempt)", minted.Load())
	}

	reqs := rec.Requests()
	want := []string{"Bearer token-1", "Bearer token-2", "Bearer token-3"}
	for i, r := range reqs {
		if got := r.Header.Get("Authorization"); got != want[i] {
			t.Errorf("attempt %d Authorization = %q, want %q", i, got, want[i])
		}
	}

	// one logical request keeps its id across attempts
	id := reqs[0].Header.Get("X-Request-ID")
	for i, r := range reqs[1:] {
		if got := r.Header.Get("X-Request-ID"); got != id {
			t.Errorf("attempt %d X-Request-ID = %q, want %q", i+1, got, id)
		}
	}
}

func TestDo_HeaderPrecedence(t *testing.T) {
	rec := &recorder{}
	client, _ := newTestClient(t, rec,
		WithHeaders("X-Client", "sdk", "Accept", "text/plain"),
		WithTokenSource(StaticToken("secret")),
	)

	_, err := client.Do(context.Background(), Request{Path: "/x"},
		WithRequestHeader("X-Client", "cli"),
		WithRequestHeader("Authorization", "Bearer spoofed"),
	)
	if err != nil {
		t.Fatalf("Do() error = %v", err)
	}

	got := rec.Last(t).Header
	if v := got.Get("Accept"); v != "text/plain" {
		t.Errorf("Accept = %q, want client override text/plain", v)
	}
	if v := got.Get("X-Client"); v != "cli" {
		t.Errorf("X-Client = %q, want per-call value cli", v)
	}
	if v := got.Get("Authorization"); v != "Bearer secret" {
		t.Errorf("Authorization = %q, want token source value", v)
	}
}

func TestDo_RetriesNetworkFailures(t *testing.T) {
	rec := &recorder{respond: abort}
	client, sleeper := newTestClient(t, rec, WithRetries(3))

	_, err := client.Do(context.Background(), Request{Path: "/flaky"})
	if !IsNetwork(err) {
		t.Fatalf("Do() error = %v, want network error", err)
	}

	if got := len(rec.Requests()); got != 4 {
		t.Errorf("attempts = %d, want 4", got)
	}

	var apiErr *Error
	if !errors.As(err, &apiErr) {
		t.Fatalf("Do() error type = %T, want *Error", err)
	}
	if apiErr.Attempts != 4 {
		t.Errorf("Attempts = %d, want 4", apiErr.Attempts)
	}
	if apiErr.Code != "Network Error" {
		t.Errorf("Code = %q, want Network Error", apiErr.Code)
	}
	if apiErr.Err == nil {
		t.Error("Err = nil, want last attempt's error")
	}

	want := []time.Duration{time.Second, 2 * time.Second, 4 * time.Second}
	if diff := cmp.Diff(want, sleeper.Waits()); diff != "" {
		t.Errorf("backoff mismatch (-want +got):\n%s", diff)
	}
}

func TestDo_RetryOverrides(t *testing.T) {
	tests := []struct {
		name         string
		clientOpts   []Option
		requestOpts  []RequestOption
		wantAttempts int
	}{
		{"client default", nil, nil, 4},
		{"client retries 1", []Option{WithRetries(1)}, nil, 2},
		{"explicit zero per call", nil, []RequestOption{WithRequestRetries(0)}, 1},
		{"per call beats client", []Option{WithRetries(5)}, []RequestOption{WithRequestRetries(2)}, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := &recorder{respond: abort}
			client, _ := newTestClient(t, rec, tt.clientOpts...)

			_, err := client.Do(context.Background(), Request{Path: "/x"}, tt.requestOpts...)
			if err == nil {
				t.Fatal("Do() expected error, got nil")
			}
			if got := len(rec.Requests()); got != tt.wantAttempts {
				t.Errorf("attempts = %d, want %d", got, tt.wantAttempts)
			}
		})
	}
}

func TestDo_ApplicationErrorNotRetried(t *testing.T) {
	rec := &recorder{respond: func(w http.ResponseWriter, r *http.Request, n int) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "not_found", "message": "Chat not found"})
	}}
	client, sleeper := newTestClient(t, rec)

	_, err := client.Do(context.Background(), Request{Path: "/api/chats/missing"})

	var apiErr *Error
	if !errors.As(err, &apiErr) {
		t.Fatalf("Do() error = %v, want *Error", err)
	}
	if apiErr.Kind != KindApplication {
		t.Errorf("Kind = %v, want application", apiErr.Kind)
	}
	if apiErr.Code != "not_found" || apiErr.Message != "Chat not found" {
		t.Errorf("Code/Message = %q/%q, want not_found/Chat not found", apiErr.Code, apiErr.Message)
	}
	if apiErr.StatusCode != http.StatusNotFound {
		t.Errorf("StatusCode = %d, want 404", apiErr.StatusCode)
	}
	if apiErr.Details["error"] != "not_found" {
		t.Errorf("Details = %v, want parsed body", apiErr.Details)
	}
	if got := len(rec.Requests()); got != 1 {
		t.Errorf("attempts = %d, want 1", got)
	}
	if len(sleeper.Waits()) != 0 {
		t.Errorf("waits = %v, want none", sleeper.Waits())
	}
}

func TestDo_ServiceUnavailableNotRetried(t *testing.T) {
	rec := &recorder{respond: func(w http.ResponseWriter, r *http.Request, n int) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}}
	client, _ := newTestClient(t, rec)

	_, err := client.Do(context.Background(), Request{Path: "/x"})
	if !IsApplication(err) {
		t.Fatalf("Do() error = %v, want application error", err)
	}
	if got := len(rec.Requests()); got != 1 {
		t.Errorf("attempts = %d, want 1", got)
	}
}

func TestDo_MalformedErrorBodyFallsBack(t *testing.T) {
	tests := []struct {
		name        string
		contentType string
		body        string
	}{
		{"malformed json", "application/json", `{"error": "oops`},
		{"html page", "text/html", "<h1>Bad Gateway</h1>"},
		{"empty", "", ""},
		{"json array", "application/json", `["not", "an", "object"]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := &recorder{respond: func(w http.ResponseWriter, r *http.Request, n int) {
				if tt.contentType != "" {
					w.Header().Set("Content-Type", tt.contentType)
				}
				w.WriteHeader(http.StatusBadGateway)
				_, _ = w.Write([]byte(tt.body))
			}}
			client, _ := newTestClient(t, rec)

			_, err := client.Do(context.Background(), Request{Path: "/x"})

			var apiErr *Error
			if !errors.As(err, &apiErr) {
				t.Fatalf("Do() error = %v, want *Error", err)
			}
			if apiErr.Code != "Request failed" {
				t.Errorf("Code = %q, want Request failed", apiErr.Code)
			}
			if apiErr.Message != "HTTP 502: Bad Gateway" {
				t.Errorf("Message = %q, want HTTP 502: Bad Gateway", apiErr.Message)
			}
			if apiErr.Details == nil || len(apiErr.Details) != 0 {
				t.Errorf("Details = %v, want empty map", apiErr.Details)
			}
		})
	}
}

func TestDo_PartialErrorBody(t *testing.T) {
	rec := &recorder{respond: func(w http.ResponseWriter, r *http.Request, n int) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "validation_error"})
	}}
	client, _ := newTestClient(t, rec)

	_, err := client.Do(context.Background(), Request{Path: "/x"})

	var apiErr *Error
	if !errors.As(err, &apiErr) {
		t.Fatalf("Do() error = %v, want *Error", err)
	}
	if apiErr.Code != "validation_error" {
		t.Errorf("Code = %q, want validation_error", apiErr.Code)
	}
	if apiErr.Message != "HTTP 400: Bad Request" {
		t.Errorf("Message = %q, want status-derived fallback", apiErr.Message)
	}
}

func TestDo_NoContent(t *testing.T) {
	rec := &recorder{respond: func(w http.ResponseWriter, r *http.Request, n int) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNoContent)
	}}
	client, _ := newTestClient(t, rec)

	resp, err := client.Do(context.Background(), Request{Method: http.MethodDelete, Path: "/x"})
	if err != nil {
		t.Fatalf("Do() error = %v", err)
	}
	if !resp.NoContent() {
		t.Error("NoContent() = false, want true")
	}
	if resp.Raw() != nil {
		t.Errorf("Raw() = %s, want nil", resp.Raw())
	}

	var v map[string]any
	if err := resp.Decode(&v); err != nil {
		t.Errorf("Decode() error = %v", err)
	}
	if v != nil {
		t.Errorf("Decode() set %v, want untouched", v)
	}
}

func TestDo_NonJSONWrapped(t *testing.T) {
	tests := []struct {
		name        string
		contentType string
		body        string
	}{
		{"plain text", "text/plain; charset=utf-8", "pong"},
		{"no content type", "", "pong"},
		{"empty body", "text/plain", ""},
		{"json-looking text", "text/plain", `{"a":1}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := &recorder{respond: func(w http.ResponseWriter, r *http.Request, n int) {
				if tt.contentType != "" {
					w.Header().Set("Content-Type", tt.contentType)
				} else {
					// keep net/http from sniffing one
					w.Header()["Content-Type"] = nil
				}
				_, _ = w.Write([]byte(tt.body))
			}}
			client, _ := newTestClient(t, rec)

			resp, err := client.Do(context.Background(), Request{Path: "/ping"})
			if err != nil {
				t.Fatalf("Do() error = %v", err)
			}

			var got map[string]string
			if err := resp.Decode(&got); err != nil {
				t.Fatalf("Decode() error = %v", err)
			}
			if diff := cmp.Diff(map[string]string{"message": tt.body}, got); diff != "" {
				t.Errorf("payload mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestDo_MalformedSuccessBodyRetried(t *testing.T) {
	rec := &recorder{respond: func(w http.ResponseWriter, r *http.Request, n int) {
		w.Header().Set("Content-Type", "application/json")
		if n == 1 {
			_, _ = w.Write([]byte(`{"trunc`))
			return
		}
		_, _ = w.Write([]byte(`{"ok":true}`))
	}}
	client, _ := newTestClient(t, rec)

	resp, err := client.Do(context.Background(), Request{Path: "/x"})
	if err != nil {
		t.Fatalf("Do() error = %v", err)
	}
	if resp.Attempts != 2 {
		t.Errorf("Attempts = %d, want 2", resp.Attempts)
	}
}

func TestDo_BodyEncoding(t *testing.T) {
	tests := []struct {
		name     string
		method   string
		body     any
		wantBody string
	}{
		{"post nil sends null", http.MethodPost, nil, "null"},
		{"put object", http.MethodPut, map[string]string{"title": "x"}, `{"title":"x"}`},
		{"patch empty object", http.MethodPatch, map[string]bool{}, `{}`},
		{"get has no body", http.MethodGet, nil, ""},
		{"delete has no body", http.MethodDelete, nil, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := &recorder{}
			client, _ := newTestClient(t, rec)

			if _, err := client.Do(context.Background(), Request{Method: tt.method, Path: "/x", Body: tt.body}); err != nil {
				t.Fatalf("Do() error = %v", err)
			}
			if got := rec.Last(t).Body; got != tt.wantBody {
				t.Errorf("body = %q, want %q", got, tt.wantBody)
			}
		})
	}
}

func TestDo_UnencodableBody(t *testing.T) {
	rec := &recorder{}
	client, _ := newTestClient(t, rec)

	_, err := client.Do(context.Background(), Request{Method: http.MethodPost, Path: "/x", Body: make(chan int)})
	if err == nil {
		t.Fatal("Do() expected error for unencodable body")
	}
	if len(rec.Requests()) != 0 {
		t.Error("request sent despite encoding failure")
	}
}

func TestDo_Timeout(t *testing.T) {
	release := make(chan struct{})
	rec := &recorder{respond: func(w http.ResponseWriter, r *http.Request, n int) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}}
	client, sleeper := newTestClient(t, rec, WithRetries(1))
	defer close(release)

	_, err := client.Do(context.Background(), Request{Path: "/slow"}, WithRequestTimeout(50*time.Millisecond))
	if !IsNetwork(err) {
		t.Fatalf("Do() error = %v, want network error", err)
	}
	if got := len(rec.Requests()); got != 2 {
		t.Errorf("attempts = %d, want 2 (timeouts are retried)", got)
	}
	if len(sleeper.Waits()) != 1 {
		t.Errorf("waits = %v, want one backoff", sleeper.Waits())
	}
}

func TestDo_CallerCancellationNotRetried(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	rec := &recorder{respond: func(w http.ResponseWriter, r *http.Request, n int) {
		cancel()
		<-r.Context().Done()
	}}
	client, sleeper := newTestClient(t, rec)

	_, err := client.Do(ctx, Request{Path: "/x"})
	if !IsNetwork(err) {
		t.Fatalf("Do() error = %v, want network error", err)
	}
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Do() error = %v, want wrapping context.Canceled", err)
	}
	if got := len(rec.Requests()); got != 1 {
		t.Errorf("attempts = %d, want 1", got)
	}
	if len(sleeper.Waits()) != 0 {
		t.Errorf("waits = %v, want none", sleeper.Waits())
	}
}

func TestDo_AuthFailures(t *testing.T) {
	t.Run("token error aborts without request", func(t *testing.T) {
		rec := &recorder{}
		boom := errors.New("refresh token revoked")
		client, _ := newTestClient(t, rec, WithTokenSource(TokenFunc(func() (string, error) {
			return "", boom
		})))

		_, err := client.Do(context.Background(), Request{Path: "/x"})
		if !IsAuthentication(err) {
			t.Fatalf("Do() error = %v, want authentication error", err)
		}
		if !errors.Is(err, boom) {
			t.Errorf("Do() error = %v, want wrapping %v", err, boom)
		}
		if len(rec.Requests()) != 0 {
			t.Error("request sent despite auth failure")
		}
	})

	t.Run("empty token", func(t *testing.T) {
		rec := &recorder{}
		client, _ := newTestClient(t, rec, WithTokenSource(StaticToken("")))

		_, err := client.Do(context.Background(), Request{Path: "/x"})
		if !errors.Is(err, ErrNotAuthenticated) {
			t.Fatalf("Do() error = %v, want ErrNotAuthenticated", err)
		}
	})

	t.Run("token fails on a retry", func(t *testing.T) {
		rec := &recorder{respond: abort}
		calls := 0
		client, sleeper := newTestClient(t, rec, WithTokenSource(TokenFunc(func() (string, error) {
			calls++
			if calls > 1 {
				return "", errors.New("session expired")
			}
			return "t", nil
		})))

		_, err := client.Do(context.Background(), Request{Path: "/x"})
		if !IsAuthentication(err) {
			t.Fatalf("Do() error = %v, want authentication error", err)
		}
		if got := len(rec.Requests()); got != 1 {
			t.Errorf("attempts = %d, want 1", got)
		}
		if len(sleeper.Waits()) != 1 {
			t.Errorf("waits = %v, want 1", sleeper.Waits())
		}
	})

	t.Run("required auth without source", func(t *testing.T) {
		rec := &recorder{}
		client, _ := newTestClient(t, rec)

		_, err := client.Do(context.Background(), Request{Path: "/x"}, requireAuth())
		if !errors.Is(err, ErrNotAuthenticated) {
			t.Fatalf("Do() error = %v, want ErrNotAuthenticated", err)
		}
		if len(rec.Requests()) != 0 {
			t.Error("request sent without a principal")
		}
	})

	t.Run("per-call auth", func(t *testing.T) {
		rec := &recorder{}
		client, _ := newTestClient(t, rec, WithTokenSource(StaticToken("client")))

		if _, err := client.Do(context.Background(), Request{Path: "/x"}, WithAuth(StaticToken("call"))); err != nil {
			t.Fatalf("Do() error = %v", err)
		}
		if got := rec.Last(t).Header.Get("Authorization"); got != "Bearer call" {
			t.Errorf("Authorization = %q, want Bearer call", got)
		}

		if _, err := client.Do(context.Background(), Request{Path: "/x"}, WithoutAuth()); err != nil {
			t.Fatalf("Do() error = %v", err)
		}
		if got := rec.Last(t).Header.Get("Authorization"); got != "" {
			t.Errorf("Authorization = %q, want none", got)
		}
	})
}

func TestDo_InvalidRequestOption(t *testing.T) {
	rec := &recorder{}
	client, _ := newTestClient(t, rec)

	_, err := client.Do(context.Background(), Request{Path: "/x"}, WithRequestRetries(-1))
	if err == nil || !strings.Contains(err.Error(), "invalid request option") {
		t.Errorf("Do() error = %v, want invalid request option", err)
	}
}

func TestDo_QueryEncoding(t *testing.T) {
	rec := &recorder{}
	client, _ := newTestClient(t, rec)

	_, err := client.Do(context.Background(), Request{
		Path:  "/api/securities/",
		Query: map[string][]string{"search": {"apple inc"}, "limit": {"5"}},
	})
	if err != nil {
		t.Fatalf("Do() error = %v", err)
	}
	if got := rec.Last(t).Query; got != "limit=5&search=apple+inc" {
		t.Errorf("query = %q, want limit=5&search=apple+inc", got)
	}
}

func TestDo_Idempotent(t *testing.T) {
	rec := &recorder{respond: func(w http.ResponseWriter, r *http.Request, n int) {
		writeJSON(w, http.StatusOK, map[string]any{"id": "c1", "title": "Stable", "message_count": 2})
	}}
	client, _ := newTestClient(t, rec)

	req := Request{Path: "/api/chats/c1"}
	first, err := doJSON[map[string]any](context.Background(), client, req)
	if err != nil {
		t.Fatalf("doJSON() error = %v", err)
	}
	second, err := doJSON[map[string]any](context.Background(), client, req)
	if err != nil {
		t.Fatalf("doJSON() error = %v", err)
	}

	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("responses differ (-first +second):\n%s", diff)
	}
}

func TestBackoff(t *testing.T) {
	want := []time.Duration{time.Second, 2 * time.Second, 4 * time.Second, 8 * time.Second}
	for attempt, w := range want {
		if got := backoff(attempt); got != w {
			t.Errorf("backoff(%d) = %v, want %v", attempt, got, w)
		}
	}
}
