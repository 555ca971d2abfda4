package folio

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/oauth2"

	"github.com/jpalmerr/folio/internal/poller"
)

// clientConfig holds mutable state during Client construction.
type clientConfig struct {
	baseURL     string
	timeout     time.Duration
	retries     int
	headers     http.Header
	tokenSource oauth2.TokenSource
	logger      *slog.Logger
	httpClient  *http.Client
	schedule    PollSchedule
	sleep       poller.Sleeper
}

// Option is a function that configures a [Client] during construction.
//
// Options return an error if validation fails; [New] stops at the first
// failing option.
type Option func(*clientConfig) error

// WithBaseURL sets the API root all request paths are resolved against.
//
// Defaults to http://127.0.0.1:8000. A trailing slash is removed.
//
// Returns an error unless the URL is absolute with an http or https scheme.
func WithBaseURL(raw string) Option {
	return func(cfg *clientConfig) error {
		u, err := url.Parse(raw)
		if err != nil {
			return fmt.Errorf("invalid base URL: %w", err)
		}
		if u.Scheme != "http" && u.Scheme != "https" {
			return fmt.Errorf("base URL scheme must be http or https, got %q", u.Scheme)
		}
		if u.Host == "" {
			return errors.New("base URL must include a host")
		}
		cfg.baseURL = strings.TrimRight(raw, "/")
		return nil
	}
}

// WithTimeout sets the default per-attempt timeout. Defaults to 30 seconds.
//
// Returns an error if the duration is zero or negative.
func WithTimeout(d time.Duration) Option {
	return func(cfg *clientConfig) error {
		if d <= 0 {
			return errors.New("timeout must be positive")
		}
		cfg.timeout = d
		return nil
	}
}

// WithRetries sets how many additional attempts follow a network failure.
// Defaults to 3; zero disables retrying.
//
// Returns an error if n is negative.
func WithRetries(n int) Option {
	return func(cfg *clientConfig) error {
		if n < 0 {
			return errors.New("retries cannot be negative")
		}
		cfg.retries = n
		return nil
	}
}

// WithHeaders adds headers sent on every request.
//
// Accepts variadic key-value pairs. These override the default JSON headers
// and are overridden by per-request headers.
//
// Example:
//
//	client, err := folio.New(
//	    folio.WithHeaders("X-Client", "folio-cli", "Accept-Language", "en"),
//	)
//
// Returns an error if an odd number of arguments is provided.
func WithHeaders(keyValues ...string) Option {
	return func(cfg *clientConfig) error {
		if len(keyValues)%2 != 0 {
			return errors.New("WithHeaders requires an even number of arguments (key-value pairs)")
		}
		for i := 0; i < len(keyValues); i += 2 {
			cfg.headers.Set(keyValues[i], keyValues[i+1])
		}
		return nil
	}
}

// WithTokenSource sets the Auth Context used for bearer credentials.
//
// Token is called once per request attempt, so the source should return a
// fresh (or still valid) credential each time. Operations that require a
// signed-in user fail with [ErrNotAuthenticated] when no source is set.
//
// Example:
//
//	client, err := folio.New(
//	    folio.WithTokenSource(folio.StaticToken(os.Getenv("FOLIO_API_TOKEN"))),
//	)
//
// Returns an error if ts is nil.
func WithTokenSource(ts oauth2.TokenSource) Option {
	return func(cfg *clientConfig) error {
		if ts == nil {
			return errors.New("token source cannot be nil")
		}
		cfg.tokenSource = ts
		return nil
	}
}

// WithLogger sets a custom [slog.Logger] for the client.
//
// If not specified, [slog.Default] is used.
//
// Returns an error if the logger is nil.
func WithLogger(logger *slog.Logger) Option {
	return func(cfg *clientConfig) error {
		if logger == nil {
			return errors.New("logger cannot be nil")
		}
		cfg.logger = logger
		return nil
	}
}

// WithHTTPClient replaces the pooled HTTP client. Its own Timeout should be
// zero; per-attempt timeouts are applied through the request context.
//
// Returns an error if hc is nil.
func WithHTTPClient(hc *http.Client) Option {
	return func(cfg *clientConfig) error {
		if hc == nil {
			return errors.New("http client cannot be nil")
		}
		cfg.httpClient = hc
		return nil
	}
}

// WithTaskPolling overrides the background job poll schedule.
//
// Defaults: 110s initial delay, 10s interval, 4 attempts.
//
// Returns an error if any value is zero or negative.
func WithTaskPolling(initialDelay, interval time.Duration, maxAttempts int) Option {
	return func(cfg *clientConfig) error {
		s := PollSchedule{InitialDelay: initialDelay, Interval: interval, MaxAttempts: maxAttempts}
		if err := s.validate(); err != nil {
			return err
		}
		cfg.schedule = s
		return nil
	}
}

// withSleeper replaces the wait used for retry backoff and polling delays.
func withSleeper(s poller.Sleeper) Option {
	return func(cfg *clientConfig) error {
		cfg.sleep = s
		return nil
	}
}
