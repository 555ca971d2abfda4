package folio

import (
	"errors"
	"net/http"
	"time"

	"golang.org/x/oauth2"
)

// requestConfig holds the effective settings of one Do call.
type requestConfig struct {
	timeout      time.Duration
	retries      int
	header       http.Header
	tokenSource  oauth2.TokenSource
	authRequired bool
}

// RequestOption overrides client defaults for a single [Client.Do] call.
type RequestOption func(*requestConfig) error

// WithRequestTimeout overrides the per-attempt timeout for one call.
//
// Returns an error if the duration is zero or negative.
func WithRequestTimeout(d time.Duration) RequestOption {
	return func(cfg *requestConfig) error {
		if d <= 0 {
			return errors.New("request timeout must be positive")
		}
		cfg.timeout = d
		return nil
	}
}

// WithRequestRetries overrides the retry budget for one call. An explicit
// zero means a single attempt.
//
// Returns an error if n is negative.
func WithRequestRetries(n int) RequestOption {
	return func(cfg *requestConfig) error {
		if n < 0 {
			return errors.New("request retries cannot be negative")
		}
		cfg.retries = n
		return nil
	}
}

// WithRequestHeader sets a header for one call. It overrides client and
// default headers of the same name.
func WithRequestHeader(key, value string) RequestOption {
	return func(cfg *requestConfig) error {
		cfg.header.Set(key, value)
		return nil
	}
}

// WithAuth uses ts instead of the client's token source for one call.
func WithAuth(ts oauth2.TokenSource) RequestOption {
	return func(cfg *requestConfig) error {
		if ts == nil {
			return errors.New("token source cannot be nil")
		}
		cfg.tokenSource = ts
		return nil
	}
}

// WithoutAuth sends one call unauthenticated even if the client has a
// token source.
func WithoutAuth() RequestOption {
	return func(cfg *requestConfig) error {
		cfg.tokenSource = nil
		return nil
	}
}

// requireAuth fails the call before any network I/O when no token source is
// in effect.
func requireAuth() RequestOption {
	return func(cfg *requestConfig) error {
		cfg.authRequired = true
		return nil
	}
}

// authed returns opts plus requireAuth without touching the caller's slice.
func authed(opts []RequestOption) []RequestOption {
	out := make([]RequestOption, 0, len(opts)+1)
	out = append(out, opts...)
	return append(out, requireAuth())
}
