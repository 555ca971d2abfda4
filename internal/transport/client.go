package transport

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

const maxResponseBodySize = 4 << 20 // 4MB

// connection pooling limits; a single API host is the common case
const (
	defaultMaxIdleConns        = 100
	defaultMaxIdleConnsPerHost = 10
	defaultMaxConnsPerHost     = 10
	defaultIdleConnTimeout     = 60 * time.Second // conservative: matches common ALB defaults
)

// ErrTimeout reports that an attempt was aborted because no response arrived
// within its timeout. It is distinct from cancellation of the caller's context.
var ErrTimeout = errors.New("request timed out")

// Request is a single outbound HTTP call.
type Request struct {
	// Method is the HTTP method. Empty means GET.
	Method string

	// URL is the absolute target URL.
	URL string

	// Header is sent as-is.
	Header http.Header

	// Body is the encoded request body, nil for none.
	Body []byte
}

// Response holds the result of a completed HTTP exchange made by [Client].
//
// A Response is returned for every status code; deciding whether a status
// is an error is the caller's concern.
type Response struct {
	// Body contains the HTTP response body, limited to 4MB.
	Body []byte

	// StatusCode is the HTTP status code (e.g., 200, 404, 500).
	StatusCode int

	// Header contains the response headers.
	Header http.Header

	// Latency is the total time taken for the request.
	Latency time.Duration
}

// Client is an HTTP client wrapper that performs exactly one attempt per
// [Client.Fetch] call.
//
// Client uses per-request timeouts via context rather than a global timeout,
// allowing each call to carry its own timeout configuration.
type Client struct {
	httpClient *http.Client
}

// NewClient creates a new [Client] with its own pooled transport.
//
// Connection pooling configuration:
//   - MaxIdleConns: 100 total idle connections
//   - MaxIdleConnsPerHost: 10 idle connections per host
//   - MaxConnsPerHost: 10 concurrent connections per host
//   - IdleConnTimeout: 60 seconds before closing idle connections
func NewClient() *Client {
	return &Client{
		httpClient: &http.Client{
			// no default timeout - we use per-request timeouts via context
			Transport: &http.Transport{
				Proxy:               http.ProxyFromEnvironment,
				MaxIdleConns:        defaultMaxIdleConns,
				MaxIdleConnsPerHost: defaultMaxIdleConnsPerHost,
				MaxConnsPerHost:     defaultMaxConnsPerHost,
				IdleConnTimeout:     defaultIdleConnTimeout,
				DisableKeepAlives:   false, // explicitly enable connection reuse
			},
		},
	}
}

// NewClientWith wraps an existing *http.Client. A nil client yields [NewClient].
func NewClientWith(hc *http.Client) *Client {
	if hc == nil {
		return NewClient()
	}
	return &Client{httpClient: hc}
}

// Fetch performs one HTTP request bounded by timeout.
//
// If no response (including the body) arrives within timeout, the attempt is
// aborted and the returned error wraps [ErrTimeout]. Cancellation of ctx
// itself is reported with ctx's error instead, so callers can tell a local
// timeout from a caller giving up. A non-positive timeout disables the guard.
func (c *Client) Fetch(ctx context.Context, req Request, timeout time.Duration) (Response, error) {
	attemptCtx := ctx
	cancel := context.CancelFunc(func() {})
	if timeout > 0 {
		attemptCtx, cancel = context.WithTimeout(ctx, timeout)
	}
	defer cancel()

	start := time.Now()

	method := req.Method
	if method == "" {
		method = http.MethodGet
	}

	var body io.Reader
	if req.Body != nil {
		body = bytes.NewReader(req.Body)
	}

	httpReq, err := http.NewRequestWithContext(attemptCtx, method, req.URL, body)
	if err != nil {
		return Response{Latency: time.Since(start)}, fmt.Errorf("failed to create request: %w", err)
	}
	for key, values := range req.Header {
		for _, v := range values {
			httpReq.Header.Add(key, v)
		}
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return Response{Latency: time.Since(start)}, classify(ctx, attemptCtx, timeout, fmt.Errorf("request failed: %w", err))
	}
	defer func() { _ = resp.Body.Close() }()

	// read body with size limit
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBodySize))
	if err != nil {
		return Response{
			StatusCode: resp.StatusCode,
			Header:     resp.Header,
			Latency:    time.Since(start),
		}, classify(ctx, attemptCtx, timeout, fmt.Errorf("failed to read response body: %w", err))
	}

	return Response{
		Body:       data,
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
		Latency:    time.Since(start),
	}, nil
}

// classify tags err with ErrTimeout when the attempt deadline fired while the
// parent context was still live.
func classify(parent, attempt context.Context, timeout time.Duration, err error) error {
	if parent.Err() != nil {
		return fmt.Errorf("%w: %w", parent.Err(), err)
	}
	if errors.Is(attempt.Err(), context.DeadlineExceeded) {
		return fmt.Errorf("%w after %s: %w", ErrTimeout, timeout, err)
	}
	return err
}

// Close closes all idle connections in the client's connection pool.
//
// Safe to call multiple times. After Close, the client remains usable but
// new connections will be established as needed.
func (c *Client) Close() {
	if c == nil || c.httpClient == nil {
		return
	}
	c.httpClient.CloseIdleConnections()
}
