package folio

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jpalmerr/folio/internal/transport"
)

// Request describes one logical API call.
type Request struct {
	// Method is the HTTP method. Empty means GET.
	Method string

	// Path is appended to the client's base URL, e.g. "/api/chats/".
	Path string

	// Query is encoded onto the URL when non-empty.
	Query url.Values

	// Body is JSON-encoded. For POST, PUT and PATCH it is always encoded,
	// so a nil Body sends the JSON literal null.
	Body any
}

// Response is a successful API response.
type Response struct {
	StatusCode int
	Header     http.Header
	Latency    time.Duration

	// Attempts is the number of attempts the call took.
	Attempts int

	body      []byte
	noContent bool
}

// NoContent reports whether the server answered 204 No Content.
func (r *Response) NoContent() bool {
	return r.noContent
}

// Raw returns the JSON payload. Non-JSON bodies appear as
// {"message": <text>}. Raw is nil for 204 responses.
func (r *Response) Raw() json.RawMessage {
	return r.body
}

// Decode unmarshals the payload into v. It is a no-op for 204 responses.
func (r *Response) Decode(v any) error {
	if r.noContent {
		return nil
	}
	if err := json.Unmarshal(r.body, v); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// errMalformedBody marks a success response whose JSON body did not parse.
// It is retried like a transport failure, since a truncated body is the
// usual cause.
var errMalformedBody = errors.New("malformed JSON response body")

// Do executes req with the client's timeout, retry and auth policy.
//
// Each attempt resolves headers afresh, including minting a new bearer
// token, then issues the call under its own timeout. Network failures and
// timeouts are retried with a 2^attempt second backoff. A non-2xx status is
// returned immediately as a [KindApplication] error, and a failure to obtain
// a token immediately as a [KindAuthentication] error. Cancellation of ctx
// stops the call without further retries.
//
// Every attempt of one call carries the same X-Request-ID.
func (c *Client) Do(ctx context.Context, req Request, opts ...RequestOption) (*Response, error) {
	rc := requestConfig{
		timeout:     c.timeout,
		retries:     c.retries,
		header:      make(http.Header),
		tokenSource: c.tokenSource,
	}
	for _, opt := range opts {
		if err := opt(&rc); err != nil {
			return nil, fmt.Errorf("invalid request option: %w", err)
		}
	}

	if rc.authRequired && rc.tokenSource == nil {
		return nil, authError(ErrNotAuthenticated)
	}

	method := req.Method
	if method == "" {
		method = http.MethodGet
	}

	body, err := encodeBody(method, req.Body)
	if err != nil {
		return nil, err
	}

	target := c.baseURL + req.Path
	if len(req.Query) > 0 {
		target += "?" + req.Query.Encode()
	}

	requestID := uuid.NewString()
	log := c.logger.With("method", method, "path", req.Path, "request_id", requestID)

	var lastErr error
	attempts := 0
	for attempt := 0; attempt <= rc.retries; attempt++ {
		attempts = attempt + 1

		header, err := c.buildHeader(rc, requestID)
		if err != nil {
			e := authError(err)
			e.Attempts = attempts
			log.Warn("request failed", "kind", e.Kind, "error", err.Error())
			return nil, e
		}

		log.Debug("request attempt", "attempt", attempt)

		resp, err := c.transport.Fetch(ctx, transport.Request{
			Method: method,
			URL:    target,
			Header: header,
			Body:   body,
		}, rc.timeout)
		if err == nil {
			var out *Response
			out, err = interpret(resp)
			if err == nil {
				out.Attempts = attempts
				return out, nil
			}
			var apiErr *Error
			if errors.As(err, &apiErr) {
				apiErr.Attempts = attempts
				log.Warn("request failed", "kind", apiErr.Kind, "status", apiErr.StatusCode, "code", apiErr.Code)
				return nil, apiErr
			}
		}
		lastErr = err

		// the caller gave up; retrying cannot help
		if ctx.Err() != nil || attempt == rc.retries {
			break
		}

		delay := backoff(attempt)
		log.Warn("request retry scheduled", "attempt", attempt, "delay", delay.String(), "error", err.Error())
		if serr := c.sleep(ctx, delay); serr != nil {
			lastErr = fmt.Errorf("retry aborted: %w (last error: %w)", serr, lastErr)
			break
		}
	}

	e := networkError(lastErr, attempts)
	log.Warn("request failed", "kind", e.Kind, "attempts", attempts, "error", lastErr.Error())
	return nil, e
}

// backoff returns the wait after failed attempt n (0-based): 1s, 2s, 4s, ...
func backoff(attempt int) time.Duration {
	return time.Duration(1<<attempt) * time.Second
}

func encodeBody(method string, body any) ([]byte, error) {
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodPatch:
	default:
		if body == nil {
			return nil, nil
		}
	}
	data, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to encode request body: %w", err)
	}
	return data, nil
}

// buildHeader layers default, client, per-call and auth headers.
func (c *Client) buildHeader(rc requestConfig, requestID string) (http.Header, error) {
	h := make(http.Header)
	h.Set("Content-Type", "application/json")
	h.Set("Accept", "application/json")

	for _, src := range []http.Header{c.headers, rc.header} {
		for k, vs := range src {
			h[k] = append([]string(nil), vs...)
		}
	}

	if rc.tokenSource != nil {
		tok, err := resolveToken(rc.tokenSource)
		if err != nil {
			return nil, err
		}
		h.Set("Authorization", "Bearer "+tok)
	}

	h.Set("X-Request-ID", requestID)
	return h, nil
}

// interpret turns a completed exchange into a Response or an application
// error.
func interpret(resp transport.Response) (*Response, error) {
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, applicationError(resp)
	}

	out := &Response{
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
		Latency:    resp.Latency,
	}

	if resp.StatusCode == http.StatusNoContent {
		out.noContent = true
		return out, nil
	}

	if !strings.Contains(resp.Header.Get("Content-Type"), "application/json") {
		wrapped, err := json.Marshal(map[string]string{"message": string(resp.Body)})
		if err != nil {
			return nil, fmt.Errorf("failed to wrap text response: %w", err)
		}
		out.body = wrapped
		return out, nil
	}

	body := resp.Body
	if len(strings.TrimSpace(string(body))) == 0 {
		body = []byte("null")
	}
	if !json.Valid(body) {
		return nil, errMalformedBody
	}
	out.body = body
	return out, nil
}

// applicationError builds the error for a non-2xx response. A missing or
// malformed body degrades to an empty object.
func applicationError(resp transport.Response) *Error {
	var details map[string]any
	if err := json.Unmarshal(resp.Body, &details); err != nil || details == nil {
		details = map[string]any{}
	}

	code, _ := details["error"].(string)
	if code == "" {
		code = "Request failed"
	}
	msg, _ := details["message"].(string)
	if msg == "" {
		msg = fmt.Sprintf("HTTP %d: %s", resp.StatusCode, http.StatusText(resp.StatusCode))
	}

	return &Error{
		Kind:       KindApplication,
		Code:       code,
		Message:    msg,
		StatusCode: resp.StatusCode,
		Details:    details,
	}
}

// doJSON runs req and decodes the payload into T.
func doJSON[T any](ctx context.Context, c *Client, req Request, opts ...RequestOption) (T, error) {
	var out T
	resp, err := c.Do(ctx, req, opts...)
	if err != nil {
		return out, err
	}
	if err := resp.Decode(&out); err != nil {
		return out, fmt.Errorf("%s %s: %w", methodOrGet(req.Method), req.Path, err)
	}
	return out, nil
}

func methodOrGet(m string) string {
	if m == "" {
		return http.MethodGet
	}
	return m
}
