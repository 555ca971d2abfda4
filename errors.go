package folio

import (
	"errors"
	"fmt"
)

// ErrorKind classifies a failed request.
type ErrorKind string

const (
	// KindAuthentication means no principal was available or minting a
	// bearer credential failed. Never retried.
	KindAuthentication ErrorKind = "authentication"

	// KindApplication means the server answered with a non-2xx status.
	// Never retried.
	KindApplication ErrorKind = "application"

	// KindNetwork means no usable response arrived: transport failure,
	// timeout or caller cancellation. Retried within the request's budget,
	// except for cancellation.
	KindNetwork ErrorKind = "network"
)

// ErrNotAuthenticated reports that an operation needing a principal was
// called without one, or that the token source yielded no token.
var ErrNotAuthenticated = errors.New("user not authenticated")

// Error is the single error type returned by [Client.Do] and every service
// method built on it.
//
// Use [errors.As] to inspect it, or the [IsAuthentication],
// [IsApplication] and [IsNetwork] helpers.
type Error struct {
	// Kind is the failure class.
	Kind ErrorKind

	// Code is the machine-readable code. For application errors this is the
	// server's "error" field, or "Request failed" when absent.
	Code string

	// Message is the human-readable message. For application errors this is
	// the server's "message" field, or "HTTP <status>: <status text>".
	Message string

	// StatusCode is the HTTP status for application errors, zero otherwise.
	StatusCode int

	// Details holds the parsed error body. It is an empty map when the body
	// was missing or malformed.
	Details map[string]any

	// Attempts is the number of attempts made before giving up.
	Attempts int

	// Err is the underlying cause, if any.
	Err error
}

func (e *Error) Error() string {
	if e.Kind == KindApplication {
		return fmt.Sprintf("folio: %s (%s): %s", e.Kind, e.Code, e.Message)
	}
	return fmt.Sprintf("folio: %s error: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// IsAuthentication reports whether err is an authentication failure.
func IsAuthentication(err error) bool {
	return hasKind(err, KindAuthentication)
}

// IsApplication reports whether err is a non-2xx server response.
func IsApplication(err error) bool {
	return hasKind(err, KindApplication)
}

// IsNetwork reports whether err is a transport failure, timeout or
// cancellation.
func IsNetwork(err error) bool {
	return hasKind(err, KindNetwork)
}

func hasKind(err error, kind ErrorKind) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == kind
}

// StatusCode returns the HTTP status carried by an application error, or 0.
func StatusCode(err error) int {
	var e *Error
	if errors.As(err, &e) {
		return e.StatusCode
	}
	return 0
}

func authError(err error) *Error {
	return &Error{
		Kind:    KindAuthentication,
		Code:    "Authentication failed",
		Message: err.Error(),
		Err:     err,
	}
}

func networkError(err error, attempts int) *Error {
	return &Error{
		Kind:     KindNetwork,
		Code:     "Network Error",
		Message:  err.Error(),
		Attempts: attempts,
		Err:      err,
	}
}

// TaskFailedError is returned when a background job reports the failed
// status.
type TaskFailedError struct {
	TaskID  string
	Symbol  string
	Message string

	// Status is the terminal observation.
	Status NewsSummaryStatus
}

func (e *TaskFailedError) Error() string {
	return fmt.Sprintf("news summary task failed for %s: %s", e.Symbol, e.Message)
}

// TaskTimeoutError is returned when a background job is still pending after
// the poll budget is spent. The job may still finish server-side; polling it
// again is a new operation.
type TaskTimeoutError struct {
	TaskID   string
	Symbol   string
	Attempts int
}

func (e *TaskTimeoutError) Error() string {
	return fmt.Sprintf("news summary task for %s timed out after %d attempts", e.Symbol, e.Attempts)
}
