// Package poller observes a server-side background job until it reaches a
// terminal state.
//
// This package is internal to folio. It implements the wait-then-poll state
// machine with a fixed attempt budget:
//
//   - [Run]: blocking poll of one job
//   - [Start]/[Handle]: the same poll in the background with explicit cancel
//   - [Sleeper]: injectable waiting, so schedules can be tested without sleeping
//
// The package is generic over the status payload; the root folio package
// supplies the status check and maps outcomes to its public error types.
package poller
