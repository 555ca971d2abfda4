// Package folio is a Go client for the Folio investment-assistant API.
//
// Folio is designed as an SDK-first library: the command-line tool in
// cmd/folio is a thin layer over the same [Client] applications embed.
// Configuration uses the functional options pattern.
//
// # Quick Start
//
//	client, err := folio.New(
//	    folio.WithBaseURL("https://api.example.com"),
//	    folio.WithTokenSource(folio.StaticToken(os.Getenv("FOLIO_API_TOKEN"))),
//	)
//	if err != nil {
//	    return err
//	}
//	defer client.Close()
//
//	chat, err := client.Chats.Create(ctx, "Rebalancing ideas")
//	reply, err := client.Messages.Send(ctx, chat.ID, "What is my largest position?")
//
// # Request Executor
//
// Every call goes through [Client.Do], which applies one policy regardless of
// the caller:
//
//   - Headers: Content-Type and Accept are application/json; a bearer token
//     is minted from the [oauth2.TokenSource] on every attempt
//   - Timeout: 30 seconds per attempt unless overridden
//   - Retries: network failures and timeouts are retried 3 times with
//     1s, 2s, 4s backoff; non-2xx responses and authentication failures are
//     never retried
//   - Responses: 204 yields an empty [Response]; non-JSON bodies are wrapped
//     as {"message": <text>}
//
// Per-call overrides are passed as [RequestOption] values.
//
// # Errors
//
// Request failures are returned as [*Error] with a [ErrorKind] of
// authentication, application or network. Background jobs add
// [*TaskFailedError] and [*TaskTimeoutError].
//
//	if _, err := client.Holdings.List(ctx); folio.IsAuthentication(err) {
//	    // prompt for sign-in
//	}
//
// # Background Jobs
//
// News summaries are produced asynchronously. [NewsService.Queue] enqueues a
// job and [NewsService.PollUntilComplete] observes it: an initial 110 second
// delay, then up to 4 checks 10 seconds apart. [NewsService.StartPolling]
// runs the same poll in the background and returns a cancelable [TaskWatch].
//
// # Architecture
//
// Folio consists of several internal packages (under internal/):
//
//   - transport: single-attempt HTTP with connection pooling and timeouts
//   - poller: the wait-then-poll state machine behind background jobs
//   - store: in-memory records for the mock backend
//   - server: an in-memory mock of the Folio API for development and tests
//   - logging: zap logger construction for the mock backend
//
// These packages are internal and not part of the public API.
package folio
