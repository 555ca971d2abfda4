// Package server is an in-memory mock of the Folio REST API.
//
// It serves the chat, message, holding, watchlist, securities, news-summary
// and Plaid routes from memory stores, so the SDK and CLI can be exercised
// without a live backend:
//
//   - Bearer auth: holdings, watchlist, news and Plaid routes require a
//     token; the rest accept anonymous requests but reject a bad token
//   - Errors: every failure renders as {"error": code, "message": text}
//   - News tasks: a queued task reports processing until the configured
//     task duration has elapsed, then completed (or failed for symbols in
//     Config.FailSymbols)
//
// The clock is injectable, so tests can step a task through its states
// without sleeping.
package server
