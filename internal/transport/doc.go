// Package transport performs single HTTP attempts for the folio client.
//
// This package is internal to folio. It owns connection pooling, the
// per-attempt timeout guard and bounded body reads; retry, auth and response
// interpretation live in the root package.
package transport
