// Package store provides the in-memory record storage behind the mock
// backend.
//
// The main components are:
//
//   - [Store]: Interface defining keyed storage with stable listing order
//   - [MemoryStore]: Generic in-memory implementation of Store
//
// The store is designed for concurrent access: HTTP handlers on the mock
// backend read and write it from many goroutines. Listing returns snapshots
// so callers never observe a partially applied update.
package store
