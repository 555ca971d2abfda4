package store

// Store is a keyed collection of records.
//
// Implementations must be safe for concurrent access. Listing order is the
// order in which keys were first inserted; replacing a value keeps its
// position.
type Store[K comparable, V any] interface {
	// Put inserts or replaces the value stored under key.
	Put(key K, value V)

	// Get returns the value for key and whether it was present.
	Get(key K) (V, bool)

	// Update applies fn to the value under key and stores the result
	// atomically. It reports false, without calling fn, if key is absent.
	Update(key K, fn func(V) V) (V, bool)

	// Delete removes key and reports whether it was present.
	Delete(key K) bool

	// List returns a snapshot of all values in insertion order.
	List() []V

	// Find returns the first value, in insertion order, matching pred.
	Find(pred func(V) bool) (V, bool)

	// Len returns the number of stored values.
	Len() int
}
