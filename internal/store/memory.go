package store

import (
	"slices"
	"sync"
)

// MemoryStore is an in-memory implementation of [Store].
//
// Values are copied in and out by assignment; callers storing reference
// types (slices, maps, pointers) must not mutate them after Put.
type MemoryStore[K comparable, V any] struct {
	mu    sync.RWMutex
	items map[K]V
	order []K
}

// NewMemoryStore creates a new, empty in-memory [Store].
func NewMemoryStore[K comparable, V any]() *MemoryStore[K, V] {
	return &MemoryStore[K, V]{
		items: make(map[K]V),
	}
}

// Put inserts or replaces the value stored under key.
func (m *MemoryStore[K, V]) Put(key K, value V) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.items[key]; !ok {
		m.order = append(m.order, key)
	}
	m.items[key] = value
}

// Get returns the value for key and whether it was present.
func (m *MemoryStore[K, V]) Get(key K) (V, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	v, ok := m.items[key]
	return v, ok
}

// Update applies fn to the stored value under the write lock.
func (m *MemoryStore[K, V]) Update(key K, fn func(V) V) (V, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	v, ok := m.items[key]
	if !ok {
		return v, false
	}
	v = fn(v)
	m.items[key] = v
	return v, true
}

// Delete removes key and reports whether it was present.
func (m *MemoryStore[K, V]) Delete(key K) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.items[key]; !ok {
		return false
	}
	delete(m.items, key)
	m.order = slices.DeleteFunc(m.order, func(k K) bool { return k == key })
	return true
}

// List returns a snapshot of all values in insertion order.
//
// The returned slice is a copy; modifications do not affect the store.
func (m *MemoryStore[K, V]) List() []V {
	m.mu.RLock()
	defer m.mu.RUnlock()

	values := make([]V, 0, len(m.order))
	for _, k := range m.order {
		values = append(values, m.items[k])
	}
	return values
}

// Find returns the first value, in insertion order, matching pred.
func (m *MemoryStore[K, V]) Find(pred func(V) bool) (V, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, k := range m.order {
		if v := m.items[k]; pred(v) {
			return v, true
		}
	}
	var zero V
	return zero, false
}

// Len returns the number of stored values.
func (m *MemoryStore[K, V]) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.items)
}
