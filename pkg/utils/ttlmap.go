package utils

import (
	"sync"
	"time"
)

// TTLMap is a concurrency-safe map whose entries expire after a fixed duration.
// Expired entries are dropped lazily on access and swept opportunistically on writes.
type TTLMap[K comparable, V any] struct {
	mu      sync.Mutex
	entries map[K]ttlEntry[V]
	ttl     time.Duration
	ops     int
}

type ttlEntry[V any] struct {
	value     V
	expiresAt time.Time
}

// sweepInterval is the number of writes between full expiry sweeps.
const sweepInterval = 1024

// NewTTLMap creates a TTLMap whose entries expire after the given duration.
func NewTTLMap[K comparable, V any](ttl time.Duration) *TTLMap[K, V] {
	return &TTLMap[K, V]{
		entries: make(map[K]ttlEntry[V]),
		ttl:     ttl,
	}
}

// Set stores a value, resetting its expiry.
func (m *TTLMap[K, V]) Set(key K, value V) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.entries[key] = ttlEntry[V]{
		value:     value,
		expiresAt: time.Now().Add(m.ttl),
	}

	// Sweep periodically so keys that are written once and never read
	// again do not accumulate forever.
	m.ops++
	if m.ops >= sweepInterval {
		m.ops = 0

		now := time.Now()
		for k, e := range m.entries {
			if now.After(e.expiresAt) {
				delete(m.entries, k)
			}
		}
	}
}

// Get returns the value for a key if present and not expired.
func (m *TTLMap[K, V]) Get(key K) (V, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, ok := m.entries[key]
	if !ok {
		var zero V
		return zero, false
	}

	if time.Now().After(entry.expiresAt) {
		delete(m.entries, key)

		var zero V

		return zero, false
	}

	return entry.value, true
}

// Delete removes a key regardless of expiry.
func (m *TTLMap[K, V]) Delete(key K) {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.entries, key)
}
