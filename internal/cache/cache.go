// Package cache provides the asset-result cache used for at-most-once
// generation. Keys are content hashes of normalized actions; caching is an
// optimization, never a correctness requirement, so callers treat write
// failures as advisory.
package cache

import (
	"sync"
	"time"
)

// Cache is the lookup interface injected into the execution context.
type Cache interface {
	// Get returns the cached value for key, or false when absent or expired.
	Get(key string) (any, bool)
	// Set stores value under key. A zero ttl means no expiry.
	Set(key string, value any, ttl time.Duration) error
	// Clear drops every entry.
	Clear()
}

type entry struct {
	value     any
	expiresAt time.Time
}

// Memory is an in-process Cache with per-entry TTL.
type Memory struct {
	mu      sync.Mutex
	entries map[string]entry
	// now is swappable for expiry tests.
	now func() time.Time
}

// NewMemory returns an empty in-memory cache.
func NewMemory() *Memory {
	return &Memory{
		entries: make(map[string]entry),
		now:     time.Now,
	}
}

// Get implements Cache. Expired entries are evicted on read.
func (m *Memory) Get(key string) (any, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.entries[key]
	if !ok {
		return nil, false
	}
	if !e.expiresAt.IsZero() && m.now().After(e.expiresAt) {
		delete(m.entries, key)
		return nil, false
	}
	return e.value, true
}

// Set implements Cache.
func (m *Memory) Set(key string, value any, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	e := entry{value: value}
	if ttl > 0 {
		e.expiresAt = m.now().Add(ttl)
	}
	m.entries[key] = e
	return nil
}

// Clear implements Cache.
func (m *Memory) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = make(map[string]entry)
}

// Len reports the number of live entries, for tests and metrics.
func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}
