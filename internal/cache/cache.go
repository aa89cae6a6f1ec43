// Package cache provides the injectable byte store used to carry
// snapshot computations across process restarts.
//
// The dashboard never depends on the cache for correctness. Every miss
// or error path falls back to recomputing from the CSV sources, so
// implementations report failures as misses where they can and callers
// log the rest.
package cache

import (
	"context"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/vmihailenco/msgpack/v5"
)

// Store is the cache surface. Keys are fingerprint tokens, values are
// msgpack payloads produced by Encode.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, val []byte, ttl time.Duration) error
}

// Encode serializes a cache payload with msgpack.
func Encode(v any) ([]byte, error) {
	return msgpack.Marshal(v)
}

// Decode deserializes a payload produced by Encode.
func Decode(data []byte, v any) error {
	return msgpack.Unmarshal(data, v)
}

type entry struct {
	val     []byte
	expires time.Time
}

// Memory is a process-local Store for tests and single-node runs.
type Memory struct {
	clock clockwork.Clock

	mu      sync.Mutex
	entries map[string]entry
}

// NewMemory returns an empty in-process store.
func NewMemory() *Memory {
	return NewMemoryWithClock(clockwork.NewRealClock())
}

// NewMemoryWithClock returns a store whose expiry checks use the given
// clock.
func NewMemoryWithClock(clock clockwork.Clock) *Memory {
	return &Memory{clock: clock, entries: make(map[string]entry)}
}

// Get returns the value stored under key, expiring it lazily.
func (m *Memory) Get(_ context.Context, key string) ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.entries[key]
	if !ok {
		return nil, false, nil
	}
	if !e.expires.IsZero() && m.clock.Now().After(e.expires) {
		delete(m.entries, key)
		return nil, false, nil
	}
	return e.val, true, nil
}

// Set stores val under key. A non-positive ttl stores it without expiry.
func (m *Memory) Set(_ context.Context, key string, val []byte, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	var expires time.Time
	if ttl > 0 {
		expires = m.clock.Now().Add(ttl)
	}
	m.entries[key] = entry{val: append([]byte(nil), val...), expires: expires}
	return nil
}

// Len reports the number of live entries, counting expired ones that
// have not been read yet.
func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}
