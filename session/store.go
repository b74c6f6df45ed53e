// Package session holds the server-side session-scoped store: one slot per
// logical user session, carrying the request state that survives a redirect
// (scheduled secondary validation, stored fingerprints, continuation data).
//
// The slot is guarded against concurrent requests from the same session; two
// tabs submitting simultaneously serialize here and the drift detection
// fingerprint turns the race into a recoverable "someone else changed this"
// error instead of silent corruption.
package session

import (
	"sync"
)

// Store one slot of opaque bytes per session id
type Store interface {
	// Lock acquires the session slot; the returned function releases it.
	// Each HTTP request holds the lock for its whole duration.
	Lock(id string) (release func())

	// Load the stored slot, nil when the session has none
	Load(id string) ([]byte, error)

	// Save replaces the slot
	Save(id string, data []byte) error

	// Delete discards the slot
	Delete(id string) error

	Close() error
}

// locks per-session mutexes shared by both store implementations
type locks struct {
	mu      sync.Mutex
	byId    map[string]*sync.Mutex
	pending map[string]int
}

func newLocks() *locks {
	return &locks{byId: map[string]*sync.Mutex{}, pending: map[string]int{}}
}

func (l *locks) lock(id string) func() {
	l.mu.Lock()
	m, exists := l.byId[id]
	if !exists {
		m = &sync.Mutex{}
		l.byId[id] = m
	}
	l.pending[id]++
	l.mu.Unlock()

	m.Lock()
	return func() {
		m.Unlock()
		l.mu.Lock()
		l.pending[id]--
		if l.pending[id] == 0 {
			delete(l.byId, id)
			delete(l.pending, id)
		}
		l.mu.Unlock()
	}
}

// MemoryStore an in-process store, the default for single-node deployments
// and tests
type MemoryStore struct {
	locks *locks
	mu    sync.RWMutex
	slots map[string][]byte
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{locks: newLocks(), slots: map[string][]byte{}}
}

func (s *MemoryStore) Lock(id string) func() {
	return s.locks.lock(id)
}

func (s *MemoryStore) Load(id string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	data, exists := s.slots[id]
	if !exists {
		return nil, nil
	}
	out := make([]byte, len(data))
	copy(out, data)
	return out, nil
}

func (s *MemoryStore) Save(id string, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored := make([]byte, len(data))
	copy(stored, data)
	s.slots[id] = stored
	return nil
}

func (s *MemoryStore) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.slots, id)
	return nil
}

func (s *MemoryStore) Close() error {
	return nil
}
