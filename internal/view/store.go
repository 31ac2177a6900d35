package view

import (
	"context"
	"sync"
	"time"
)

// UpdateFunc derives the next state. Returning an error aborts the update.
type UpdateFunc func(State) (State, error)

// Store keeps one State per browser session.
// A session that was never written loads as NewState().
type Store interface {
	Load(ctx context.Context, sessionID string) (State, error)
	// Update applies fn atomically and returns the stored result. When fn
	// fails the stored state is left untouched and returned with the error.
	Update(ctx context.Context, sessionID string, fn UpdateFunc) (State, error)
	Delete(ctx context.Context, sessionID string) error
	Ping(ctx context.Context) error
}

type memoryEntry struct {
	state     State
	expiresAt time.Time
}

// MemoryStore is an in-process Store with sliding expiry
type MemoryStore struct {
	mu       sync.Mutex
	sessions map[string]*memoryEntry
	ttl      time.Duration
	now      func() time.Time
}

// NewMemoryStore creates a MemoryStore whose entries live ttl after their last update
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		sessions: make(map[string]*memoryEntry),
		ttl:      ttl,
		now:      time.Now,
	}
}

// Load returns the session state
func (m *MemoryStore) Load(ctx context.Context, sessionID string) (State, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if e := m.live(sessionID); e != nil {
		return e.state, nil
	}
	return NewState(), nil
}

// Update applies fn under the store lock
func (m *MemoryStore) Update(ctx context.Context, sessionID string, fn UpdateFunc) (State, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	current := NewState()
	if e := m.live(sessionID); e != nil {
		current = e.state
	}

	next, err := fn(current)
	if err != nil {
		return current, err
	}

	m.sessions[sessionID] = &memoryEntry{state: next, expiresAt: m.now().Add(m.ttl)}
	return next, nil
}

// Delete forgets a session
func (m *MemoryStore) Delete(ctx context.Context, sessionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, sessionID)
	return nil
}

// Ping always succeeds
func (m *MemoryStore) Ping(ctx context.Context) error {
	return nil
}

// Len returns the number of stored sessions, expired ones included
func (m *MemoryStore) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// SweepExpired drops every expired session and returns how many were removed
func (m *MemoryStore) SweepExpired(ctx context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	removed := 0
	for id, e := range m.sessions {
		if !now.Before(e.expiresAt) {
			delete(m.sessions, id)
			removed++
		}
	}
	return removed, nil
}

// live returns the entry if present and not expired. Caller holds mu.
func (m *MemoryStore) live(sessionID string) *memoryEntry {
	e, ok := m.sessions[sessionID]
	if !ok || !m.now().Before(e.expiresAt) {
		return nil
	}
	return e
}
