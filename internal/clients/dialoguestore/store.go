package dialoguestore

import (
	"context"
	"sync"
	"time"
)

// Session is the per-browser-session dialogue state: the current
// conversation state and the remembered theme, if any.
type Session struct {
	State string
	Theme string
}

// Store keeps dialogue sessions keyed by session id. Entries expire after
// the TTL owned by the implementation; Get on a missing or expired key
// returns ok=false, never an error state the caller has to special-case.
type Store interface {
	Get(ctx context.Context, sessionID string) (Session, bool, error)
	Put(ctx context.Context, sessionID string, s Session) error
	Delete(ctx context.Context, sessionID string) error
}

type memoryEntry struct {
	session   Session
	expiresAt time.Time
}

type memoryStore struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	ttl     time.Duration
}

// NewMemoryStore is the fallback when no redis address is configured.
// Single-process only.
func NewMemoryStore(ttl time.Duration) Store {
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	return &memoryStore{
		entries: make(map[string]memoryEntry),
		ttl:     ttl,
	}
}

func (m *memoryStore) Get(_ context.Context, sessionID string) (Session, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.entries[sessionID]
	if !ok {
		return Session{}, false, nil
	}
	if time.Now().After(e.expiresAt) {
		delete(m.entries, sessionID)
		return Session{}, false, nil
	}
	return e.session, true, nil
}

func (m *memoryStore) Put(_ context.Context, sessionID string, s Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[sessionID] = memoryEntry{session: s, expiresAt: time.Now().Add(m.ttl)}
	return nil
}

func (m *memoryStore) Delete(_ context.Context, sessionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, sessionID)
	return nil
}
