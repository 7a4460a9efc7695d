package secrets

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemorySessionStore keeps session bindings in process memory. Suitable for
// a single instance deployment and for tests; expired entries are dropped
// lazily on read.
type MemorySessionStore struct {
	mu      sync.RWMutex
	entries map[string]memorySession
}

type memorySession struct {
	accountID uuid.UUID
	expiresAt time.Time
}

var _ SessionStore = (*MemorySessionStore)(nil)

func NewMemorySessionStore() *MemorySessionStore {
	return &MemorySessionStore{
		entries: make(map[string]memorySession),
	}
}

func (s *MemorySessionStore) Put(_ context.Context, tokenHash string, accountID uuid.UUID, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries[tokenHash] = memorySession{
		accountID: accountID,
		expiresAt: time.Now().Add(ttl),
	}

	return nil
}

func (s *MemorySessionStore) Get(_ context.Context, tokenHash string) (uuid.UUID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.entries[tokenHash]
	if !ok {
		return uuid.Nil, ErrSessionNotFound
	}

	if time.Now().After(entry.expiresAt) {
		delete(s.entries, tokenHash)
		return uuid.Nil, ErrSessionNotFound
	}

	return entry.accountID, nil
}

func (s *MemorySessionStore) Del(_ context.Context, tokenHash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.entries, tokenHash)
	return nil
}

// Len reports live plus not-yet-collected expired entries.
func (s *MemorySessionStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}
