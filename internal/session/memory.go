package session

import (
	"context"
	"sync"
)

// MemoryStore keeps sessions for the life of the process
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]Session
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sessions: make(map[string]Session)}
}

func (m *MemoryStore) Get(_ context.Context, terminalID string) (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s, ok := m.sessions[terminalID]
	if !ok {
		return nil, ErrNotFound
	}
	return &s, nil
}

func (m *MemoryStore) Save(_ context.Context, terminalID string, s *Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.sessions[terminalID] = *s
	return nil
}

func (m *MemoryStore) Delete(_ context.Context, terminalID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.sessions, terminalID)
	return nil
}
