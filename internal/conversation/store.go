package conversation

import (
	"context"
	"sync"
)

// Store resolves per-session memory. Get never fails on a missing session;
// an unknown ID yields a fresh Memory.
type Store interface {
	Get(ctx context.Context, sessionID string) (*Memory, error)
	Save(ctx context.Context, sessionID string, m *Memory) error
	Delete(ctx context.Context, sessionID string) error
}

// MemoryStore keeps sessions in process memory. Save is a no-op because Get
// hands out live pointers.
type MemoryStore struct {
	mu       sync.Mutex
	sessions map[string]*Memory
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sessions: make(map[string]*Memory)}
}

func (s *MemoryStore) Get(_ context.Context, sessionID string) (*Memory, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.sessions[sessionID]
	if !ok {
		m = NewMemory()
		s.sessions[sessionID] = m
	}
	return m, nil
}

func (s *MemoryStore) Save(context.Context, string, *Memory) error { return nil }

func (s *MemoryStore) Delete(_ context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, sessionID)
	return nil
}
