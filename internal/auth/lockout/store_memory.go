package lockout

import (
	"context"
	"sync"
	"time"
)

type entry struct {
	count     int64
	expiresAt time.Time
}

// InMemoryStore backs tests and single-node development.
type InMemoryStore struct {
	mu      sync.Mutex
	entries map[string]*entry
}

// NewInMemoryStore creates an empty lockout store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{entries: make(map[string]*entry)}
}

func (s *InMemoryStore) Incr(ctx context.Context, key string, window time.Duration) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	e, ok := s.entries[key]
	if !ok || now.After(e.expiresAt) {
		e = &entry{expiresAt: now.Add(window)}
		s.entries[key] = e
	}
	e.count++
	return e.count, nil
}

func (s *InMemoryStore) Count(ctx context.Context, key string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[key]
	if !ok || time.Now().After(e.expiresAt) {
		return 0, nil
	}
	return e.count, nil
}

func (s *InMemoryStore) Reset(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.entries, key)
	return nil
}
