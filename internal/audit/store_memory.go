package audit

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// InMemoryStore implements Store and OutboxStore for tests and development.
type InMemoryStore struct {
	mu        sync.Mutex
	events    []Event
	published map[uuid.UUID]bool
}

// NewInMemoryStore creates an empty audit store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{published: make(map[uuid.UUID]bool)}
}

// Append stores an event.
func (s *InMemoryStore) Append(ctx context.Context, event Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.events = append(s.events, event)
	return nil
}

// ListUnpublished returns up to limit events not yet marked published, in
// append order.
func (s *InMemoryStore) ListUnpublished(ctx context.Context, limit int) ([]Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []Event
	for _, e := range s.events {
		if s.published[e.ID] {
			continue
		}
		out = append(out, e)
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

// MarkPublished flags events as relayed.
func (s *InMemoryStore) MarkPublished(ctx context.Context, ids []uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, id := range ids {
		s.published[id] = true
	}
	return nil
}

// Events returns a copy of everything appended, for test assertions.
func (s *InMemoryStore) Events() []Event {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Event, len(s.events))
	copy(out, s.events)
	return out
}
