package group

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"easyplit/pkg/platform/sentinel"
)

// InMemoryStore is the mutex-map store used by tests and local runs.
type InMemoryStore struct {
	mu     sync.RWMutex
	groups map[uuid.UUID]*Group
}

// NewInMemoryStore creates an empty in-memory store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{groups: make(map[uuid.UUID]*Group)}
}

// Create stores a new group.
func (s *InMemoryStore) Create(ctx context.Context, g *Group) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.groups[g.ID]; ok {
		return sentinel.ErrConflict
	}
	s.groups[g.ID] = copyGroup(g)
	return nil
}

// FindByID returns the group or sentinel.ErrNotFound.
func (s *InMemoryStore) FindByID(ctx context.Context, id uuid.UUID) (*Group, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	g, ok := s.groups[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return copyGroup(g), nil
}

// ListByMember returns every group the user belongs to.
func (s *InMemoryStore) ListByMember(ctx context.Context, userID uuid.UUID) ([]*Group, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*Group
	for _, g := range s.groups {
		if g.HasMember(userID) {
			out = append(out, copyGroup(g))
		}
	}
	return out, nil
}

// AddMember appends the user to the group's membership.
func (s *InMemoryStore) AddMember(ctx context.Context, groupID, userID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	g, ok := s.groups[groupID]
	if !ok {
		return sentinel.ErrNotFound
	}
	if g.HasMember(userID) {
		return sentinel.ErrConflict
	}
	g.Members = append(g.Members, userID)
	return nil
}

// Delete removes the group.
func (s *InMemoryStore) Delete(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.groups[id]; !ok {
		return sentinel.ErrNotFound
	}
	delete(s.groups, id)
	return nil
}

func copyGroup(g *Group) *Group {
	cp := *g
	cp.Members = append([]uuid.UUID(nil), g.Members...)
	return &cp
}
