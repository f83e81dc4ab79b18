package expense

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"easyplit/pkg/platform/sentinel"
)

// InMemoryStore is the mutex-map store used by tests and local runs.
type InMemoryStore struct {
	mu       sync.RWMutex
	expenses map[uuid.UUID]*Expense
}

// NewInMemoryStore creates an empty in-memory store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{expenses: make(map[uuid.UUID]*Expense)}
}

// Create stores a new expense.
func (s *InMemoryStore) Create(ctx context.Context, e *Expense) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.expenses[e.ID]; ok {
		return sentinel.ErrConflict
	}
	s.expenses[e.ID] = copyExpense(e)
	return nil
}

// FindByID returns the expense or sentinel.ErrNotFound.
func (s *InMemoryStore) FindByID(ctx context.Context, id uuid.UUID) (*Expense, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.expenses[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return copyExpense(e), nil
}

// ListByGroup returns every expense in the group, in no particular order.
func (s *InMemoryStore) ListByGroup(ctx context.Context, groupID uuid.UUID) ([]*Expense, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*Expense
	for _, e := range s.expenses {
		if e.GroupID == groupID {
			out = append(out, copyExpense(e))
		}
	}
	return out, nil
}

// Delete removes the expense.
func (s *InMemoryStore) Delete(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.expenses[id]; !ok {
		return sentinel.ErrNotFound
	}
	delete(s.expenses, id)
	return nil
}

func copyExpense(e *Expense) *Expense {
	cp := *e
	cp.ParticipantIDs = append([]uuid.UUID(nil), e.ParticipantIDs...)
	return &cp
}
