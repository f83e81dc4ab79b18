// Package user provides the user-record stores. The memory implementation
// backs tests and local development; Postgres is the production store.
package user

import (
	"context"
	"strings"
	"sync"

	"github.com/google/uuid"

	"easyplit/internal/auth/models"
	"easyplit/pkg/platform/sentinel"
)

// InMemoryStore is a mutex-guarded map store. Email uniqueness is enforced
// case-insensitively, matching the Postgres lower(email) index.
type InMemoryStore struct {
	mu      sync.RWMutex
	byID    map[uuid.UUID]*models.User
	byEmail map[string]uuid.UUID
}

// NewInMemoryStore creates an empty user store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		byID:    make(map[uuid.UUID]*models.User),
		byEmail: make(map[string]uuid.UUID),
	}
}

// Create inserts a new user. Returns sentinel.ErrConflict if the email is
// already registered.
func (s *InMemoryStore) Create(ctx context.Context, u *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := emailKey(u.Email)
	if _, exists := s.byEmail[key]; exists {
		return sentinel.ErrConflict
	}

	cp := *u
	s.byID[u.ID] = &cp
	s.byEmail[key] = u.ID
	return nil
}

// FindByID returns the user or sentinel.ErrNotFound.
func (s *InMemoryStore) FindByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.byID[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

// FindByEmail returns the user or sentinel.ErrNotFound. Lookup is
// case-insensitive.
func (s *InMemoryStore) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.byEmail[emailKey(email)]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	cp := *s.byID[id]
	return &cp, nil
}

// Update replaces a stored user record.
func (s *InMemoryStore) Update(ctx context.Context, u *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.byID[u.ID]; !ok {
		return sentinel.ErrNotFound
	}
	cp := *u
	s.byID[u.ID] = &cp
	return nil
}

func emailKey(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
