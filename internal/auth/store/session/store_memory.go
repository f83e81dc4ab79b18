// Package session provides the login-session stores. Redis is the
// production store so every instance shares revocation state; the memory
// implementation backs tests and single-node development.
package session

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"easyplit/internal/auth/models"
	"easyplit/pkg/platform/sentinel"
)

// InMemoryStore is a mutex-guarded map store.
type InMemoryStore struct {
	mu       sync.RWMutex
	sessions map[uuid.UUID]*models.Session
}

// NewInMemoryStore creates an empty session store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{sessions: make(map[uuid.UUID]*models.Session)}
}

// Create stores a new session.
func (s *InMemoryStore) Create(ctx context.Context, sess *models.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := *sess
	s.sessions[sess.ID] = &cp
	return nil
}

// FindByID returns the session or sentinel.ErrNotFound. Expired sessions
// are reported as not found, matching the Redis TTL behavior.
func (s *InMemoryStore) FindByID(ctx context.Context, id uuid.UUID) (*models.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, ok := s.sessions[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	cp := *sess
	return &cp, nil
}

// Touch updates the last-activity timestamp of a live session.
func (s *InMemoryStore) Touch(ctx context.Context, sess *models.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, ok := s.sessions[sess.ID]
	if !ok {
		return sentinel.ErrNotFound
	}
	stored.LastSeenAt = sess.LastSeenAt
	return nil
}

// Delete removes a session. Deleting an absent session is not an error;
// logout must stay idempotent.
func (s *InMemoryStore) Delete(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.sessions, id)
	return nil
}

// ListByUser returns all stored sessions for a user, unordered.
func (s *InMemoryStore) ListByUser(ctx context.Context, userID uuid.UUID) ([]*models.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*models.Session
	for _, sess := range s.sessions {
		if sess.UserID == userID {
			cp := *sess
			out = append(out, &cp)
		}
	}
	return out, nil
}
