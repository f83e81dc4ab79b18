package session

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"easyplit/internal/auth/models"
	"easyplit/pkg/platform/sentinel"
)

// SessionStoreSuite covers persistence semantics (not-found, idempotent
// delete, per-user listing) that handler tests do not reach.
type SessionStoreSuite struct {
	suite.Suite
	store *InMemoryStore
}

func (s *SessionStoreSuite) SetupTest() {
	s.store = NewInMemoryStore()
}

func TestSessionStoreSuite(t *testing.T) {
	suite.Run(t, new(SessionStoreSuite))
}

func (s *SessionStoreSuite) newSession(userID uuid.UUID) *models.Session {
	now := time.Now()
	return &models.Session{
		ID:         uuid.New(),
		UserID:     userID,
		IPAddress:  "192.0.2.1",
		UserAgent:  "test-agent",
		CreatedAt:  now,
		LastSeenAt: now,
		ExpiresAt:  now.Add(time.Hour),
	}
}

func (s *SessionStoreSuite) TestCreateAndFind() {
	sess := s.newSession(uuid.New())
	s.Require().NoError(s.store.Create(context.Background(), sess))

	found, err := s.store.FindByID(context.Background(), sess.ID)
	s.Require().NoError(err)
	s.Equal(sess.UserID, found.UserID)

	_, err = s.store.FindByID(context.Background(), uuid.New())
	s.Require().ErrorIs(err, sentinel.ErrNotFound)
}

func (s *SessionStoreSuite) TestDeleteIsIdempotent() {
	sess := s.newSession(uuid.New())
	s.Require().NoError(s.store.Create(context.Background(), sess))

	s.Require().NoError(s.store.Delete(context.Background(), sess.ID))
	_, err := s.store.FindByID(context.Background(), sess.ID)
	s.Require().ErrorIs(err, sentinel.ErrNotFound)

	// Second delete of the same session must also succeed.
	s.Require().NoError(s.store.Delete(context.Background(), sess.ID))
}

func (s *SessionStoreSuite) TestListByUser() {
	userID := uuid.New()
	first := s.newSession(userID)
	second := s.newSession(userID)
	other := s.newSession(uuid.New())

	for _, sess := range []*models.Session{first, second, other} {
		s.Require().NoError(s.store.Create(context.Background(), sess))
	}

	sessions, err := s.store.ListByUser(context.Background(), userID)
	s.Require().NoError(err)
	s.Len(sessions, 2)
	for _, sess := range sessions {
		s.Equal(userID, sess.UserID)
	}
}

func (s *SessionStoreSuite) TestTouchUpdatesLastSeen() {
	sess := s.newSession(uuid.New())
	s.Require().NoError(s.store.Create(context.Background(), sess))

	sess.LastSeenAt = sess.LastSeenAt.Add(10 * time.Minute)
	s.Require().NoError(s.store.Touch(context.Background(), sess))

	found, err := s.store.FindByID(context.Background(), sess.ID)
	s.Require().NoError(err)
	s.WithinDuration(sess.LastSeenAt, found.LastSeenAt, time.Second)

	missing := s.newSession(uuid.New())
	s.Require().ErrorIs(s.store.Touch(context.Background(), missing), sentinel.ErrNotFound)
}
