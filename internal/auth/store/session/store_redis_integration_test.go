//go:build integration

package session

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"easyplit/internal/auth/models"
	"easyplit/pkg/platform/sentinel"
	"easyplit/pkg/testutil/containers"
)

// RedisSessionStoreSuite runs the session-store contract against a real
// Redis so TTL expiry and index pruning are exercised for real.
type RedisSessionStoreSuite struct {
	suite.Suite
	redis *containers.RedisContainer
	store *RedisStore
}

func TestRedisSessionStoreSuite(t *testing.T) {
	suite.Run(t, new(RedisSessionStoreSuite))
}

func (s *RedisSessionStoreSuite) SetupSuite() {
	s.redis = containers.NewRedisContainer(s.T())
	s.store = NewRedisStore(s.redis.Client)
}

func (s *RedisSessionStoreSuite) SetupTest() {
	require.NoError(s.T(), s.redis.FlushAll(context.Background()))
}

func (s *RedisSessionStoreSuite) newSession(userID uuid.UUID, ttl time.Duration) *models.Session {
	now := time.Now()
	return &models.Session{
		ID:         uuid.New(),
		UserID:     userID,
		IPAddress:  "192.0.2.1",
		UserAgent:  "integration-agent",
		CreatedAt:  now,
		LastSeenAt: now,
		ExpiresAt:  now.Add(ttl),
	}
}

func (s *RedisSessionStoreSuite) TestRoundTrip() {
	sess := s.newSession(uuid.New(), time.Hour)
	s.Require().NoError(s.store.Create(context.Background(), sess))

	found, err := s.store.FindByID(context.Background(), sess.ID)
	s.Require().NoError(err)
	s.Equal(sess.UserID, found.UserID)
	s.Equal(sess.UserAgent, found.UserAgent)
}

func (s *RedisSessionStoreSuite) TestExpiredSessionIsNotFound() {
	sess := s.newSession(uuid.New(), 500*time.Millisecond)
	s.Require().NoError(s.store.Create(context.Background(), sess))

	time.Sleep(time.Second)

	_, err := s.store.FindByID(context.Background(), sess.ID)
	s.Require().ErrorIs(err, sentinel.ErrNotFound)
}

func (s *RedisSessionStoreSuite) TestCreateRejectsAlreadyExpired() {
	sess := s.newSession(uuid.New(), -time.Minute)
	s.Require().ErrorIs(s.store.Create(context.Background(), sess), sentinel.ErrInvalidState)
}

func (s *RedisSessionStoreSuite) TestDeleteIsIdempotent() {
	sess := s.newSession(uuid.New(), time.Hour)
	s.Require().NoError(s.store.Create(context.Background(), sess))

	s.Require().NoError(s.store.Delete(context.Background(), sess.ID))
	s.Require().NoError(s.store.Delete(context.Background(), sess.ID))

	_, err := s.store.FindByID(context.Background(), sess.ID)
	s.Require().ErrorIs(err, sentinel.ErrNotFound)
}

func (s *RedisSessionStoreSuite) TestListByUserSurvivesCorruptIndexEntry() {
	userID := uuid.New()
	first := s.newSession(userID, time.Hour)
	second := s.newSession(userID, time.Hour)
	s.Require().NoError(s.store.Create(context.Background(), first))
	s.Require().NoError(s.store.Create(context.Background(), second))

	// A garbage index member must be pruned without shifting the pruning
	// onto live sessions.
	s.Require().NoError(s.redis.Client.SAdd(
		context.Background(), userIndexKey(userID), "not-a-session-id",
	).Err())

	sessions, err := s.store.ListByUser(context.Background(), userID)
	s.Require().NoError(err)
	s.Len(sessions, 2)

	members, err := s.redis.Client.SMembers(context.Background(), userIndexKey(userID)).Result()
	s.Require().NoError(err)
	s.ElementsMatch([]string{first.ID.String(), second.ID.String()}, members)
}

func (s *RedisSessionStoreSuite) TestListByUserPrunesExpired() {
	userID := uuid.New()
	longLived := s.newSession(userID, time.Hour)
	shortLived := s.newSession(userID, 500*time.Millisecond)

	s.Require().NoError(s.store.Create(context.Background(), longLived))
	s.Require().NoError(s.store.Create(context.Background(), shortLived))

	time.Sleep(time.Second)

	sessions, err := s.store.ListByUser(context.Background(), userID)
	s.Require().NoError(err)
	s.Require().Len(sessions, 1)
	s.Equal(longLived.ID, sessions[0].ID)
}
