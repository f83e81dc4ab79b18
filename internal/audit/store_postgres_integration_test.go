//go:build integration

package audit

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"easyplit/pkg/testutil/containers"
)

// PostgresOutboxSuite runs the outbox contract against a real Postgres so
// the mark-published array binding is exercised through the actual driver.
type PostgresOutboxSuite struct {
	suite.Suite
	pg    *containers.PostgresContainer
	store *PostgresStore
}

func TestPostgresOutboxSuite(t *testing.T) {
	suite.Run(t, new(PostgresOutboxSuite))
}

func (s *PostgresOutboxSuite) SetupSuite() {
	s.pg = containers.NewPostgresContainer(s.T())
	s.Require().NoError(s.pg.Apply(context.Background(),
		`CREATE TABLE audit_outbox (
			id UUID PRIMARY KEY,
			payload JSONB NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			published_at TIMESTAMPTZ
		)`,
	))

	db, err := OpenPostgres(s.pg.URL)
	s.Require().NoError(err)
	s.T().Cleanup(func() { _ = db.Close() })
	s.store = NewPostgresStore(db)
}

func (s *PostgresOutboxSuite) SetupTest() {
	s.Require().NoError(s.pg.Apply(context.Background(), `TRUNCATE audit_outbox`))
}

func (s *PostgresOutboxSuite) appendEvent(action Action, at time.Time) Event {
	event := Event{
		ID:        uuid.New(),
		Action:    action,
		UserID:    uuid.New(),
		Timestamp: at,
	}
	s.Require().NoError(s.store.Append(context.Background(), event))
	return event
}

func (s *PostgresOutboxSuite) TestAppendListMarkRoundTrip() {
	now := time.Now().UTC()
	first := s.appendEvent(ActionLoginSucceeded, now.Add(-2*time.Minute))
	second := s.appendEvent(ActionGroupCreated, now.Add(-time.Minute))
	third := s.appendEvent(ActionLogout, now)

	unpublished, err := s.store.ListUnpublished(context.Background(), 10)
	s.Require().NoError(err)
	s.Require().Len(unpublished, 3)
	s.Equal(first.ID, unpublished[0].ID)
	s.Equal(second.ID, unpublished[1].ID)

	s.Require().NoError(s.store.MarkPublished(context.Background(),
		[]uuid.UUID{first.ID, second.ID},
	))

	remaining, err := s.store.ListUnpublished(context.Background(), 10)
	s.Require().NoError(err)
	s.Require().Len(remaining, 1)
	s.Equal(third.ID, remaining[0].ID)

	s.Require().NoError(s.store.MarkPublished(context.Background(), []uuid.UUID{third.ID}))

	empty, err := s.store.ListUnpublished(context.Background(), 10)
	s.Require().NoError(err)
	s.Empty(empty)
}

func (s *PostgresOutboxSuite) TestMarkPublishedEmptyIsNoOp() {
	s.Require().NoError(s.store.MarkPublished(context.Background(), nil))
}

func (s *PostgresOutboxSuite) TestListHonorsLimit() {
	now := time.Now().UTC()
	oldest := s.appendEvent(ActionUserRegistered, now.Add(-time.Hour))
	s.appendEvent(ActionLoginSucceeded, now)

	unpublished, err := s.store.ListUnpublished(context.Background(), 1)
	s.Require().NoError(err)
	s.Require().Len(unpublished, 1)
	s.Equal(oldest.ID, unpublished[0].ID)
}
