//go:build integration

package expense

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"easyplit/pkg/platform/sentinel"
	"easyplit/pkg/testutil/containers"
)

// PostgresExpenseStoreSuite runs the expense-store contract against a real
// Postgres.
type PostgresExpenseStoreSuite struct {
	suite.Suite
	pg      *containers.PostgresContainer
	store   *PostgresStore
	payerID uuid.UUID
	groupID uuid.UUID
}

func TestPostgresExpenseStoreSuite(t *testing.T) {
	suite.Run(t, new(PostgresExpenseStoreSuite))
}

func (s *PostgresExpenseStoreSuite) SetupSuite() {
	s.pg = containers.NewPostgresContainer(s.T())
	s.Require().NoError(s.pg.Apply(context.Background(),
		`CREATE TABLE users (
			id UUID PRIMARY KEY,
			email TEXT NOT NULL,
			name TEXT NOT NULL
		)`,
		`CREATE TABLE groups (
			id UUID PRIMARY KEY,
			name TEXT NOT NULL,
			owner_id UUID NOT NULL REFERENCES users (id),
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE TABLE expenses (
			id UUID PRIMARY KEY,
			group_id UUID NOT NULL REFERENCES groups (id),
			description TEXT NOT NULL,
			amount_cents BIGINT NOT NULL CHECK (amount_cents > 0),
			payer_id UUID NOT NULL REFERENCES users (id),
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE TABLE expense_participants (
			expense_id UUID NOT NULL REFERENCES expenses (id),
			user_id UUID NOT NULL REFERENCES users (id),
			PRIMARY KEY (expense_id, user_id)
		)`,
	))
	s.store = NewPostgresStore(s.pg.Pool)
}

func (s *PostgresExpenseStoreSuite) SetupTest() {
	ctx := context.Background()
	s.Require().NoError(s.pg.Apply(ctx,
		`TRUNCATE expense_participants, expenses, groups, users`,
	))

	s.payerID = uuid.New()
	_, err := s.pg.Pool.Exec(ctx,
		`INSERT INTO users (id, email, name) VALUES ($1, $2, $3)`,
		s.payerID, "payer@example.com", "Payer",
	)
	s.Require().NoError(err)

	s.groupID = uuid.New()
	_, err = s.pg.Pool.Exec(ctx,
		`INSERT INTO groups (id, name, owner_id) VALUES ($1, $2, $3)`,
		s.groupID, "Trip", s.payerID,
	)
	s.Require().NoError(err)
}

func (s *PostgresExpenseStoreSuite) newExpense(createdAt time.Time) *Expense {
	return &Expense{
		ID:             uuid.New(),
		GroupID:        s.groupID,
		Description:    "Dinner",
		AmountCents:    4200,
		PayerID:        s.payerID,
		ParticipantIDs: []uuid.UUID{s.payerID},
		CreatedAt:      createdAt,
	}
}

func (s *PostgresExpenseStoreSuite) TestCreateAndFindRoundTrip() {
	e := s.newExpense(time.Now().UTC())
	s.Require().NoError(s.store.Create(context.Background(), e))

	found, err := s.store.FindByID(context.Background(), e.ID)
	s.Require().NoError(err)
	s.Equal(e.Description, found.Description)
	s.Equal(e.AmountCents, found.AmountCents)
	s.Equal([]uuid.UUID{s.payerID}, found.ParticipantIDs)
}

func (s *PostgresExpenseStoreSuite) TestListByGroupNewestFirst() {
	older := s.newExpense(time.Now().UTC().Add(-time.Hour))
	newer := s.newExpense(time.Now().UTC())
	s.Require().NoError(s.store.Create(context.Background(), older))
	s.Require().NoError(s.store.Create(context.Background(), newer))

	expenses, err := s.store.ListByGroup(context.Background(), s.groupID)
	s.Require().NoError(err)
	s.Require().Len(expenses, 2)
	s.Equal(newer.ID, expenses[0].ID)
	s.Equal(older.ID, expenses[1].ID)
}

func (s *PostgresExpenseStoreSuite) TestDeleteRemovesParticipants() {
	e := s.newExpense(time.Now().UTC())
	s.Require().NoError(s.store.Create(context.Background(), e))

	s.Require().NoError(s.store.Delete(context.Background(), e.ID))
	s.Require().ErrorIs(s.store.Delete(context.Background(), e.ID), sentinel.ErrNotFound)

	var remaining int
	s.Require().NoError(s.pg.Pool.QueryRow(context.Background(),
		`SELECT count(*) FROM expense_participants WHERE expense_id = $1`, e.ID,
	).Scan(&remaining))
	s.Zero(remaining)
}
