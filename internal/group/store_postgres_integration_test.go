//go:build integration

package group

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"easyplit/pkg/platform/sentinel"
	"easyplit/pkg/testutil/containers"
)

// PostgresGroupStoreSuite runs the group-store contract against a real
// Postgres so the foreign keys from expenses are exercised for real.
type PostgresGroupStoreSuite struct {
	suite.Suite
	pg    *containers.PostgresContainer
	store *PostgresStore
}

func TestPostgresGroupStoreSuite(t *testing.T) {
	suite.Run(t, new(PostgresGroupStoreSuite))
}

func (s *PostgresGroupStoreSuite) SetupSuite() {
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
		`CREATE TABLE group_members (
			group_id UUID NOT NULL REFERENCES groups (id),
			user_id UUID NOT NULL REFERENCES users (id),
			PRIMARY KEY (group_id, user_id)
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

func (s *PostgresGroupStoreSuite) SetupTest() {
	s.Require().NoError(s.pg.Apply(context.Background(),
		`TRUNCATE expense_participants, expenses, group_members, groups, users`,
	))
}

func (s *PostgresGroupStoreSuite) seedUser(email string) uuid.UUID {
	id := uuid.New()
	_, err := s.pg.Pool.Exec(context.Background(),
		`INSERT INTO users (id, email, name) VALUES ($1, $2, $3)`,
		id, email, "Integration User",
	)
	s.Require().NoError(err)
	return id
}

func (s *PostgresGroupStoreSuite) newGroup(ownerID uuid.UUID) *Group {
	return &Group{
		ID:        uuid.New(),
		Name:      "Trip",
		OwnerID:   ownerID,
		Members:   []uuid.UUID{ownerID},
		CreatedAt: time.Now().UTC(),
	}
}

func (s *PostgresGroupStoreSuite) TestCreateAndFindRoundTrip() {
	owner := s.seedUser("owner@example.com")
	g := s.newGroup(owner)
	s.Require().NoError(s.store.Create(context.Background(), g))

	found, err := s.store.FindByID(context.Background(), g.ID)
	s.Require().NoError(err)
	s.Equal(g.Name, found.Name)
	s.Equal([]uuid.UUID{owner}, found.Members)
}

func (s *PostgresGroupStoreSuite) TestAddMemberDuplicateConflicts() {
	owner := s.seedUser("owner@example.com")
	friend := s.seedUser("friend@example.com")
	g := s.newGroup(owner)
	s.Require().NoError(s.store.Create(context.Background(), g))

	s.Require().NoError(s.store.AddMember(context.Background(), g.ID, friend))
	s.Require().ErrorIs(s.store.AddMember(context.Background(), g.ID, friend), sentinel.ErrConflict)
}

func (s *PostgresGroupStoreSuite) TestDeleteRemovesExpenses() {
	owner := s.seedUser("owner@example.com")
	g := s.newGroup(owner)
	s.Require().NoError(s.store.Create(context.Background(), g))

	expenseID := uuid.New()
	_, err := s.pg.Pool.Exec(context.Background(),
		`INSERT INTO expenses (id, group_id, description, amount_cents, payer_id)
		 VALUES ($1, $2, $3, $4, $5)`,
		expenseID, g.ID, "Dinner", 4200, owner,
	)
	s.Require().NoError(err)
	_, err = s.pg.Pool.Exec(context.Background(),
		`INSERT INTO expense_participants (expense_id, user_id) VALUES ($1, $2)`,
		expenseID, owner,
	)
	s.Require().NoError(err)

	s.Require().NoError(s.store.Delete(context.Background(), g.ID))

	_, err = s.store.FindByID(context.Background(), g.ID)
	s.Require().ErrorIs(err, sentinel.ErrNotFound)

	var remaining int
	s.Require().NoError(s.pg.Pool.QueryRow(context.Background(),
		`SELECT count(*) FROM expenses WHERE group_id = $1`, g.ID,
	).Scan(&remaining))
	s.Zero(remaining)
}

func (s *PostgresGroupStoreSuite) TestDeleteMissingNotFound() {
	s.Require().ErrorIs(s.store.Delete(context.Background(), uuid.New()), sentinel.ErrNotFound)
}

func (s *PostgresGroupStoreSuite) TestListByMemberNewestFirst() {
	owner := s.seedUser("owner@example.com")
	older := s.newGroup(owner)
	older.CreatedAt = time.Now().UTC().Add(-time.Hour)
	newer := s.newGroup(owner)
	s.Require().NoError(s.store.Create(context.Background(), older))
	s.Require().NoError(s.store.Create(context.Background(), newer))

	groups, err := s.store.ListByMember(context.Background(), owner)
	s.Require().NoError(err)
	s.Require().Len(groups, 2)
	s.Equal(newer.ID, groups[0].ID)
	s.Equal(older.ID, groups[1].ID)
}
