//go:build integration

package user

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"easyplit/internal/auth/models"
	"easyplit/pkg/platform/sentinel"
	"easyplit/pkg/testutil/containers"
)

// PostgresUserStoreSuite runs the user-store contract against a real
// Postgres so the lower(email) unique index is exercised for real.
type PostgresUserStoreSuite struct {
	suite.Suite
	pg    *containers.PostgresContainer
	store *PostgresStore
}

func TestPostgresUserStoreSuite(t *testing.T) {
	suite.Run(t, new(PostgresUserStoreSuite))
}

func (s *PostgresUserStoreSuite) SetupSuite() {
	s.pg = containers.NewPostgresContainer(s.T())
	s.Require().NoError(s.pg.Apply(context.Background(),
		`CREATE TABLE users (
			id UUID PRIMARY KEY,
			email TEXT NOT NULL,
			name TEXT NOT NULL,
			avatar_url TEXT NOT NULL DEFAULT '',
			password_hash TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE UNIQUE INDEX users_email_lower_idx ON users (lower(email))`,
	))
	s.store = NewPostgresStore(s.pg.Pool)
}

func (s *PostgresUserStoreSuite) SetupTest() {
	s.Require().NoError(s.pg.Apply(context.Background(), `TRUNCATE users`))
}

func (s *PostgresUserStoreSuite) newUser(email string) *models.User {
	return &models.User{
		ID:           uuid.New(),
		Email:        email,
		Name:         "Integration User",
		PasswordHash: "hash",
		CreatedAt:    time.Now().UTC(),
	}
}

func (s *PostgresUserStoreSuite) TestRoundTrip() {
	u := s.newUser("ada@example.com")
	s.Require().NoError(s.store.Create(context.Background(), u))

	byID, err := s.store.FindByID(context.Background(), u.ID)
	s.Require().NoError(err)
	s.Equal(u.Email, byID.Email)

	byEmail, err := s.store.FindByEmail(context.Background(), "ada@example.com")
	s.Require().NoError(err)
	s.Equal(u.ID, byEmail.ID)
}

func (s *PostgresUserStoreSuite) TestEmailLookupIsCaseInsensitive() {
	u := s.newUser("Ada@Example.com")
	s.Require().NoError(s.store.Create(context.Background(), u))

	found, err := s.store.FindByEmail(context.Background(), "ada@example.com")
	s.Require().NoError(err)
	s.Equal(u.ID, found.ID)
}

func (s *PostgresUserStoreSuite) TestDuplicateEmailConflicts() {
	s.Require().NoError(s.store.Create(context.Background(), s.newUser("ada@example.com")))

	err := s.store.Create(context.Background(), s.newUser("ADA@EXAMPLE.COM"))
	s.Require().ErrorIs(err, sentinel.ErrConflict)
}

func (s *PostgresUserStoreSuite) TestMissingUserNotFound() {
	_, err := s.store.FindByID(context.Background(), uuid.New())
	s.Require().ErrorIs(err, sentinel.ErrNotFound)

	_, err = s.store.FindByEmail(context.Background(), "ghost@example.com")
	s.Require().ErrorIs(err, sentinel.ErrNotFound)
}
