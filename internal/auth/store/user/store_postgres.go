package user

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"easyplit/internal/auth/models"
	"easyplit/pkg/platform/sentinel"
)

// uniqueViolation is the Postgres error code raised by the lower(email)
// unique index.
const uniqueViolation = "23505"

// PostgresStore persists users in the users table.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a store over the given pool.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// Create inserts a new user. Returns sentinel.ErrConflict when the email is
// already registered.
func (s *PostgresStore) Create(ctx context.Context, u *models.User) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO users (id, email, name, avatar_url, password_hash, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		u.ID, u.Email, u.Name, u.AvatarURL, u.PasswordHash, u.CreatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

// FindByID returns the user or sentinel.ErrNotFound.
func (s *PostgresStore) FindByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	return s.findOne(ctx, `
		SELECT id, email, name, avatar_url, password_hash, created_at
		FROM users WHERE id = $1`, id)
}

// FindByEmail returns the user or sentinel.ErrNotFound. Lookup is
// case-insensitive.
func (s *PostgresStore) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.findOne(ctx, `
		SELECT id, email, name, avatar_url, password_hash, created_at
		FROM users WHERE lower(email) = lower($1)`, email)
}

// Update replaces the mutable fields of a user record.
func (s *PostgresStore) Update(ctx context.Context, u *models.User) error {
	tag, err := s.pool.Exec(ctx, `
		UPDATE users SET name = $2, avatar_url = $3, password_hash = $4
		WHERE id = $1`,
		u.ID, u.Name, u.AvatarURL, u.PasswordHash,
	)
	if err != nil {
		return fmt.Errorf("update user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *PostgresStore) findOne(ctx context.Context, query string, arg any) (*models.User, error) {
	var u models.User
	err := s.pool.QueryRow(ctx, query, arg).Scan(
		&u.ID, &u.Email, &u.Name, &u.AvatarURL, &u.PasswordHash, &u.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query user: %w", err)
	}
	return &u, nil
}
