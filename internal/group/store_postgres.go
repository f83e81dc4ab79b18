package group

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"easyplit/pkg/platform/sentinel"
)

const uniqueViolation = "23505"

// PostgresStore persists groups in the groups and group_members tables.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a store over the given pool.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// Create stores the group and its initial membership in one transaction.
func (s *PostgresStore) Create(ctx context.Context, g *Group) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx,
		`INSERT INTO groups (id, name, owner_id, created_at) VALUES ($1, $2, $3, $4)`,
		g.ID, g.Name, g.OwnerID, g.CreatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("insert group: %w", err)
	}
	for _, member := range g.Members {
		if _, err := tx.Exec(ctx,
			`INSERT INTO group_members (group_id, user_id) VALUES ($1, $2)`,
			g.ID, member,
		); err != nil {
			return fmt.Errorf("insert member: %w", err)
		}
	}
	return tx.Commit(ctx)
}

// FindByID returns the group with its full membership.
func (s *PostgresStore) FindByID(ctx context.Context, id uuid.UUID) (*Group, error) {
	var g Group
	err := s.pool.QueryRow(ctx,
		`SELECT id, name, owner_id, created_at FROM groups WHERE id = $1`,
		id,
	).Scan(&g.ID, &g.Name, &g.OwnerID, &g.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("select group: %w", err)
	}

	members, err := s.members(ctx, id)
	if err != nil {
		return nil, err
	}
	g.Members = members
	return &g, nil
}

// ListByMember returns every group the user belongs to.
func (s *PostgresStore) ListByMember(ctx context.Context, userID uuid.UUID) ([]*Group, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT g.id, g.name, g.owner_id, g.created_at
		 FROM groups g
		 JOIN group_members m ON m.group_id = g.id
		 WHERE m.user_id = $1
		 ORDER BY g.created_at DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("select groups: %w", err)
	}
	defer rows.Close()

	var groups []*Group
	for rows.Next() {
		var g Group
		if err := rows.Scan(&g.ID, &g.Name, &g.OwnerID, &g.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan group: %w", err)
		}
		groups = append(groups, &g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate groups: %w", err)
	}

	for _, g := range groups {
		members, err := s.members(ctx, g.ID)
		if err != nil {
			return nil, err
		}
		g.Members = members
	}
	return groups, nil
}

// AddMember inserts one membership row.
func (s *PostgresStore) AddMember(ctx context.Context, groupID, userID uuid.UUID) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO group_members (group_id, user_id) VALUES ($1, $2)`,
		groupID, userID,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("insert member: %w", err)
	}
	return nil
}

// Delete removes the group with its membership and expense rows in one
// transaction. The expense rows must go first or their foreign keys block
// the group row.
func (s *PostgresStore) Delete(ctx context.Context, id uuid.UUID) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx,
		`DELETE FROM expense_participants
		 WHERE expense_id IN (SELECT id FROM expenses WHERE group_id = $1)`, id); err != nil {
		return fmt.Errorf("delete expense participants: %w", err)
	}
	if _, err := tx.Exec(ctx, `DELETE FROM expenses WHERE group_id = $1`, id); err != nil {
		return fmt.Errorf("delete expenses: %w", err)
	}
	if _, err := tx.Exec(ctx, `DELETE FROM group_members WHERE group_id = $1`, id); err != nil {
		return fmt.Errorf("delete members: %w", err)
	}
	tag, err := tx.Exec(ctx, `DELETE FROM groups WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete group: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return sentinel.ErrNotFound
	}
	return tx.Commit(ctx)
}

func (s *PostgresStore) members(ctx context.Context, groupID uuid.UUID) ([]uuid.UUID, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT user_id FROM group_members WHERE group_id = $1`,
		groupID,
	)
	if err != nil {
		return nil, fmt.Errorf("select members: %w", err)
	}
	defer rows.Close()

	var members []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan member: %w", err)
		}
		members = append(members, id)
	}
	return members, rows.Err()
}
