package expense

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"easyplit/pkg/platform/sentinel"
)

// PostgresStore persists expenses in the expenses and expense_participants
// tables.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a store over the given pool.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// Create stores the expense and its participants in one transaction.
func (s *PostgresStore) Create(ctx context.Context, e *Expense) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx,
		`INSERT INTO expenses (id, group_id, description, amount_cents, payer_id, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		e.ID, e.GroupID, e.Description, e.AmountCents, e.PayerID, e.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert expense: %w", err)
	}
	for _, participant := range e.ParticipantIDs {
		if _, err := tx.Exec(ctx,
			`INSERT INTO expense_participants (expense_id, user_id) VALUES ($1, $2)`,
			e.ID, participant,
		); err != nil {
			return fmt.Errorf("insert participant: %w", err)
		}
	}
	return tx.Commit(ctx)
}

// FindByID returns the expense with its participants.
func (s *PostgresStore) FindByID(ctx context.Context, id uuid.UUID) (*Expense, error) {
	var e Expense
	err := s.pool.QueryRow(ctx,
		`SELECT id, group_id, description, amount_cents, payer_id, created_at
		 FROM expenses WHERE id = $1`,
		id,
	).Scan(&e.ID, &e.GroupID, &e.Description, &e.AmountCents, &e.PayerID, &e.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("select expense: %w", err)
	}

	participants, err := s.participants(ctx, id)
	if err != nil {
		return nil, err
	}
	e.ParticipantIDs = participants
	return &e, nil
}

// ListByGroup returns the group's expenses, newest first.
func (s *PostgresStore) ListByGroup(ctx context.Context, groupID uuid.UUID) ([]*Expense, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, group_id, description, amount_cents, payer_id, created_at
		 FROM expenses WHERE group_id = $1
		 ORDER BY created_at DESC`,
		groupID,
	)
	if err != nil {
		return nil, fmt.Errorf("select expenses: %w", err)
	}
	defer rows.Close()

	var expenses []*Expense
	for rows.Next() {
		var e Expense
		if err := rows.Scan(&e.ID, &e.GroupID, &e.Description, &e.AmountCents, &e.PayerID, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan expense: %w", err)
		}
		expenses = append(expenses, &e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate expenses: %w", err)
	}

	for _, e := range expenses {
		participants, err := s.participants(ctx, e.ID)
		if err != nil {
			return nil, err
		}
		e.ParticipantIDs = participants
	}
	return expenses, nil
}

// Delete removes the expense and its participant rows.
func (s *PostgresStore) Delete(ctx context.Context, id uuid.UUID) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM expense_participants WHERE expense_id = $1`, id); err != nil {
		return fmt.Errorf("delete participants: %w", err)
	}
	tag, err := tx.Exec(ctx, `DELETE FROM expenses WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete expense: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return sentinel.ErrNotFound
	}
	return tx.Commit(ctx)
}

func (s *PostgresStore) participants(ctx context.Context, expenseID uuid.UUID) ([]uuid.UUID, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT user_id FROM expense_participants WHERE expense_id = $1`,
		expenseID,
	)
	if err != nil {
		return nil, fmt.Errorf("select participants: %w", err)
	}
	defer rows.Close()

	var participants []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan participant: %w", err)
		}
		participants = append(participants, id)
	}
	return participants, rows.Err()
}
