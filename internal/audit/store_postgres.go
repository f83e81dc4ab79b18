package audit

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	// The outbox rides on database/sql with the pq driver; the relay's
	// single-writer access pattern has no need for a pgx pool. pq also
	// supplies the array adapter for the ANY($1) parameter below.
	"github.com/lib/pq"
)

// PostgresStore implements Store and OutboxStore over the audit_outbox
// table.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore creates a store over an open database handle.
func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// OpenPostgres opens a database/sql handle for the outbox.
func OpenPostgres(url string) (*sql.DB, error) {
	db, err := sql.Open("postgres", url)
	if err != nil {
		return nil, fmt.Errorf("open audit db: %w", err)
	}
	return db, nil
}

// Append writes an event row to the outbox.
func (s *PostgresStore) Append(ctx context.Context, event Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal audit event: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO audit_outbox (id, payload, created_at)
		VALUES ($1, $2, $3)`,
		event.ID, payload, event.Timestamp,
	)
	if err != nil {
		return fmt.Errorf("insert audit event: %w", err)
	}
	return nil
}

// ListUnpublished returns the oldest unpublished events.
func (s *PostgresStore) ListUnpublished(ctx context.Context, limit int) ([]Event, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT payload FROM audit_outbox
		WHERE published_at IS NULL
		ORDER BY created_at
		LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("list audit outbox: %w", err)
	}
	defer rows.Close()

	var out []Event
	for rows.Next() {
		var payload []byte
		if err := rows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("scan audit row: %w", err)
		}
		var event Event
		if err := json.Unmarshal(payload, &event); err != nil {
			return nil, fmt.Errorf("unmarshal audit event: %w", err)
		}
		out = append(out, event)
	}
	return out, rows.Err()
}

// MarkPublished stamps the given rows so the relay never re-sends them.
func (s *PostgresStore) MarkPublished(ctx context.Context, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}
	_, err := s.db.ExecContext(ctx, `
		UPDATE audit_outbox SET published_at = now()
		WHERE id = ANY($1)`, pqUUIDArray(ids))
	if err != nil {
		return fmt.Errorf("mark audit published: %w", err)
	}
	return nil
}

// pqUUIDArray adapts UUIDs to a value the driver can bind; database/sql
// rejects plain Go slices as parameters.
func pqUUIDArray(ids []uuid.UUID) pq.StringArray {
	out := make(pq.StringArray, len(ids))
	for i, id := range ids {
		out[i] = id.String()
	}
	return out
}
