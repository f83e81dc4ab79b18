package postgres

import (
	"context"
	"fmt"

	_ "embed"
)

//go:embed schema.sql
var schema string

// ApplySchema creates all tables if they do not exist. The DDL is idempotent,
// so running it on every startup is safe.
func ApplySchema(ctx context.Context, pool *Pool) error {
	if pool == nil {
		return nil
	}
	if _, err := pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}
