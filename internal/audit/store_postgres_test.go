package audit

import (
	"database/sql/driver"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// The ANY($1) parameter in MarkPublished must be driver-bindable; a plain
// string slice is rejected by database/sql before the query reaches the
// server, which would leave outbox rows unpublished forever.
func TestPQUUIDArrayBindsAsDriverValue(t *testing.T) {
	ids := []uuid.UUID{uuid.New(), uuid.New()}

	var valuer driver.Valuer = pqUUIDArray(ids)
	val, err := valuer.Value()
	require.NoError(t, err)
	require.True(t, driver.IsValue(val))

	literal, ok := val.(string)
	require.True(t, ok)
	assert.Contains(t, literal, ids[0].String())
	assert.Contains(t, literal, ids[1].String())
}
