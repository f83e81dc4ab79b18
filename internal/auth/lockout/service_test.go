package lockout

import (
	"bytes"
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "easyplit/pkg/domain-errors"
)

func newService(t *testing.T, opts ...Option) *Service {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	svc, err := New(NewInMemoryStore(), append([]Option{WithLogger(logger)}, opts...)...)
	require.NoError(t, err)
	return svc
}

func TestCheckAllowsBelowThreshold(t *testing.T) {
	svc := newService(t, WithThreshold(3))
	ctx := context.Background()

	svc.RecordFailure(ctx, "a@b.com", "192.0.2.1")
	svc.RecordFailure(ctx, "a@b.com", "192.0.2.1")

	assert.NoError(t, svc.Check(ctx, "a@b.com", "192.0.2.1"))
}

func TestCheckLocksAtThreshold(t *testing.T) {
	svc := newService(t, WithThreshold(3))
	ctx := context.Background()

	for range 3 {
		svc.RecordFailure(ctx, "a@b.com", "192.0.2.1")
	}

	err := svc.Check(ctx, "a@b.com", "192.0.2.1")
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeForbidden))

	// A different IP for the same email is a separate key.
	assert.NoError(t, svc.Check(ctx, "a@b.com", "198.51.100.7"))
}

func TestResetClearsLockout(t *testing.T) {
	svc := newService(t, WithThreshold(1))
	ctx := context.Background()

	svc.RecordFailure(ctx, "a@b.com", "192.0.2.1")
	require.Error(t, svc.Check(ctx, "a@b.com", "192.0.2.1"))

	svc.Reset(ctx, "a@b.com", "192.0.2.1")
	assert.NoError(t, svc.Check(ctx, "a@b.com", "192.0.2.1"))
}

func TestWindowExpiryForgetsFailures(t *testing.T) {
	svc := newService(t, WithThreshold(1), WithWindow(50*time.Millisecond))
	ctx := context.Background()

	svc.RecordFailure(ctx, "a@b.com", "192.0.2.1")
	require.Error(t, svc.Check(ctx, "a@b.com", "192.0.2.1"))

	time.Sleep(80 * time.Millisecond)
	assert.NoError(t, svc.Check(ctx, "a@b.com", "192.0.2.1"))
}

func TestRequiresStore(t *testing.T) {
	_, err := New(nil)
	require.Error(t, err)
}
