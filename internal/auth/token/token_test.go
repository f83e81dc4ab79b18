package token

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "easyplit/pkg/domain-errors"
)

func TestIssueAndVerifyRoundTrip(t *testing.T) {
	codec := NewCodec("test-signing-key", "easyplit")
	userID := uuid.New()
	sessionID := uuid.New()

	raw, err := codec.Issue(userID, sessionID, time.Hour)
	require.NoError(t, err)
	require.NotEmpty(t, raw)

	claims, err := codec.Verify(raw)
	require.NoError(t, err)

	gotUser, err := claims.UserUUID()
	require.NoError(t, err)
	gotSession, err := claims.SessionUUID()
	require.NoError(t, err)
	assert.Equal(t, userID, gotUser)
	assert.Equal(t, sessionID, gotSession)
}

func TestVerifyFailsClosed(t *testing.T) {
	codec := NewCodec("test-signing-key", "easyplit")

	t.Run("garbage input", func(t *testing.T) {
		_, err := codec.Verify("not-a-token")
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
	})

	t.Run("empty input", func(t *testing.T) {
		_, err := codec.Verify("")
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
	})

	t.Run("wrong signing key", func(t *testing.T) {
		other := NewCodec("different-key", "easyplit")
		raw, err := other.Issue(uuid.New(), uuid.New(), time.Hour)
		require.NoError(t, err)

		_, err = codec.Verify(raw)
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
	})

	t.Run("expired token", func(t *testing.T) {
		raw, err := codec.Issue(uuid.New(), uuid.New(), -time.Minute)
		require.NoError(t, err)

		_, err = codec.Verify(raw)
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
	})
}
