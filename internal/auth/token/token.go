// Package token issues and verifies the session tokens carried in the
// cookie. The token is a signed reference to a server-side session, not a
// self-contained identity: verification yields IDs that callers must still
// resolve against the stores.
package token

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	dErrors "easyplit/pkg/domain-errors"
)

// Claims are the JWT claims embedded in a session token.
type Claims struct {
	UserID    string `json:"user_id"`
	SessionID string `json:"session_id"`
	jwt.RegisteredClaims
}

// Codec signs and verifies session tokens with an HMAC key held by the
// server. It has no side effects.
type Codec struct {
	signingKey []byte
	issuer     string
}

// NewCodec constructs a Codec for the given signing key.
func NewCodec(signingKey, issuer string) *Codec {
	return &Codec{
		signingKey: []byte(signingKey),
		issuer:     issuer,
	}
}

// Issue creates a signed token referencing the given user and session.
func (c *Codec) Issue(userID, sessionID uuid.UUID, ttl time.Duration) (string, error) {
	now := time.Now()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		UserID:    userID.String(),
		SessionID: sessionID.String(),
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    c.issuer,
			ID:        uuid.NewString(),
		},
	})
	return tok.SignedString(c.signingKey)
}

// Verify parses and validates a raw token. It fails closed: any decoding
// error, signature mismatch, or expiry yields an unauthorized error and
// never a partial identity.
func (c *Codec) Verify(raw string) (*Claims, error) {
	parsed, err := jwt.ParseWithClaims(raw, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrTokenUnverifiable
		}
		return c.signingKey, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, dErrors.New(dErrors.CodeUnauthorized, "token has expired")
		}
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid token")
	}
	if !parsed.Valid {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid token")
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid token claims")
	}
	return claims, nil
}

// SessionUUID parses the session reference out of verified claims.
func (cl *Claims) SessionUUID() (uuid.UUID, error) {
	return uuid.Parse(cl.SessionID)
}

// UserUUID parses the user reference out of verified claims.
func (cl *Claims) UserUUID() (uuid.UUID, error) {
	return uuid.Parse(cl.UserID)
}
