// Package models holds the identity and session types tracked by the auth
// service. Storage lives behind the service's store interfaces.
package models

import (
	"time"

	"github.com/google/uuid"
)

// User is the primary identity. PasswordHash is empty for accounts created
// through the OAuth provider; those cannot log in with a password.
type User struct {
	ID           uuid.UUID
	Email        string
	Name         string
	AvatarURL    string
	PasswordHash string
	CreatedAt    time.Time
}

// HasPassword reports whether the account carries a local credential.
func (u *User) HasPassword() bool {
	return u.PasswordHash != ""
}

// PublicUser is the read-only projection returned to clients. The password
// hash never leaves the service.
type PublicUser struct {
	ID          uuid.UUID `json:"id"`
	Email       string    `json:"email"`
	Name        string    `json:"name"`
	AvatarURL   string    `json:"avatarUrl,omitempty"`
	HasPassword bool      `json:"hasPassword"`
}

// Public returns the client-facing projection of the user.
func (u *User) Public() PublicUser {
	return PublicUser{
		ID:          u.ID,
		Email:       u.Email,
		Name:        u.Name,
		AvatarURL:   u.AvatarURL,
		HasPassword: u.HasPassword(),
	}
}

// Session is a server-side login session. The cookie token references it by
// ID; deleting the record invalidates every copy of the token.
type Session struct {
	ID         uuid.UUID
	UserID     uuid.UUID
	IPAddress  string
	UserAgent  string
	CreatedAt  time.Time
	LastSeenAt time.Time
	ExpiresAt  time.Time
}

// Live reports whether the session is still usable at the given time.
func (s *Session) Live(now time.Time) bool {
	return now.Before(s.ExpiresAt)
}

// SessionSummary is the client-facing view of a session used by the
// session-management endpoints.
type SessionSummary struct {
	SessionID    uuid.UUID `json:"session_id"`
	Device       string    `json:"device"`
	IPAddress    string    `json:"ip_address,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	LastActivity time.Time `json:"last_activity"`
	IsCurrent    bool      `json:"is_current"`
}

// RegisterRequest is the input to account creation.
type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginRequest is the input to password login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}
