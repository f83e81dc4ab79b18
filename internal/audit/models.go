// Package audit records security-relevant events. Writes go to an outbox
// store; a relay worker publishes them to Kafka, which is the durable
// destination.
package audit

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Action names an auditable event.
type Action string

const (
	ActionUserRegistered Action = "user.registered"
	ActionLoginSucceeded Action = "auth.login_succeeded"
	ActionLoginFailed    Action = "auth.login_failed"
	ActionLogout         Action = "auth.logout"
	ActionSessionRevoked Action = "auth.session_revoked"
	ActionGroupCreated   Action = "group.created"
	ActionGroupDeleted   Action = "group.deleted"
	ActionMemberAdded    Action = "group.member_added"
	ActionExpenseCreated Action = "expense.created"
	ActionExpenseDeleted Action = "expense.deleted"
)

// Event is one audit record. UserID may be uuid.Nil for failed logins where
// no account matched.
type Event struct {
	ID        uuid.UUID `json:"id"`
	Action    Action    `json:"action"`
	UserID    uuid.UUID `json:"user_id,omitempty"`
	Subject   string    `json:"subject,omitempty"`
	IPAddress string    `json:"ip_address,omitempty"`
	RequestID string    `json:"request_id,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// Store persists events for the relay to pick up.
type Store interface {
	Append(ctx context.Context, event Event) error
}

// OutboxStore is the relay-facing surface: unpublished rows out, published
// markers back in.
type OutboxStore interface {
	ListUnpublished(ctx context.Context, limit int) ([]Event, error)
	MarkPublished(ctx context.Context, ids []uuid.UUID) error
}
