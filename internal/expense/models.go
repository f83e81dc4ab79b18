// Package expense tracks shared expenses inside a group. Amounts are stored
// in cents; no floating point ever touches money.
package expense

import (
	"strings"
	"time"

	"github.com/google/uuid"

	dErrors "easyplit/pkg/domain-errors"
)

const maxDescriptionLength = 200

// Expense is one shared cost. Participants are the members the amount is
// split across; the payer fronted the money.
type Expense struct {
	ID             uuid.UUID   `json:"id"`
	GroupID        uuid.UUID   `json:"group_id"`
	Description    string      `json:"description"`
	AmountCents    int64       `json:"amount_cents"`
	PayerID        uuid.UUID   `json:"payer_id"`
	ParticipantIDs []uuid.UUID `json:"participant_ids"`
	CreatedAt      time.Time   `json:"created_at"`
}

// CreateRequest is the input to expense creation. PayerID defaults to the
// caller; ParticipantIDs default to the whole group.
type CreateRequest struct {
	Description    string      `json:"description"`
	AmountCents    int64       `json:"amount_cents"`
	PayerID        uuid.UUID   `json:"payer_id,omitempty"`
	ParticipantIDs []uuid.UUID `json:"participant_ids,omitempty"`
}

// Validate checks the request, returning a field-error map on failure.
func (r *CreateRequest) Validate() error {
	r.Description = strings.TrimSpace(r.Description)
	fields := map[string]string{}
	if r.Description == "" {
		fields["description"] = "description is required"
	} else if len(r.Description) > maxDescriptionLength {
		fields["description"] = "description is too long"
	}
	if r.AmountCents <= 0 {
		fields["amount_cents"] = "amount must be a positive number of cents"
	}
	if len(fields) > 0 {
		return dErrors.NewValidation("validation failed", fields)
	}
	return nil
}
