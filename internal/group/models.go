// Package group manages expense-sharing groups: a named set of members with
// one owner.
package group

import (
	"strings"
	"time"

	"github.com/google/uuid"

	dErrors "easyplit/pkg/domain-errors"
)

const maxNameLength = 100

// Group is a set of members who share expenses. The owner is always a
// member.
type Group struct {
	ID        uuid.UUID   `json:"id"`
	Name      string      `json:"name"`
	OwnerID   uuid.UUID   `json:"owner_id"`
	Members   []uuid.UUID `json:"members"`
	CreatedAt time.Time   `json:"created_at"`
}

// HasMember reports whether the user belongs to the group.
func (g *Group) HasMember(userID uuid.UUID) bool {
	for _, m := range g.Members {
		if m == userID {
			return true
		}
	}
	return false
}

// CreateRequest is the input to group creation.
type CreateRequest struct {
	Name string `json:"name"`
}

// Validate checks the request, returning a field-error map on failure.
func (r *CreateRequest) Validate() error {
	r.Name = strings.TrimSpace(r.Name)
	fields := map[string]string{}
	if r.Name == "" {
		fields["name"] = "name is required"
	} else if len(r.Name) > maxNameLength {
		fields["name"] = "name is too long"
	}
	if len(fields) > 0 {
		return dErrors.NewValidation("validation failed", fields)
	}
	return nil
}

// AddMemberRequest is the input to adding a member by email.
type AddMemberRequest struct {
	Email string `json:"email"`
}

// Validate checks the request, returning a field-error map on failure.
func (r *AddMemberRequest) Validate() error {
	r.Email = strings.ToLower(strings.TrimSpace(r.Email))
	if r.Email == "" {
		return dErrors.NewValidation("validation failed", map[string]string{
			"email": "email is required",
		})
	}
	return nil
}
