package models

import (
	"net/mail"
	"strings"
	"unicode/utf8"

	dErrors "easyplit/pkg/domain-errors"
)

const (
	minPasswordLength = 8
	maxNameLength     = 100
	maxEmailLength    = 255
)

// Normalize trims whitespace and lowercases the email. Call before Validate.
func (r *RegisterRequest) Normalize() {
	r.Name = strings.TrimSpace(r.Name)
	r.Email = strings.ToLower(strings.TrimSpace(r.Email))
}

// Validate returns a bad_request error carrying a field-error map, one entry
// per offending field.
func (r *RegisterRequest) Validate() error {
	fields := map[string]string{}

	if r.Email == "" {
		fields["email"] = "email is required"
	} else if len(r.Email) > maxEmailLength {
		fields["email"] = "email is too long"
	} else if _, err := mail.ParseAddress(r.Email); err != nil {
		fields["email"] = "email is invalid"
	}

	if utf8.RuneCountInString(r.Password) < minPasswordLength {
		fields["password"] = "password must be at least 8 characters"
	}

	if utf8.RuneCountInString(r.Name) > maxNameLength {
		fields["name"] = "name is too long"
	}

	if len(fields) > 0 {
		return dErrors.NewValidation("invalid registration input", fields)
	}
	return nil
}

// Normalize trims whitespace and lowercases the email. Call before Validate.
func (r *LoginRequest) Normalize() {
	r.Email = strings.ToLower(strings.TrimSpace(r.Email))
}

// Validate checks the login input shape. Credential correctness is the
// service's concern.
func (r *LoginRequest) Validate() error {
	fields := map[string]string{}
	if r.Email == "" {
		fields["email"] = "email is required"
	}
	if r.Password == "" {
		fields["password"] = "password is required"
	}
	if len(fields) > 0 {
		return dErrors.NewValidation("invalid login input", fields)
	}
	return nil
}
