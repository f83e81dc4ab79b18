// Package domainerrors defines the tagged error type shared by all services.
// Handlers never inspect raw errors; they branch on the code and let
// httputil translate it into the JSON envelope.
package domainerrors

import (
	"errors"
	"fmt"
)

// Code discriminates error kinds across service boundaries.
type Code string

const (
	CodeBadRequest         Code = "bad_request"
	CodeUnauthorized       Code = "unauthorized"
	CodeForbidden          Code = "forbidden"
	CodeNotFound           Code = "not_found"
	CodeConflict           Code = "conflict"
	CodeInternal           Code = "internal_error"
	CodeInvariantViolation Code = "invariant_violation"
)

// DomainError carries a code, a human-readable message, and optionally a
// per-field validation map. Fields never repeats a field name because it is
// a map keyed by field.
type DomainError struct {
	Code    Code
	Message string
	Fields  map[string]string
	cause   error
}

func (e *DomainError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *DomainError) Unwrap() error {
	return e.cause
}

// New creates a DomainError with the given code and message.
func New(code Code, message string) *DomainError {
	return &DomainError{Code: code, Message: message}
}

// Wrap attaches a code and message to an underlying error, preserving the
// cause for logging while keeping the outward-facing message stable.
func Wrap(err error, code Code, message string) *DomainError {
	return &DomainError{Code: code, Message: message, cause: err}
}

// NewValidation creates a bad_request error carrying a field-error map.
func NewValidation(message string, fields map[string]string) *DomainError {
	return &DomainError{Code: CodeBadRequest, Message: message, Fields: fields}
}

// HasCode reports whether err is a DomainError with the given code.
func HasCode(err error, code Code) bool {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Code == code
	}
	return false
}

// Is is an alias of HasCode kept for call-site readability.
func Is(err error, code Code) bool {
	return HasCode(err, code)
}

// CodeOf extracts the code from err, defaulting to CodeInternal for
// untagged errors so unknown failures never leak details.
func CodeOf(err error) Code {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Code
	}
	return CodeInternal
}
