// Package httputil centralizes JSON response and error-envelope writing so
// every handler speaks the same wire contract.
package httputil

import (
	"encoding/json"
	"errors"
	"net/http"

	dErrors "easyplit/pkg/domain-errors"
)

// errorResponse is the uniform error envelope. Errors carries the per-field
// validation map when present.
type errorResponse struct {
	Error            string            `json:"error"`
	ErrorDescription string            `json:"error_description,omitempty"`
	Errors           map[string]string `json:"errors,omitempty"`
}

// WriteJSON writes v as a JSON response with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteError translates a domain error into the JSON error envelope.
// Internal errors omit the description so infrastructure details never
// reach clients.
func WriteError(w http.ResponseWriter, err error) {
	code := dErrors.CodeOf(err)
	resp := errorResponse{Error: string(code)}

	var de *dErrors.DomainError
	if errors.As(err, &de) && code != dErrors.CodeInternal {
		resp.ErrorDescription = de.Message
		resp.Errors = de.Fields
	}

	WriteJSON(w, ToHTTPStatus(code), resp)
}

// Decode parses the JSON request body into T. On failure it writes the
// bad-request envelope and returns false; the handler should return
// immediately.
func Decode[T any](w http.ResponseWriter, r *http.Request) (T, bool) {
	var v T
	if err := json.NewDecoder(r.Body).Decode(&v); err != nil {
		WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return v, false
	}
	return v, true
}

// ToHTTPStatus maps a domain error code to its HTTP status.
func ToHTTPStatus(code dErrors.Code) int {
	switch code {
	case dErrors.CodeBadRequest:
		return http.StatusBadRequest
	case dErrors.CodeUnauthorized:
		return http.StatusUnauthorized
	case dErrors.CodeForbidden:
		return http.StatusForbidden
	case dErrors.CodeNotFound:
		return http.StatusNotFound
	case dErrors.CodeConflict:
		return http.StatusConflict
	case dErrors.CodeInvariantViolation:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}
