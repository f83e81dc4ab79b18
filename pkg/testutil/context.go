package testutil

import (
	"net/http"

	"github.com/google/uuid"

	"easyplit/pkg/requestcontext"
)

// WithUserID returns the request with a user identity in its context, the
// way the session gate would install it. Invalid UUIDs are ignored.
func WithUserID(req *http.Request, userID string) *http.Request {
	parsed, err := uuid.Parse(userID)
	if err != nil {
		return req
	}
	return req.WithContext(requestcontext.WithUserID(req.Context(), parsed))
}

// WithSessionID returns the request with a session identity in its context.
// Invalid UUIDs are ignored.
func WithSessionID(req *http.Request, sessionID string) *http.Request {
	parsed, err := uuid.Parse(sessionID)
	if err != nil {
		return req
	}
	return req.WithContext(requestcontext.WithSessionID(req.Context(), parsed))
}

// WithAuth installs both identities, the typical state of a gated request.
func WithAuth(req *http.Request, userID, sessionID uuid.UUID) *http.Request {
	ctx := requestcontext.WithUserID(req.Context(), userID)
	ctx = requestcontext.WithSessionID(ctx, sessionID)
	return req.WithContext(ctx)
}
