package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"easyplit/pkg/requestcontext"
)

// Identity is the resolved result of a session token: who the caller is and
// which session proved it.
type Identity struct {
	UserID    uuid.UUID
	SessionID uuid.UUID
}

// SessionResolver turns a raw cookie token into an identity. A nil identity
// with a nil error means unauthenticated; an error means the resolver's
// backing store failed.
type SessionResolver interface {
	ResolveToken(ctx context.Context, raw string) (*Identity, error)
}

// ResolverFunc adapts a function to the SessionResolver interface.
type ResolverFunc func(ctx context.Context, raw string) (*Identity, error)

func (f ResolverFunc) ResolveToken(ctx context.Context, raw string) (*Identity, error) {
	return f(ctx, raw)
}

// GateConfig parametrizes the session gate.
type GateConfig struct {
	CookieName string
	// LoginURL is where browser requests are redirected when unauthenticated.
	LoginURL string
	// Delay artificially slows the gate in non-production environments so
	// loading states are observable. Must be zero in production.
	Delay time.Duration
}

// Gate protects browser-facing routes. A missing cookie short-circuits to a
// redirect without touching any store; a present token goes through the full
// resolver, so an expired or tampered token is turned away at the edge
// rather than deeper in the stack.
func Gate(resolver SessionResolver, cfg GateConfig, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if cfg.Delay > 0 {
				time.Sleep(cfg.Delay)
			}

			cookie, err := r.Cookie(cfg.CookieName)
			if err != nil || cookie.Value == "" {
				http.Redirect(w, r, cfg.LoginURL, http.StatusFound)
				return
			}

			identity, err := resolver.ResolveToken(r.Context(), cookie.Value)
			if err != nil {
				logger.ErrorContext(r.Context(), "session resolution failed",
					"error", err,
					"request_id", requestcontext.RequestID(r.Context()),
				)
				http.Redirect(w, r, cfg.LoginURL, http.StatusFound)
				return
			}
			if identity == nil {
				http.Redirect(w, r, cfg.LoginURL, http.StatusFound)
				return
			}

			next.ServeHTTP(w, r.WithContext(withIdentity(r.Context(), identity)))
		})
	}
}

// RequireSession protects API routes. Unauthenticated callers get a 401 JSON
// envelope instead of a redirect.
func RequireSession(resolver SessionResolver, cookieName string, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(cookieName)
			if err != nil || cookie.Value == "" {
				writeUnauthorized(w)
				return
			}

			identity, err := resolver.ResolveToken(r.Context(), cookie.Value)
			if err != nil {
				logger.ErrorContext(r.Context(), "session resolution failed",
					"error", err,
					"request_id", requestcontext.RequestID(r.Context()),
				)
				writeUnauthorized(w)
				return
			}
			if identity == nil {
				writeUnauthorized(w)
				return
			}

			next.ServeHTTP(w, r.WithContext(withIdentity(r.Context(), identity)))
		})
	}
}

func withIdentity(ctx context.Context, identity *Identity) context.Context {
	ctx = requestcontext.WithUserID(ctx, identity.UserID)
	return requestcontext.WithSessionID(ctx, identity.SessionID)
}

func writeUnauthorized(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_, _ = w.Write([]byte(`{"error":"unauthorized","error_description":"Missing or invalid session"}`))
}
