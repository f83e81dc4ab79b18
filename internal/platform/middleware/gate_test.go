package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"easyplit/pkg/requestcontext"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func staticResolver(identity *Identity, err error) *countingResolver {
	return &countingResolver{identity: identity, err: err}
}

type countingResolver struct {
	identity *Identity
	err      error
	calls    int
}

func (r *countingResolver) ResolveToken(ctx context.Context, raw string) (*Identity, error) {
	r.calls++
	return r.identity, r.err
}

func identityEcho(t *testing.T, got *Identity) http.Handler {
	t.Helper()
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got.UserID = requestcontext.UserID(r.Context())
		got.SessionID = requestcontext.SessionID(r.Context())
		w.WriteHeader(http.StatusOK)
	})
}

func TestGateMissingCookieRedirectsWithoutResolving(t *testing.T) {
	resolver := staticResolver(&Identity{UserID: uuid.New()}, nil)
	gate := Gate(resolver, GateConfig{CookieName: "token", LoginURL: "/login"}, discardLogger())

	req := httptest.NewRequest(http.MethodGet, "/app", nil)
	w := httptest.NewRecorder()
	gate(identityEcho(t, &Identity{})).ServeHTTP(w, req)

	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/login", w.Header().Get("Location"))
	assert.Zero(t, resolver.calls)
}

func TestGateInvalidTokenRedirects(t *testing.T) {
	resolver := staticResolver(nil, nil)
	gate := Gate(resolver, GateConfig{CookieName: "token", LoginURL: "/login"}, discardLogger())

	req := httptest.NewRequest(http.MethodGet, "/app", nil)
	req.AddCookie(&http.Cookie{Name: "token", Value: "tampered"})
	w := httptest.NewRecorder()
	gate(identityEcho(t, &Identity{})).ServeHTTP(w, req)

	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, 1, resolver.calls)
}

func TestGateResolverFailureRedirects(t *testing.T) {
	resolver := staticResolver(nil, errors.New("store down"))
	gate := Gate(resolver, GateConfig{CookieName: "token", LoginURL: "/login"}, discardLogger())

	req := httptest.NewRequest(http.MethodGet, "/app", nil)
	req.AddCookie(&http.Cookie{Name: "token", Value: "whatever"})
	w := httptest.NewRecorder()
	gate(identityEcho(t, &Identity{})).ServeHTTP(w, req)

	assert.Equal(t, http.StatusFound, w.Code)
}

func TestGateInjectsIdentity(t *testing.T) {
	want := &Identity{UserID: uuid.New(), SessionID: uuid.New()}
	gate := Gate(staticResolver(want, nil), GateConfig{CookieName: "token", LoginURL: "/login"}, discardLogger())

	var got Identity
	req := httptest.NewRequest(http.MethodGet, "/app", nil)
	req.AddCookie(&http.Cookie{Name: "token", Value: "good"})
	w := httptest.NewRecorder()
	gate(identityEcho(t, &got)).ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, want.UserID, got.UserID)
	assert.Equal(t, want.SessionID, got.SessionID)
}

func TestGateDevDelay(t *testing.T) {
	want := &Identity{UserID: uuid.New(), SessionID: uuid.New()}
	delay := 30 * time.Millisecond
	gate := Gate(staticResolver(want, nil), GateConfig{CookieName: "token", LoginURL: "/login", Delay: delay}, discardLogger())

	req := httptest.NewRequest(http.MethodGet, "/app", nil)
	req.AddCookie(&http.Cookie{Name: "token", Value: "good"})
	w := httptest.NewRecorder()

	start := time.Now()
	gate(identityEcho(t, &Identity{})).ServeHTTP(w, req)
	assert.GreaterOrEqual(t, time.Since(start), delay)
}

func TestRequireSessionUnauthorizedJSON(t *testing.T) {
	guard := RequireSession(staticResolver(nil, nil), "token", discardLogger())

	for name, prepare := range map[string]func(*http.Request){
		"missing cookie": func(r *http.Request) {},
		"invalid token": func(r *http.Request) {
			r.AddCookie(&http.Cookie{Name: "token", Value: "tampered"})
		},
	} {
		t.Run(name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/thing", nil)
			prepare(req)
			w := httptest.NewRecorder()
			guard(identityEcho(t, &Identity{})).ServeHTTP(w, req)

			assert.Equal(t, http.StatusUnauthorized, w.Code)
			var resp map[string]string
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.Equal(t, "unauthorized", resp["error"])
		})
	}
}

func TestRequireSessionPassesThrough(t *testing.T) {
	want := &Identity{UserID: uuid.New(), SessionID: uuid.New()}
	guard := RequireSession(staticResolver(want, nil), "token", discardLogger())

	var got Identity
	req := httptest.NewRequest(http.MethodGet, "/api/thing", nil)
	req.AddCookie(&http.Cookie{Name: "token", Value: "good"})
	w := httptest.NewRecorder()
	guard(identityEcho(t, &got)).ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, want.UserID, got.UserID)
}
