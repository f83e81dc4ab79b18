// Package handler exposes the authentication endpoints. It owns the cookie
// contract; everything behind it works with raw tokens and identities.
package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"easyplit/internal/auth/models"
	dErrors "easyplit/pkg/domain-errors"
	"easyplit/pkg/platform/httputil"
	"easyplit/pkg/requestcontext"
)

// Service defines the auth operations the handler needs.
type Service interface {
	Register(ctx context.Context, req models.RegisterRequest) (*models.User, error)
	Login(ctx context.Context, req models.LoginRequest) (*models.User, string, error)
	Logout(ctx context.Context, raw string) error
	Resolve(ctx context.Context, raw string) (*models.User, *models.Session, error)
	Sessions(ctx context.Context, userID, currentSessionID uuid.UUID) ([]models.SessionSummary, error)
	RevokeSession(ctx context.Context, userID, sessionID uuid.UUID) error
}

// CookieConfig is the session cookie contract shared with the gate
// middleware.
type CookieConfig struct {
	Name   string
	Secure bool
	TTL    time.Duration
}

// Handler wires the auth endpoints to the auth service.
type Handler struct {
	service Service
	cookie  CookieConfig
	logger  *slog.Logger
}

// New constructs an auth handler.
func New(service Service, cookie CookieConfig, logger *slog.Logger) *Handler {
	return &Handler{
		service: service,
		cookie:  cookie,
		logger:  logger,
	}
}

// Register mounts the public auth endpoints. Session management endpoints
// are mounted separately behind the session gate, see RegisterProtected.
func (h *Handler) Register(r chi.Router) {
	r.Post("/auth/register", h.HandleRegister)
	r.Post("/auth/login", h.HandleLogin)
	r.Post("/auth/logout", h.HandleLogout)
	r.Get("/auth/me", h.HandleMe)
}

// RegisterProtected mounts the endpoints that require a resolved session.
func (h *Handler) RegisterProtected(r chi.Router) {
	r.Get("/auth/sessions", h.HandleListSessions)
	r.Delete("/auth/sessions/{sessionID}", h.HandleRevokeSession)
}

// HandleRegister handles POST /auth/register.
func (h *Handler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	req, ok := httputil.Decode[models.RegisterRequest](w, r)
	if !ok {
		return
	}

	user, err := h.service.Register(ctx, req)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, map[string]any{
		"message": "registration successful",
		"user":    user.Public(),
	})
}

// HandleLogin handles POST /auth/login. On success the session token is set
// as an HttpOnly cookie; it is never part of the response body.
func (h *Handler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	req, ok := httputil.Decode[models.LoginRequest](w, r)
	if !ok {
		return
	}

	user, raw, err := h.service.Login(ctx, req)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	h.setSessionCookie(w, raw)
	httputil.WriteJSON(w, http.StatusOK, map[string]any{
		"message": "login successful",
		"user":    user.Public(),
	})
}

// HandleLogout handles POST /auth/logout. The cookie is cleared whatever
// happens to the session record; only a store failure is an error.
func (h *Handler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	raw := h.cookieValue(r)
	err := h.service.Logout(ctx, raw)
	h.clearSessionCookie(w)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, map[string]any{
		"message": "logout successful",
	})
}

// HandleMe handles GET /auth/me. The response is 200 for every
// authentication state: an anonymous caller gets a null user, never a 401.
// Store failures still surface as 500 so callers can tell "logged out"
// from "unknown".
func (h *Handler) HandleMe(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	user, _, err := h.service.Resolve(ctx, h.cookieValue(r))
	if err != nil {
		h.logger.ErrorContext(ctx, "session resolution failed",
			"request_id", requestcontext.RequestID(ctx),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	if user == nil {
		httputil.WriteJSON(w, http.StatusOK, map[string]any{"user": nil})
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"user": user.Public()})
}

// HandleListSessions handles GET /auth/sessions.
func (h *Handler) HandleListSessions(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	summaries, err := h.service.Sessions(ctx, requestcontext.UserID(ctx), requestcontext.SessionID(ctx))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"sessions": summaries})
}

// HandleRevokeSession handles DELETE /auth/sessions/{sessionID}.
func (h *Handler) HandleRevokeSession(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	sessionID, err := uuid.Parse(chi.URLParam(r, "sessionID"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid session id"))
		return
	}

	if err := h.service.RevokeSession(ctx, requestcontext.UserID(ctx), sessionID); err != nil {
		httputil.WriteError(w, err)
		return
	}

	// Revoking the current session also retires its cookie.
	if sessionID == requestcontext.SessionID(ctx) {
		h.clearSessionCookie(w)
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{
		"message": "session revoked",
	})
}

func (h *Handler) cookieValue(r *http.Request) string {
	c, err := r.Cookie(h.cookie.Name)
	if err != nil {
		return ""
	}
	return c.Value
}

func (h *Handler) setSessionCookie(w http.ResponseWriter, raw string) {
	http.SetCookie(w, &http.Cookie{
		Name:     h.cookie.Name,
		Value:    raw,
		Path:     "/",
		Expires:  time.Now().Add(h.cookie.TTL),
		HttpOnly: true,
		Secure:   h.cookie.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

func (h *Handler) clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     h.cookie.Name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.cookie.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}
