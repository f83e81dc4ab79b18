// Package oauth implements the browser redirect endpoints for the hosted
// login provider. The provider completes the code exchange against its own
// redirect URI; this package only builds the outbound URLs and manages the
// local cookie.
package oauth

import (
	"crypto/rand"
	"encoding/hex"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"

	"easyplit/internal/platform/config"
)

const (
	stateCookieName = "oauth_state"
	stateCookieTTL  = 600 // seconds
	scopes          = "openid profile email"
)

// Handler serves the provider redirect endpoints.
type Handler struct {
	cfg          config.OAuthConfig
	cookieName   string
	cookieSecure bool
	logger       *slog.Logger
}

// New constructs the OAuth redirect handler.
func New(cfg config.OAuthConfig, cookieName string, cookieSecure bool, logger *slog.Logger) *Handler {
	return &Handler{
		cfg:          cfg,
		cookieName:   cookieName,
		cookieSecure: cookieSecure,
		logger:       logger,
	}
}

// Register mounts the redirect endpoints.
func (h *Handler) Register(r chi.Router) {
	r.Get("/auth/oauth/login", h.HandleLogin)
	r.Get("/auth/oauth/logout", h.HandleLogout)
}

// HandleLogin handles GET /auth/oauth/login: it sends the browser to the
// provider's authorize endpoint with a fresh state value.
func (h *Handler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	if h.cfg.Domain == "" {
		http.Error(w, "oauth login is not configured", http.StatusNotFound)
		return
	}

	state, err := newState()
	if err != nil {
		h.logger.ErrorContext(r.Context(), "failed to generate oauth state", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     stateCookieName,
		Value:    state,
		Path:     "/",
		MaxAge:   stateCookieTTL,
		HttpOnly: true,
		Secure:   h.cookieSecure,
		SameSite: http.SameSiteLaxMode,
	})

	q := url.Values{}
	q.Set("response_type", "code")
	q.Set("client_id", h.cfg.ClientID)
	q.Set("redirect_uri", h.cfg.RedirectURI)
	q.Set("scope", scopes)
	q.Set("state", state)

	authorize := url.URL{
		Scheme:   "https",
		Host:     h.cfg.Domain,
		Path:     "/authorize",
		RawQuery: q.Encode(),
	}
	http.Redirect(w, r, authorize.String(), http.StatusFound)
}

// HandleLogout handles GET /auth/oauth/logout: the session cookie is
// cleared, then the browser is sent through the provider's logout endpoint
// so the hosted session dies too, returning to the app login page.
func (h *Handler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     h.cookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.cookieSecure,
		SameSite: http.SameSiteLaxMode,
	})

	returnTo := h.cfg.AppURL + "/login"
	if h.cfg.Domain == "" {
		http.Redirect(w, r, returnTo, http.StatusFound)
		return
	}

	q := url.Values{}
	q.Set("client_id", h.cfg.ClientID)
	q.Set("returnTo", returnTo)
	logout := url.URL{
		Scheme:   "https",
		Host:     h.cfg.Domain,
		Path:     "/v2/logout",
		RawQuery: q.Encode(),
	}
	http.Redirect(w, r, logout.String(), http.StatusFound)
}

func newState() (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
