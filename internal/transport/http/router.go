// Package httptransport assembles the HTTP surface: middleware stack, public
// auth endpoints, gated API routes, and the operational endpoints. Handlers
// stay thin; business logic lives in the domain services.
package httptransport

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	authhandler "easyplit/internal/auth/handler"
	expensehandler "easyplit/internal/expense/handler"
	grouphandler "easyplit/internal/group/handler"
	"easyplit/internal/oauth"
	"easyplit/internal/platform/middleware"
	"easyplit/pkg/platform/httputil"
)

const requestTimeout = 30 * time.Second

// HealthCheck reports readiness of one backing dependency.
type HealthCheck func() error

// Deps carries everything the router mounts.
type Deps struct {
	Logger   *slog.Logger
	Resolver middleware.SessionResolver
	Gate     middleware.GateConfig

	Auth     *authhandler.Handler
	OAuth    *oauth.Handler
	Groups   *grouphandler.Handler
	Expenses *expensehandler.Handler

	// App, when set, is the browser-facing application served behind the
	// redirecting gate (as opposed to the 401-answering API guard).
	App http.Handler

	// Health checks run by /healthz, keyed by dependency name.
	Health map[string]HealthCheck
}

// NewRouter wires the full middleware stack and all endpoints.
func NewRouter(deps Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Recovery(deps.Logger))
	r.Use(middleware.RequestID)
	r.Use(middleware.ClientMetadata)
	r.Use(middleware.Logger(deps.Logger))
	r.Use(middleware.Timeout(requestTimeout))

	r.Get("/healthz", handleHealthz(deps.Health))
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	// Anonymous-reachable endpoints. /auth/me answers 200 for everyone.
	deps.Auth.Register(r)
	if deps.OAuth != nil {
		deps.OAuth.Register(r)
	}

	// API routes: a missing or invalid session is a 401, never a redirect.
	r.Group(func(api chi.Router) {
		api.Use(middleware.RequireSession(deps.Resolver, deps.Gate.CookieName, deps.Logger))
		deps.Auth.RegisterProtected(api)
		deps.Groups.Register(api)
		deps.Expenses.Register(api)
	})

	// Browser routes: unauthenticated users are sent to the login page.
	if deps.App != nil {
		r.Group(func(app chi.Router) {
			app.Use(middleware.Gate(deps.Resolver, deps.Gate, deps.Logger))
			app.Handle("/app", deps.App)
			app.Handle("/app/*", deps.App)
		})
	}

	return r
}

func handleHealthz(checks map[string]HealthCheck) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status := http.StatusOK
		deps := make(map[string]string, len(checks))
		for name, check := range checks {
			if err := check(); err != nil {
				status = http.StatusServiceUnavailable
				deps[name] = err.Error()
				continue
			}
			deps[name] = "ok"
		}
		httputil.WriteJSON(w, status, map[string]any{
			"status":       http.StatusText(status),
			"dependencies": deps,
		})
	}
}
