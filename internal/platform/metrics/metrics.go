// Package metrics holds the Prometheus instruments shared across handlers
// and services.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	UsersRegistered prometheus.Counter
	LoginsSucceeded prometheus.Counter
	LoginsFailed    prometheus.Counter
	SessionsRevoked prometheus.Counter
	GroupsCreated   prometheus.Counter
	ExpensesCreated prometheus.Counter

	SessionResolveDurationMs prometheus.Histogram
}

// New creates and registers all Prometheus metrics.
func New() *Metrics {
	return &Metrics{
		UsersRegistered: promauto.NewCounter(prometheus.CounterOpts{
			Name: "easyplit_users_registered_total",
			Help: "Total number of user registrations",
		}),
		LoginsSucceeded: promauto.NewCounter(prometheus.CounterOpts{
			Name: "easyplit_logins_succeeded_total",
			Help: "Total number of successful logins",
		}),
		LoginsFailed: promauto.NewCounter(prometheus.CounterOpts{
			Name: "easyplit_logins_failed_total",
			Help: "Total number of failed login attempts",
		}),
		SessionsRevoked: promauto.NewCounter(prometheus.CounterOpts{
			Name: "easyplit_sessions_revoked_total",
			Help: "Total number of sessions revoked via logout or session management",
		}),
		GroupsCreated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "easyplit_groups_created_total",
			Help: "Total number of groups created",
		}),
		ExpensesCreated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "easyplit_expenses_created_total",
			Help: "Total number of expenses created",
		}),
		SessionResolveDurationMs: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "easyplit_session_resolve_duration_ms",
			Help:    "Latency of cookie-to-identity resolution in milliseconds",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 25},
		}),
	}
}
