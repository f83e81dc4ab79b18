// Package service orchestrates registration, login, and session resolution.
// Transport concerns stay in the handler; persistence behind the store
// interfaces.
package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"easyplit/internal/audit"
	"easyplit/internal/auth/models"
	"easyplit/internal/auth/token"
	"easyplit/internal/platform/metrics"
)

//go:generate mockgen -source=service.go -destination=mocks/mocks.go -package=mocks

// UserStore persists user records.
type UserStore interface {
	Create(ctx context.Context, u *models.User) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
}

// SessionStore persists login sessions.
type SessionStore interface {
	Create(ctx context.Context, sess *models.Session) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Session, error)
	Touch(ctx context.Context, sess *models.Session) error
	Delete(ctx context.Context, id uuid.UUID) error
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*models.Session, error)
}

// Lockout throttles repeated failed logins.
type Lockout interface {
	Check(ctx context.Context, email, ip string) error
	RecordFailure(ctx context.Context, email, ip string)
	Reset(ctx context.Context, email, ip string)
}

// AuditPublisher records security events.
type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

const defaultSessionTTL = 7 * 24 * time.Hour

// Service is the authentication façade used by the handler and the gate
// middleware.
type Service struct {
	users      UserStore
	sessions   SessionStore
	codec      *token.Codec
	lockout    Lockout
	auditPub   AuditPublisher
	metrics    *metrics.Metrics
	logger     *slog.Logger
	sessionTTL time.Duration
	tracer     trace.Tracer
}

// Option configures the Service.
type Option func(*Service)

// WithLockout enables failed-login throttling.
func WithLockout(l Lockout) Option {
	return func(s *Service) { s.lockout = l }
}

// WithAuditPublisher enables audit event emission.
func WithAuditPublisher(p AuditPublisher) Option {
	return func(s *Service) { s.auditPub = p }
}

// WithMetrics enables Prometheus instrumentation.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// WithLogger sets the service logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

// WithSessionTTL overrides the session lifetime.
func WithSessionTTL(ttl time.Duration) Option {
	return func(s *Service) { s.sessionTTL = ttl }
}

// New constructs the auth service.
func New(users UserStore, sessions SessionStore, codec *token.Codec, opts ...Option) (*Service, error) {
	if users == nil || sessions == nil || codec == nil {
		return nil, errors.New("user store, session store, and token codec are required")
	}
	svc := &Service{
		users:      users,
		sessions:   sessions,
		codec:      codec,
		logger:     slog.Default(),
		sessionTTL: defaultSessionTTL,
		tracer:     otel.Tracer("easyplit/auth"),
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc, nil
}

func (s *Service) emit(ctx context.Context, event audit.Event) error {
	if s.auditPub == nil {
		return nil
	}
	return s.auditPub.Emit(ctx, event)
}

func (s *Service) incRegistered() {
	if s.metrics != nil {
		s.metrics.UsersRegistered.Inc()
	}
}

func (s *Service) incLoginSucceeded() {
	if s.metrics != nil {
		s.metrics.LoginsSucceeded.Inc()
	}
}

func (s *Service) incLoginFailed() {
	if s.metrics != nil {
		s.metrics.LoginsFailed.Inc()
	}
}

func (s *Service) incSessionRevoked() {
	if s.metrics != nil {
		s.metrics.SessionsRevoked.Inc()
	}
}

func (s *Service) observeResolve(d time.Duration) {
	if s.metrics != nil {
		s.metrics.SessionResolveDurationMs.Observe(float64(d.Microseconds()) / 1000.0)
	}
}
