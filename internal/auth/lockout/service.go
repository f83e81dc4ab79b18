// Package lockout throttles password guessing: consecutive failed logins
// for the same email and IP lock that pair out for a cooldown window.
package lockout

import (
	"context"
	"errors"
	"log/slog"
	"time"

	dErrors "easyplit/pkg/domain-errors"
)

// Store counts failures per key with a sliding expiry.
type Store interface {
	// Incr adds one failure and returns the running count. The count
	// expires window after the first failure.
	Incr(ctx context.Context, key string, window time.Duration) (int64, error)
	// Count returns the current failure count without mutating it.
	Count(ctx context.Context, key string) (int64, error)
	// Reset clears the failure count.
	Reset(ctx context.Context, key string) error
}

const (
	defaultThreshold = 5
	defaultWindow    = 15 * time.Minute
)

// Service applies the lockout policy. It fails open on store errors: a
// broken Redis must not take logins down with it.
type Service struct {
	store     Store
	threshold int64
	window    time.Duration
	logger    *slog.Logger
}

// Option configures the Service.
type Option func(*Service)

// WithThreshold overrides the failure count that triggers a lockout.
func WithThreshold(n int64) Option {
	return func(s *Service) { s.threshold = n }
}

// WithWindow overrides the counting and cooldown window.
func WithWindow(d time.Duration) Option {
	return func(s *Service) { s.window = d }
}

// WithLogger sets a logger for store failures.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

// New creates a lockout service over the given store.
func New(store Store, opts ...Option) (*Service, error) {
	if store == nil {
		return nil, errors.New("lockout store is required")
	}
	svc := &Service{
		store:     store,
		threshold: defaultThreshold,
		window:    defaultWindow,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc, nil
}

// Check returns a forbidden error when the key is locked out.
func (s *Service) Check(ctx context.Context, email, ip string) error {
	count, err := s.store.Count(ctx, key(email, ip))
	if err != nil {
		s.logger.WarnContext(ctx, "lockout check failed, allowing attempt", "error", err)
		return nil
	}
	if count >= s.threshold {
		return dErrors.New(dErrors.CodeForbidden, "too many failed login attempts, try again later")
	}
	return nil
}

// RecordFailure counts one failed attempt.
func (s *Service) RecordFailure(ctx context.Context, email, ip string) {
	if _, err := s.store.Incr(ctx, key(email, ip), s.window); err != nil {
		s.logger.WarnContext(ctx, "failed to record login failure", "error", err)
	}
}

// Reset clears the failure count after a successful login.
func (s *Service) Reset(ctx context.Context, email, ip string) {
	if err := s.store.Reset(ctx, key(email, ip)); err != nil {
		s.logger.WarnContext(ctx, "failed to reset lockout counter", "error", err)
	}
}

func key(email, ip string) string {
	return email + "|" + ip
}
