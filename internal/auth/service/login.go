package service

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"easyplit/internal/audit"
	"easyplit/internal/auth/models"
	dErrors "easyplit/pkg/domain-errors"
	"easyplit/pkg/platform/sentinel"
	"easyplit/pkg/requestcontext"
)

// dummyHash is compared against when no account matches the email, so the
// unknown-email and wrong-password paths cost the same.
var dummyHash = func() []byte {
	h, err := bcrypt.GenerateFromPassword([]byte("easyplit-dummy-password"), bcrypt.DefaultCost)
	if err != nil {
		panic(err)
	}
	return h
}()

func invalidCredentials() error {
	return dErrors.New(dErrors.CodeUnauthorized, "invalid email or password")
}

// Login verifies the credentials and opens a new session. The returned token
// is the signed cookie value. Unknown email and wrong password are
// indistinguishable to the caller.
func (s *Service) Login(ctx context.Context, req models.LoginRequest) (*models.User, string, error) {
	ctx, span := s.tracer.Start(ctx, "auth.login")
	defer span.End()

	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, "", err
	}

	ip := requestcontext.ClientIP(ctx)
	if s.lockout != nil {
		if err := s.lockout.Check(ctx, req.Email, ip); err != nil {
			return nil, "", err
		}
	}

	user, err := s.users.FindByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(req.Password))
			return nil, "", s.loginFailed(ctx, uuid.Nil, req.Email, ip)
		}
		return nil, "", dErrors.Wrap(err, dErrors.CodeInternal, "failed to look up user")
	}

	if !user.HasPassword() {
		_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(req.Password))
		return nil, "", s.loginFailed(ctx, user.ID, req.Email, ip)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, "", s.loginFailed(ctx, user.ID, req.Email, ip)
	}

	now := requestcontext.Now(ctx)
	sess := &models.Session{
		ID:         uuid.New(),
		UserID:     user.ID,
		IPAddress:  ip,
		UserAgent:  requestcontext.UserAgent(ctx),
		CreatedAt:  now,
		LastSeenAt: now,
		ExpiresAt:  now.Add(s.sessionTTL),
	}
	if err := s.sessions.Create(ctx, sess); err != nil {
		return nil, "", dErrors.Wrap(err, dErrors.CodeInternal, "failed to create session")
	}

	raw, err := s.codec.Issue(user.ID, sess.ID, s.sessionTTL)
	if err != nil {
		return nil, "", dErrors.Wrap(err, dErrors.CodeInternal, "failed to issue token")
	}

	if s.lockout != nil {
		s.lockout.Reset(ctx, req.Email, ip)
	}
	if err := s.emit(ctx, audit.Event{
		Action:  audit.ActionLoginSucceeded,
		UserID:  user.ID,
		Subject: sess.ID.String(),
	}); err != nil {
		s.logger.ErrorContext(ctx, "failed to record login", "error", err)
	}

	s.incLoginSucceeded()
	s.logger.InfoContext(ctx, "login succeeded", "user_id", user.ID, "session_id", sess.ID)
	return user, raw, nil
}

// loginFailed records the failure and returns the uniform credential error.
func (s *Service) loginFailed(ctx context.Context, userID uuid.UUID, email, ip string) error {
	if s.lockout != nil {
		s.lockout.RecordFailure(ctx, email, ip)
	}
	if err := s.emit(ctx, audit.Event{
		Action:  audit.ActionLoginFailed,
		UserID:  userID,
		Subject: email,
	}); err != nil {
		s.logger.ErrorContext(ctx, "failed to record login failure", "error", err)
	}
	s.incLoginFailed()
	s.logger.InfoContext(ctx, "login failed", "ip", ip)
	return invalidCredentials()
}
