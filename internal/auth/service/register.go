package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"easyplit/internal/audit"
	"easyplit/internal/auth/models"
	dErrors "easyplit/pkg/domain-errors"
	"easyplit/pkg/platform/sentinel"
	"easyplit/pkg/requestcontext"
)

// Register creates a local-credential account. The email is unique across
// all accounts regardless of how they were created.
func (s *Service) Register(ctx context.Context, req models.RegisterRequest) (*models.User, error) {
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &models.User{
		ID:           uuid.New(),
		Email:        req.Email,
		Name:         req.Name,
		PasswordHash: string(hash),
		CreatedAt:    requestcontext.Now(ctx),
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			return nil, dErrors.New(dErrors.CodeConflict, "an account with this email already exists")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create user")
	}

	// Registration must be attributable; a broken audit trail fails the
	// operation.
	if err := s.emit(ctx, audit.Event{
		Action:  audit.ActionUserRegistered,
		UserID:  user.ID,
		Subject: user.Email,
	}); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to record registration")
	}

	s.incRegistered()
	s.logger.InfoContext(ctx, "user registered", "user_id", user.ID)
	return user, nil
}
