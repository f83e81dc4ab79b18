package service

import (
	"context"

	"easyplit/internal/audit"
	dErrors "easyplit/pkg/domain-errors"
)

// Logout revokes the session behind the raw cookie value. It is idempotent:
// a missing, invalid, or already-revoked token is a success. Only a store
// failure surfaces as an error.
func (s *Service) Logout(ctx context.Context, raw string) error {
	if raw == "" {
		return nil
	}
	claims, err := s.codec.Verify(raw)
	if err != nil {
		return nil
	}
	sessionID, err := claims.SessionUUID()
	if err != nil {
		return nil
	}

	if err := s.sessions.Delete(ctx, sessionID); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to revoke session")
	}

	userID, _ := claims.UserUUID()
	if err := s.emit(ctx, audit.Event{
		Action:  audit.ActionLogout,
		UserID:  userID,
		Subject: sessionID.String(),
	}); err != nil {
		s.logger.ErrorContext(ctx, "failed to record logout", "error", err)
	}
	s.logger.InfoContext(ctx, "session logged out", "session_id", sessionID)
	return nil
}
