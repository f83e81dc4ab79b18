package service

import (
	"context"
	"errors"
	"time"

	"easyplit/internal/auth/models"
	dErrors "easyplit/pkg/domain-errors"
	"easyplit/pkg/platform/sentinel"
	"easyplit/pkg/requestcontext"
)

// touchInterval throttles last-seen writes so a busy client does not hit the
// session store on every request.
const touchInterval = time.Minute

// Resolve maps a raw cookie value to its user and session. It is total over
// the token domain: any authentication failure (empty, malformed, expired,
// revoked, orphaned) yields (nil, nil, nil), never an error. A non-nil error
// means the backing store misbehaved and the caller cannot know either way.
func (s *Service) Resolve(ctx context.Context, raw string) (*models.User, *models.Session, error) {
	ctx, span := s.tracer.Start(ctx, "auth.resolve")
	defer span.End()

	start := time.Now()
	defer func() { s.observeResolve(time.Since(start)) }()

	if raw == "" {
		return nil, nil, nil
	}

	claims, err := s.codec.Verify(raw)
	if err != nil {
		return nil, nil, nil
	}
	sessionID, err := claims.SessionUUID()
	if err != nil {
		return nil, nil, nil
	}

	sess, err := s.sessions.FindByID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, nil, nil
		}
		return nil, nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load session")
	}

	now := requestcontext.Now(ctx)
	if !sess.Live(now) {
		// Lazy cleanup; expiry alone already invalidates the session.
		if err := s.sessions.Delete(ctx, sess.ID); err != nil {
			s.logger.WarnContext(ctx, "failed to delete expired session", "session_id", sess.ID, "error", err)
		}
		return nil, nil, nil
	}

	user, err := s.users.FindByID(ctx, sess.UserID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, nil, nil
		}
		return nil, nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load user")
	}

	if now.Sub(sess.LastSeenAt) >= touchInterval {
		touched := *sess
		touched.LastSeenAt = now
		if err := s.sessions.Touch(ctx, &touched); err != nil {
			s.logger.WarnContext(ctx, "failed to touch session", "session_id", sess.ID, "error", err)
		} else {
			sess = &touched
		}
	}

	return user, sess, nil
}
