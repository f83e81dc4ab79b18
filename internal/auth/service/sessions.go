package service

import (
	"context"
	"errors"
	"sort"

	"github.com/google/uuid"

	"easyplit/internal/audit"
	"easyplit/internal/auth/device"
	"easyplit/internal/auth/models"
	dErrors "easyplit/pkg/domain-errors"
	"easyplit/pkg/platform/sentinel"
	"easyplit/pkg/requestcontext"
)

// Sessions lists the user's live sessions, newest first, with the current
// one flagged.
func (s *Service) Sessions(ctx context.Context, userID, currentSessionID uuid.UUID) ([]models.SessionSummary, error) {
	sessions, err := s.sessions.ListByUser(ctx, userID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list sessions")
	}

	now := requestcontext.Now(ctx)
	summaries := make([]models.SessionSummary, 0, len(sessions))
	for _, sess := range sessions {
		if !sess.Live(now) {
			continue
		}
		summaries = append(summaries, models.SessionSummary{
			SessionID:    sess.ID,
			Device:       device.ParseUserAgent(sess.UserAgent),
			IPAddress:    sess.IPAddress,
			CreatedAt:    sess.CreatedAt,
			LastActivity: sess.LastSeenAt,
			IsCurrent:    sess.ID == currentSessionID,
		})
	}
	sort.Slice(summaries, func(i, j int) bool {
		return summaries[i].CreatedAt.After(summaries[j].CreatedAt)
	})
	return summaries, nil
}

// RevokeSession deletes one of the user's sessions. Revoking another user's
// session is forbidden; the target's existence is not leaked.
func (s *Service) RevokeSession(ctx context.Context, userID, sessionID uuid.UUID) error {
	sess, err := s.sessions.FindByID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.New(dErrors.CodeNotFound, "session not found")
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load session")
	}
	if sess.UserID != userID {
		return dErrors.New(dErrors.CodeNotFound, "session not found")
	}

	if err := s.sessions.Delete(ctx, sessionID); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to revoke session")
	}

	if err := s.emit(ctx, audit.Event{
		Action:  audit.ActionSessionRevoked,
		UserID:  userID,
		Subject: sessionID.String(),
	}); err != nil {
		s.logger.ErrorContext(ctx, "failed to record session revocation", "error", err)
	}
	s.incSessionRevoked()
	return nil
}
