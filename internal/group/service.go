package group

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"

	"easyplit/internal/audit"
	authmodels "easyplit/internal/auth/models"
	"easyplit/internal/platform/metrics"
	dErrors "easyplit/pkg/domain-errors"
	"easyplit/pkg/platform/sentinel"
	"easyplit/pkg/requestcontext"
)

// Store persists groups and their membership.
type Store interface {
	Create(ctx context.Context, g *Group) error
	FindByID(ctx context.Context, id uuid.UUID) (*Group, error)
	ListByMember(ctx context.Context, userID uuid.UUID) ([]*Group, error)
	AddMember(ctx context.Context, groupID, userID uuid.UUID) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// UserDirectory resolves member emails to accounts.
type UserDirectory interface {
	FindByEmail(ctx context.Context, email string) (*authmodels.User, error)
}

// AuditPublisher records group lifecycle events.
type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

// Service orchestrates group lifecycle and membership. Non-members are told
// "not found", never "forbidden": group existence is membership-scoped
// information.
type Service struct {
	store    Store
	users    UserDirectory
	auditPub AuditPublisher
	metrics  *metrics.Metrics
	logger   *slog.Logger
}

// Option configures the Service.
type Option func(*Service)

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

// NewService constructs the group service.
func NewService(store Store, users UserDirectory, opts ...Option) (*Service, error) {
	if store == nil || users == nil {
		return nil, errors.New("group store and user directory are required")
	}
	svc := &Service{
		store:  store,
		users:  users,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc, nil
}

// Create makes a new group with the caller as owner and sole member.
func (s *Service) Create(ctx context.Context, ownerID uuid.UUID, req CreateRequest) (*Group, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	g := &Group{
		ID:        uuid.New(),
		Name:      req.Name,
		OwnerID:   ownerID,
		Members:   []uuid.UUID{ownerID},
		CreatedAt: requestcontext.Now(ctx),
	}
	if err := s.store.Create(ctx, g); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create group")
	}

	s.emit(ctx, audit.Event{Action: audit.ActionGroupCreated, UserID: ownerID, Subject: g.ID.String()})
	if s.metrics != nil {
		s.metrics.GroupsCreated.Inc()
	}
	s.logger.InfoContext(ctx, "group created", "group_id", g.ID, "owner_id", ownerID)
	return g, nil
}

// Get returns a group the caller belongs to.
func (s *Service) Get(ctx context.Context, userID, groupID uuid.UUID) (*Group, error) {
	return s.memberGroup(ctx, userID, groupID)
}

// ListMine returns the caller's groups.
func (s *Service) ListMine(ctx context.Context, userID uuid.UUID) ([]*Group, error) {
	groups, err := s.store.ListByMember(ctx, userID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list groups")
	}
	return groups, nil
}

// AddMember adds an existing account to the group by email. Any member may
// invite; the new member must already have an account.
func (s *Service) AddMember(ctx context.Context, userID, groupID uuid.UUID, req AddMemberRequest) (*Group, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	g, err := s.memberGroup(ctx, userID, groupID)
	if err != nil {
		return nil, err
	}

	invited, err := s.users.FindByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.NewValidation("validation failed", map[string]string{
				"email": "no account exists with this email",
			})
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to look up user")
	}
	if g.HasMember(invited.ID) {
		return nil, dErrors.New(dErrors.CodeConflict, "user is already a member of this group")
	}

	if err := s.store.AddMember(ctx, g.ID, invited.ID); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			return nil, dErrors.New(dErrors.CodeConflict, "user is already a member of this group")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to add member")
	}
	g.Members = append(g.Members, invited.ID)

	s.emit(ctx, audit.Event{Action: audit.ActionMemberAdded, UserID: userID, Subject: invited.ID.String()})
	s.logger.InfoContext(ctx, "member added", "group_id", g.ID, "member_id", invited.ID)
	return g, nil
}

// Delete removes a group. Only the owner may delete it.
func (s *Service) Delete(ctx context.Context, userID, groupID uuid.UUID) error {
	g, err := s.memberGroup(ctx, userID, groupID)
	if err != nil {
		return err
	}
	if g.OwnerID != userID {
		return dErrors.New(dErrors.CodeForbidden, "only the group owner can delete the group")
	}

	if err := s.store.Delete(ctx, groupID); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to delete group")
	}

	// Deletions must be attributable, so a broken audit trail fails the call.
	if s.auditPub != nil {
		if err := s.auditPub.Emit(ctx, audit.Event{
			Action:  audit.ActionGroupDeleted,
			UserID:  userID,
			Subject: groupID.String(),
		}); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to record group deletion")
		}
	}
	s.logger.InfoContext(ctx, "group deleted", "group_id", groupID)
	return nil
}

func (s *Service) memberGroup(ctx context.Context, userID, groupID uuid.UUID) (*Group, error) {
	g, err := s.store.FindByID(ctx, groupID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "group not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load group")
	}
	if !g.HasMember(userID) {
		return nil, dErrors.New(dErrors.CodeNotFound, "group not found")
	}
	return g, nil
}

func (s *Service) emit(ctx context.Context, event audit.Event) {
	if s.auditPub == nil {
		return
	}
	if err := s.auditPub.Emit(ctx, event); err != nil {
		s.logger.ErrorContext(ctx, "failed to record group event", "action", event.Action, "error", err)
	}
}
