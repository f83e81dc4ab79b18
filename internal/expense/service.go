package expense

import (
	"context"
	"errors"
	"log/slog"
	"sort"

	"github.com/google/uuid"

	"easyplit/internal/audit"
	"easyplit/internal/group"
	"easyplit/internal/platform/metrics"
	dErrors "easyplit/pkg/domain-errors"
	"easyplit/pkg/platform/sentinel"
	"easyplit/pkg/requestcontext"
)

// Store persists expenses.
type Store interface {
	Create(ctx context.Context, e *Expense) error
	FindByID(ctx context.Context, id uuid.UUID) (*Expense, error)
	ListByGroup(ctx context.Context, groupID uuid.UUID) ([]*Expense, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// GroupDirectory provides member-scoped group lookup. Using the group
// service here means membership checks stay in one place.
type GroupDirectory interface {
	Get(ctx context.Context, userID, groupID uuid.UUID) (*group.Group, error)
}

// AuditPublisher records expense lifecycle events.
type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

// Service orchestrates expense creation and history.
type Service struct {
	store    Store
	groups   GroupDirectory
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

// NewService constructs the expense service.
func NewService(store Store, groups GroupDirectory, opts ...Option) (*Service, error) {
	if store == nil || groups == nil {
		return nil, errors.New("expense store and group directory are required")
	}
	svc := &Service{
		store:  store,
		groups: groups,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc, nil
}

// Create records a new expense in a group the caller belongs to. The payer
// and every participant must be group members.
func (s *Service) Create(ctx context.Context, userID, groupID uuid.UUID, req CreateRequest) (*Expense, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	g, err := s.groups.Get(ctx, userID, groupID)
	if err != nil {
		return nil, err
	}

	payerID := req.PayerID
	if payerID == uuid.Nil {
		payerID = userID
	}
	if !g.HasMember(payerID) {
		return nil, dErrors.NewValidation("validation failed", map[string]string{
			"payer_id": "payer must be a group member",
		})
	}

	participants := req.ParticipantIDs
	if len(participants) == 0 {
		participants = append([]uuid.UUID(nil), g.Members...)
	} else {
		seen := make(map[uuid.UUID]struct{}, len(participants))
		for _, p := range participants {
			if !g.HasMember(p) {
				return nil, dErrors.NewValidation("validation failed", map[string]string{
					"participant_ids": "all participants must be group members",
				})
			}
			if _, dup := seen[p]; dup {
				return nil, dErrors.NewValidation("validation failed", map[string]string{
					"participant_ids": "participants must be unique",
				})
			}
			seen[p] = struct{}{}
		}
	}

	e := &Expense{
		ID:             uuid.New(),
		GroupID:        groupID,
		Description:    req.Description,
		AmountCents:    req.AmountCents,
		PayerID:        payerID,
		ParticipantIDs: participants,
		CreatedAt:      requestcontext.Now(ctx),
	}
	if err := s.store.Create(ctx, e); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create expense")
	}

	s.emit(ctx, audit.Event{Action: audit.ActionExpenseCreated, UserID: userID, Subject: e.ID.String()})
	if s.metrics != nil {
		s.metrics.ExpensesCreated.Inc()
	}
	s.logger.InfoContext(ctx, "expense created", "expense_id", e.ID, "group_id", groupID)
	return e, nil
}

// ListByGroup returns the group's expense history, newest first.
func (s *Service) ListByGroup(ctx context.Context, userID, groupID uuid.UUID) ([]*Expense, error) {
	if _, err := s.groups.Get(ctx, userID, groupID); err != nil {
		return nil, err
	}
	expenses, err := s.store.ListByGroup(ctx, groupID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list expenses")
	}
	sort.Slice(expenses, func(i, j int) bool {
		return expenses[i].CreatedAt.After(expenses[j].CreatedAt)
	})
	return expenses, nil
}

// Delete removes an expense. Only the payer or the group owner may delete
// it.
func (s *Service) Delete(ctx context.Context, userID, groupID, expenseID uuid.UUID) error {
	g, err := s.groups.Get(ctx, userID, groupID)
	if err != nil {
		return err
	}

	e, err := s.store.FindByID(ctx, expenseID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.New(dErrors.CodeNotFound, "expense not found")
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load expense")
	}
	if e.GroupID != groupID {
		return dErrors.New(dErrors.CodeNotFound, "expense not found")
	}
	if e.PayerID != userID && g.OwnerID != userID {
		return dErrors.New(dErrors.CodeForbidden, "only the payer or the group owner can delete an expense")
	}

	if err := s.store.Delete(ctx, expenseID); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to delete expense")
	}

	// Deletions must be attributable, so a broken audit trail fails the call.
	if s.auditPub != nil {
		if err := s.auditPub.Emit(ctx, audit.Event{
			Action:  audit.ActionExpenseDeleted,
			UserID:  userID,
			Subject: expenseID.String(),
		}); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to record expense deletion")
		}
	}
	s.logger.InfoContext(ctx, "expense deleted", "expense_id", expenseID)
	return nil
}

func (s *Service) emit(ctx context.Context, event audit.Event) {
	if s.auditPub == nil {
		return
	}
	if err := s.auditPub.Emit(ctx, event); err != nil {
		s.logger.ErrorContext(ctx, "failed to record expense event", "action", event.Action, "error", err)
	}
}
