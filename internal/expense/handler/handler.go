// Package handler exposes the expense endpoints, nested under a group. All
// routes sit behind the session gate.
package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"easyplit/internal/expense"
	dErrors "easyplit/pkg/domain-errors"
	"easyplit/pkg/platform/httputil"
	"easyplit/pkg/requestcontext"
)

// Service defines the expense operations the handler needs.
type Service interface {
	Create(ctx context.Context, userID, groupID uuid.UUID, req expense.CreateRequest) (*expense.Expense, error)
	ListByGroup(ctx context.Context, userID, groupID uuid.UUID) ([]*expense.Expense, error)
	Delete(ctx context.Context, userID, groupID, expenseID uuid.UUID) error
}

// Handler wires expense endpoints to the expense service.
type Handler struct {
	service Service
	logger  *slog.Logger
}

// New constructs an expense handler.
func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts the expense endpoints.
func (h *Handler) Register(r chi.Router) {
	r.Post("/groups/{groupID}/expenses", h.HandleCreate)
	r.Get("/groups/{groupID}/expenses", h.HandleList)
	r.Delete("/groups/{groupID}/expenses/{expenseID}", h.HandleDelete)
}

// HandleCreate handles POST /groups/{groupID}/expenses.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	groupID, ok := pathID(w, r, "groupID", "invalid group id")
	if !ok {
		return
	}
	req, ok := httputil.Decode[expense.CreateRequest](w, r)
	if !ok {
		return
	}

	e, err := h.service.Create(ctx, requestcontext.UserID(ctx), groupID, req)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, map[string]any{"expense": e})
}

// HandleList handles GET /groups/{groupID}/expenses.
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	groupID, ok := pathID(w, r, "groupID", "invalid group id")
	if !ok {
		return
	}
	expenses, err := h.service.ListByGroup(ctx, requestcontext.UserID(ctx), groupID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	if expenses == nil {
		expenses = []*expense.Expense{}
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"expenses": expenses})
}

// HandleDelete handles DELETE /groups/{groupID}/expenses/{expenseID}.
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	groupID, ok := pathID(w, r, "groupID", "invalid group id")
	if !ok {
		return
	}
	expenseID, ok := pathID(w, r, "expenseID", "invalid expense id")
	if !ok {
		return
	}

	if err := h.service.Delete(ctx, requestcontext.UserID(ctx), groupID, expenseID); err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"message": "expense deleted"})
}

func pathID(w http.ResponseWriter, r *http.Request, param, msg string) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, param))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, msg))
		return uuid.Nil, false
	}
	return id, true
}
