// Package handler exposes the group endpoints. All routes sit behind the
// session gate, so the caller identity is always in the request context.
package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"easyplit/internal/group"
	dErrors "easyplit/pkg/domain-errors"
	"easyplit/pkg/platform/httputil"
	"easyplit/pkg/requestcontext"
)

// Service defines the group operations the handler needs.
type Service interface {
	Create(ctx context.Context, ownerID uuid.UUID, req group.CreateRequest) (*group.Group, error)
	Get(ctx context.Context, userID, groupID uuid.UUID) (*group.Group, error)
	ListMine(ctx context.Context, userID uuid.UUID) ([]*group.Group, error)
	AddMember(ctx context.Context, userID, groupID uuid.UUID, req group.AddMemberRequest) (*group.Group, error)
	Delete(ctx context.Context, userID, groupID uuid.UUID) error
}

// Handler wires group endpoints to the group service.
type Handler struct {
	service Service
	logger  *slog.Logger
}

// New constructs a group handler.
func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts the group endpoints.
func (h *Handler) Register(r chi.Router) {
	r.Post("/groups", h.HandleCreate)
	r.Get("/groups", h.HandleListMine)
	r.Get("/groups/{groupID}", h.HandleGet)
	r.Post("/groups/{groupID}/members", h.HandleAddMember)
	r.Delete("/groups/{groupID}", h.HandleDelete)
}

// HandleCreate handles POST /groups.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	req, ok := httputil.Decode[group.CreateRequest](w, r)
	if !ok {
		return
	}

	g, err := h.service.Create(ctx, requestcontext.UserID(ctx), req)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, map[string]any{"group": g})
}

// HandleListMine handles GET /groups.
func (h *Handler) HandleListMine(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	groups, err := h.service.ListMine(ctx, requestcontext.UserID(ctx))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	if groups == nil {
		groups = []*group.Group{}
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"groups": groups})
}

// HandleGet handles GET /groups/{groupID}.
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	groupID, ok := h.groupID(w, r)
	if !ok {
		return
	}
	g, err := h.service.Get(ctx, requestcontext.UserID(ctx), groupID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"group": g})
}

// HandleAddMember handles POST /groups/{groupID}/members.
func (h *Handler) HandleAddMember(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	groupID, ok := h.groupID(w, r)
	if !ok {
		return
	}
	req, ok := httputil.Decode[group.AddMemberRequest](w, r)
	if !ok {
		return
	}

	g, err := h.service.AddMember(ctx, requestcontext.UserID(ctx), groupID, req)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"group": g})
}

// HandleDelete handles DELETE /groups/{groupID}.
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	groupID, ok := h.groupID(w, r)
	if !ok {
		return
	}
	if err := h.service.Delete(ctx, requestcontext.UserID(ctx), groupID); err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"message": "group deleted"})
}

func (h *Handler) groupID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "groupID"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid group id"))
		return uuid.Nil, false
	}
	return id, true
}
