package request

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi"

	"github.com/frahmantamala/permission-management/internal/auth"
	"github.com/frahmantamala/permission-management/internal/transport"
	"github.com/frahmantamala/permission-management/pkg/logger"
)

type ServiceAPI interface {
	CreateRequest(ctx context.Context, actor *auth.Actor, dto CreateRequestDTO) (*PermissionRequest, error)
	GetRequest(actor *auth.Actor, id int64) (*PermissionRequest, error)
	ListMine(actor *auth.Actor) ([]*PermissionRequest, error)
	ListPending(actor *auth.Actor, requestedSectorID *int64) ([]*PermissionRequest, error)
	ListAll(actor *auth.Actor, requestedSectorID *int64, status *Status) ([]*PermissionRequest, error)
	UpdateRequest(actor *auth.Actor, id int64, dto UpdateRequestDTO) (*PermissionRequest, error)
	ApproveRequest(ctx context.Context, actor *auth.Actor, id int64) (*PermissionRequest, error)
	RejectRequest(ctx context.Context, actor *auth.Actor, id int64, dto RejectDTO) (*PermissionRequest, error)
}

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
}

func NewHandler(service ServiceAPI) *Handler {
	lg := logger.LoggerWrapper()
	if lg == nil {
		lg = slog.Default()
	}
	return &Handler{
		BaseHandler: transport.NewBaseHandler(lg),
		Service:     service,
	}
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	actor, ok := auth.ActorFromContext(r.Context())
	if !ok || actor == nil {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var dto CreateRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.Logger.Error("CreateRequest: invalid request body", "error", err)
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	req, err := h.Service.CreateRequest(r.Context(), actor, dto)
	if err != nil {
		h.Logger.Error("CreateRequest: service error", "error", err, "user_id", actor.UserID)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusCreated, req)
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	actor, ok := auth.ActorFromContext(r.Context())
	if !ok || actor == nil {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request id")
		return
	}

	req, err := h.Service.GetRequest(actor, id)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, req)
}

func (h *Handler) ListMine(w http.ResponseWriter, r *http.Request) {
	actor, ok := auth.ActorFromContext(r.Context())
	if !ok || actor == nil {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	reqs, err := h.Service.ListMine(actor)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, reqs)
}

func (h *Handler) ListPending(w http.ResponseWriter, r *http.Request) {
	actor, ok := auth.ActorFromContext(r.Context())
	if !ok || actor == nil {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	reqs, err := h.Service.ListPending(actor, querySectorID(r))
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, reqs)
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	actor, ok := auth.ActorFromContext(r.Context())
	if !ok || actor == nil {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var status *Status
	if raw := r.URL.Query().Get("status"); raw != "" {
		st := Status(raw)
		status = &st
	}

	reqs, err := h.Service.ListAll(actor, querySectorID(r), status)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, reqs)
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	actor, ok := auth.ActorFromContext(r.Context())
	if !ok || actor == nil {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request id")
		return
	}

	var dto UpdateRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	req, err := h.Service.UpdateRequest(actor, id, dto)
	if err != nil {
		h.Logger.Error("UpdateRequest: service error", "error", err, "request_id", id)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, req)
}

func (h *Handler) Approve(w http.ResponseWriter, r *http.Request) {
	actor, ok := auth.ActorFromContext(r.Context())
	if !ok || actor == nil {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request id")
		return
	}

	req, err := h.Service.ApproveRequest(r.Context(), actor, id)
	if err != nil {
		h.Logger.Error("ApproveRequest: service error", "error", err, "request_id", id, "user_id", actor.UserID)
		h.HandleServiceError(w, err)
		return
	}

	h.Logger.Info("ApproveRequest: request approved", "request_id", id, "approved_by", actor.UserID)
	h.WriteJSON(w, http.StatusOK, req)
}

func (h *Handler) Reject(w http.ResponseWriter, r *http.Request) {
	actor, ok := auth.ActorFromContext(r.Context())
	if !ok || actor == nil {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request id")
		return
	}

	var dto RejectDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	req, err := h.Service.RejectRequest(r.Context(), actor, id, dto)
	if err != nil {
		h.Logger.Error("RejectRequest: service error", "error", err, "request_id", id, "user_id", actor.UserID)
		h.HandleServiceError(w, err)
		return
	}

	h.Logger.Info("RejectRequest: request rejected", "request_id", id, "rejected_by", actor.UserID)
	h.WriteJSON(w, http.StatusOK, req)
}

func querySectorID(r *http.Request) *int64 {
	raw := r.URL.Query().Get("sector_id")
	if raw == "" {
		return nil
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return nil
	}
	return &id
}
