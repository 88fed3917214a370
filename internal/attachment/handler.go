package attachment

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi"

	"github.com/frahmantamala/permission-management/internal/auth"
	"github.com/frahmantamala/permission-management/internal/request"
	"github.com/frahmantamala/permission-management/internal/transport"
	"github.com/frahmantamala/permission-management/pkg/logger"
)

type ServiceAPI interface {
	IssueUploadURL(ctx context.Context, fileName, contentType string) (*UploadTicket, error)
	AddAttachment(actor *auth.Actor, requestID int64, seed request.AttachmentSeed) (*request.Attachment, error)
	ListAttachments(actor *auth.Actor, requestID int64) ([]*request.Attachment, error)
	DownloadURL(ctx context.Context, actor *auth.Actor, attachmentID int64) (string, error)
	DeleteAttachment(ctx context.Context, actor *auth.Actor, attachmentID int64) error
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

type uploadURLRequest struct {
	FileName    string `json:"file_name"`
	ContentType string `json:"content_type"`
}

func (h *Handler) IssueUploadURL(w http.ResponseWriter, r *http.Request) {
	var body uploadURLRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	ticket, err := h.Service.IssueUploadURL(r.Context(), body.FileName, body.ContentType)
	if err != nil {
		h.Logger.Error("IssueUploadURL: service error", "error", err)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, ticket)
}

func (h *Handler) Add(w http.ResponseWriter, r *http.Request) {
	actor, ok := auth.ActorFromContext(r.Context())
	if !ok || actor == nil {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	requestID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request id")
		return
	}

	var seed request.AttachmentSeed
	if err := json.NewDecoder(r.Body).Decode(&seed); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	att, err := h.Service.AddAttachment(actor, requestID, seed)
	if err != nil {
		h.Logger.Error("AddAttachment: service error", "error", err, "request_id", requestID)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusCreated, att)
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	actor, ok := auth.ActorFromContext(r.Context())
	if !ok || actor == nil {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	requestID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request id")
		return
	}

	atts, err := h.Service.ListAttachments(actor, requestID)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, atts)
}

func (h *Handler) Download(w http.ResponseWriter, r *http.Request) {
	actor, ok := auth.ActorFromContext(r.Context())
	if !ok || actor == nil {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	attachmentID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid attachment id")
		return
	}

	url, err := h.Service.DownloadURL(r.Context(), actor, attachmentID)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]string{"download_url": url})
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	actor, ok := auth.ActorFromContext(r.Context())
	if !ok || actor == nil {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	attachmentID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid attachment id")
		return
	}

	if err := h.Service.DeleteAttachment(r.Context(), actor, attachmentID); err != nil {
		h.Logger.Error("DeleteAttachment: service error", "error", err, "attachment_id", attachmentID)
		h.HandleServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
