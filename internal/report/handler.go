package report

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/frahmantamala/permission-management/internal/auth"
	"github.com/frahmantamala/permission-management/internal/transport"
	"github.com/frahmantamala/permission-management/pkg/logger"
)

type ServiceAPI interface {
	Summarize(actor *auth.Actor, requestedSectorID *int64) (*Summary, error)
	ExportPDF(actor *auth.Actor, requestedSectorID *int64) ([]byte, error)
	ExportExcel(actor *auth.Actor, requestedSectorID *int64) ([]byte, error)
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

func (h *Handler) Summary(w http.ResponseWriter, r *http.Request) {
	actor, ok := auth.ActorFromContext(r.Context())
	if !ok || actor == nil {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	summary, err := h.Service.Summarize(actor, querySectorID(r))
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, summary)
}

func (h *Handler) ExportPDF(w http.ResponseWriter, r *http.Request) {
	actor, ok := auth.ActorFromContext(r.Context())
	if !ok || actor == nil {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	data, err := h.Service.ExportPDF(actor, querySectorID(r))
	if err != nil {
		h.Logger.Error("ExportPDF: service error", "error", err)
		h.HandleServiceError(w, err)
		return
	}

	writeDownload(w, data, "application/pdf", "pdf")
}

func (h *Handler) ExportExcel(w http.ResponseWriter, r *http.Request) {
	actor, ok := auth.ActorFromContext(r.Context())
	if !ok || actor == nil {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	data, err := h.Service.ExportExcel(actor, querySectorID(r))
	if err != nil {
		h.Logger.Error("ExportExcel: service error", "error", err)
		h.HandleServiceError(w, err)
		return
	}

	writeDownload(w, data, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", "xlsx")
}

func writeDownload(w http.ResponseWriter, data []byte, contentType, extension string) {
	filename := fmt.Sprintf("solicitudes-%s.%s", time.Now().Format("2006-01-02"), extension)
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.WriteHeader(http.StatusOK)
	w.Write(data)
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
