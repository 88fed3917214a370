package permissiontype

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi"

	"github.com/frahmantamala/permission-management/internal/transport"
	"github.com/frahmantamala/permission-management/pkg/logger"
)

type ServiceAPI interface {
	ListTypes() ([]*PermissionType, error)
	GetType(id int64) (*PermissionType, error)
	CreateType(dto CreateTypeDTO) (*PermissionType, error)
	UpdateType(id int64, dto UpdateTypeDTO) (*PermissionType, error)
	DeleteType(id int64) error
	BulkUpload(data []byte) (*BulkUploadResult, error)
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

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	types, err := h.Service.ListTypes()
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, types)
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid permission type id")
		return
	}

	t, err := h.Service.GetType(id)
	if err != nil {
		if err == ErrNotFound {
			h.WriteError(w, http.StatusNotFound, err.Error())
			return
		}
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, t)
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var dto CreateTypeDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	t, err := h.Service.CreateType(dto)
	if err != nil {
		h.Logger.Error("CreateType: service error", "error", err)
		switch err {
		case ErrNameTaken:
			h.WriteError(w, http.StatusConflict, err.Error())
		default:
			h.WriteError(w, http.StatusBadRequest, err.Error())
		}
		return
	}

	h.Logger.Info("CreateType: permission type created", "type_id", t.ID, "name", t.Name)
	h.WriteJSON(w, http.StatusCreated, t)
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid permission type id")
		return
	}

	var dto UpdateTypeDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	t, err := h.Service.UpdateType(id, dto)
	if err != nil {
		h.Logger.Error("UpdateType: service error", "error", err, "type_id", id)
		switch err {
		case ErrNotFound:
			h.WriteError(w, http.StatusNotFound, err.Error())
		case ErrNameTaken:
			h.WriteError(w, http.StatusConflict, err.Error())
		default:
			h.WriteError(w, http.StatusBadRequest, err.Error())
		}
		return
	}

	h.WriteJSON(w, http.StatusOK, t)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid permission type id")
		return
	}

	if err := h.Service.DeleteType(id); err != nil {
		h.Logger.Error("DeleteType: service error", "error", err, "type_id", id)
		switch err {
		case ErrNotFound:
			h.WriteError(w, http.StatusNotFound, err.Error())
		case ErrInUse:
			h.WriteError(w, http.StatusConflict, err.Error())
		default:
			h.HandleServiceError(w, err)
		}
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) BulkUpload(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(10 << 20); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "file is required")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "failed to read file")
		return
	}

	result, err := h.Service.BulkUpload(data)
	if err != nil {
		h.Logger.Error("BulkUpload: service error", "error", err)
		h.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	h.WriteJSON(w, http.StatusOK, result)
}
