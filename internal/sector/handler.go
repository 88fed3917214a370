package sector

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
	ListSectors() ([]*Sector, error)
	GetSector(id int64) (*Sector, error)
	CreateSector(dto CreateSectorDTO) (*Sector, error)
	UpdateSector(id int64, dto UpdateSectorDTO) (*Sector, error)
	DeleteSector(id int64) error
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
	sectors, err := h.Service.ListSectors()
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, sectors)
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid sector id")
		return
	}

	sec, err := h.Service.GetSector(id)
	if err != nil {
		if err == ErrNotFound {
			h.WriteError(w, http.StatusNotFound, err.Error())
			return
		}
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, sec)
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var dto CreateSectorDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	sec, err := h.Service.CreateSector(dto)
	if err != nil {
		h.Logger.Error("CreateSector: service error", "error", err)
		switch err {
		case ErrNameTaken:
			h.WriteError(w, http.StatusConflict, err.Error())
		case ErrManagerNotFound, ErrNotAManager:
			h.WriteError(w, http.StatusBadRequest, err.Error())
		default:
			h.HandleServiceError(w, err)
		}
		return
	}

	h.Logger.Info("CreateSector: sector created", "sector_id", sec.ID, "name", sec.Name)
	h.WriteJSON(w, http.StatusCreated, sec)
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid sector id")
		return
	}

	var dto UpdateSectorDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	sec, err := h.Service.UpdateSector(id, dto)
	if err != nil {
		h.Logger.Error("UpdateSector: service error", "error", err, "sector_id", id)
		switch err {
		case ErrNotFound:
			h.WriteError(w, http.StatusNotFound, err.Error())
		case ErrNameTaken:
			h.WriteError(w, http.StatusConflict, err.Error())
		case ErrManagerNotFound, ErrNotAManager:
			h.WriteError(w, http.StatusBadRequest, err.Error())
		default:
			h.HandleServiceError(w, err)
		}
		return
	}

	h.WriteJSON(w, http.StatusOK, sec)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid sector id")
		return
	}

	if err := h.Service.DeleteSector(id); err != nil {
		h.Logger.Error("DeleteSector: service error", "error", err, "sector_id", id)
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

// BulkUpload accepts a multipart form with an XLSX file under "file" and
// creates one sector per row.
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
