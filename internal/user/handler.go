package user

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

// ActorResolver extracts the acting identity from the request context. It is
// injected from the wiring layer so this package stays independent of the
// auth middleware.
type ActorResolver func(r *http.Request) (role Role, managedSectorID *int64, ok bool)

type ServiceAPI interface {
	ListUsers() ([]*User, error)
	GetUser(id int64) (*User, error)
	CreateUser(dto CreateUserDTO) (*User, error)
	UpdateUser(id int64, dto UpdateUserDTO) (*User, error)
	DeleteUser(id int64) error
	UsersBySector(actorRole Role, actorManagedSectorID *int64, sectorID int64) ([]*User, error)
	BulkImport(filename string, data []byte) (*BulkImportResult, error)
}

type Handler struct {
	*transport.BaseHandler
	Service      ServiceAPI
	resolveActor ActorResolver
}

func NewHandler(service ServiceAPI, resolveActor ActorResolver) *Handler {
	lg := logger.LoggerWrapper()
	if lg == nil {
		lg = slog.Default()
	}
	return &Handler{
		BaseHandler:  transport.NewBaseHandler(lg),
		Service:      service,
		resolveActor: resolveActor,
	}
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	users, err := h.Service.ListUsers()
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, users)
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid user id")
		return
	}

	u, err := h.Service.GetUser(id)
	if err != nil {
		if err == ErrNotFound {
			h.WriteError(w, http.StatusNotFound, err.Error())
			return
		}
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, u)
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var dto CreateUserDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	u, err := h.Service.CreateUser(dto)
	if err != nil {
		h.Logger.Error("CreateUser: service error", "error", err, "email", dto.Email)
		switch err {
		case ErrEmailTaken:
			h.WriteError(w, http.StatusConflict, err.Error())
		case ErrSectorNotFound, ErrManagerNeedsSector:
			h.WriteError(w, http.StatusBadRequest, err.Error())
		default:
			h.WriteError(w, http.StatusBadRequest, err.Error())
		}
		return
	}

	h.Logger.Info("CreateUser: user created", "user_id", u.ID, "role", u.Role)
	h.WriteJSON(w, http.StatusCreated, u)
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid user id")
		return
	}

	var dto UpdateUserDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	u, err := h.Service.UpdateUser(id, dto)
	if err != nil {
		h.Logger.Error("UpdateUser: service error", "error", err, "user_id", id)
		switch err {
		case ErrNotFound:
			h.WriteError(w, http.StatusNotFound, err.Error())
		case ErrEmailTaken:
			h.WriteError(w, http.StatusConflict, err.Error())
		default:
			h.WriteError(w, http.StatusBadRequest, err.Error())
		}
		return
	}

	h.WriteJSON(w, http.StatusOK, u)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid user id")
		return
	}

	if err := h.Service.DeleteUser(id); err != nil {
		h.Logger.Error("DeleteUser: service error", "error", err, "user_id", id)
		switch err {
		case ErrNotFound:
			h.WriteError(w, http.StatusNotFound, err.Error())
		default:
			h.HandleServiceError(w, err)
		}
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// BySector lists the members of one sector. Managers can only ask for the
// sector they head; the service enforces that.
func (h *Handler) BySector(w http.ResponseWriter, r *http.Request) {
	role, managedSectorID, ok := h.resolveActor(r)
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	sectorID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid sector id")
		return
	}

	users, err := h.Service.UsersBySector(role, managedSectorID, sectorID)
	if err != nil {
		if err == ErrSectorAccessDenied {
			h.WriteError(w, http.StatusForbidden, err.Error())
			return
		}
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, users)
}

// BulkImport accepts a multipart form with a CSV/XLSX file under "file".
func (h *Handler) BulkImport(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(10 << 20); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}

	file, header, err := r.FormFile("file")
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

	result, err := h.Service.BulkImport(header.Filename, data)
	if err != nil {
		h.Logger.Error("BulkImport: service error", "error", err)
		h.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	h.WriteJSON(w, http.StatusOK, result)
}
