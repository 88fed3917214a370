package auth

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/frahmantamala/permission-management/internal/transport"
	"github.com/frahmantamala/permission-management/internal/user"
	"github.com/frahmantamala/permission-management/pkg/logger"
)

type ServiceAPI interface {
	Authenticate(dto LoginDTO) (AuthTokens, error)
	Register(dto RegisterDTO) (*user.User, error)
	RefreshTokens(refreshToken string) (AuthTokens, error)
	ValidateAccessToken(tokenString string) (*Claims, error)
	ResolveActor(userID int64) (*Actor, error)
	ForgotPassword(dto ForgotPasswordDTO) error
	ValidateResetToken(token string) error
	ResetPassword(dto ResetPasswordDTO) error
}

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
}

func NewHandler(svc ServiceAPI) *Handler {
	lg := logger.LoggerWrapper()
	if lg == nil {
		lg = slog.Default()
	}
	return &Handler{
		BaseHandler: transport.NewBaseHandler(lg),
		Service:     svc,
	}
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var dto LoginDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	tokens, err := h.Service.Authenticate(dto)
	if err != nil {
		h.Logger.Error("authentication failed", "error", err)

		switch err {
		case ErrInvalidCredentials:
			h.WriteError(w, http.StatusUnauthorized, "invalid credentials")
		default:
			h.WriteError(w, http.StatusBadRequest, err.Error())
		}
		return
	}

	h.WriteJSON(w, http.StatusOK, tokens)
}

func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var dto RegisterDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	u, err := h.Service.Register(dto)
	if err != nil {
		h.Logger.Error("registration failed", "error", err)

		switch err {
		case user.ErrEmailTaken:
			h.WriteError(w, http.StatusConflict, err.Error())
		default:
			h.WriteError(w, http.StatusBadRequest, err.Error())
		}
		return
	}

	h.WriteJSON(w, http.StatusCreated, map[string]interface{}{
		"message": "user registered successfully",
		"user":    u,
	})
}

func (h *Handler) RefreshToken(w http.ResponseWriter, r *http.Request) {
	var dto RefreshTokenDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := dto.Validate(); err != nil {
		h.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	tokens, err := h.Service.RefreshTokens(dto.RefreshToken)
	if err != nil {
		h.Logger.Error("token refresh failed", "error", err)
		h.WriteError(w, http.StatusUnauthorized, "invalid refresh token")
		return
	}

	h.WriteJSON(w, http.StatusOK, tokens)
}

func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	token := h.ExtractTokenFromHeader(r)
	if token == "" {
		h.WriteError(w, http.StatusUnauthorized, "missing authorization token")
		return
	}

	if _, err := h.Service.ValidateAccessToken(token); err != nil {
		h.WriteError(w, http.StatusUnauthorized, "invalid token")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var dto ForgotPasswordDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.Service.ForgotPassword(dto); err != nil {
		h.Logger.Error("forgot password failed", "error", err)
		h.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	// Always the same answer, known email or not.
	h.WriteJSON(w, http.StatusOK, map[string]string{
		"message": "if the email exists, a reset link has been sent",
	})
}

func (h *Handler) ValidateResetToken(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		h.WriteError(w, http.StatusBadRequest, "token is required")
		return
	}

	if err := h.Service.ValidateResetToken(token); err != nil {
		h.WriteError(w, http.StatusUnauthorized, "reset token is invalid or expired")
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]bool{"valid": true})
}

func (h *Handler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var dto ResetPasswordDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.Service.ResetPassword(dto); err != nil {
		h.Logger.Error("password reset failed", "error", err)

		switch err {
		case ErrResetTokenInvalid:
			h.WriteError(w, http.StatusUnauthorized, "reset token is invalid or expired")
		default:
			h.WriteError(w, http.StatusBadRequest, err.Error())
		}
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]string{"message": "password updated successfully"})
}

func (h *Handler) GetProfile(w http.ResponseWriter, r *http.Request) {
	actor, ok := ActorFromContext(r.Context())
	if !ok || actor == nil {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"id":                actor.UserID,
		"email":             actor.Email,
		"name":              actor.Name,
		"role":              actor.Role,
		"sector_id":         actor.SectorID,
		"managed_sector_id": actor.ManagedSectorID,
	})
}

// AuthMiddleware validates the bearer token and resolves the acting
// identity from the datastore for downstream handlers.
func (h *Handler) AuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := h.ExtractTokenFromHeader(r)
		if token == "" {
			h.WriteError(w, http.StatusUnauthorized, "missing authorization token")
			return
		}

		claims, err := h.Service.ValidateAccessToken(token)
		if err != nil {
			h.Logger.Warn("auth middleware: token validation failed", "error", err)
			h.WriteError(w, http.StatusUnauthorized, "invalid token")
			return
		}

		actor, err := h.Service.ResolveActor(claims.UserID)
		if err != nil {
			h.Logger.Warn("auth middleware: user lookup failed", "error", err, "user_id", claims.UserID)
			h.WriteError(w, http.StatusUnauthorized, "user not found")
			return
		}

		ctx := ContextWithActor(r.Context(), actor)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireRole guards a route subtree to the given roles. Must run inside
// AuthMiddleware.
func (h *Handler) RequireRole(roles ...user.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			actor, ok := ActorFromContext(r.Context())
			if !ok || actor == nil {
				h.WriteError(w, http.StatusUnauthorized, "authentication required")
				return
			}

			for _, role := range roles {
				if actor.Role == role {
					next.ServeHTTP(w, r)
					return
				}
			}

			h.WriteError(w, http.StatusForbidden, "insufficient role for this operation")
		})
	}
}
