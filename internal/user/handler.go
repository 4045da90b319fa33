package user

import (
	"encoding/json"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"github.com/ovaphlow/pitchfork/service-nutrition-go/internal/apperr"
	"github.com/ovaphlow/pitchfork/service-nutrition-go/internal/auth"
	"github.com/ovaphlow/pitchfork/service-nutrition-go/pkg/utilities"
)

// Handler exposes HTTP endpoints for user operations.
type Handler struct {
	svc    *UserService
	logger *zap.SugaredLogger
}

func NewHandler(svc *UserService, logger *zap.SugaredLogger) *Handler {
	return &Handler{svc: svc, logger: logger}
}

// RegisterRequest request body for register endpoint.
type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Debugw("invalid register payload", "err", err)
		utilities.WriteError(w, h.logger, r, apperr.Validation("invalid payload"))
		return
	}
	acc, err := h.svc.Register(r.Context(), req.Username, req.Email, req.Password)
	if err != nil {
		utilities.WriteError(w, h.logger, r, err)
		return
	}
	utilities.WriteJSON(w, http.StatusCreated, map[string]any{"message": "User registered successfully", "user": acc})
}

// LoginRequest login payload. Identifier is an email or a username; Email
// is accepted as an alias.
type LoginRequest struct {
	Identifier string `json:"identifier"`
	Email      string `json:"email"`
	Password   string `json:"password"`
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Debugw("invalid login payload", "err", err)
		utilities.WriteError(w, h.logger, r, apperr.Validation("invalid payload"))
		return
	}
	id := req.Identifier
	if id == "" {
		id = req.Email
	}
	res, err := h.svc.Login(r.Context(), id, req.Password)
	if err != nil {
		utilities.WriteError(w, h.logger, r, err)
		return
	}
	utilities.WriteJSON(w, http.StatusOK, res)
}

func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	acc, err := h.svc.Me(r.Context(), auth.UserID(r.Context()))
	if err != nil {
		utilities.WriteError(w, h.logger, r, err)
		return
	}
	utilities.WriteJSON(w, http.StatusOK, map[string]any{"user": acc})
}

// Delete is mounted behind auth.RequireAdmin.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("userId"), 10, 64)
	if err != nil {
		utilities.WriteError(w, h.logger, r, apperr.Validation("User ID is required"))
		return
	}
	if err := h.svc.DeleteUser(r.Context(), id); err != nil {
		utilities.WriteError(w, h.logger, r, err)
		return
	}
	utilities.WriteJSON(w, http.StatusOK, map[string]string{"message": "User and all related data deleted successfully"})
}
