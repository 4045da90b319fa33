package profile

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/ovaphlow/pitchfork/service-nutrition-go/internal/apperr"
	"github.com/ovaphlow/pitchfork/service-nutrition-go/internal/auth"
	"github.com/ovaphlow/pitchfork/service-nutrition-go/internal/profile/entity"
	"github.com/ovaphlow/pitchfork/service-nutrition-go/pkg/utilities"
)

// Handler exposes the profile endpoints.
type Handler struct {
	svc    *Service
	logger *zap.SugaredLogger
}

func NewHandler(svc *Service, logger *zap.SugaredLogger) *Handler {
	return &Handler{svc: svc, logger: logger}
}

// UpdateRequest is the PUT /api/profile body; omitted fields are unchanged.
type UpdateRequest struct {
	BirthDate     *string               `json:"birth_date"`
	Gender        *entity.Gender        `json:"gender"`
	HeightCM      *float64              `json:"height_cm"`
	WeightKG      *float64              `json:"weight_kg"`
	ActivityLevel *entity.ActivityLevel `json:"activity_level"`
	Goal          *entity.Goal          `json:"goal"`
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	p, err := h.svc.Get(r.Context(), auth.UserID(r.Context()))
	if err != nil {
		utilities.WriteError(w, h.logger, r, err)
		return
	}
	utilities.WriteJSON(w, http.StatusOK, map[string]any{"profile": p})
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	var req UpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Debugw("invalid profile payload", "err", err)
		utilities.WriteError(w, h.logger, r, apperr.Validation("invalid payload"))
		return
	}
	u := entity.Update{
		Gender:        req.Gender,
		HeightCM:      req.HeightCM,
		WeightKG:      req.WeightKG,
		ActivityLevel: req.ActivityLevel,
		Goal:          req.Goal,
	}
	if req.BirthDate != nil {
		d, ok, err := utilities.ParseDate(*req.BirthDate)
		if err != nil || !ok {
			utilities.WriteError(w, h.logger, r, apperr.Validation("birth_date must be YYYY-MM-DD"))
			return
		}
		u.BirthDate = &d
	}
	p, err := h.svc.Update(r.Context(), auth.UserID(r.Context()), u)
	if err != nil {
		utilities.WriteError(w, h.logger, r, err)
		return
	}
	utilities.WriteJSON(w, http.StatusOK, map[string]any{"message": "Profile updated successfully", "profile": p})
}

func (h *Handler) Calculate(w http.ResponseWriter, r *http.Request) {
	t, err := h.svc.CalculateTargets(r.Context(), auth.UserID(r.Context()))
	if err != nil {
		utilities.WriteError(w, h.logger, r, err)
		return
	}
	utilities.WriteJSON(w, http.StatusOK, map[string]any{"message": "Targets calculated successfully", "targets": t})
}
