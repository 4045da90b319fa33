package foodlog

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/ovaphlow/pitchfork/service-nutrition-go/internal/apperr"
	"github.com/ovaphlow/pitchfork/service-nutrition-go/internal/auth"
	"github.com/ovaphlow/pitchfork/service-nutrition-go/pkg/utilities"
)

// Handler exposes the food log endpoints.
type Handler struct {
	svc    *Service
	logger *zap.SugaredLogger
}

func NewHandler(svc *Service, logger *zap.SugaredLogger) *Handler {
	return &Handler{svc: svc, logger: logger}
}

// LogRequest is the POST /api/log body. DateEaten accepts RFC 3339 or
// YYYY-MM-DD.
type LogRequest struct {
	FoodID           int64   `json:"food_id"`
	ServingSizeGrams float64 `json:"serving_size_grams"`
	DateEaten        string  `json:"date_eaten"`
}

// ServingRequest is the PUT /api/log/{id} body.
type ServingRequest struct {
	ServingSizeGrams float64 `json:"serving_size_grams"`
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req LogRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utilities.WriteError(w, h.logger, r, apperr.Validation("invalid payload"))
		return
	}
	var when *time.Time
	if req.DateEaten != "" {
		t, err := parseWhen(req.DateEaten, h.svc.now().Location())
		if err != nil {
			utilities.WriteError(w, h.logger, r, apperr.Validation("date_eaten must be RFC 3339 or YYYY-MM-DD"))
			return
		}
		when = &t
	}
	e, err := h.svc.LogFood(r.Context(), auth.UserID(r.Context()), req.FoodID, req.ServingSizeGrams, when)
	if err != nil {
		utilities.WriteError(w, h.logger, r, err)
		return
	}
	utilities.WriteJSON(w, http.StatusCreated, map[string]any{"message": "Food logged successfully", "entry": e})
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	d, ok, err := utilities.ParseDate(r.URL.Query().Get("date"))
	if err != nil {
		utilities.WriteError(w, h.logger, r, apperr.Validation("date must be YYYY-MM-DD"))
		return
	}
	var day *time.Time
	if ok {
		day = &d
	}
	entries, err := h.svc.FoodLog(r.Context(), auth.UserID(r.Context()), day)
	if err != nil {
		utilities.WriteError(w, h.logger, r, err)
		return
	}
	utilities.WriteJSON(w, http.StatusOK, map[string]any{"entries": entries})
}

func (h *Handler) History(w http.ResponseWriter, r *http.Request) {
	days, _ := strconv.Atoi(r.URL.Query().Get("days"))
	entries, err := h.svc.History(r.Context(), auth.UserID(r.Context()), days)
	if err != nil {
		utilities.WriteError(w, h.logger, r, err)
		return
	}
	utilities.WriteJSON(w, http.StatusOK, map[string]any{"days": days, "entries": entries})
}

func (h *Handler) UpdateServing(w http.ResponseWriter, r *http.Request) {
	logID, _ := strconv.ParseInt(r.PathValue("id"), 10, 64)
	var req ServingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utilities.WriteError(w, h.logger, r, apperr.Validation("invalid payload"))
		return
	}
	v, err := h.svc.UpdateServing(r.Context(), auth.UserID(r.Context()), logID, req.ServingSizeGrams)
	if err != nil {
		utilities.WriteError(w, h.logger, r, err)
		return
	}
	utilities.WriteJSON(w, http.StatusOK, map[string]any{"message": "Log entry updated successfully", "entry": v})
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	logID, _ := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err := h.svc.Delete(r.Context(), auth.UserID(r.Context()), logID); err != nil {
		utilities.WriteError(w, h.logger, r, err)
		return
	}
	utilities.WriteJSON(w, http.StatusOK, map[string]string{"message": "Log entry deleted successfully"})
}

// parseWhen reads RFC 3339, or a bare day taken as midnight in loc.
func parseWhen(s string, loc *time.Location) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return time.ParseInLocation(utilities.DateLayout, s, loc)
}
