package analysis

import (
	"net/http"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/ovaphlow/pitchfork/service-nutrition-go/internal/apperr"
	"github.com/ovaphlow/pitchfork/service-nutrition-go/internal/auth"
	"github.com/ovaphlow/pitchfork/service-nutrition-go/pkg/utilities"
)

// Handler exposes the analysis endpoints.
type Handler struct {
	svc    *Service
	logger *zap.SugaredLogger
}

func NewHandler(svc *Service, logger *zap.SugaredLogger) *Handler {
	return &Handler{svc: svc, logger: logger}
}

// Gap serves GET /api/analysis/gap?date=YYYY-MM-DD; the date is optional.
func (h *Handler) Gap(w http.ResponseWriter, r *http.Request) {
	d, ok, err := utilities.ParseDate(r.URL.Query().Get("date"))
	if err != nil {
		utilities.WriteError(w, h.logger, r, apperr.Validation("date must be YYYY-MM-DD"))
		return
	}
	var day *time.Time
	if ok {
		day = &d
	}
	h.gap(w, r, day)
}

func (h *Handler) GapToday(w http.ResponseWriter, r *http.Request) {
	h.gap(w, r, nil)
}

func (h *Handler) gap(w http.ResponseWriter, r *http.Request, day *time.Time) {
	g, err := h.svc.GapAnalysis(r.Context(), auth.UserID(r.Context()), day)
	if err != nil {
		utilities.WriteError(w, h.logger, r, err)
		return
	}
	utilities.WriteJSON(w, http.StatusOK, g)
}

func (h *Handler) Recommendations(w http.ResponseWriter, r *http.Request) {
	rec, err := h.svc.Recommendations(r.Context(), auth.UserID(r.Context()))
	if err != nil {
		utilities.WriteError(w, h.logger, r, err)
		return
	}
	utilities.WriteJSON(w, http.StatusOK, rec)
}

func (h *Handler) Trends(w http.ResponseWriter, r *http.Request) {
	t, err := h.svc.WeeklyTrends(r.Context(), auth.UserID(r.Context()))
	if err != nil {
		utilities.WriteError(w, h.logger, r, err)
		return
	}
	utilities.WriteJSON(w, http.StatusOK, t)
}

func (h *Handler) Streak(w http.ResponseWriter, r *http.Request) {
	st, err := h.svc.Streak(r.Context(), auth.UserID(r.Context()))
	if err != nil {
		utilities.WriteError(w, h.logger, r, err)
		return
	}
	utilities.WriteJSON(w, http.StatusOK, st)
}

// Effective serves GET /api/analysis/effective?nutrient_id=&days=.
func (h *Handler) Effective(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	var nutrientID int64
	if v := q.Get("nutrient_id"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			utilities.WriteError(w, h.logger, r, apperr.Validation(invalidNutrientDetail))
			return
		}
		nutrientID = n
	}
	var days int
	if v := q.Get("days"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			utilities.WriteError(w, h.logger, r, apperr.Validation("days must be a positive integer"))
			return
		}
		days = n
	}
	res, err := h.svc.EffectiveFoods(r.Context(), auth.UserID(r.Context()), nutrientID, days)
	if err != nil {
		utilities.WriteError(w, h.logger, r, err)
		return
	}
	utilities.WriteJSON(w, http.StatusOK, res)
}
