package setting

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/ovaphlow/pitchfork/service-nutrition-go/internal/filter"
	"github.com/ovaphlow/pitchfork/service-nutrition-go/pkg/utilities"
)

// Handler contains dependencies for handling setting endpoints.
type Handler struct {
	filters *filter.Store
	logger  *zap.SugaredLogger
}

// NewHandler constructs a new Handler.
func NewHandler(filters *filter.Store, logger *zap.SugaredLogger) *Handler {
	return &Handler{filters: filters, logger: logger}
}

// FoodFilters returns the filter snapshot currently used for recommendations.
func (h *Handler) FoodFilters(w http.ResponseWriter, r *http.Request) {
	utilities.WriteJSON(w, http.StatusOK, h.filters.Current().Config())
}
