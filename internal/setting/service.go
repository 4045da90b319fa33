package setting

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	"github.com/ovaphlow/pitchfork/service-nutrition-go/internal/filter"
	"github.com/ovaphlow/pitchfork/service-nutrition-go/internal/setting/entity"
)

// store is the subset of the repository the service needs.
type store interface {
	GetByID(ctx context.Context, id string) (*entity.Setting, error)
	Upsert(ctx context.Context, s *entity.Setting) error
}

// Service encapsulates business logic for settings and depends on a repo.
type Service struct {
	repo store
}

// NewService constructs a Service with the provided repository.
func NewService(r store) *Service {
	return &Service{repo: r}
}

// FilterLoader reads the food filter document from the settings table.
// When the row does not exist the fallback loader is used instead.
func (s *Service) FilterLoader(fallback filter.Loader) filter.Loader {
	return func(ctx context.Context) (filter.Config, error) {
		st, err := s.repo.GetByID(ctx, entity.FoodFiltersID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return fallback(ctx)
			}
			return filter.Config{}, err
		}
		return filter.Decode(st.Metadata)
	}
}

// SaveFilterConfig validates cfg and stores it for the next reload.
func (s *Service) SaveFilterConfig(ctx context.Context, cfg filter.Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	b, err := json.Marshal(cfg)
	if err != nil {
		return err
	}
	return s.repo.Upsert(ctx, &entity.Setting{
		ID:       entity.FoodFiltersID,
		Category: entity.FoodFiltersCategory,
		Metadata: b,
	})
}
