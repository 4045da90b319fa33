package filter

import (
	"context"
	"fmt"
	"sync/atomic"

	"go.uber.org/zap"
)

// Loader produces a configuration from some source (file, settings table).
type Loader func(ctx context.Context) (Config, error)

// Store holds the active snapshot. Readers never block; Reload builds a new
// snapshot off to the side and swaps the pointer.
type Store struct {
	current atomic.Pointer[Snapshot]
	load    Loader
	logger  *zap.SugaredLogger
}

// NewStore loads the initial snapshot. A failing first load is fatal for the
// caller: there is no previous snapshot to fall back to.
func NewStore(ctx context.Context, load Loader, logger *zap.SugaredLogger) (*Store, error) {
	s := &Store{load: load, logger: logger}
	if err := s.Reload(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

// Current returns the active snapshot.
func (s *Store) Current() *Snapshot { return s.current.Load() }

// Reload installs a freshly loaded snapshot. On error the old snapshot stays.
func (s *Store) Reload(ctx context.Context) error {
	cfg, err := s.load(ctx)
	if err != nil {
		return fmt.Errorf("load filter config: %w", err)
	}
	snap, err := NewSnapshot(cfg)
	if err != nil {
		return err
	}
	s.current.Store(snap)
	s.logger.Infow("food filter config installed",
		"categories", len(cfg.AllowedCategories),
		"blacklist", len(cfg.BlacklistKeywords),
		"calorie_min", cfg.CalorieRange.Min,
		"calorie_max", cfg.CalorieRange.Max,
		"max_recommendations", cfg.MaxRecommendations,
	)
	return nil
}
