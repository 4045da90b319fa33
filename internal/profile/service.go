package profile

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/ovaphlow/pitchfork/service-nutrition-go/internal/apperr"
	"github.com/ovaphlow/pitchfork/service-nutrition-go/internal/profile/entity"
)

// Store is the storage contract of the profile service.
type Store interface {
	GetByUserID(ctx context.Context, userID int64) (*entity.Profile, error)
	Update(ctx context.Context, userID int64, u entity.Update) (int64, error)
	SetTargets(ctx context.Context, userID int64, t entity.Targets) (int64, error)
}

// Service reads and updates profiles and computes their targets.
type Service struct {
	store  Store
	logger *zap.SugaredLogger
	now    func() time.Time
}

func NewService(store Store, logger *zap.SugaredLogger) *Service {
	return &Service{store: store, logger: logger, now: time.Now}
}

// WithClock replaces the clock; its location decides calendar days.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

var errProfileNotFound = apperr.NotFound("Profile not found")

// Get returns the user's profile.
func (s *Service) Get(ctx context.Context, userID int64) (*entity.Profile, error) {
	p, err := s.store.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errProfileNotFound
		}
		return nil, err
	}
	return p, nil
}

// Update validates u, applies it and returns the stored profile.
func (s *Service) Update(ctx context.Context, userID int64, u entity.Update) (*entity.Profile, error) {
	if err := validateUpdate(u, s.now()); err != nil {
		return nil, err
	}
	n, err := s.store.Update(ctx, userID, u)
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, errProfileNotFound
	}
	return s.Get(ctx, userID)
}

// CalculateTargets computes the targets from the stored profile and
// persists all four of them together.
func (s *Service) CalculateTargets(ctx context.Context, userID int64) (*entity.Targets, error) {
	p, err := s.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	t, err := CalculateTargets(p, s.now())
	if err != nil {
		return nil, err
	}
	n, err := s.store.SetTargets(ctx, userID, *t)
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, errProfileNotFound
	}
	s.logger.Infow("targets calculated", "user_id", userID, "calories", t.TargetCalories,
		"protein_g", t.TargetProteinG, "carbs_g", t.TargetCarbsG, "fat_g", t.TargetFatG)
	return t, nil
}

func validateUpdate(u entity.Update, now time.Time) error {
	if u.BirthDate != nil && !u.BirthDate.Before(now) {
		return apperr.Validation("birth_date must be in the past")
	}
	if u.Gender != nil && *u.Gender != entity.Male && *u.Gender != entity.Female {
		return apperr.Validation("gender must be Male or Female")
	}
	if u.HeightCM != nil && *u.HeightCM <= 0 {
		return apperr.Validation("height_cm must be positive")
	}
	if u.WeightKG != nil && *u.WeightKG <= 0 {
		return apperr.Validation("weight_kg must be positive")
	}
	if u.ActivityLevel != nil {
		if _, ok := activityMultipliers[*u.ActivityLevel]; !ok {
			return apperr.Validation("activity_level must be Light, Moderate or Heavy")
		}
	}
	if u.Goal != nil && *u.Goal != entity.Loss && *u.Goal != entity.Maintain && *u.Goal != entity.Gain {
		return apperr.Validation("goal must be Loss, Maintain or Gain")
	}
	return nil
}
