package foodlog

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/ovaphlow/pitchfork/service-nutrition-go/internal/apperr"
	"github.com/ovaphlow/pitchfork/service-nutrition-go/internal/foodlog/entity"
	"github.com/ovaphlow/pitchfork/service-nutrition-go/pkg/utilities"
)

// Store is the storage contract of the food log.
type Store interface {
	FoodExists(ctx context.Context, foodID int64) (bool, error)
	Create(ctx context.Context, e *entity.LogEntry) error
	ListByDay(ctx context.Context, userID int64, day time.Time) ([]entity.EntryView, error)
	ListSince(ctx context.Context, userID int64, since time.Time) ([]entity.EntryView, error)
	GetView(ctx context.Context, userID, logID int64) (*entity.EntryView, error)
	UpdateServing(ctx context.Context, userID, logID int64, grams float64) (int64, error)
	Delete(ctx context.Context, userID, logID int64) (int64, error)
}

// Service records what a user ate.
type Service struct {
	store  Store
	ids    utilities.IDGenerator
	logger *zap.SugaredLogger
	now    func() time.Time
}

func NewService(store Store, ids utilities.IDGenerator, logger *zap.SugaredLogger) *Service {
	return &Service{store: store, ids: ids, logger: logger, now: time.Now}
}

// WithClock replaces the clock; its location decides calendar days.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

var errEntryNotFound = apperr.NotFound("Log entry not found or does not belong to you")

// LogFood records a serving. dateEaten defaults to now.
func (s *Service) LogFood(ctx context.Context, userID, foodID int64, grams float64, dateEaten *time.Time) (*entity.LogEntry, error) {
	if foodID <= 0 {
		return nil, apperr.Validation("Food ID and serving size are required")
	}
	if grams <= 0 {
		return nil, apperr.Validation("Serving size must be positive")
	}
	ok, err := s.store.FoodExists(ctx, foodID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, apperr.NotFound("Food not found")
	}
	when := s.now()
	if dateEaten != nil {
		when = *dateEaten
	}
	e := &entity.LogEntry{
		LogID:            s.ids.NextID(),
		UserID:           userID,
		FoodID:           foodID,
		DateEaten:        when,
		ServingSizeGrams: grams,
	}
	if err := s.store.Create(ctx, e); err != nil {
		return nil, err
	}
	s.logger.Debugw("food logged", "user_id", userID, "log_id", e.LogID, "food_id", foodID, "grams", grams)
	return e, nil
}

// FoodLog returns the entries of one day; a nil day means today.
func (s *Service) FoodLog(ctx context.Context, userID int64, day *time.Time) ([]entity.EntryView, error) {
	d := utilities.CivilDate(s.now())
	if day != nil {
		d = utilities.CivilDate(*day)
	}
	return s.store.ListByDay(ctx, userID, d)
}

// History returns the entries of the last days days.
func (s *Service) History(ctx context.Context, userID int64, days int) ([]entity.EntryView, error) {
	if days <= 0 {
		return nil, apperr.Validation("Days is required and must be a positive number")
	}
	since := utilities.CivilDate(s.now()).AddDate(0, 0, -days)
	return s.store.ListSince(ctx, userID, since)
}

// UpdateServing corrects the serving size of an entry and returns it.
func (s *Service) UpdateServing(ctx context.Context, userID, logID int64, grams float64) (*entity.EntryView, error) {
	if logID <= 0 {
		return nil, apperr.Validation("Log ID is required")
	}
	if grams <= 0 {
		return nil, apperr.Validation("Serving size must be a positive number")
	}
	n, err := s.store.UpdateServing(ctx, userID, logID, grams)
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, errEntryNotFound
	}
	v, err := s.store.GetView(ctx, userID, logID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errEntryNotFound
		}
		return nil, err
	}
	return v, nil
}

// Delete removes an entry owned by the user.
func (s *Service) Delete(ctx context.Context, userID, logID int64) error {
	if logID <= 0 {
		return apperr.Validation("Log ID is required")
	}
	n, err := s.store.Delete(ctx, userID, logID)
	if err != nil {
		return err
	}
	if n == 0 {
		return errEntryNotFound
	}
	return nil
}
