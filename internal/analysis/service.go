package analysis

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/ovaphlow/pitchfork/service-nutrition-go/internal/analysis/entity"
	"github.com/ovaphlow/pitchfork/service-nutrition-go/internal/apperr"
	"github.com/ovaphlow/pitchfork/service-nutrition-go/internal/filter"
	"github.com/ovaphlow/pitchfork/service-nutrition-go/pkg/utilities"
)

// Store is the storage contract of the analysis service.
type Store interface {
	DailyMacroTotals(ctx context.Context, userID int64, day time.Time) ([]entity.MacroTotal, error)
	CandidateFoods(ctx context.Context, q filter.CandidateQuery) ([]entity.Candidate, error)
	LoggedDates(ctx context.Context, userID int64) ([]time.Time, error)
	WeeklyMacroAverages(ctx context.Context, userID int64, today time.Time) ([]entity.WeeklyAverage, error)
	EffectiveFoods(ctx context.Context, userID, nutrientID int64, since time.Time, limit int) ([]entity.EffectiveFood, error)
}

// Filters hands out the active filter snapshot.
type Filters interface {
	Current() *filter.Snapshot
}

// Service runs the analyses over data fetched from Store. The computations
// themselves are pure and hold no state between calls.
type Service struct {
	store   Store
	filters Filters
	logger  *zap.SugaredLogger
	now     func() time.Time
}

func NewService(store Store, filters Filters, logger *zap.SugaredLogger) *Service {
	return &Service{store: store, filters: filters, logger: logger, now: time.Now}
}

// WithClock replaces the clock; its location decides calendar days.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

func (s *Service) today() time.Time { return utilities.CivilDate(s.now()) }

// GapAnalysis compares the day's consumption with the user's targets. A nil
// day means today.
func (s *Service) GapAnalysis(ctx context.Context, userID int64, day *time.Time) (*GapAnalysis, error) {
	d := s.today()
	if day != nil {
		d = utilities.CivilDate(*day)
	}
	totals, err := s.store.DailyMacroTotals(ctx, userID, d)
	if err != nil {
		return nil, err
	}
	return AnalyzeGaps(d, totals)
}

// Recommendations ranks foods against today's protein, fat and carbs
// deficits. When none is in deficit no candidates are queried.
func (s *Service) Recommendations(ctx context.Context, userID int64) (*Recommendations, error) {
	gap, err := s.GapAnalysis(ctx, userID, nil)
	if err != nil {
		return nil, err
	}
	d := DeficitVectorFrom(gap.Macros)
	if d.Empty() {
		return &Recommendations{Message: MessageTargetsMet, Recommendations: []Recommendation{}}, nil
	}

	// One snapshot for the whole request so the query and the ranking agree.
	snap := s.filters.Current()
	candidates, err := s.store.CandidateFoods(ctx, snap.CandidateQuery())
	if err != nil {
		return nil, err
	}
	recs := RankCandidates(d, candidates, snap)
	s.logger.Debugw("recommendations ranked", "user_id", userID, "candidates", len(candidates), "returned", len(recs))
	return &Recommendations{Gaps: d.Gaps(), Recommendations: recs}, nil
}

func (s *Service) Streak(ctx context.Context, userID int64) (*Streak, error) {
	dates, err := s.store.LoggedDates(ctx, userID)
	if err != nil {
		return nil, err
	}
	st := ComputeStreak(dates, s.today())
	return &st, nil
}

func (s *Service) WeeklyTrends(ctx context.Context, userID int64) (*Trends, error) {
	rows, err := s.store.WeeklyMacroAverages(ctx, userID, s.today())
	if err != nil {
		return nil, err
	}
	t := ComputeTrends(rows)
	return &t, nil
}

// EffectiveFoods lists the foods that contributed most of a nutrient over
// the last days days. nutrientID 0 means protein and days 0 means 30.
func (s *Service) EffectiveFoods(ctx context.Context, userID, nutrientID int64, days int) (*EffectiveFoods, error) {
	if nutrientID == 0 {
		nutrientID = entity.NutrientProtein
	}
	macro, ok := entity.MacroForNutrient(nutrientID)
	if !ok {
		return nil, apperr.Validation(invalidNutrientDetail)
	}
	if days == 0 {
		days = DefaultEffectiveDays
	}
	if days < 0 {
		return nil, apperr.Validation("days must be positive")
	}
	since := s.today().AddDate(0, 0, -days)
	foods, err := s.store.EffectiveFoods(ctx, userID, nutrientID, since, maxEffectiveFoods)
	if err != nil {
		return nil, err
	}
	if foods == nil {
		foods = []entity.EffectiveFood{}
	}
	return &EffectiveFoods{Nutrient: macro, NutrientID: nutrientID, PeriodDays: days, TopFoods: foods}, nil
}
