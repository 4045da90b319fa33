package analysis

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/ovaphlow/pitchfork/service-nutrition-go/internal/analysis/entity"
	"github.com/ovaphlow/pitchfork/service-nutrition-go/internal/apperr"
	"github.com/ovaphlow/pitchfork/service-nutrition-go/internal/auth"
	"github.com/ovaphlow/pitchfork/service-nutrition-go/internal/filter"
)

type fakeStore struct {
	totals     []entity.MacroTotal
	totalsDay  time.Time
	candidates []entity.Candidate
	queries    []filter.CandidateQuery
	dates      []time.Time
	weekly     []entity.WeeklyAverage
	effective  []entity.EffectiveFood
	effArgs    struct {
		nutrientID int64
		since      time.Time
		limit      int
	}
	err error
}

func (s *fakeStore) DailyMacroTotals(_ context.Context, _ int64, day time.Time) ([]entity.MacroTotal, error) {
	s.totalsDay = day
	return s.totals, s.err
}

func (s *fakeStore) CandidateFoods(_ context.Context, q filter.CandidateQuery) ([]entity.Candidate, error) {
	s.queries = append(s.queries, q)
	return s.candidates, s.err
}

func (s *fakeStore) LoggedDates(context.Context, int64) ([]time.Time, error) { return s.dates, s.err }

func (s *fakeStore) WeeklyMacroAverages(context.Context, int64, time.Time) ([]entity.WeeklyAverage, error) {
	return s.weekly, s.err
}

func (s *fakeStore) EffectiveFoods(_ context.Context, _ int64, nutrientID int64, since time.Time, limit int) ([]entity.EffectiveFood, error) {
	s.effArgs.nutrientID, s.effArgs.since, s.effArgs.limit = nutrientID, since, limit
	return s.effective, s.err
}

type staticFilters struct{ snap *filter.Snapshot }

func (f staticFilters) Current() *filter.Snapshot { return f.snap }

func newTestService(t *testing.T, store *fakeStore) *Service {
	t.Helper()
	snap, err := filter.NewSnapshot(filter.Default())
	if err != nil {
		t.Fatal(err)
	}
	s := NewService(store, staticFilters{snap}, zap.NewNop().Sugar())
	s.now = func() time.Time { return time.Date(2024, 1, 14, 19, 45, 0, 0, time.UTC) }
	return s
}

func totals(calories, protein, fat, carbs float64) []entity.MacroTotal {
	return []entity.MacroTotal{
		{Macro: entity.Calories, Target: f(2651), Consumed: calories},
		{Macro: entity.Protein, Target: f(150), Consumed: protein},
		{Macro: entity.Fat, Target: f(68), Consumed: fat},
		{Macro: entity.Carbs, Target: f(360), Consumed: carbs},
	}
}

func TestGapAnalysisDefaultsToToday(t *testing.T) {
	store := &fakeStore{totals: totals(1000, 50, 20, 100)}
	g, err := newTestService(t, store).GapAnalysis(context.Background(), 1, nil)
	if err != nil {
		t.Fatal(err)
	}
	if g.Date != "2024-01-14" || !store.totalsDay.Equal(day("2024-01-14")) {
		t.Fatalf("date = %q, queried %v", g.Date, store.totalsDay)
	}
}

func TestGapAnalysisTodayInClockZone(t *testing.T) {
	store := &fakeStore{totals: totals(1000, 50, 20, 100)}
	tokyo := time.FixedZone("JST", 9*3600)
	s := newTestService(t, store).WithClock(func() time.Time {
		return time.Date(2024, 1, 14, 19, 45, 0, 0, time.UTC).In(tokyo)
	})
	g, err := s.GapAnalysis(context.Background(), 1, nil)
	if err != nil {
		t.Fatal(err)
	}
	if g.Date != "2024-01-15" || !store.totalsDay.Equal(day("2024-01-15")) {
		t.Fatalf("date = %q, queried %v", g.Date, store.totalsDay)
	}
}

func TestRecommendationsTargetsMetSkipsQuery(t *testing.T) {
	store := &fakeStore{totals: totals(2700, 150, 70, 365)}
	rec, err := newTestService(t, store).Recommendations(context.Background(), 1)
	if err != nil {
		t.Fatal(err)
	}
	if rec.Message != MessageTargetsMet || rec.Recommendations == nil || len(rec.Recommendations) != 0 {
		t.Fatalf("Recommendations() = %+v", rec)
	}
	if len(store.queries) != 0 {
		t.Fatalf("issued %d candidate queries", len(store.queries))
	}
}

func TestRecommendationsRanksAgainstRealGaps(t *testing.T) {
	store := &fakeStore{
		totals: totals(1500, 100, 80, 200),
		candidates: []entity.Candidate{
			candidate(1, "Rice, cooked", "Cereal Grains and Pasta", 130, 2.7, 0.3, 28),
			candidate(2, "Tuna, canned", "Finfish and Shellfish Products", 116, 26, 0.8, 0),
		},
	}
	rec, err := newTestService(t, store).Recommendations(context.Background(), 1)
	if err != nil {
		t.Fatal(err)
	}
	if len(store.queries) != 1 || len(store.queries[0].Categories) != 12 {
		t.Fatalf("candidate queries = %+v", store.queries)
	}
	if len(rec.Gaps) != 3 || rec.Gaps["calories"] != 1151 || rec.Gaps["protein"] != 50 || rec.Gaps["carbs"] != 160 {
		t.Fatalf("gaps = %v", rec.Gaps)
	}
	if _, ok := rec.Gaps["fat"]; ok {
		t.Fatal("fat is in surplus and must not be reported")
	}
	if len(rec.Recommendations) != 2 || rec.Recommendations[0].FoodID != 1 {
		t.Fatalf("recommendations = %+v", rec.Recommendations)
	}
}

func TestRecommendationsCaloriesOnlyDeficit(t *testing.T) {
	store := &fakeStore{
		totals: totals(1200, 150, 70, 365),
		candidates: []entity.Candidate{
			candidate(2, "Tuna, canned", "Finfish and Shellfish Products", 116, 26, 0.8, 0),
		},
	}
	rec, err := newTestService(t, store).Recommendations(context.Background(), 1)
	if err != nil {
		t.Fatal(err)
	}
	if rec.Message != "" || len(store.queries) != 1 {
		t.Fatalf("Recommendations() = %+v after %d queries", rec, len(store.queries))
	}
	if len(rec.Gaps) != 1 || rec.Gaps["calories"] != 1451 {
		t.Fatalf("gaps = %v", rec.Gaps)
	}
	if len(rec.Recommendations) != 1 || rec.Recommendations[0].GapsAddressed != 0 {
		t.Fatalf("recommendations = %+v", rec.Recommendations)
	}
}

func TestRecommendationsPropagatesTargetsNotSet(t *testing.T) {
	store := &fakeStore{}
	_, err := newTestService(t, store).Recommendations(context.Background(), 1)
	if !errors.Is(err, apperr.ErrTargetsNotSet) {
		t.Fatalf("err = %v", err)
	}
}

func TestStreakAndTrends(t *testing.T) {
	store := &fakeStore{
		dates:  []time.Time{day("2024-01-14"), day("2024-01-13")},
		weekly: []entity.WeeklyAverage{{Macro: entity.Protein, ThisWeekAvg: f(120), LastWeekAvg: f(100)}},
	}
	svc := newTestService(t, store)
	st, err := svc.Streak(context.Background(), 1)
	if err != nil {
		t.Fatal(err)
	}
	if st.CurrentStreak != 2 || st.Status != StreakActive {
		t.Fatalf("Streak() = %+v", st)
	}
	tr, err := svc.WeeklyTrends(context.Background(), 1)
	if err != nil {
		t.Fatal(err)
	}
	if len(tr.Trends) != 1 || tr.Trends[0].Change != 20 {
		t.Fatalf("WeeklyTrends() = %+v", tr)
	}
}

func TestEffectiveFoods(t *testing.T) {
	tests := []struct {
		name       string
		nutrientID int64
		days       int
		wantErr    error
		wantID     int64
		wantDays   int
		wantName   entity.Macro
	}{
		{"defaults", 0, 0, nil, entity.NutrientProtein, 30, entity.Protein},
		{"calories for a week", 1008, 7, nil, entity.NutrientCalories, 7, entity.Calories},
		{"unknown nutrient", 1090, 7, apperr.ErrValidation, 0, 0, ""},
		{"negative days", 1003, -1, apperr.ErrValidation, 0, 0, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := &fakeStore{}
			res, err := newTestService(t, store).EffectiveFoods(context.Background(), 1, tt.nutrientID, tt.days)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("err = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			if res.NutrientID != tt.wantID || res.PeriodDays != tt.wantDays || res.Nutrient != tt.wantName || res.TopFoods == nil {
				t.Fatalf("EffectiveFoods() = %+v", res)
			}
			wantSince := day("2024-01-14").AddDate(0, 0, -tt.wantDays)
			if !store.effArgs.since.Equal(wantSince) || store.effArgs.limit != 10 {
				t.Fatalf("store called with %+v", store.effArgs)
			}
		})
	}
}

func serve(t *testing.T, h http.HandlerFunc, target string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	req = req.WithContext(auth.WithClaims(req.Context(), &auth.Claims{UserID: 1}))
	rec := httptest.NewRecorder()
	h(rec, req)
	return rec
}

func TestHandlers(t *testing.T) {
	store := &fakeStore{totals: totals(1000, 50, 20, 100)}
	h := NewHandler(newTestService(t, store), zap.NewNop().Sugar())

	tests := []struct {
		name   string
		h      http.HandlerFunc
		target string
		status int
	}{
		{"gap for a date", h.Gap, "/api/analysis/gap?date=2024-01-10", http.StatusOK},
		{"gap bad date", h.Gap, "/api/analysis/gap?date=10/01/2024", http.StatusBadRequest},
		{"gap today", h.GapToday, "/api/analysis/gap/today", http.StatusOK},
		{"streak", h.Streak, "/api/analysis/streak", http.StatusOK},
		{"trends", h.Trends, "/api/analysis/trends", http.StatusOK},
		{"effective bad nutrient", h.Effective, "/api/analysis/effective?nutrient_id=abc", http.StatusBadRequest},
		{"effective bad days", h.Effective, "/api/analysis/effective?days=0", http.StatusBadRequest},
		{"effective", h.Effective, "/api/analysis/effective?nutrient_id=1004&days=14", http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serve(t, tt.h, tt.target)
			if rec.Code != tt.status {
				t.Fatalf("status = %d, want %d: %s", rec.Code, tt.status, rec.Body.String())
			}
		})
	}

	if !store.totalsDay.Equal(day("2024-01-14")) {
		t.Errorf("gap/today queried %v", store.totalsDay)
	}
}

func TestHandlerStreakNoLogsBody(t *testing.T) {
	h := NewHandler(newTestService(t, &fakeStore{}), zap.NewNop().Sugar())
	rec := serve(t, h.Streak, "/api/analysis/streak")
	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if body["status"] != "no_logs" || body["last_logged_date"] != nil || body["current_streak"] != 0.0 {
		t.Fatalf("body = %v", body)
	}
}

func TestHandlerTargetsNotSetIsUnprocessable(t *testing.T) {
	h := NewHandler(newTestService(t, &fakeStore{}), zap.NewNop().Sugar())
	rec := serve(t, h.Recommendations, "/api/analysis/recommendations")
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d", rec.Code)
	}
	var body map[string]string
	_ = json.Unmarshal(rec.Body.Bytes(), &body)
	if body["error"] != "please set your macro targets first" {
		t.Fatalf("body = %v", body)
	}
}
