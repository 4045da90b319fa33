package repo

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/ovaphlow/pitchfork/service-nutrition-go/internal/analysis/entity"
	"github.com/ovaphlow/pitchfork/service-nutrition-go/internal/filter"
	"github.com/ovaphlow/pitchfork/service-nutrition-go/pkg/utilities"
)

// AnalysisRepo reads the aggregates the analyses run on. It owns no table.
type AnalysisRepo struct {
	db *sqlx.DB
}

func NewAnalysisRepo(db *sqlx.DB) *AnalysisRepo { return &AnalysisRepo{db: db} }

type macroTotalRow struct {
	Macro    string   `db:"macro"`
	Target   *float64 `db:"target"`
	Consumed float64  `db:"consumed"`
}

// DailyMacroTotals returns target and consumption of the four macros on day.
// Each entry is rounded to one decimal before summing. No rows means the
// user has no profile.
func (r *AnalysisRepo) DailyMacroTotals(ctx context.Context, userID int64, day time.Time) ([]entity.MacroTotal, error) {
	const q = `
SELECT m.macro, m.target,
       COALESCE(SUM(ROUND(fn.amount_per_100g * l.serving_size_grams / 100, 1)), 0) AS consumed
  FROM profiles p
  CROSS JOIN LATERAL (VALUES
        ('Calories', 1008, p.target_calories),
        ('Protein', 1003, p.target_protein_g),
        ('Fat', 1004, p.target_fat_g),
        ('Carbs', 1005, p.target_carbs_g)
       ) AS m(macro, nutrient_id, target)
  LEFT JOIN food_logs l ON l.user_id = p.user_id AND l.date_eaten::date = $2::date
  LEFT JOIN food_nutrients fn ON fn.food_id = l.food_id AND fn.nutrient_id = m.nutrient_id
 WHERE p.user_id = $1
 GROUP BY m.macro, m.nutrient_id, m.target`
	var rows []macroTotalRow
	if err := r.db.SelectContext(ctx, &rows, q, userID, day.Format(utilities.DateLayout)); err != nil {
		return nil, err
	}
	out := make([]entity.MacroTotal, 0, len(rows))
	for _, row := range rows {
		out = append(out, entity.MacroTotal{Macro: entity.Macro(row.Macro), Target: row.Target, Consumed: row.Consumed})
	}
	return out, nil
}

// CandidateFoods returns the foods matching q. Foods without a calorie value
// are never candidates; missing macros count as zero.
func (r *AnalysisRepo) CandidateFoods(ctx context.Context, q filter.CandidateQuery) ([]entity.Candidate, error) {
	const stmt = `
SELECT f.food_id, f.name, fc.category_name AS category,
       cal.amount_per_100g AS calories_per_100g,
       COALESCE(prot.amount_per_100g, 0) AS protein_per_100g,
       COALESCE(fat.amount_per_100g, 0) AS fat_per_100g,
       COALESCE(carb.amount_per_100g, 0) AS carbs_per_100g
  FROM foods f
  JOIN food_categories fc ON f.food_category_id = fc.category_id
  JOIN food_nutrients cal ON cal.food_id = f.food_id AND cal.nutrient_id = 1008
  LEFT JOIN food_nutrients prot ON prot.food_id = f.food_id AND prot.nutrient_id = 1003
  LEFT JOIN food_nutrients fat ON fat.food_id = f.food_id AND fat.nutrient_id = 1004
  LEFT JOIN food_nutrients carb ON carb.food_id = f.food_id AND carb.nutrient_id = 1005
 WHERE fc.category_name = ANY($1)
   AND LENGTH(f.name) <= $2
   AND cal.amount_per_100g BETWEEN $3 AND $4
   AND NOT (LOWER(f.name) LIKE ANY($5))`
	out := []entity.Candidate{}
	err := r.db.SelectContext(ctx, &out, stmt,
		pq.Array(q.Categories), q.MaxNameLength, q.MinCalories, q.MaxCalories, pq.Array(q.ExcludePatterns))
	if err != nil {
		return nil, err
	}
	return out, nil
}

// LoggedDates returns the distinct days with at least one entry, most recent
// first.
func (r *AnalysisRepo) LoggedDates(ctx context.Context, userID int64) ([]time.Time, error) {
	const q = `SELECT DISTINCT date_eaten::date AS day FROM food_logs WHERE user_id = $1 ORDER BY day DESC`
	out := []time.Time{}
	if err := r.db.SelectContext(ctx, &out, q, userID); err != nil {
		return nil, err
	}
	return out, nil
}

type weeklyRow struct {
	NutrientID  int64    `db:"nutrient_id"`
	ThisWeekAvg *float64 `db:"this_week_avg"`
	LastWeekAvg *float64 `db:"last_week_avg"`
}

// WeeklyMacroAverages averages the daily intake per macro over the seven days
// ending today and over the seven days before, counting days with entries.
func (r *AnalysisRepo) WeeklyMacroAverages(ctx context.Context, userID int64, today time.Time) ([]entity.WeeklyAverage, error) {
	const q = `
WITH daily AS (
  SELECT l.date_eaten::date AS day, fn.nutrient_id,
         SUM(ROUND(fn.amount_per_100g * l.serving_size_grams / 100, 1)) AS amount
    FROM food_logs l
    JOIN food_nutrients fn ON fn.food_id = l.food_id AND fn.nutrient_id IN (1008, 1003, 1004, 1005)
   WHERE l.user_id = $1
     AND l.date_eaten::date > $2::date - 14
     AND l.date_eaten::date <= $2::date
   GROUP BY 1, 2
)
SELECT nutrient_id,
       AVG(amount) FILTER (WHERE day > $2::date - 7) AS this_week_avg,
       AVG(amount) FILTER (WHERE day <= $2::date - 7) AS last_week_avg
  FROM daily
 GROUP BY nutrient_id`
	var rows []weeklyRow
	if err := r.db.SelectContext(ctx, &rows, q, userID, today.Format(utilities.DateLayout)); err != nil {
		return nil, err
	}
	out := make([]entity.WeeklyAverage, 0, len(rows))
	for _, row := range rows {
		m, ok := entity.MacroForNutrient(row.NutrientID)
		if !ok {
			continue
		}
		out = append(out, entity.WeeklyAverage{Macro: m, ThisWeekAvg: row.ThisWeekAvg, LastWeekAvg: row.LastWeekAvg})
	}
	return out, nil
}

// EffectiveFoods ranks the user's foods by their total contribution to a
// nutrient since a day.
func (r *AnalysisRepo) EffectiveFoods(ctx context.Context, userID, nutrientID int64, since time.Time, limit int) ([]entity.EffectiveFood, error) {
	const q = `
SELECT f.food_id, f.name AS food_name, COUNT(*) AS times_logged,
       ROUND(SUM(fn.amount_per_100g * l.serving_size_grams / 100), 1) AS total_contribution
  FROM food_logs l
  JOIN foods f ON f.food_id = l.food_id
  JOIN food_nutrients fn ON fn.food_id = l.food_id AND fn.nutrient_id = $2
 WHERE l.user_id = $1 AND l.date_eaten::date >= $3::date
 GROUP BY f.food_id, f.name
 ORDER BY total_contribution DESC, f.food_id
 LIMIT $4`
	out := []entity.EffectiveFood{}
	if err := r.db.SelectContext(ctx, &out, q, userID, nutrientID, since.Format(utilities.DateLayout), limit); err != nil {
		return nil, err
	}
	return out, nil
}
