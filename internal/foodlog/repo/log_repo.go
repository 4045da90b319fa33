package repo

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/ovaphlow/pitchfork/service-nutrition-go/internal/foodlog/entity"
	"github.com/ovaphlow/pitchfork/service-nutrition-go/pkg/utilities"
)

// LogRepo provides data access for the food_logs table.
type LogRepo struct {
	db *sqlx.DB
}

func NewLogRepo(db *sqlx.DB) *LogRepo { return &LogRepo{db: db} }

// EnsureTable creates the food_logs table if not exists (idempotent).
func (r *LogRepo) EnsureTable(ctx context.Context) error {
	const ddl = `
CREATE TABLE IF NOT EXISTS food_logs (
  log_id BIGINT PRIMARY KEY,
  user_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
  food_id BIGINT NOT NULL REFERENCES foods(food_id),
  date_eaten TIMESTAMPTZ NOT NULL DEFAULT NOW(),
  serving_size_grams NUMERIC(7,2) NOT NULL CHECK (serving_size_grams > 0)
);
CREATE INDEX IF NOT EXISTS idx_food_logs_user_date ON food_logs(user_id, date_eaten);
`
	_, err := r.db.ExecContext(ctx, ddl)
	return err
}

// entryColumns selects a log entry with the macros of its serving.
// Nutrient ids: 1008 kcal, 1003 protein, 1005 carbs, 1004 fat.
const entryColumns = `
	l.log_id,
	l.date_eaten,
	l.serving_size_grams,
	f.food_id,
	f.name AS food_name,
	fc.category_name,
	ROUND(COALESCE(cal.amount_per_100g, 0) * l.serving_size_grams / 100, 1) AS calories,
	ROUND(COALESCE(prot.amount_per_100g, 0) * l.serving_size_grams / 100, 1) AS protein_g,
	ROUND(COALESCE(carb.amount_per_100g, 0) * l.serving_size_grams / 100, 1) AS carbs_g,
	ROUND(COALESCE(fat.amount_per_100g, 0) * l.serving_size_grams / 100, 1) AS fat_g
FROM food_logs l
JOIN foods f ON l.food_id = f.food_id
LEFT JOIN food_categories fc ON f.food_category_id = fc.category_id
LEFT JOIN food_nutrients cal ON f.food_id = cal.food_id AND cal.nutrient_id = 1008
LEFT JOIN food_nutrients prot ON f.food_id = prot.food_id AND prot.nutrient_id = 1003
LEFT JOIN food_nutrients carb ON f.food_id = carb.food_id AND carb.nutrient_id = 1005
LEFT JOIN food_nutrients fat ON f.food_id = fat.food_id AND fat.nutrient_id = 1004`

// FoodExists reports whether the catalog knows foodID.
func (r *LogRepo) FoodExists(ctx context.Context, foodID int64) (bool, error) {
	var ok bool
	err := r.db.GetContext(ctx, &ok, `SELECT EXISTS (SELECT 1 FROM foods WHERE food_id=$1)`, foodID)
	return ok, err
}

// Create inserts e; the caller assigns the log id.
func (r *LogRepo) Create(ctx context.Context, e *entity.LogEntry) error {
	const q = `INSERT INTO food_logs (log_id, user_id, food_id, date_eaten, serving_size_grams) VALUES ($1, $2, $3, $4, $5)`
	_, err := r.db.ExecContext(ctx, q, e.LogID, e.UserID, e.FoodID, e.DateEaten, e.ServingSizeGrams)
	return err
}

// ListByDay returns a user's entries on one calendar day, newest first.
func (r *LogRepo) ListByDay(ctx context.Context, userID int64, day time.Time) ([]entity.EntryView, error) {
	q := `SELECT` + entryColumns + `
WHERE l.user_id = $1 AND l.date_eaten::date = $2::date
ORDER BY l.date_eaten DESC`
	out := []entity.EntryView{}
	if err := r.db.SelectContext(ctx, &out, q, userID, day.Format(utilities.DateLayout)); err != nil {
		return nil, err
	}
	return out, nil
}

// ListSince returns a user's entries from a calendar day onwards, newest first.
func (r *LogRepo) ListSince(ctx context.Context, userID int64, since time.Time) ([]entity.EntryView, error) {
	q := `SELECT` + entryColumns + `
WHERE l.user_id = $1 AND l.date_eaten::date >= $2::date
ORDER BY l.date_eaten DESC`
	out := []entity.EntryView{}
	if err := r.db.SelectContext(ctx, &out, q, userID, since.Format(utilities.DateLayout)); err != nil {
		return nil, err
	}
	return out, nil
}

// GetView returns one entry owned by userID or sql.ErrNoRows.
func (r *LogRepo) GetView(ctx context.Context, userID, logID int64) (*entity.EntryView, error) {
	q := `SELECT` + entryColumns + `
WHERE l.log_id = $1 AND l.user_id = $2`
	var v entity.EntryView
	if err := r.db.GetContext(ctx, &v, q, logID, userID); err != nil {
		return nil, err
	}
	return &v, nil
}

// UpdateServing changes the serving size of an entry owned by userID.
func (r *LogRepo) UpdateServing(ctx context.Context, userID, logID int64, grams float64) (int64, error) {
	res, err := r.db.ExecContext(ctx, `UPDATE food_logs SET serving_size_grams=$3 WHERE log_id=$1 AND user_id=$2`, logID, userID, grams)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// Delete removes an entry owned by userID.
func (r *LogRepo) Delete(ctx context.Context, userID, logID int64) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM food_logs WHERE log_id=$1 AND user_id=$2`, logID, userID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
