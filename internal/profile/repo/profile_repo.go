package repo

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/ovaphlow/pitchfork/service-nutrition-go/internal/profile/entity"
)

// ProfileRepo provides data access for the profiles table using sqlx.
type ProfileRepo struct {
	db *sqlx.DB
}

func NewProfileRepo(db *sqlx.DB) *ProfileRepo { return &ProfileRepo{db: db} }

// EnsureTable creates the profiles table if not exists (idempotent).
// This is a convenience for early development; prefer migrations in production.
func (r *ProfileRepo) EnsureTable(ctx context.Context) error {
	const ddl = `
CREATE TABLE IF NOT EXISTS profiles (
  user_id BIGINT PRIMARY KEY REFERENCES users(id) ON DELETE CASCADE,
  birth_date DATE,
  gender TEXT CHECK (gender IN ('Male','Female')),
  height_cm NUMERIC(5,1) CHECK (height_cm > 0),
  weight_kg NUMERIC(5,1) CHECK (weight_kg > 0),
  activity_level TEXT CHECK (activity_level IN ('Light','Moderate','Heavy')),
  goal TEXT CHECK (goal IN ('Loss','Maintain','Gain')),
  target_calories INT,
  target_protein_g INT,
  target_carbs_g INT,
  target_fat_g INT,
  updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
`
	_, err := r.db.ExecContext(ctx, ddl)
	return err
}

// CreateEmpty inserts the empty profile of a new account inside tx.
func (r *ProfileRepo) CreateEmpty(ctx context.Context, tx *sqlx.Tx, userID int64) error {
	_, err := tx.ExecContext(ctx, `INSERT INTO profiles (user_id) VALUES ($1)`, userID)
	return err
}

// GetByUserID returns the profile or sql.ErrNoRows.
func (r *ProfileRepo) GetByUserID(ctx context.Context, userID int64) (*entity.Profile, error) {
	const q = `SELECT user_id, birth_date, gender, height_cm, weight_kg, activity_level, goal,
		target_calories, target_protein_g, target_carbs_g, target_fat_g
	  FROM profiles WHERE user_id=$1`
	var p entity.Profile
	if err := r.db.GetContext(ctx, &p, q, userID); err != nil {
		return nil, err
	}
	return &p, nil
}

// Update overwrites only the fields that are non-nil in u.
func (r *ProfileRepo) Update(ctx context.Context, userID int64, u entity.Update) (int64, error) {
	const q = `UPDATE profiles SET
		birth_date = COALESCE($2, birth_date),
		gender = COALESCE($3, gender),
		height_cm = COALESCE($4, height_cm),
		weight_kg = COALESCE($5, weight_kg),
		activity_level = COALESCE($6, activity_level),
		goal = COALESCE($7, goal),
		updated_at = NOW()
	  WHERE user_id=$1`
	res, err := r.db.ExecContext(ctx, q, userID, u.BirthDate, nullableString(u.Gender), u.HeightCM, u.WeightKG, nullableString(u.ActivityLevel), nullableString(u.Goal))
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// SetTargets replaces all four targets in a single statement.
func (r *ProfileRepo) SetTargets(ctx context.Context, userID int64, t entity.Targets) (int64, error) {
	const q = `UPDATE profiles SET target_calories=$2, target_protein_g=$3, target_carbs_g=$4, target_fat_g=$5, updated_at=NOW()
	  WHERE user_id=$1`
	res, err := r.db.ExecContext(ctx, q, userID, t.TargetCalories, t.TargetProteinG, t.TargetCarbsG, t.TargetFatG)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// nullableString turns a nil pointer to a string-kinded enum into a SQL NULL.
func nullableString[T ~string](v *T) any {
	if v == nil {
		return nil
	}
	return string(*v)
}
