package repo

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/ovaphlow/pitchfork/service-nutrition-go/internal/setting/entity"
)

// Repo is the repository implementation for settings backed by PostgreSQL.
type Repo struct {
	db *sqlx.DB
}

// NewRepo constructs a new Repo with an existing connection.
func NewRepo(db *sqlx.DB) *Repo {
	return &Repo{db: db}
}

// EnsureTable ensures the settings table and its index exist.
func (r *Repo) EnsureTable(ctx context.Context) error {
	// Check if table exists using to_regclass (Postgres). If it exists, skip creation.
	var tblName sql.NullString
	if err := r.db.QueryRowContext(ctx, "SELECT to_regclass('public.settings')").Scan(&tblName); err != nil {
		return err
	}
	if !tblName.Valid {
		const createTable = `CREATE TABLE settings (
			id varchar(32) PRIMARY KEY,
			category varchar(32) DEFAULT '',
			metadata jsonb NOT NULL DEFAULT '{}'::jsonb,
			updated_at timestamptz NOT NULL DEFAULT NOW()
		)`
		if _, err := r.db.ExecContext(ctx, createTable); err != nil {
			return err
		}
	}

	var idxName sql.NullString
	if err := r.db.QueryRowContext(ctx, "SELECT to_regclass('public.idx_settings_category')").Scan(&idxName); err != nil {
		return err
	}
	if !idxName.Valid {
		if _, err := r.db.ExecContext(ctx, `CREATE INDEX idx_settings_category ON settings (category)`); err != nil {
			return err
		}
	}
	return nil
}

// GetByID returns a setting or sql.ErrNoRows.
func (r *Repo) GetByID(ctx context.Context, id string) (*entity.Setting, error) {
	const q = `SELECT id, category, metadata, updated_at FROM settings WHERE id = $1`
	var row struct {
		ID        string    `db:"id"`
		Category  string    `db:"category"`
		Metadata  []byte    `db:"metadata"`
		UpdatedAt time.Time `db:"updated_at"`
	}
	if err := r.db.GetContext(ctx, &row, q, id); err != nil {
		return nil, err
	}
	return &entity.Setting{ID: row.ID, Category: row.Category, Metadata: row.Metadata, UpdatedAt: row.UpdatedAt}, nil
}

// Upsert writes the whole document, replacing any previous version.
func (r *Repo) Upsert(ctx context.Context, s *entity.Setting) error {
	const q = `INSERT INTO settings (id, category, metadata, updated_at)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (id) DO UPDATE SET category = EXCLUDED.category, metadata = EXCLUDED.metadata, updated_at = NOW()`
	_, err := r.db.ExecContext(ctx, q, s.ID, s.Category, []byte(s.Metadata))
	return err
}
