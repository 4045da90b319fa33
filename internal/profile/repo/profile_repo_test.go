package repo

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"

	"github.com/ovaphlow/pitchfork/service-nutrition-go/internal/profile/entity"
)

func newMock(t *testing.T) (*ProfileRepo, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	return NewProfileRepo(sqlx.NewDb(db, "postgres")), mock
}

func TestGetByUserID(t *testing.T) {
	r, mock := newMock(t)
	birth := time.Date(1990, 6, 15, 0, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows([]string{"user_id", "birth_date", "gender", "height_cm", "weight_kg", "activity_level", "goal",
		"target_calories", "target_protein_g", "target_carbs_g", "target_fat_g"}).
		AddRow(int64(5), birth, "Male", 180.0, 75.0, "Moderate", "Maintain", nil, nil, nil, nil)
	mock.ExpectQuery(regexp.QuoteMeta("FROM profiles WHERE user_id=$1")).WithArgs(int64(5)).WillReturnRows(rows)

	p, err := r.GetByUserID(context.Background(), 5)
	if err != nil {
		t.Fatal(err)
	}
	if *p.Gender != entity.Male || *p.ActivityLevel != entity.Moderate || *p.WeightKG != 75 {
		t.Fatalf("unexpected profile %+v", p)
	}
	if p.TargetCalories != nil {
		t.Fatal("targets should be nil before calculation")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestSetTargetsSingleStatement(t *testing.T) {
	r, mock := newMock(t)
	mock.ExpectExec(regexp.QuoteMeta("UPDATE profiles SET target_calories=$2, target_protein_g=$3, target_carbs_g=$4, target_fat_g=$5")).
		WithArgs(int64(5), 2651, 150, 360, 68).
		WillReturnResult(sqlmock.NewResult(0, 1))

	n, err := r.SetTargets(context.Background(), 5, entity.Targets{TargetCalories: 2651, TargetProteinG: 150, TargetCarbsG: 360, TargetFatG: 68})
	if err != nil || n != 1 {
		t.Fatalf("SetTargets() = %d, %v", n, err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestUpdatePassesNullsForOmittedFields(t *testing.T) {
	r, mock := newMock(t)
	w := 70.0
	goal := entity.Loss
	mock.ExpectExec(regexp.QuoteMeta("goal = COALESCE($7, goal)")).
		WithArgs(int64(5), nil, nil, nil, w, nil, "Loss").
		WillReturnResult(sqlmock.NewResult(0, 1))

	if _, err := r.Update(context.Background(), 5, entity.Update{WeightKG: &w, Goal: &goal}); err != nil {
		t.Fatal(err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}
