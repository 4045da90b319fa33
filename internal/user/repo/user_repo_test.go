package repo

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"

	profilerepo "github.com/ovaphlow/pitchfork/service-nutrition-go/internal/profile/repo"
	"github.com/ovaphlow/pitchfork/service-nutrition-go/internal/user/entity"
)

func newMock(t *testing.T) (*UserRepo, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	x := sqlx.NewDb(db, "postgres")
	return NewUserRepo(x, profilerepo.NewProfileRepo(x)), mock
}

func TestCreateWithProfileCommits(t *testing.T) {
	r, mock := newMock(t)
	created := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)
	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO users (username, email, password_hash, is_admin)")).
		WithArgs("ana", "ana@example.com", "hash", false).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow(int64(42), created))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO profiles (user_id) VALUES ($1)")).
		WithArgs(int64(42)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	u := &entity.User{Username: "ana", Email: "ana@example.com", PasswordHash: "hash"}
	if err := r.CreateWithProfile(context.Background(), u); err != nil {
		t.Fatal(err)
	}
	if u.ID != 42 || !u.CreatedAt.Equal(created) {
		t.Fatalf("user = %+v", u)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestCreateWithProfileRollsBack(t *testing.T) {
	r, mock := newMock(t)
	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO users")).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow(int64(42), time.Now()))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO profiles")).
		WillReturnError(errors.New("profile insert failed"))
	mock.ExpectRollback()

	u := &entity.User{Username: "ana", Email: "ana@example.com", PasswordHash: "hash"}
	if err := r.CreateWithProfile(context.Background(), u); err == nil {
		t.Fatal("expected error")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestLockIfThresholdNoRow(t *testing.T) {
	r, mock := newMock(t)
	mock.ExpectQuery(regexp.QuoteMeta("UPDATE users SET status='locked'")).
		WithArgs(int64(7), 15, 6).
		WillReturnRows(sqlmock.NewRows([]string{"?column?"}))

	locked, err := r.LockIfThreshold(context.Background(), 7, 6, 15)
	if err != nil || locked {
		t.Fatalf("LockIfThreshold() = %v, %v", locked, err)
	}
}

func TestGetByID(t *testing.T) {
	r, mock := newMock(t)
	created := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)
	mock.ExpectQuery(regexp.QuoteMeta("FROM users WHERE id=$1")).
		WithArgs(int64(42)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "username", "email", "password_hash", "is_admin", "status",
			"login_failed_attempts", "locked_until", "last_login_at", "created_at"}).
			AddRow(int64(42), "ana", "ana@example.com", "hash", true, "active", 0, nil, nil, created))

	u, err := r.GetByID(context.Background(), 42)
	if err != nil {
		t.Fatal(err)
	}
	if u.ID != 42 || !u.IsAdmin || !u.CreatedAt.Equal(created) || u.LockedUntil != nil {
		t.Fatalf("GetByID() = %+v", u)
	}
}

func TestDeleteReportsRows(t *testing.T) {
	tests := []struct {
		name string
		rows int64
	}{
		{"deleted", 1},
		{"missing", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, mock := newMock(t)
			mock.ExpectExec(regexp.QuoteMeta("DELETE FROM users WHERE id=$1")).
				WithArgs(int64(9)).
				WillReturnResult(sqlmock.NewResult(0, tt.rows))

			n, err := r.Delete(context.Background(), 9)
			if err != nil || n != tt.rows {
				t.Fatalf("Delete() = %d, %v", n, err)
			}
			if err := mock.ExpectationsWereMet(); err != nil {
				t.Fatal(err)
			}
		})
	}
}
