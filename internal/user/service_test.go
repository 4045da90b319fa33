package user

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/ovaphlow/pitchfork/service-nutrition-go/internal/apperr"
	"github.com/ovaphlow/pitchfork/service-nutrition-go/internal/auth"
	"github.com/ovaphlow/pitchfork/service-nutrition-go/internal/user/entity"
)

type fakeStore struct {
	users    map[string]*entity.User
	nextID   int64
	failures int
	locked   bool
	resets   int
}

func newFakeStore() *fakeStore { return &fakeStore{users: map[string]*entity.User{}, nextID: 1} }

func (s *fakeStore) ExistsByEmailOrUsername(_ context.Context, email, username string) (bool, error) {
	_, e := s.users[email]
	_, u := s.users[username]
	return e || u, nil
}

func (s *fakeStore) CreateWithProfile(_ context.Context, u *entity.User) error {
	u.ID = s.nextID
	s.nextID++
	u.Status = "active"
	s.users[u.Email] = u
	s.users[u.Username] = u
	return nil
}

func (s *fakeStore) get(key string) (*entity.User, error) {
	u, ok := s.users[key]
	if !ok {
		return nil, sql.ErrNoRows
	}
	cp := *u
	return &cp, nil
}

func (s *fakeStore) GetByEmail(_ context.Context, email string) (*entity.User, error) { return s.get(email) }

func (s *fakeStore) GetByUsername(_ context.Context, username string) (*entity.User, error) {
	return s.get(username)
}

func (s *fakeStore) GetByID(_ context.Context, id int64) (*entity.User, error) {
	for _, u := range s.users {
		if u.ID == id {
			cp := *u
			return &cp, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (s *fakeStore) Delete(_ context.Context, id int64) (int64, error) {
	var n int64
	for key, u := range s.users {
		if u.ID == id {
			delete(s.users, key)
			n = 1
		}
	}
	return n, nil
}

func (s *fakeStore) IncrementFailedLogin(context.Context, int64) (int, error) {
	s.failures++
	return s.failures, nil
}

func (s *fakeStore) LockIfThreshold(_ context.Context, id int64, threshold, _ int) (bool, error) {
	if s.failures < threshold {
		return false, nil
	}
	s.locked = true
	for _, u := range s.users {
		if u.ID == id {
			until := time.Now().Add(time.Hour)
			u.Status, u.LockedUntil = "locked", &until
		}
	}
	return true, nil
}

func (s *fakeStore) UnlockIfExpired(context.Context, int64) (bool, error) { return false, nil }

func (s *fakeStore) ResetLoginSuccess(context.Context, int64) error {
	s.resets++
	s.failures = 0
	return nil
}

func newTestService(t *testing.T, store *fakeStore) (*UserService, *auth.Tokens) {
	t.Helper()
	tokens, err := auth.NewTokens(auth.Config{Secret: "test-secret", TTL: time.Hour})
	if err != nil {
		t.Fatal(err)
	}
	return NewUserService(store, BcryptHasher{Cost: bcrypt.MinCost}, tokens, zap.NewNop().Sugar()), tokens
}

func TestRegisterValidation(t *testing.T) {
	tests := []struct {
		name                      string
		username, email, password string
		kind                      error
	}{
		{"missing username", "", "a@b.c", "secret1", apperr.ErrValidation},
		{"bad email", "ana", "ana.example.com", "secret1", apperr.ErrValidation},
		{"short password", "ana", "ana@example.com", "12345", apperr.ErrValidation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, _ := newTestService(t, newFakeStore())
			_, err := svc.Register(context.Background(), tt.username, tt.email, tt.password)
			if !errors.Is(err, tt.kind) {
				t.Fatalf("err = %v, want %v", err, tt.kind)
			}
		})
	}
}

func TestRegisterThenLogin(t *testing.T) {
	store := newFakeStore()
	svc, tokens := newTestService(t, store)
	ctx := context.Background()

	acc, err := svc.Register(ctx, "ana", " Ana@Example.com ", "secret1")
	if err != nil {
		t.Fatal(err)
	}
	if acc.UserID != 1 || acc.Email != "ana@example.com" {
		t.Fatalf("Register() = %+v", acc)
	}
	if store.users["ana"].PasswordHash == "secret1" {
		t.Fatal("password stored in clear")
	}
	if _, err := svc.Register(ctx, "ana", "other@example.com", "secret1"); !errors.Is(err, apperr.ErrConflict) {
		t.Fatalf("duplicate register err = %v", err)
	}

	for _, id := range []string{"ana@example.com", "ANA@example.com", "ana"} {
		res, err := svc.Login(ctx, id, "secret1")
		if err != nil {
			t.Fatalf("Login(%q): %v", id, err)
		}
		claims, err := tokens.Verify(res.Token)
		if err != nil {
			t.Fatal(err)
		}
		if claims.UserID != 1 || claims.Username != "ana" || res.User.UserID != 1 {
			t.Fatalf("claims = %+v, user = %+v", claims, res.User)
		}
	}
}

func TestLoginFailures(t *testing.T) {
	store := newFakeStore()
	svc, _ := newTestService(t, store)
	svc.MaxFailed = 2
	ctx := context.Background()
	if _, err := svc.Register(ctx, "ana", "ana@example.com", "secret1"); err != nil {
		t.Fatal(err)
	}

	if _, err := svc.Login(ctx, "nobody@example.com", "secret1"); !errors.Is(err, apperr.ErrUnauthorized) {
		t.Fatalf("unknown user err = %v", err)
	}
	if _, err := svc.Login(ctx, "", ""); !errors.Is(err, apperr.ErrValidation) {
		t.Fatalf("empty credentials err = %v", err)
	}
	for i := 0; i < 2; i++ {
		if _, err := svc.Login(ctx, "ana", "wrong-password"); !errors.Is(err, apperr.ErrUnauthorized) {
			t.Fatalf("attempt %d err = %v", i, err)
		}
	}
	if !store.locked {
		t.Fatal("account should be locked after MaxFailed attempts")
	}
	_, err := svc.Login(ctx, "ana", "secret1")
	if !errors.Is(err, apperr.ErrUnauthorized) || apperr.Message(err) != "Account locked, try again later" {
		t.Fatalf("locked login err = %v", err)
	}
}

func TestHandlers(t *testing.T) {
	svc, _ := newTestService(t, newFakeStore())
	h := NewHandler(svc, zap.NewNop().Sugar())

	post := func(fn http.HandlerFunc, body any) *httptest.ResponseRecorder {
		b, _ := json.Marshal(body)
		rec := httptest.NewRecorder()
		fn(rec, httptest.NewRequest(http.MethodPost, "/", bytes.NewReader(b)))
		return rec
	}

	if rec := post(h.Register, RegisterRequest{Username: "bo", Email: "bo@example.com", Password: "hunter22"}); rec.Code != http.StatusCreated {
		t.Fatalf("register status = %d: %s", rec.Code, rec.Body.String())
	}
	if rec := post(h.Register, RegisterRequest{Username: "bo", Email: "bo@example.com", Password: "hunter22"}); rec.Code != http.StatusConflict {
		t.Fatalf("duplicate register status = %d", rec.Code)
	}
	rec := post(h.Login, LoginRequest{Email: "bo@example.com", Password: "hunter22"})
	if rec.Code != http.StatusOK {
		t.Fatalf("login status = %d: %s", rec.Code, rec.Body.String())
	}
	var res LoginResult
	if err := json.Unmarshal(rec.Body.Bytes(), &res); err != nil || res.Token == "" || res.User.Username != "bo" {
		t.Fatalf("login body = %s", rec.Body.String())
	}
	if rec := post(h.Login, LoginRequest{Identifier: "bo", Password: "nope"}); rec.Code != http.StatusUnauthorized {
		t.Fatalf("bad password status = %d", rec.Code)
	}
}

func TestMeAndDeleteUser(t *testing.T) {
	store := newFakeStore()
	svc, _ := newTestService(t, store)
	ctx := context.Background()
	if _, err := svc.Register(ctx, "ana", "ana@example.com", "secret1"); err != nil {
		t.Fatal(err)
	}

	acc, err := svc.Me(ctx, 1)
	if err != nil {
		t.Fatal(err)
	}
	if acc.UserID != 1 || acc.Username != "ana" || acc.Email != "ana@example.com" {
		t.Fatalf("Me() = %+v", acc)
	}

	tests := []struct {
		name string
		id   int64
		kind error
	}{
		{"missing id", 0, apperr.ErrValidation},
		{"existing", 1, nil},
		{"already gone", 1, apperr.ErrNotFound},
	}
	for _, tt := range tests {
		err := svc.DeleteUser(ctx, tt.id)
		if tt.kind == nil && err != nil || tt.kind != nil && !errors.Is(err, tt.kind) {
			t.Fatalf("%s: DeleteUser(%d) err = %v, want %v", tt.name, tt.id, err, tt.kind)
		}
	}
	if _, err := svc.Me(ctx, 1); !errors.Is(err, apperr.ErrNotFound) || apperr.Message(err) != "User not found" {
		t.Fatalf("Me() after delete err = %v", err)
	}
}

func TestMeAndDeleteHandlers(t *testing.T) {
	svc, _ := newTestService(t, newFakeStore())
	h := NewHandler(svc, zap.NewNop().Sugar())
	if _, err := svc.Register(context.Background(), "bo", "bo@example.com", "hunter22"); err != nil {
		t.Fatal(err)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
	req = req.WithContext(auth.WithClaims(req.Context(), &auth.Claims{UserID: 1, Username: "bo"}))
	rec := httptest.NewRecorder()
	h.Me(rec, req)
	var body struct {
		User entity.Account `json:"user"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil || rec.Code != http.StatusOK || body.User.Username != "bo" {
		t.Fatalf("me = %d %s", rec.Code, rec.Body.String())
	}

	tests := []struct {
		name   string
		userID string
		status int
	}{
		{"not a number", "abc", http.StatusBadRequest},
		{"deleted", "1", http.StatusOK},
		{"unknown", "1", http.StatusNotFound},
	}
	for _, tt := range tests {
		req := httptest.NewRequest(http.MethodDelete, "/api/auth/"+tt.userID, nil)
		req.SetPathValue("userId", tt.userID)
		rec := httptest.NewRecorder()
		h.Delete(rec, req)
		if rec.Code != tt.status {
			t.Fatalf("%s: status = %d, want %d: %s", tt.name, rec.Code, tt.status, rec.Body.String())
		}
	}
}
