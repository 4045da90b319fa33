package user

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/ovaphlow/pitchfork/service-nutrition-go/internal/apperr"
	"github.com/ovaphlow/pitchfork/service-nutrition-go/internal/user/entity"
)

// PasswordHasher defines minimal hashing interface.
type PasswordHasher interface {
	Hash(pw string) (string, error)
	Verify(hash, pw string) bool
}

// BcryptHasher implementation.
type BcryptHasher struct{ Cost int }

func (b BcryptHasher) Hash(pw string) (string, error) {
	cost := b.Cost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	h, err := bcrypt.GenerateFromPassword([]byte(pw), cost)
	if err != nil {
		return "", err
	}
	return string(h), nil
}

func (b BcryptHasher) Verify(hash, pw string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(pw)) == nil
}

// Store is the storage contract of the account service.
type Store interface {
	ExistsByEmailOrUsername(ctx context.Context, email, username string) (bool, error)
	CreateWithProfile(ctx context.Context, u *entity.User) error
	GetByEmail(ctx context.Context, email string) (*entity.User, error)
	GetByUsername(ctx context.Context, username string) (*entity.User, error)
	GetByID(ctx context.Context, id int64) (*entity.User, error)
	Delete(ctx context.Context, id int64) (int64, error)
	IncrementFailedLogin(ctx context.Context, id int64) (int, error)
	LockIfThreshold(ctx context.Context, id int64, threshold int, lockMinutes int) (bool, error)
	UnlockIfExpired(ctx context.Context, id int64) (bool, error)
	ResetLoginSuccess(ctx context.Context, id int64) error
}

// TokenIssuer signs session tokens.
type TokenIssuer interface {
	Issue(userID int64, username string, isAdmin bool) (string, error)
}

// UserService orchestrates registration and password login.
type UserService struct {
	store  Store
	hasher PasswordHasher
	tokens TokenIssuer
	logger *zap.SugaredLogger
	now    func() time.Time
	// configuration knobs
	MaxFailed   int
	LockMinutes int
}

func NewUserService(store Store, hasher PasswordHasher, tokens TokenIssuer, logger *zap.SugaredLogger) *UserService {
	if hasher == nil {
		hasher = BcryptHasher{Cost: 10}
	}
	return &UserService{store: store, hasher: hasher, tokens: tokens, logger: logger, now: time.Now, MaxFailed: 6, LockMinutes: 15}
}

const minPasswordLength = 6

var (
	errBadCredentials = apperr.Unauthorized("Invalid email or password")
	errUserNotFound   = apperr.NotFound("User not found")
)

// Register creates the account and its empty profile.
func (s *UserService) Register(ctx context.Context, username, email, password string) (*entity.Account, error) {
	username = strings.TrimSpace(username)
	email = strings.ToLower(strings.TrimSpace(email))
	if username == "" || email == "" || password == "" {
		return nil, apperr.Validation("Username, email, and password are required")
	}
	if !strings.Contains(email, "@") {
		return nil, apperr.Validation("Email is not valid")
	}
	if len(password) < minPasswordLength {
		return nil, apperr.Validation("Password must be at least 6 characters")
	}
	exists, err := s.store.ExistsByEmailOrUsername(ctx, email, username)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, apperr.Conflict("User with this email or username already exists")
	}
	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, err
	}
	u := &entity.User{Username: username, Email: email, PasswordHash: hash}
	if err := s.store.CreateWithProfile(ctx, u); err != nil {
		return nil, err
	}
	s.logger.Infow("user registered", "user_id", u.ID)
	v := u.View()
	return &v, nil
}

// LoginResult carries the signed token and the account it belongs to.
type LoginResult struct {
	Token string         `json:"token"`
	User  entity.Account `json:"user"`
}

// Login authenticates by email or username and issues a token. Repeated
// failures lock the account for LockMinutes.
func (s *UserService) Login(ctx context.Context, identifier, password string) (*LoginResult, error) {
	identifier = strings.TrimSpace(identifier)
	if identifier == "" || password == "" {
		return nil, apperr.Validation("Email and password are required")
	}

	var u *entity.User
	var err error
	if strings.Contains(identifier, "@") {
		u, err = s.store.GetByEmail(ctx, strings.ToLower(identifier))
	} else {
		u, err = s.store.GetByUsername(ctx, identifier)
	}
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errBadCredentials
		} // avoid user enumeration
		return nil, err
	}

	// Expired lock auto-unlock attempt
	if u.Status == "locked" && u.LockedUntil != nil && u.LockedUntil.Before(s.now()) {
		if unlocked, _ := s.store.UnlockIfExpired(ctx, u.ID); unlocked {
			u.Status = "active"
			u.LockedUntil = nil
		}
	}
	if u.Status == "locked" {
		return nil, apperr.Unauthorized("Account locked, try again later")
	}

	if !s.hasher.Verify(u.PasswordHash, password) {
		if _, incErr := s.store.IncrementFailedLogin(ctx, u.ID); incErr == nil {
			if locked, _ := s.store.LockIfThreshold(ctx, u.ID, s.MaxFailed, s.LockMinutes); locked {
				s.logger.Warnw("account locked after failed logins", "user_id", u.ID)
			}
		}
		return nil, errBadCredentials
	}
	if err := s.store.ResetLoginSuccess(ctx, u.ID); err != nil {
		return nil, err
	}

	token, err := s.tokens.Issue(u.ID, u.Username, u.IsAdmin)
	if err != nil {
		return nil, err
	}
	return &LoginResult{Token: token, User: u.View()}, nil
}

// Me returns the account behind an authenticated request.
func (s *UserService) Me(ctx context.Context, userID int64) (*entity.Account, error) {
	u, err := s.store.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errUserNotFound
		}
		return nil, err
	}
	v := u.View()
	return &v, nil
}

// DeleteUser removes an account together with its profile and food log.
func (s *UserService) DeleteUser(ctx context.Context, userID int64) error {
	if userID <= 0 {
		return apperr.Validation("User ID is required")
	}
	n, err := s.store.Delete(ctx, userID)
	if err != nil {
		return err
	}
	if n == 0 {
		return errUserNotFound
	}
	s.logger.Infow("user deleted", "user_id", userID)
	return nil
}
