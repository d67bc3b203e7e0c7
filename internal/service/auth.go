package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/Skotchmaster/storefront/internal/domain"
	"github.com/Skotchmaster/storefront/internal/hash"
	"github.com/Skotchmaster/storefront/internal/logging"
	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/repo"
	"github.com/Skotchmaster/storefront/internal/tokens"
)

const minPasswordLen = 6

var validate = validator.New()

type AuthService struct {
	Store     repo.Store
	JWTSecret []byte
	TokenTTL  time.Duration
	Now       func() time.Time
}

type LoginResult struct {
	User        *models.User
	AccessToken string
	AccessExp   time.Time
}

func (s *AuthService) Register(ctx context.Context, name, email, password string) (*LoginResult, error) {
	l := logging.FromContext(ctx).With("svc", "auth.register")
	u, err := s.createUser(ctx, name, email, password, models.RoleUser)
	if err != nil {
		l.Warn("register_error", "error", err)
		return nil, err
	}
	l.Info("user_registered", "user_id", u.ID)
	return s.issue(u)
}

func (s *AuthService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	l := logging.FromContext(ctx).With("svc", "auth.login")
	u, err := s.Store.GetUserByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if isNotFound(err) {
			l.Warn("login_failed", "status", 401, "reason", "unknown email")
			return nil, fmt.Errorf("%w: invalid email or password", domain.ErrUnauthorized)
		}
		return nil, err
	}
	if !hash.CheckPassword(u.PasswordHash, password) {
		l.Warn("login_failed", "status", 401, "reason", "wrong password", "user_id", u.ID)
		return nil, fmt.Errorf("%w: invalid email or password", domain.ErrUnauthorized)
	}
	return s.issue(u)
}

func (s *AuthService) Me(ctx context.Context, userID string) (*models.User, error) {
	return s.Store.GetUser(ctx, userID)
}

// EnsureAdmin creates the configured admin account on first start.
func (s *AuthService) EnsureAdmin(ctx context.Context, email, password string) error {
	l := logging.FromContext(ctx).With("svc", "auth.seed_admin")
	if email == "" || password == "" {
		return nil
	}
	u, err := s.Store.GetUserByEmail(ctx, normalizeEmail(email))
	if err == nil {
		if !u.IsAdmin() {
			l.Warn("admin_seed_skipped", "reason", "email belongs to a regular user")
		}
		return nil
	}
	if !isNotFound(err) {
		return err
	}

	if _, err := s.createUser(ctx, "Admin", email, password, models.RoleAdmin); err != nil {
		return err
	}
	l.Info("admin_seeded", "email", normalizeEmail(email))
	return nil
}

func (s *AuthService) createUser(ctx context.Context, name, email, password, role string) (*models.User, error) {
	name = strings.TrimSpace(name)
	email = normalizeEmail(email)
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", domain.ErrValidation)
	}
	if err := validate.Var(email, "required,email"); err != nil {
		return nil, fmt.Errorf("%w: invalid email", domain.ErrValidation)
	}
	if len(password) < minPasswordLen {
		return nil, fmt.Errorf("%w: password must be at least %d characters", domain.ErrValidation, minPasswordLen)
	}

	pwHash, err := hash.HashPassword(password)
	if err != nil {
		return nil, err
	}
	u := &models.User{
		ID:           newID(),
		Name:         name,
		Email:        email,
		PasswordHash: pwHash,
		Role:         role,
		CreatedAt:    clock(s.Now),
	}
	if err := s.Store.CreateUser(ctx, u); err != nil {
		if errors.Is(err, domain.ErrValidation) {
			return nil, fmt.Errorf("%w: email already registered", domain.ErrConflict)
		}
		return nil, err
	}
	return u, nil
}

func (s *AuthService) issue(u *models.User) (*LoginResult, error) {
	ttl := s.TokenTTL
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	exp := clock(s.Now).Add(ttl)
	token, err := tokens.CreateAccessToken(s.JWTSecret, u.ID, u.Name, u.Role, exp)
	if err != nil {
		return nil, err
	}
	return &LoginResult{User: u, AccessToken: token, AccessExp: exp}, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
