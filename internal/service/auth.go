package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/meraroom/meraroom-server/internal/auth"
	"github.com/meraroom/meraroom-server/internal/domain"
	domainerrors "github.com/meraroom/meraroom-server/internal/errors"
	"github.com/meraroom/meraroom-server/internal/id"
	"github.com/meraroom/meraroom-server/internal/store"
	"github.com/meraroom/meraroom-server/internal/validation"
)

// UserStore is the durable user list.
type UserStore interface {
	CreateUser(ctx context.Context, user *domain.User) error
	GetUser(ctx context.Context, id string) (*domain.User, error)
	GetUserByUsername(ctx context.Context, username string) (*domain.User, error)
	UpdateLastLogin(ctx context.Context, id string, at time.Time) error
}

// AuthService registers users and exchanges credentials for tokens.
// Tokens are never required to navigate or post.
type AuthService struct {
	users        UserStore
	tokenService *auth.TokenService
	validator    *validation.Validator
	logger       *slog.Logger
}

// NewAuthService creates a new authentication service.
func NewAuthService(users UserStore, tokenService *auth.TokenService, v *validation.Validator, logger *slog.Logger) *AuthService {
	return &AuthService{
		users:        users,
		tokenService: tokenService,
		validator:    v,
		logger:       logger,
	}
}

// RegisterRequest creates an account.
type RegisterRequest struct {
	Username    string `json:"username" validate:"required,min=3,max=32,username"`
	Password    string `json:"password" validate:"required,min=6,max=1024"`
	DisplayName string `json:"display_name,omitempty" validate:"max=64"`
}

// LoginRequest contains user credentials.
type LoginRequest struct {
	Username string `json:"username" validate:"notblank"`
	Password string `json:"password" validate:"required"`
}

// AuthResponse carries an access token and the public profile.
type AuthResponse struct {
	Token     string         `json:"token"`
	ExpiresAt time.Time      `json:"expires_at"`
	User      domain.Profile `json:"user"`
}

// Register creates a user and signs them in.
// Returns a USER_EXISTS error when the username is taken.
func (s *AuthService) Register(ctx context.Context, req RegisterRequest) (*AuthResponse, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	// The validator counts runes; argon2 input is capped in bytes.
	if len(req.Password) > auth.MaxPasswordBytes {
		return nil, domainerrors.ValidationWithDetails("validation failed", map[string]string{
			"password": fmt.Sprintf("must be at most %d bytes", auth.MaxPasswordBytes),
		})
	}

	passwordHash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	userID, err := id.Generate(id.PrefixUser)
	if err != nil {
		return nil, fmt.Errorf("generate user ID: %w", err)
	}

	now := time.Now()
	user := &domain.User{
		ID:           userID,
		Username:     req.Username,
		PasswordHash: passwordHash,
		DisplayName:  strings.TrimSpace(req.DisplayName),
		CreatedAt:    now,
		LastLoginAt:  now,
	}

	if err := s.users.CreateUser(ctx, user); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return nil, domainerrors.UserExists()
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	s.logger.Info("user registered", "user_id", userID, "username", user.Username)
	return s.issue(user)
}

// Login verifies credentials. Unknown usernames return NOT_FOUND and wrong
// passwords BAD_PASSWORD.
func (s *AuthService) Login(ctx context.Context, req LoginRequest) (*AuthResponse, *domain.User, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, nil, err
	}

	user, err := s.users.GetUserByUsername(ctx, req.Username)
	if errors.Is(err, store.ErrNotFound) {
		return nil, nil, domainerrors.NotFound("User not found")
	}
	if err != nil {
		return nil, nil, fmt.Errorf("get user: %w", err)
	}

	ok, err := auth.VerifyPassword(user.PasswordHash, req.Password)
	if err != nil {
		return nil, nil, fmt.Errorf("verify password: %w", err)
	}
	if !ok {
		s.logger.Warn("login failed: bad password", "user_id", user.ID)
		return nil, nil, domainerrors.BadPassword()
	}

	now := time.Now()
	if err := s.users.UpdateLastLogin(ctx, user.ID, now); err != nil {
		s.logger.Warn("failed to record last login", "user_id", user.ID, "error", err)
	}
	user.LastLoginAt = now

	resp, err := s.issue(user)
	if err != nil {
		return nil, nil, err
	}
	s.logger.Info("user logged in", "user_id", user.ID)
	return resp, user, nil
}

// VerifyToken resolves an access token to its user.
func (s *AuthService) VerifyToken(ctx context.Context, token string) (*domain.User, error) {
	claims, err := s.tokenService.VerifyAccessToken(token)
	if err != nil {
		return nil, domainerrors.Unauthorized("invalid or expired token").WithCause(err)
	}

	user, err := s.users.GetUser(ctx, claims.UserID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, domainerrors.Unauthorized("user no longer exists")
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	return user, nil
}

func (s *AuthService) issue(user *domain.User) (*AuthResponse, error) {
	token, err := s.tokenService.GenerateAccessToken(user)
	if err != nil {
		return nil, fmt.Errorf("generate token: %w", err)
	}
	return &AuthResponse{
		Token:     token,
		ExpiresAt: time.Now().Add(s.tokenService.AccessTokenDuration()),
		User:      user.Profile(),
	}, nil
}
