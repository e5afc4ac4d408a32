package api

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/meraroom/meraroom-server/internal/domain"
	"github.com/meraroom/meraroom-server/internal/service"
)

func (s *Server) registerAuthRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID:   "register",
		Method:        http.MethodPost,
		Path:          "/api/v1/auth/register",
		Summary:       "Register new user",
		Description:   "Creates an account and returns an access token. Fails with USER_EXISTS when the username is taken.",
		Tags:          []string{"Authentication"},
		DefaultStatus: http.StatusCreated,
		Middlewares:   s.rateLimited(s.authRateLimiter),
	}, s.handleRegister)

	huma.Register(s.api, huma.Operation{
		OperationID: "login",
		Method:      http.MethodPost,
		Path:        "/api/v1/auth/login",
		Summary:     "User login",
		Description: "Authenticates a user and returns an access token. Fails with NOT_FOUND or BAD_PASSWORD.",
		Tags:        []string{"Authentication"},
		Middlewares: s.rateLimited(s.authRateLimiter),
	}, s.handleLogin)

	huma.Register(s.api, huma.Operation{
		OperationID: "getCurrentUser",
		Method:      http.MethodGet,
		Path:        "/api/v1/users/me",
		Summary:     "Get current user",
		Description: "Returns the profile of the token holder",
		Tags:        []string{"Authentication"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleGetCurrentUser)
}

// === DTOs ===

// RegisterInput wraps the register request for Huma.
type RegisterInput struct {
	Body service.RegisterRequest
}

// LoginInput wraps the login request for Huma.
type LoginInput struct {
	Body service.LoginRequest
}

// AuthResponse contains the token issued to a user.
type AuthResponse struct {
	Token     string         `json:"token" doc:"PASETO access token"`
	ExpiresAt time.Time      `json:"expires_at" doc:"Token expiry"`
	User      domain.Profile `json:"user" doc:"Signed-in user"`
}

// AuthOutput wraps the auth response for Huma.
type AuthOutput struct {
	Body AuthResponse
}

// CurrentUserInput carries the bearer token.
type CurrentUserInput struct {
	Authorization string `header:"Authorization"`
}

// UserOutput wraps a profile for Huma.
type UserOutput struct {
	Body domain.Profile
}

func newAuthResponse(resp *service.AuthResponse) AuthResponse {
	return AuthResponse{Token: resp.Token, ExpiresAt: resp.ExpiresAt, User: resp.User}
}

// === Handlers ===

func (s *Server) handleRegister(ctx context.Context, input *RegisterInput) (*AuthOutput, error) {
	resp, err := s.services.Auth.Register(ctx, input.Body)
	if err != nil {
		return nil, err
	}
	return &AuthOutput{Body: newAuthResponse(resp)}, nil
}

func (s *Server) handleLogin(ctx context.Context, input *LoginInput) (*AuthOutput, error) {
	resp, _, err := s.services.Auth.Login(ctx, input.Body)
	if err != nil {
		return nil, err
	}
	return &AuthOutput{Body: newAuthResponse(resp)}, nil
}

func (s *Server) handleGetCurrentUser(ctx context.Context, input *CurrentUserInput) (*UserOutput, error) {
	user, err := s.authenticateRequest(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}
	return &UserOutput{Body: user.Profile()}, nil
}
