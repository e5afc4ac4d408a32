package api

import (
	"context"
	"strings"

	"github.com/danielgtaylor/huma/v2"

	"github.com/meraroom/meraroom-server/internal/domain"
)

// authenticateRequest validates the Authorization header and returns the user.
// Only account endpoints call this: browsing, posting and navigation never
// require a token.
func (s *Server) authenticateRequest(ctx context.Context, authHeader string) (*domain.User, error) {
	if authHeader == "" {
		return nil, huma.Error401Unauthorized("Missing authorization header")
	}

	scheme, token, ok := strings.Cut(authHeader, " ")
	if !ok || scheme != "Bearer" || token == "" {
		return nil, huma.Error401Unauthorized("Invalid authorization header format")
	}

	user, err := s.services.Auth.VerifyToken(ctx, token)
	if err != nil {
		return nil, err
	}
	return user, nil
}
