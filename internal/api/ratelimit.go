package api

import (
	"net"
	"net/http"
	"strings"

	"github.com/danielgtaylor/huma/v2"

	"github.com/meraroom/meraroom-server/internal/http/response"
	"github.com/meraroom/meraroom-server/internal/ratelimit"
)

// RateLimiter limits requests per client address.
type RateLimiter = ratelimit.KeyedRateLimiter

const rateLimitMessage = "Too many requests. Please try again later."

// rateLimited returns a huma middleware that rejects requests over budget
// with 429.
func (s *Server) rateLimited(limiter *RateLimiter) huma.Middlewares {
	return huma.Middlewares{func(ctx huma.Context, next func(huma.Context)) {
		key := clientKey(ctx.RemoteAddr())
		if !limiter.Allow(key) {
			s.logger.Warn("rate limit exceeded",
				"ip", key,
				"path", ctx.URL().Path)
			_ = huma.WriteErr(s.api, ctx, http.StatusTooManyRequests, rateLimitMessage)
			return
		}
		next(ctx)
	}}
}

// RateLimitMiddleware rate limits plain chi routes by client address.
func RateLimitMiddleware(limiter *RateLimiter, logger interface{ Warn(msg string, args ...any) }) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := clientKey(r.RemoteAddr)
			if !limiter.Allow(key) {
				logger.Warn("rate limit exceeded",
					"ip", key,
					"path", r.URL.Path)
				response.TooManyRequests(w, rateLimitMessage, nil)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// clientKey strips the port from a remote address. RealIP has already
// applied X-Forwarded-For and X-Real-IP.
func clientKey(remoteAddr string) string {
	if host, _, err := net.SplitHostPort(remoteAddr); err == nil {
		return host
	}
	return strings.TrimSpace(remoteAddr)
}
