package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/meraroom/meraroom-server/internal/service"
	"github.com/meraroom/meraroom-server/internal/sse"
)

// sessionResolver maps /sessions/{id}/events requests to live sessions.
type sessionResolver struct {
	sessions *service.SessionService
}

func (r sessionResolver) SessionID(req *http.Request) string {
	return chi.URLParam(req, "id")
}

func (r sessionResolver) Exists(sessionID string) bool {
	return r.sessions.Exists(sessionID)
}

// registerEventRoutes mounts the event stream outside huma: it is a
// long-lived text/event-stream response.
func (s *Server) registerEventRoutes() {
	if s.sseManager == nil {
		return
	}
	handler := sse.NewHandler(s.sseManager, sessionResolver{sessions: s.services.Session}, s.logger)
	s.router.With(RateLimitMiddleware(s.streamRateLimiter, s.logger)).
		Get("/api/v1/sessions/{id}/events", handler.ServeHTTP)
}
