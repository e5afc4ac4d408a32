// Package api provides the HTTP API server and handlers for the Mera Room server.
package api

import (
	"log/slog"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/meraroom/meraroom-server/internal/config"
	"github.com/meraroom/meraroom-server/internal/http/response"
	"github.com/meraroom/meraroom-server/internal/ratelimit"
	"github.com/meraroom/meraroom-server/internal/search"
	"github.com/meraroom/meraroom-server/internal/sse"
)

// Version is reported in the OpenAPI document.
const Version = "1.0.0"

// streamConnectsPerMinute caps event stream (re)connects per client.
const streamConnectsPerMinute = 30

// Server holds dependencies for HTTP handlers.
type Server struct {
	services    *Services
	searchIndex *search.SearchIndex
	sseManager  *sse.Manager
	router      *chi.Mux
	api         huma.API
	logger      *slog.Logger

	authRateLimiter      *RateLimiter
	assistantRateLimiter *RateLimiter
	streamRateLimiter    *RateLimiter
}

// NewServer creates a new HTTP server with all routes configured.
// searchIndex and sseManager may be nil.
func NewServer(services *Services, searchIndex *search.SearchIndex, sseManager *sse.Manager, cfg config.ServerConfig, logger *slog.Logger) *Server {
	router := chi.NewRouter()

	s := &Server{
		services:             services,
		searchIndex:          searchIndex,
		sseManager:           sseManager,
		router:               router,
		logger:               logger,
		authRateLimiter:      ratelimit.PerMinute(cfg.AuthRateLimit),
		assistantRateLimiter: ratelimit.PerMinute(cfg.AssistantRateLimit),
		streamRateLimiter:    ratelimit.PerMinute(streamConnectsPerMinute),
	}

	s.setupMiddleware(cfg)

	humaConfig := huma.DefaultConfig("Mera Room API", Version)
	humaConfig.Components.SecuritySchemes = map[string]*huma.SecurityScheme{
		"bearer": {
			Type:         "http",
			Scheme:       "bearer",
			BearerFormat: "PASETO",
		},
	}
	humaConfig.Transformers = append(humaConfig.Transformers, EnvelopeTransformer)

	s.api = humachi.New(router, humaConfig)
	RegisterErrorHandler()

	s.registerRoutes()
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Close releases background resources held by the server.
func (s *Server) Close() {
	s.authRateLimiter.Stop()
	s.assistantRateLimiter.Stop()
	s.streamRateLimiter.Stop()
}

func (s *Server) setupMiddleware(cfg config.ServerConfig) {
	origins := cfg.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(requestLogger(s.logger))
	s.router.Use(recoverer(s.logger))
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	s.router.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		response.NotFound(w, "route not found", s.logger)
	})
	s.router.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		response.MethodNotAllowed(w, s.logger)
	})
}

func (s *Server) registerRoutes() {
	s.registerHealthRoutes()
	s.registerCatalogRoutes()
	s.registerAuthRoutes()
	s.registerSessionRoutes()
	s.registerAssistantRoutes()
	s.registerEventRoutes()
}
