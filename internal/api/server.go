// Package api provides the HTTP API server and handlers for the tento application.
package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/tentoapp/tento-server/internal/card"
	"github.com/tentoapp/tento-server/internal/http/response"
	"github.com/tentoapp/tento-server/internal/ratelimit"
	"github.com/tentoapp/tento-server/internal/service"
	"github.com/tentoapp/tento-server/internal/session"
	"github.com/tentoapp/tento-server/internal/validation"
)

// Config holds the server's HTTP-level settings.
type Config struct {
	CORSOrigins   []string
	RenderTimeout time.Duration
	RateRPS       float64
	RateBurst     int
}

// Server holds dependencies for HTTP handlers.
type Server struct {
	lists     *service.ListService
	profiles  *service.ProfileService
	tokens    *session.TokenService
	renderer  *card.Renderer
	cache     *card.Cache
	limiter   *ratelimit.KeyedRateLimiter
	validator *validation.Validator
	router    *chi.Mux
	logger    *slog.Logger
	cfg       Config
}

// NewServer creates a new HTTP server with all routes configured.
func NewServer(cfg Config, lists *service.ListService, profiles *service.ProfileService, tokens *session.TokenService, renderer *card.Renderer, cache *card.Cache, logger *slog.Logger) *Server {
	if cfg.RenderTimeout <= 0 {
		cfg.RenderTimeout = 5 * time.Second
	}
	if cfg.RateRPS <= 0 {
		cfg.RateRPS = 2
	}
	if cfg.RateBurst <= 0 {
		cfg.RateBurst = 5
	}

	s := &Server{
		lists:     lists,
		profiles:  profiles,
		tokens:    tokens,
		renderer:  renderer,
		cache:     cache,
		limiter:   ratelimit.New(cfg.RateRPS, cfg.RateBurst),
		validator: validation.New(),
		router:    chi.NewRouter(),
		logger:    logger,
		cfg:       cfg,
	}

	s.setupMiddleware()
	s.setupRoutes()

	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Close releases background resources held by the server.
func (s *Server) Close() {
	s.limiter.Stop()
}

// setupMiddleware configures middleware stack.
func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(middleware.Logger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Compress(5))

	origins := s.cfg.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
		MaxAge:         300,
	}))
}

// setupRoutes configures all HTTP routes.
func (s *Server) setupRoutes() {
	// Health check.
	s.router.Get("/health", s.handleHealthCheck)

	// API v1. Session resolution is optional; handlers that need an
	// identity reject anonymous callers themselves.
	s.router.Route("/api/v1", func(r chi.Router) {
		r.Use(s.resolveSession)

		r.Route("/lists", func(r chi.Router) {
			r.Post("/", s.handleCreateList)
			r.Get("/", s.handleGetLists)
			r.Patch("/{id}", s.handleUpdateList)
			r.Delete("/{id}", s.handleDeleteList)
		})

		r.Patch("/profile", s.handleUpdateProfile)

		// Public profile and list pages.
		r.Get("/u/{username}", s.handleGetProfile)
		r.Get("/u/{username}/{slug}", s.handleGetListPage)
	})

	// Social preview cards. Rate limited per client IP; every crawler
	// hit that misses the cache costs a render.
	s.router.Route("/card", func(r chi.Router) {
		r.Use(s.cardRateLimit)
		r.Get("/profile/{username}", s.handleProfileCard)
		r.Get("/list/{username}/{slug}", s.handleListCard)
	})
}

// handleHealthCheck returns server health status.
func (s *Server) handleHealthCheck(w http.ResponseWriter, _ *http.Request) {
	response.Success(w, map[string]string{
		"status": "healthy",
	}, s.logger)
}
