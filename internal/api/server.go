// Package api provides the HTTP API server and handlers for the Alibi backend.
package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/alibiapp/alibi-server/internal/http/response"
	"github.com/alibiapp/alibi-server/internal/ratelimit"
	"github.com/alibiapp/alibi-server/internal/service"
	"github.com/alibiapp/alibi-server/internal/validation"
)

// Server holds dependencies for HTTP handlers.
type Server struct {
	excuseService   *service.ExcuseService
	ratingService   *service.RatingService
	favoriteService *service.FavoriteService
	validator       *validation.Validator
	limiter         *ratelimit.KeyedRateLimiter
	allowedOrigins  []string
	router          *chi.Mux
	logger          *slog.Logger
}

// NewServer creates a new HTTP server with all routes configured.
// The limiter guards the generation endpoints only; nil disables rate limiting.
func NewServer(
	excuseService *service.ExcuseService,
	ratingService *service.RatingService,
	favoriteService *service.FavoriteService,
	limiter *ratelimit.KeyedRateLimiter,
	allowedOrigins []string,
	logger *slog.Logger,
) *Server {
	s := &Server{
		excuseService:   excuseService,
		ratingService:   ratingService,
		favoriteService: favoriteService,
		validator:       validation.New(),
		limiter:         limiter,
		allowedOrigins:  allowedOrigins,
		router:          chi.NewRouter(),
		logger:          logger,
	}

	s.setupMiddleware()
	s.setupRoutes()

	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// setupMiddleware configures middleware stack.
func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(middleware.Logger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Compress(5))

	origins := s.allowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))
}

// setupRoutes configures all HTTP routes.
func (s *Server) setupRoutes() {
	// Health check.
	s.router.Get("/health", s.handleHealthCheck)

	s.router.Route("/api", func(r chi.Router) {
		r.Route("/excuses", func(r chi.Router) {
			// Generation endpoints proxy to the LLM; rate limited per client.
			r.Group(func(r chi.Router) {
				r.Use(s.rateLimit)
				r.Post("/generate", s.handleGenerate)
				r.Post("/adjust", s.handleAdjust)
				r.Get("/ultimate", s.handleUltimate)
			})

			r.Get("/local", s.handleLocalExcuse)
			r.Get("/stats", s.handleCatalogStats)
			r.Get("/search", s.handleSearch)
			r.Get("/top-rated", s.handleTopRated)

			r.Post("/{id}/rate", s.handleRateExcuse)
			r.Get("/{id}/rating", s.handleGetRating)
			r.Post("/{id}/share", s.handleTrackShare)
		})

		r.Route("/favorites", func(r chi.Router) {
			r.Post("/", s.handleAddFavorite)
			r.Get("/", s.handleListFavorites)
			// "/clear" must register before "/{id}" so chi doesn't treat
			// "clear" as a favorite ID.
			r.Delete("/clear", s.handleClearFavorites)
			r.Delete("/{id}", s.handleRemoveFavorite)
		})
	})
}

// handleHealthCheck returns server health status.
func (s *Server) handleHealthCheck(w http.ResponseWriter, _ *http.Request) {
	response.Success(w, map[string]string{
		"status": "healthy",
	}, s.logger)
}
