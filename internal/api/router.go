package api

import (
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/jsnyde0/taskchunker-backend/internal/api/middleware"
	"github.com/jsnyde0/taskchunker-backend/internal/handlers"
	"github.com/jsnyde0/taskchunker-backend/internal/store"
)

// NewRouter creates and configures the HTTP router. redisClient is nil when
// running on the SQLite backend, which disables the Redis-backed rate
// limiter.
func NewRouter(logger zerolog.Logger, dataStore store.DataStore, completer handlers.Completer, redisClient *redis.Client, rateLimitWhitelist []string) *chi.Mux {
	r := chi.NewRouter()

	// Metrics middleware first to capture all requests
	r.Use(middleware.Metrics)

	r.Use(middleware.SecurityHeaders)
	r.Use(middleware.MaxBodySize(64 * 1024)) // 64KB max body
	r.Use(middleware.RequireJSON)

	// Standard middleware
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.Logger(logger))
	r.Use(chimw.Recoverer)

	if redisClient != nil {
		limiter := middleware.NewRateLimiter(redisClient, logger, rateLimitWhitelist)
		r.Use(limiter.Middleware)
	}

	// CORS - browser clients call from anywhere and need the conversation
	// id header in both directions
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", handlers.ConversationIDHeader},
		ExposedHeaders:   []string{handlers.ConversationIDHeader, "X-RateLimit-Limit", "X-RateLimit-Remaining", "X-RateLimit-Reset", "Retry-After"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	h := handlers.NewHandler(dataStore, completer, logger)

	// Metrics endpoint (for Prometheus scraping)
	r.Handle("/metrics", promhttp.Handler())

	r.Get("/", h.Root)
	r.Get("/api/v1/hello", h.Hello)
	r.Get("/health", h.Health)

	r.Post("/chat", h.Chat)
	r.Post("/chunk", h.Chunk)

	return r
}
