package rest

import (
	"net/http"

	"dynacache/domain/cache"
	"dynacache/infrastructure/messaging/eventbridge"
	"dynacache/interfaces/http/rest/handlers"
	"dynacache/interfaces/http/rest/middleware"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// Router creates and configures the admin HTTP router
type Router struct {
	cache  cache.ResponseCache
	events *eventbridge.Publisher
	logger *zap.Logger
}

// NewRouter creates a new router instance
func NewRouter(responseCache cache.ResponseCache, events *eventbridge.Publisher, logger *zap.Logger) *Router {
	return &Router{
		cache:  responseCache,
		events: events,
		logger: logger,
	}
}

// Setup configures all routes and middleware
func (rt *Router) Setup() http.Handler {
	router := chi.NewRouter()

	// Global middleware
	router.Use(middleware.RequestID())
	router.Use(chimiddleware.RealIP)
	router.Use(chimiddleware.Recoverer)
	router.Use(middleware.Logger(rt.logger))

	router.Use(cors.Handler(cors.Options{
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
		ExposedHeaders: []string{"X-Request-ID"},
		MaxAge:         300,
	}))

	// Health check and metrics
	router.Get("/health", rt.healthCheck)
	router.Method(http.MethodGet, "/metrics", promhttp.Handler())

	// API v1 routes
	router.Route("/api/v1/cache", func(r chi.Router) {
		cacheHandler := handlers.NewCacheHandler(rt.cache, rt.events, rt.logger)
		r.Post("/invalidate", cacheHandler.Invalidate)
		r.Post("/sweep", cacheHandler.Sweep)
		r.Get("/entries/{key}", cacheHandler.GetEntry)
	})

	return router
}

// healthCheck handles health check requests
func (rt *Router) healthCheck(w http.ResponseWriter, req *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"healthy"}`))
}
