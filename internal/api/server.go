// Package api provides the HTTP API server and handlers for the PromptKeep backend.
package api

import (
	"log/slog"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/promptkeepapp/promptkeep-server/internal/config"
	"github.com/promptkeepapp/promptkeep-server/internal/sse"
	"github.com/promptkeepapp/promptkeep-server/internal/store"
)

// Server holds dependencies for HTTP handlers.
type Server struct {
	store        *store.Store
	services     *Services
	sseHandler   *sse.Handler
	sseManager   *sse.Manager
	router       *chi.Mux
	api          huma.API
	writeLimiter *RateLimiter
	logger       *slog.Logger
}

// NewServer creates a new HTTP server with all routes configured.
func NewServer(cfg *config.Config, st *store.Store, services *Services, sseHandler *sse.Handler, sseManager *sse.Manager, logger *slog.Logger) *Server {
	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Recoverer)
	router.Use(middleware.Compress(5))

	// The GUI runs in a webview on this machine; only its origins are
	// allowed and credentials are never involved.
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.Server.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "Last-Event-ID"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	writeLimiter := NewRateLimiter(WriteRatePerMinute, WriteBurst)
	router.Use(WriteRateLimitMiddleware(writeLimiter, logger))

	humaConfig := huma.DefaultConfig("PromptKeep API", ServerVersion)
	humaConfig.Transformers = append(humaConfig.Transformers, EnvelopeTransformer)

	api := humachi.New(router, humaConfig)
	RegisterErrorHandler()

	s := &Server{
		store:        st,
		services:     services,
		sseHandler:   sseHandler,
		sseManager:   sseManager,
		router:       router,
		api:          api,
		writeLimiter: writeLimiter,
		logger:       logger,
	}

	s.registerHealthRoutes()
	s.registerStatsRoutes()
	s.registerPromptRoutes()
	s.registerTagRoutes()
	s.registerVersionRoutes()
	s.registerCategoryRoutes()
	s.registerSearchRoutes()
	s.registerProviderRoutes()
	s.registerRunRoutes()
	s.registerPasteRoutes()

	// SSE is a long-lived raw stream, so it bypasses huma and its
	// envelope and goes straight to the chi router.
	if sseHandler != nil {
		router.Get("/api/v1/events/stream", sseHandler.ServeHTTP)
	}

	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// API exposes the underlying huma API, mainly for humatest.
func (s *Server) API() huma.API {
	return s.api
}
