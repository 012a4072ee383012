// Package server provides the HTTP server and routing for the adaptive UI
// service.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"

	"github.com/adaptivebank/genui/internal/behavior"
	"github.com/adaptivebank/genui/internal/composer"
	"github.com/adaptivebank/genui/internal/database"
	"github.com/adaptivebank/genui/internal/events"
	"github.com/adaptivebank/genui/internal/profile"
)

// Config holds server configuration
type Config struct {
	Log         zerolog.Logger
	Port        int
	DevMode     bool
	BehaviorDB  *database.DB
	ProfileDB   *database.DB
	EventRepo   *behavior.Repository
	ProfileRepo *profile.Repository
	Composer    *composer.Service
	EventBus    *events.Bus
}

// Server represents the HTTP server
type Server struct {
	router   *chi.Mux
	server   *http.Server
	log      zerolog.Logger
	handlers *Handlers
	stream   *StreamHandler
	system   *SystemHandlers
}

// New creates a new HTTP server
func New(cfg Config) *Server {
	s := &Server{
		router: chi.NewRouter(),
		log:    cfg.Log.With().Str("component", "server").Logger(),
		handlers: NewHandlers(HandlersConfig{
			Log:         cfg.Log,
			EventRepo:   cfg.EventRepo,
			ProfileRepo: cfg.ProfileRepo,
			Composer:    cfg.Composer,
			EventBus:    cfg.EventBus,
		}),
		stream: NewStreamHandler(cfg.EventBus, cfg.Log),
		system: NewSystemHandlers(cfg.Log, cfg.BehaviorDB, cfg.ProfileDB),
	}

	s.setupMiddleware(cfg.DevMode)
	s.setupRoutes()

	s.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s
}

// setupMiddleware configures middleware
func (s *Server) setupMiddleware(devMode bool) {
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(s.loggingMiddleware)

	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "Accept-Language"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	if !devMode {
		s.router.Use(middleware.Compress(5))
	}
}

// setupRoutes configures all routes
func (s *Server) setupRoutes() {
	s.router.Get("/health", s.handlers.HandleHealth)

	s.router.Route("/api", func(r chi.Router) {
		// SSE stream mounted first, outside the request timeout.
		r.Get("/events/stream", s.stream.ServeHTTP)

		r.Group(func(r chi.Router) {
			r.Use(middleware.Timeout(60 * time.Second))

			r.Route("/events", func(r chi.Router) {
				r.Post("/", s.handlers.HandleTrackEvent)
				r.Get("/", s.handlers.HandleListEvents)
				r.Delete("/", s.handlers.HandleClearEvents)
			})

			r.Get("/traits", s.handlers.HandleGetTraits)
			r.Get("/layout", s.handlers.HandleGetLayout)

			r.Route("/preferences", func(r chi.Router) {
				r.Get("/", s.handlers.HandleGetPreferences)
				r.Put("/", s.handlers.HandleUpdatePreferences)
			})

			r.Route("/consent", func(r chi.Router) {
				r.Get("/", s.handlers.HandleGetConsent)
				r.Put("/", s.handlers.HandleUpdateConsent)
			})

			r.Post("/reset", s.handlers.HandleReset)

			r.Route("/system", func(r chi.Router) {
				r.Get("/health", s.system.HandleSystemHealth)
				r.Get("/database/stats", s.system.HandleDatabaseStats)
			})

			r.Get("/debug/stats", s.handlers.HandleDebugStats)
		})
	})
}

// Start starts the HTTP server
func (s *Server) Start() error {
	s.log.Info().Str("addr", s.server.Addr).Msg("Starting HTTP server")
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info().Msg("Shutting down HTTP server")
	return s.server.Shutdown(ctx)
}

// loggingMiddleware logs HTTP requests
func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		s.log.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Int("bytes", ww.BytesWritten()).
			Dur("duration_ms", time.Since(start)).
			Str("request_id", middleware.GetReqID(r.Context())).
			Msg("HTTP request")
	})
}
