// Package server provides the HTTP server and routing for the Stoxy API.
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

	"github.com/aristath/stoxy/internal/database"
	"github.com/aristath/stoxy/internal/modules"
	"github.com/aristath/stoxy/internal/modules/alerts"
	alertshandlers "github.com/aristath/stoxy/internal/modules/alerts/handlers"
	"github.com/aristath/stoxy/internal/modules/holdings"
	holdingshandlers "github.com/aristath/stoxy/internal/modules/holdings/handlers"
	markethandlers "github.com/aristath/stoxy/internal/modules/market/handlers"
	"github.com/aristath/stoxy/internal/modules/portfolio"
	portfoliohandlers "github.com/aristath/stoxy/internal/modules/portfolio/handlers"
	"github.com/aristath/stoxy/internal/modules/watchlist"
	watchlisthandlers "github.com/aristath/stoxy/internal/modules/watchlist/handlers"
)

// Config holds server configuration
type Config struct {
	Log           zerolog.Logger
	DB            *database.DB
	Port          int
	DevMode       bool
	DefaultUserID int64
	DataDir       string
}

// Server represents the HTTP server
type Server struct {
	router         *chi.Mux
	server         *http.Server
	log            zerolog.Logger
	db             *database.DB
	port           int
	defaultUserID  int64
	systemHandlers *SystemHandlers
}

// New creates a new HTTP server
func New(cfg Config) *Server {
	if cfg.DefaultUserID <= 0 {
		cfg.DefaultUserID = 1
	}

	s := &Server{
		router:         chi.NewRouter(),
		log:            cfg.Log.With().Str("component", "server").Logger(),
		db:             cfg.DB,
		port:           cfg.Port,
		defaultUserID:  cfg.DefaultUserID,
		systemHandlers: NewSystemHandlers(cfg.Log, cfg.DB, cfg.DataDir),
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

// Handler returns the router, for tests and embedding
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) setupMiddleware(devMode bool) {
	// Recovery from panics
	s.router.Use(middleware.Recoverer)

	// Request ID
	s.router.Use(middleware.RequestID)

	// Real IP
	s.router.Use(middleware.RealIP)

	// Logging
	s.router.Use(LoggingMiddleware(s.log))

	// Timeout
	s.router.Use(middleware.Timeout(60 * time.Second))

	// CORS
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", modules.UserIDHeader},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	// Compress responses
	if !devMode {
		s.router.Use(middleware.Compress(5))
	}
}

func (s *Server) setupRoutes() {
	s.router.Get("/health", s.handleHealth)

	s.router.Route("/api", func(r chi.Router) {
		r.Use(modules.UserScope(s.defaultUserID))

		portfoliohandlers.NewHandler(portfolio.NewRepository(s.db, s.log), s.log).RegisterRoutes(r)
		holdingshandlers.NewHandler(holdings.NewRepository(s.db, s.log), s.log).RegisterRoutes(r)
		watchlisthandlers.NewHandler(watchlist.NewRepository(s.db, s.log), s.log).RegisterRoutes(r)
		alertshandlers.NewHandler(alerts.NewRepository(s.db, s.log), s.log).RegisterRoutes(r)
		markethandlers.NewHandler(s.log).RegisterRoutes(r)

		r.Get("/system/status", s.systemHandlers.HandleSystemStatus)
	})
}

// handleHealth answers {status, timestamp}. A database that cannot be pinged
// turns the status into "error" with a 503.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	status, code := "ok", http.StatusOK
	if s.db != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := s.db.QuickCheck(ctx); err != nil {
			s.log.Warn().Err(err).Msg("Health check failed")
			status, code = "error", http.StatusServiceUnavailable
		}
	}
	modules.WriteJSON(w, s.log, code, map[string]string{
		"status":    status,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// Start starts the HTTP server
func (s *Server) Start() error {
	s.log.Info().Int("port", s.port).Msg("Starting HTTP server")
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info().Msg("Shutting down HTTP server")
	return s.server.Shutdown(ctx)
}

// LoggingMiddleware logs HTTP requests
func LoggingMiddleware(log zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)

			log.Info().
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Int("status", ww.Status()).
				Int("bytes", ww.BytesWritten()).
				Dur("duration_ms", time.Since(start)).
				Str("request_id", middleware.GetReqID(r.Context())).
				Msg("HTTP request")
		})
	}
}
