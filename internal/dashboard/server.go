// Package dashboard serves the client dashboard: the app state, local and
// remote search, market panels, mutations, export/import, calculators and a
// websocket stream of state events.
package dashboard

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"

	"github.com/aristath/stoxy/internal/autosave"
	"github.com/aristath/stoxy/internal/clients/stoxyapi"
	"github.com/aristath/stoxy/internal/events"
	"github.com/aristath/stoxy/internal/mutation"
	"github.com/aristath/stoxy/internal/reconciler"
	"github.com/aristath/stoxy/internal/server"
	"github.com/aristath/stoxy/internal/state"
	"github.com/aristath/stoxy/internal/transfer"
)

// MarketGateway is the read side of the API client used by the panels
type MarketGateway interface {
	Health(ctx context.Context) stoxyapi.Result[stoxyapi.HealthStatus]
	Search(ctx context.Context, query string) stoxyapi.Result[[]stoxyapi.SearchResult]
	GetMarketIndices(ctx context.Context) stoxyapi.Result[[]stoxyapi.MarketIndex]
	GetTopMovers(ctx context.Context) stoxyapi.Result[[]stoxyapi.Quote]
	GetCryptoPrices(ctx context.Context) stoxyapi.Result[[]stoxyapi.Quote]
	GetTopCryptos(ctx context.Context) stoxyapi.Result[[]stoxyapi.Quote]
	GetNews(ctx context.Context) stoxyapi.Result[[]stoxyapi.NewsRecord]
}

// Reloader re-runs the load sequence
type Reloader interface {
	Reload(ctx context.Context) reconciler.Outcome
}

// Flusher persists the app state on demand
type Flusher interface {
	Flush(reason string) error
	Stats() autosave.Stats
}

// StorageInfo reports on and clears the local store
type StorageInfo interface {
	SizeKB() (float64, error)
	LastSync() (time.Time, bool, error)
	ClearAll() error
	ClearPortfolio() error
	ClearAlerts() error
}

// Config holds dashboard server configuration
type Config struct {
	Log      zerolog.Logger
	Port     int
	DevMode  bool
	State    *state.AppState
	Gateway  MarketGateway
	Pipeline *mutation.Pipeline
	Transfer *transfer.Service
	Reloader Reloader
	Flusher  Flusher
	Storage  StorageInfo
	Bus      *events.Bus
}

// Server is the dashboard HTTP server
type Server struct {
	router   *chi.Mux
	server   *http.Server
	log      zerolog.Logger
	port     int
	state    *state.AppState
	gateway  MarketGateway
	pipeline *mutation.Pipeline
	transfer *transfer.Service
	reloader Reloader
	flusher  Flusher
	storage  StorageInfo
	stream   *EventsStreamHandler
}

// New creates the dashboard server
func New(cfg Config) *Server {
	s := &Server{
		router:   chi.NewRouter(),
		log:      cfg.Log.With().Str("component", "dashboard").Logger(),
		port:     cfg.Port,
		state:    cfg.State,
		gateway:  cfg.Gateway,
		pipeline: cfg.Pipeline,
		transfer: cfg.Transfer,
		reloader: cfg.Reloader,
		flusher:  cfg.Flusher,
		storage:  cfg.Storage,
	}
	if cfg.Bus != nil {
		origins := []string{fmt.Sprintf("localhost:%d", cfg.Port)}
		if cfg.DevMode {
			origins = []string{"*"}
		}
		s.stream = NewEventsStreamHandler(cfg.Bus, origins, cfg.Log)
	}

	s.setupMiddleware()
	s.setupRoutes()

	s.server = &http.Server{
		Addr:        fmt.Sprintf(":%d", cfg.Port),
		Handler:     s.router,
		ReadTimeout: 15 * time.Second,
		IdleTimeout: 60 * time.Second,
	}
	return s
}

// Handler returns the router
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) setupMiddleware() {
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.RequestID)
	s.router.Use(server.LoggingMiddleware(s.log))
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))
}

func (s *Server) setupRoutes() {
	if s.stream != nil {
		s.router.Get("/ws/events", s.stream.ServeHTTP)
	}

	s.router.Route("/api", func(r chi.Router) {
		// Timeouts would cut the websocket, so they only apply here
		r.Use(middleware.Timeout(60 * time.Second))

		r.Get("/state", s.handleState)
		r.Get("/notifications", s.handleNotifications)
		r.Get("/status", s.handleStatus)
		r.Post("/reload", s.handleReload)
		r.Post("/flush", s.handleFlush)
		r.Delete("/storage", s.handleClearStorage)

		r.Get("/search", s.handleSearch)
		r.Get("/market", s.handleMarket)

		r.Get("/export", s.handleExport)
		r.Post("/import", s.handleImport)

		s.registerMutationRoutes(r)
		s.registerCalculatorRoutes(r)
	})
}

// Start starts the HTTP server
func (s *Server) Start() error {
	s.log.Info().Int("port", s.port).Msg("Starting dashboard server")
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info().Msg("Shutting down dashboard server")
	return s.server.Shutdown(ctx)
}
