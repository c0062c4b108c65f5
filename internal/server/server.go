// Package server exposes the session core and local history to the
// presentation layer as one HTTP command surface, with an SSE stream
// bridging the event bus.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/nixdorfer/dialogue/internal/event"
	"github.com/nixdorfer/dialogue/internal/gateway"
	"github.com/nixdorfer/dialogue/internal/history"
	"github.com/nixdorfer/dialogue/internal/logging"
	"github.com/nixdorfer/dialogue/internal/update"
	"github.com/nixdorfer/dialogue/internal/usage"
	"github.com/nixdorfer/dialogue/pkg/types"
)

// Config holds server configuration.
type Config struct {
	Hostname     string
	Port         int
	EnableCORS   bool
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	// Version is the client version reported to callers and the gateway.
	Version string
	// NoticePath points at the optional operator notice file.
	NoticePath string
}

// DefaultConfig returns default server configuration.
func DefaultConfig() *Config {
	return &Config{
		Hostname:     "127.0.0.1",
		Port:         7365,
		EnableCORS:   true,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 0, // No write timeout for SSE
	}
}

// Server is the facade HTTP server.
type Server struct {
	config  *Config
	router  *chi.Mux
	httpSrv *http.Server

	session *gateway.Session
	store   *history.Store
	bus     *event.Bus
	usage   *usage.Client
	update  *update.Client
}

// New creates a Server wired to the session core, history store and bus.
func New(cfg *Config, appConfig *types.Config, session *gateway.Session, store *history.Store, bus *event.Bus) *Server {
	s := &Server{
		config:  cfg,
		router:  chi.NewRouter(),
		session: session,
		store:   store,
		bus:     bus,
		usage:   usage.NewClient(appConfig),
		update:  update.NewClient(appConfig.UpdateManifestURL),
	}

	s.setupMiddleware()
	s.setupRoutes()

	return s
}

func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.Recoverer)
	s.router.Use(requestLogger)

	if s.config.EnableCORS {
		s.router.Use(cors.Handler(cors.Options{
			AllowedOrigins: []string{"*"},
			AllowedMethods: []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
			AllowedHeaders: []string{"*"},
		}))
	}
}

// requestLogger logs one debug line per request.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		logging.Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Dur("elapsed", time.Since(start)).
			Msg("request")
	})
}

// Handler returns the root handler, used directly by tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start runs the server until Shutdown or a listener error.
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Hostname, s.config.Port)
	s.httpSrv = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
	}

	logging.Info().Str("addr", addr).Msg("facade server listening")
	if err := s.httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown stops the HTTP server and tears down the gateway session.
func (s *Server) Shutdown(ctx context.Context) error {
	s.session.Disconnect()
	if s.httpSrv == nil {
		return nil
	}
	return s.httpSrv.Shutdown(ctx)
}
