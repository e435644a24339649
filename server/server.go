// Package server provides HTTP server management and lifecycle handling.
// It wires the middleware chain, registers the informational routes and
// handles graceful shutdown.
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/ergon73/test-github-actions/config"
	"github.com/ergon73/test-github-actions/handlers"
	"github.com/ergon73/test-github-actions/interfaces"
	"github.com/ergon73/test-github-actions/logging"
	"github.com/ergon73/test-github-actions/metrics"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// route binds a path to a handler and to the name it is counted under
type route struct {
	name    string
	pattern string
	handler http.HandlerFunc
}

// Server represents the HTTP server
type Server struct {
	server    *http.Server
	router    chi.Router
	handler   interfaces.HTTPHandler
	collector *metrics.Collector
	config    *config.Config
}

// NewServer creates a new server instance
func NewServer(cfg *config.Config, collector *metrics.Collector, uptimer interfaces.SystemUptimer) *Server {
	router := chi.NewRouter()

	s := &Server{
		server: &http.Server{
			Handler:      router,
			Addr:         cfg.ListenAddr(),
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		router:    router,
		collector: collector,
		config:    cfg,
	}

	s.handler = handlers.NewHTTPHandler(cfg, collector, uptimer, routePatterns(s.routes(nil)))

	s.setupMiddleware()
	s.setupRoutes()

	return s
}

// routes is the single route table; h may be nil when only patterns are needed
func (s *Server) routes(h interfaces.HTTPHandler) []route {
	table := []route{
		{name: "root", pattern: "/"},
		{name: "health", pattern: "/health"},
		{name: "time", pattern: "/time"},
		{name: "info", pattern: "/info"},
		{name: "uptime", pattern: "/uptime"},
		{name: "metrics", pattern: "/metrics"},
		{name: "prometheus", pattern: "/metrics/prometheus"},
	}
	if h == nil {
		return table
	}

	handlerFuncs := map[string]http.HandlerFunc{
		"root":       h.Root,
		"health":     h.HealthCheck,
		"time":       h.ServerTime,
		"info":       h.SystemInfo,
		"uptime":     h.Uptime,
		"metrics":    h.Metrics,
		"prometheus": s.collector.Handler().ServeHTTP,
	}
	for i := range table {
		table[i].handler = handlerFuncs[table[i].name]
	}
	return table
}

func routePatterns(table []route) []string {
	patterns := make([]string, len(table))
	for i, r := range table {
		patterns[i] = r.pattern
	}
	return patterns
}

// setupMiddleware configures all middleware. Recoverer sits outside the
// collector so a panicking handler is still counted before the 500 is written.
func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(RealIPMiddleware)
	s.router.Use(logging.LoggingMiddleware(slogger()))
	s.router.Use(middleware.RedirectSlashes)
	s.router.Use(middleware.Recoverer)
	s.router.Use(s.collector.Middleware)
}

// setupRoutes configures all routes
func (s *Server) setupRoutes() {
	for _, r := range s.routes(s.handler) {
		s.router.With(metrics.Route(r.name)).Get(r.pattern, r.handler)
	}
}

// Handler returns the root handler, mainly for tests
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start binds the listen address and serves until Shutdown.
// It returns http.ErrServerClosed after a graceful shutdown.
func (s *Server) Start() error {
	logging.Info("Starting server", "addr", s.server.Addr, "environment", s.config.Environment, "commit_sha", s.config.CommitSHA)
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	logging.Info("Shutting down server...")

	if err := s.server.Shutdown(ctx); err != nil {
		logging.Error("Server forced to shutdown", "error", err)
		if err := s.server.Close(); err != nil {
			logging.Error("Server close error", "error", err)
			return err
		}
	}

	logging.Info("Server shutdown complete")
	return nil
}
