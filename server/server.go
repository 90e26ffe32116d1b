// Package server provides HTTP server management and lifecycle handling for the
// adverse-events API: middleware, routes, the MCP endpoint and graceful shutdown.
package server

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/giygas/adverse-events-api/config"
	"github.com/giygas/adverse-events-api/interfaces"
	"github.com/giygas/adverse-events-api/logging"
	"github.com/giygas/adverse-events-api/metrics"
)

// Server represents the HTTP server
type Server struct {
	server  *http.Server
	router  chi.Router
	config  *config.Config
	handler interfaces.HTTPHandler
	mcp     http.Handler
	limiter *RateLimiter
}

// NewServer creates a new server instance. mcpHandler may be nil, in which
// case /mcp is not mounted.
func NewServer(cfg *config.Config, handler interfaces.HTTPHandler, mcpHandler http.Handler) *Server {
	router := chi.NewRouter()

	server := &Server{
		server: &http.Server{
			Handler:      router,
			Addr:         cfg.ListenAddr(),
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 30 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		router:  router,
		config:  cfg,
		handler: handler,
		mcp:     mcpHandler,
		limiter: NewRateLimiter(),
	}

	server.setupMiddleware()
	server.setupRoutes()

	return server
}

// setupMiddleware configures all middleware
func (s *Server) setupMiddleware() {
	logger := slog.Default()
	if logging.DefaultLoggingService != nil {
		logger = logging.DefaultLoggingService.Logger
	}

	s.router.Use(middleware.RequestID)
	s.router.Use(RealIPMiddleware(s.config.TrustedProxies))
	s.router.Use(logging.LoggingMiddleware(logger))
	s.router.Use(metrics.Metrics)
	s.router.Use(middleware.RedirectSlashes)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Compress(5, "application/json", "text/plain"))
	s.router.Use(RequestSizeMiddleware(s.config))
	s.router.Use(s.limiter.Middleware)
}

// setupRoutes configures all routes
func (s *Server) setupRoutes() {
	s.router.Route("/v1", func(r chi.Router) {
		r.Get("/events/{drug}", s.handler.ServeTopEvents)
		r.Get("/outcomes/serious/{drug}", s.handler.ServeSeriousOutcomes)
		r.Get("/outcomes/reactions/{drug}", s.handler.ServeReactionOutcomes)
		r.Get("/frequency/{drug}/{event}", s.handler.ServePairFrequency)
		r.Get("/trends/{drug}/{event}", s.handler.ServeTimeSeries)
		r.Get("/sources/{drug}", s.handler.ServeReportSources)
	})

	s.router.Get("/health", s.handler.HealthCheck)
	s.router.Handle("/metrics", promhttp.Handler())

	if s.mcp != nil {
		s.router.Handle("/mcp", streaming(s.mcp))
	}
}

// streaming lifts the server write timeout for long-lived SSE streams.
func streaming(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			if err := http.NewResponseController(w).SetWriteDeadline(time.Time{}); err != nil {
				logging.Debug("Could not clear write deadline", "error", err)
			}
		}
		next.ServeHTTP(w, r)
	})
}

// Handler returns the router, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start starts the server
func (s *Server) Start() error {
	logging.Info("Starting server", "address", s.server.Addr, "env", s.config.Env.String(), "mcp", s.mcp != nil)
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	logging.Info("Shutting down server...")
	defer s.limiter.Stop()

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
