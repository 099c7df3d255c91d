// Package server provides the HTTP server and the request-processing
// pipeline: correlation propagation, demo-token extraction, request logging,
// and timeouts, in a fixed middleware order around the business handlers.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/ecosystem/web-bff/internal/auth"
)

const serviceName = "web-bff"

// Server wraps the chi router and HTTP server lifecycle.
type Server struct {
	Router *chi.Mux
	Port   int

	logger *slog.Logger
	http   *http.Server
}

// New builds the router with the pipeline middleware applied in order:
// correlation, logging, auth extraction, timeout, panic recovery, and the
// OpenTelemetry handler wrap. Business routes are registered by the caller.
func New(port int, logger *slog.Logger, codec auth.Codec, publicPaths []string) *Server {
	r := chi.NewRouter()

	r.Use(CorrelationMiddleware)
	r.Use(LoggingMiddleware(logger))
	r.Use(AuthMiddleware(codec, publicPaths, logger))
	r.Use(TimeoutMiddleware(30 * time.Second))
	r.Use(middleware.Recoverer)

	r.Use(func(next http.Handler) http.Handler {
		return otelhttp.NewHandler(next, serviceName)
	})

	r.Get("/health", healthHandler)
	r.Get("/ready", readyHandler)
	r.Get("/metrics", metricsHandler)

	return &Server{
		Router: r,
		Port:   port,
		logger: logger,
	}
}

// Start begins serving. It blocks until the listener fails or Shutdown is
// called, in which case it returns nil.
func (s *Server) Start() error {
	s.http = &http.Server{
		Addr:    fmt.Sprintf(":%d", s.Port),
		Handler: s.Router,
	}

	s.logger.Info("starting server", slog.Int("port", s.Port))
	if err := s.http.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown gracefully stops the server. In-flight analytics forwards are not
// waited on; abandoning them is accepted best-effort behavior.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.http == nil {
		return nil
	}
	return s.http.Shutdown(ctx)
}
