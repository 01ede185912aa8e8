// Package server provides the HTTP API: depth-bounded listings under
// /v1, health probes, and version info.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	apperrors "github.com/JackKelly/list-with-depth/internal/errors"
	"github.com/JackKelly/list-with-depth/internal/observability"
	"github.com/JackKelly/list-with-depth/internal/server/handlers"
	"github.com/JackKelly/list-with-depth/internal/server/middleware"
	"github.com/JackKelly/list-with-depth/pkg/store"
)

// Server is the HTTP API server.
type Server struct {
	host     string
	port     int
	lister   store.LevelLister
	parallel int

	readTimeout     time.Duration
	writeTimeout    time.Duration
	idleTimeout     time.Duration
	shutdownTimeout time.Duration
}

// Option configures optional server behavior.
type Option func(*Server)

// WithLister attaches the store backing /v1/list. Parallel bounds
// per-level concurrency for each request.
func WithLister(lister store.LevelLister, parallel int) Option {
	return func(s *Server) {
		s.lister = lister
		s.parallel = parallel
	}
}

// WithTimeouts overrides the HTTP server timeouts.
func WithTimeouts(read, write, idle, shutdown time.Duration) Option {
	return func(s *Server) {
		s.readTimeout = read
		s.writeTimeout = write
		s.idleTimeout = idle
		s.shutdownTimeout = shutdown
	}
}

// New creates a server bound to the given host and port.
func New(host string, port int, opts ...Option) *Server {
	s := &Server{
		host:            host,
		port:            port,
		readTimeout:     30 * time.Second,
		writeTimeout:    30 * time.Second,
		idleTimeout:     120 * time.Second,
		shutdownTimeout: 10 * time.Second,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Port returns the configured port.
func (s *Server) Port() int {
	return s.port
}

// Handler builds the router with the full middleware chain.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Recovery)

	r.NotFound(func(w http.ResponseWriter, req *http.Request) {
		apperrors.WriteJSONError(w, http.StatusNotFound,
			apperrors.CodeNotFound,
			fmt.Sprintf("no route for %s", req.URL.Path),
			middleware.GetRequestID(req.Context()), nil)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, req *http.Request) {
		apperrors.WriteJSONError(w, http.StatusMethodNotAllowed,
			apperrors.CodeMethodNotAllowed,
			fmt.Sprintf("method %s not allowed for %s", req.Method, req.URL.Path),
			middleware.GetRequestID(req.Context()), nil)
	})

	r.Get("/health", handlers.HealthHandler)
	r.Get("/health/live", handlers.LivenessHandler)
	r.Get("/health/ready", handlers.ReadinessHandler)
	r.Get("/health/startup", handlers.StartupHandler)
	r.Get("/version", handlers.VersionHandler)

	r.Route("/v1", func(r chi.Router) {
		r.Method(http.MethodGet, "/list", handlers.NewListHandler(s.lister, s.parallel))
	})

	return r
}

// Serve runs the HTTP server until the context is cancelled, then
// shuts down gracefully within the shutdown timeout.
func (s *Server) Serve(ctx context.Context) error {
	addr := net.JoinHostPort(s.host, fmt.Sprintf("%d", s.port))

	httpServer := &http.Server{
		Addr:         addr,
		Handler:      s.Handler(),
		ReadTimeout:  s.readTimeout,
		WriteTimeout: s.writeTimeout,
		IdleTimeout:  s.idleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		observability.Logger.Info("server listening", zap.String("addr", addr))
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
	defer cancel()

	observability.Logger.Info("server shutting down")
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
