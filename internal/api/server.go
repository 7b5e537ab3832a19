package api

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/madmax/chardev-core/internal/chardev"
	"github.com/madmax/chardev-core/internal/infrastructure/config"
	"github.com/madmax/chardev-core/internal/infrastructure/logging"
)

// gracefulShutdownTimeout is the maximum time to wait for in-flight
// requests to complete during shutdown.
const gracefulShutdownTimeout = 10 * time.Second

// Deps holds the dependencies required by the API server.
type Deps struct {
	Config  config.APIConfig
	Logger  *logging.Logger
	Device  *chardev.Controller
	Version string
}

// Server is the HTTP surface for the character device.
//
// It manages the HTTP listener, routes and middleware. The server is
// created with New() and started with Start().
type Server struct {
	cfg     config.APIConfig
	logger  *logging.Logger
	device  *chardev.Controller
	version string
	server  *http.Server
}

// New creates an API server from its dependencies.
func New(deps Deps) *Server {
	s := &Server{
		cfg:     deps.Config,
		logger:  deps.Logger,
		device:  deps.Device,
		version: deps.Version,
	}

	s.server = &http.Server{
		Addr:         net.JoinHostPort(deps.Config.Host, fmt.Sprintf("%d", deps.Config.Port)),
		Handler:      s.buildRouter(),
		ReadTimeout:  time.Duration(deps.Config.Timeouts.Read) * time.Second,
		WriteTimeout: time.Duration(deps.Config.Timeouts.Write) * time.Second,
		IdleTimeout:  time.Duration(deps.Config.Timeouts.Idle) * time.Second,
	}

	return s
}

// buildRouter creates the HTTP router with all routes and middleware.
func (s *Server) buildRouter() http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(s.requestIDMiddleware)
	r.Use(s.loggingMiddleware)
	r.Use(s.recoveryMiddleware)

	// API v1 routes
	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", s.handleHealth)

		r.Route("/device", func(r chi.Router) {
			r.Post("/open", s.handleOpen)
			r.Post("/close", s.handleClose)
			r.Post("/", s.handleWrite)
			r.Get("/", s.handleRead)
			r.Get("/stats", s.handleStats)
		})
	})

	return r
}

// Start begins serving HTTP requests in a background goroutine.
//
// Parameters:
//   - ctx: Context whose cancellation logs but does not stop the server;
//     call Close for shutdown
//
// Returns:
//   - error: If the listener cannot be created
func (s *Server) Start(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.server.Addr)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", s.server.Addr, err)
	}

	go func() {
		if serveErr := s.server.Serve(ln); serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) {
			s.logger.Error("http server stopped", "error", serveErr)
		}
	}()

	s.logger.Info("http server started", "addr", s.server.Addr)
	return nil
}

// Close shuts the server down gracefully, waiting up to
// gracefulShutdownTimeout for in-flight requests.
func (s *Server) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), gracefulShutdownTimeout)
	defer cancel()

	if err := s.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutting down http server: %w", err)
	}
	return nil
}

// Handler returns the server's HTTP handler, used by tests to exercise
// routes without a listener.
func (s *Server) Handler() http.Handler {
	return s.server.Handler
}
