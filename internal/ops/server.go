package ops

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"
)

// Server serves the operational endpoints alongside the export run.
type Server struct {
	srv    *http.Server
	logger *slog.Logger
}

// NewServer creates a server on the given port.
func NewServer(port string, handler http.Handler) *Server {
	return &Server{
		srv: &http.Server{
			Addr:         ":" + port,
			Handler:      handler,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
		},
		logger: slog.With("component", "ops-server"),
	}
}

// Start serves in the background. A failure to bind costs the
// operational endpoints, never the export run itself.
func (s *Server) Start() {
	go func() {
		s.logger.Info("Starting ops server", "addr", s.srv.Addr)
		if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Warn("Ops server unavailable", "error", err)
		}
	}()
}

// Stop shuts the server down gracefully.
func (s *Server) Stop(timeout time.Duration) {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := s.srv.Shutdown(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		s.logger.Error("Ops server shutdown error", "error", err)
	}
}
