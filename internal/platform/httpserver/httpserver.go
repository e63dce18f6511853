package httpserver

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"projecthub/internal/platform/config"
)

const (
	readHeaderTimeout = 5 * time.Second
	idleTimeout       = time.Minute
	defaultDrain      = 10 * time.Second
)

// Server is an http.Server bound to a drain window.
type Server struct {
	http   *http.Server
	logger *slog.Logger
	drain  time.Duration
}

func New(cfg config.Server, handler http.Handler, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		http: &http.Server{
			Addr:              cfg.Addr,
			Handler:           handler,
			ReadHeaderTimeout: readHeaderTimeout,
			ReadTimeout:       cfg.ReadTimeout,
			WriteTimeout:      cfg.WriteTimeout,
			IdleTimeout:       idleTimeout,
		},
		logger: logger,
		drain:  defaultDrain,
	}
}

// WithDrain overrides how long in-flight requests get after ctx is done.
func (s *Server) WithDrain(d time.Duration) *Server {
	if d > 0 {
		s.drain = d
	}
	return s
}

// Run listens on the configured address until ctx is cancelled, then shuts
// down gracefully. A clean shutdown returns nil.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.http.Addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", s.http.Addr, err)
	}
	return s.serve(ctx, ln)
}

func (s *Server) serve(ctx context.Context, ln net.Listener) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("http server listening", "addr", ln.Addr().String())
		errCh <- s.http.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.drain)
	defer cancel()
	s.logger.Info("shutting down http server", "drain", s.drain)
	if err := s.http.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown: %w", err)
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("http server: %w", err)
	}
	return nil
}
