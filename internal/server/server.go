// Package server runs the HTTP listener and drains it on shutdown.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os/signal"
	"sync"
	"syscall"
	"time"
)

// ShutdownFunc releases a component after the listener has drained.
type ShutdownFunc func(ctx context.Context) error

// Options configures a Server.
type Options struct {
	Addr            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

// Server wraps http.Server with signal-driven graceful shutdown.
type Server struct {
	httpServer      *http.Server
	shutdownTimeout time.Duration
	logger          *slog.Logger

	mu        sync.Mutex
	closers   []namedCloser
	boundAddr string
}

type namedCloser struct {
	name string
	fn   ShutdownFunc
}

// New creates a Server for handler.
func New(handler http.Handler, opts Options, logger *slog.Logger) *Server {
	return &Server{
		httpServer: &http.Server{
			Addr:              opts.Addr,
			Handler:           handler,
			ReadTimeout:       opts.ReadTimeout,
			ReadHeaderTimeout: opts.ReadTimeout,
			WriteTimeout:      opts.WriteTimeout,
		},
		shutdownTimeout: opts.ShutdownTimeout,
		logger:          logger,
	}
}

// OnShutdown registers fn to run after the listener stops.
// Components close in reverse registration order.
func (s *Server) OnShutdown(name string, fn ShutdownFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closers = append(s.closers, namedCloser{name: name, fn: fn})
}

// Run listens on the configured address and serves until SIGINT or SIGTERM.
func (s *Server) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	ln, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", s.httpServer.Addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve accepts connections on ln until ctx is cancelled, then shuts down.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	s.mu.Lock()
	s.boundAddr = ln.Addr().String()
	s.mu.Unlock()

	serverErr := make(chan error, 1)
	go func() {
		s.logger.Info("server listening", slog.String("addr", ln.Addr().String()))
		if err := s.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case err, ok := <-serverErr:
		if ok {
			_ = s.shutdown()
			return fmt.Errorf("server error: %w", err)
		}
		return s.shutdown()
	case <-ctx.Done():
		s.logger.Info("shutdown requested")
		return s.shutdown()
	}
}

// shutdown drains in-flight requests, then closes registered components.
func (s *Server) shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
	defer cancel()

	s.httpServer.SetKeepAlivesEnabled(false)
	var errs []error
	if err := s.httpServer.Shutdown(ctx); err != nil {
		s.logger.Error("http shutdown failed", slog.String("error", err.Error()))
		errs = append(errs, err)
	}

	s.mu.Lock()
	closers := append([]namedCloser(nil), s.closers...)
	s.mu.Unlock()

	for i := len(closers) - 1; i >= 0; i-- {
		c := closers[i]
		if err := c.fn(ctx); err != nil {
			s.logger.Error("component shutdown failed",
				slog.String("name", c.name),
				slog.String("error", err.Error()),
			)
			errs = append(errs, fmt.Errorf("%s: %w", c.name, err))
			continue
		}
		s.logger.Info("component stopped", slog.String("name", c.name))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	s.logger.Info("server stopped")
	return nil
}

// Addr returns the bound address once serving, otherwise the configured one.
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.boundAddr != "" {
		return s.boundAddr
	}
	return s.httpServer.Addr
}
