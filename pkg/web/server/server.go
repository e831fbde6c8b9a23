// Package server runs an HTTP handler with production timeouts and a
// graceful shutdown sequence.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Config holds server configuration
type Config struct {
	// Address is the server listen address (e.g., ":8080")
	Address string

	// Timeouts
	ReadTimeout       time.Duration
	WriteTimeout      time.Duration
	IdleTimeout       time.Duration
	ReadHeaderTimeout time.Duration

	// ShutdownTimeout bounds the drain of in-flight requests and the hooks.
	ShutdownTimeout time.Duration

	// Connection limits
	MaxHeaderBytes int
}

// DefaultConfig returns a production-ready server configuration
func DefaultConfig() Config {
	return Config{
		Address:           ":8080",
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
		ReadHeaderTimeout: 10 * time.Second,
		ShutdownTimeout:   30 * time.Second,
		MaxHeaderBytes:    1 << 20, // 1 MB
	}
}

// ShutdownHook is a function called during graceful shutdown
type ShutdownHook func(ctx context.Context) error

// Server serves one handler until its context is cancelled.
type Server struct {
	httpServer *http.Server
	config     Config
	logger     *zap.Logger

	mu       sync.Mutex
	listener net.Listener
	hooks    []ShutdownHook
}

// New creates a server for handler. A nil logger discards output.
func New(config Config, handler http.Handler, logger *zap.Logger) (*Server, error) {
	if handler == nil {
		return nil, errors.New("handler cannot be nil")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if config.ShutdownTimeout <= 0 {
		config.ShutdownTimeout = DefaultConfig().ShutdownTimeout
	}

	return &Server{
		httpServer: &http.Server{
			Addr:              config.Address,
			Handler:           handler,
			ReadTimeout:       config.ReadTimeout,
			WriteTimeout:      config.WriteTimeout,
			IdleTimeout:       config.IdleTimeout,
			ReadHeaderTimeout: config.ReadHeaderTimeout,
			MaxHeaderBytes:    config.MaxHeaderBytes,
			ErrorLog:          zap.NewStdLog(logger),
		},
		config: config,
		logger: logger,
	}, nil
}

// RegisterHook registers a shutdown hook, run after the HTTP server has
// drained. Hooks run in registration order.
func (s *Server) RegisterHook(hook ShutdownHook) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.hooks = append(s.hooks, hook)
}

// Listen binds the configured address.
func (s *Server) Listen() error {
	listener, err := net.Listen("tcp", s.config.Address)
	if err != nil {
		return fmt.Errorf("failed to create listener: %w", err)
	}
	s.mu.Lock()
	s.listener = listener
	s.mu.Unlock()
	return nil
}

// Addr returns the server's network address
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return s.config.Address
}

// Run listens, when Listen was not called yet, and serves until ctx is
// done. It then shuts down gracefully and returns the first shutdown error.
func (s *Server) Run(ctx context.Context) error {
	s.mu.Lock()
	bound := s.listener != nil
	s.mu.Unlock()
	if !bound {
		if err := s.Listen(); err != nil {
			return err
		}
	}

	errChan := make(chan error, 1)
	go func() {
		s.logger.Info("server started", zap.String("addr", s.Addr()))
		if err := s.httpServer.Serve(s.listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- fmt.Errorf("server failed: %w", err)
		}
		close(errChan)
	}()

	select {
	case err := <-errChan:
		return err
	case <-ctx.Done():
	}
	return s.shutdown()
}

func (s *Server) shutdown() error {
	s.logger.Info("shutting down", zap.Duration("timeout", s.config.ShutdownTimeout))
	ctx, cancel := context.WithTimeout(context.Background(), s.config.ShutdownTimeout)
	defer cancel()

	var firstErr error
	if err := s.httpServer.Shutdown(ctx); err != nil {
		firstErr = fmt.Errorf("server shutdown error: %w", err)
		s.logger.Error("server shutdown failed", zap.Error(err))
	}

	s.mu.Lock()
	hooks := append([]ShutdownHook(nil), s.hooks...)
	s.mu.Unlock()
	for i, hook := range hooks {
		if err := hook(ctx); err != nil {
			s.logger.Error("shutdown hook failed", zap.Int("hook", i), zap.Error(err))
			if firstErr == nil {
				firstErr = err
			}
		}
	}

	s.logger.Info("server stopped")
	return firstErr
}
