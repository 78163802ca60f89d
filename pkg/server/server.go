package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"queue-manager-api/internal/config"
	"queue-manager-api/pkg/lambda"
)

const shutdownTimeout = 30 * time.Second

// LocalServer serves the application over plain HTTP through the same handler
// cache and entry chain the Lambda function uses.
type LocalServer struct {
	config  *config.Config
	logger  *logrus.Logger
	cache   *lambda.HandlerCache
	handler http.Handler
}

// NewLocalServer creates a local server around a fresh handler cache
func NewLocalServer(cfg *config.Config, logger *logrus.Logger) *LocalServer {
	bootstrapper := NewBootstrapper(cfg, logger)
	cache := bootstrapper.NewCache()

	return &LocalServer{
		config:  cfg,
		logger:  logger,
		cache:   cache,
		handler: bootstrapper.Entry(cache.Dispatch),
	}
}

// Handler returns the entry chain
func (s *LocalServer) Handler() http.Handler {
	return s.handler
}

// Cache returns the handler cache backing the server
func (s *LocalServer) Cache() *lambda.HandlerCache {
	return s.cache
}

// Run listens on the configured port until ctx is done
func (s *LocalServer) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", ":"+s.config.Port)
	if err != nil {
		return fmt.Errorf("failed to listen on port %s: %w", s.config.Port, err)
	}
	return s.Serve(ctx, ln)
}

// Serve accepts connections on ln until ctx is done, then shuts down gracefully
// and releases the cached application.
func (s *LocalServer) Serve(ctx context.Context, ln net.Listener) error {
	// a failed warm-up is retried by the first request
	if _, err := s.cache.GetOrCreate(ctx); err != nil {
		s.logger.WithError(err).Warn("Application warm-up failed")
	}

	srv := &http.Server{
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	baseURL := "http://" + displayAddr(ln.Addr())
	s.logger.WithFields(logrus.Fields{
		"url":  baseURL,
		"docs": baseURL + "/api/docs/index.html",
	}).Info("Server started")

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		s.cache.Close()
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	s.logger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	shutdownErr := srv.Shutdown(shutdownCtx)
	if err := s.cache.Close(); err != nil {
		s.logger.WithError(err).Error("Failed to release application")
	}
	if shutdownErr != nil {
		return fmt.Errorf("server forced to shutdown: %w", shutdownErr)
	}

	s.logger.Info("Server exited")
	return nil
}

// displayAddr replaces an unspecified listen host with localhost
func displayAddr(addr net.Addr) string {
	host, port, err := net.SplitHostPort(addr.String())
	if err != nil {
		return addr.String()
	}
	if ip := net.ParseIP(host); host == "" || (ip != nil && ip.IsUnspecified()) {
		host = "localhost"
	}
	return net.JoinHostPort(host, port)
}
