package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"
)

// Server runs the HTTP API until its context is cancelled
type Server struct {
	http            *http.Server
	shutdownTimeout time.Duration
	logger          *logrus.Logger
}

// NewServer creates an API server on the configured port
func NewServer(d Deps) *Server {
	shutdown := time.Duration(d.Server.ShutdownTimeoutSecs) * time.Second
	if shutdown <= 0 {
		shutdown = 15 * time.Second
	}
	return &Server{
		http: &http.Server{
			Addr:              fmt.Sprintf(":%d", d.Server.Port),
			Handler:           NewRouter(d),
			ReadHeaderTimeout: 10 * time.Second,
			IdleTimeout:       120 * time.Second,
		},
		shutdownTimeout: shutdown,
		logger:          d.Logger,
	}
}

// Run serves until ctx is done, then shuts down gracefully
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.WithField("addr", s.http.Addr).Info("API server starting")
		if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if !ok {
			return nil
		}
		return fmt.Errorf("api server failed: %w", err)
	case <-ctx.Done():
	}

	s.logger.Info("API server shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
	defer cancel()

	if err := s.http.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("api server shutdown: %w", err)
	}
	return nil
}
