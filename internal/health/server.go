// Package health provides the liveness and readiness endpoints.
package health

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/matchday-consensus/internal/reasoning"
)

// DatabasePinger defines the interface for checking database connectivity.
type DatabasePinger interface {
	Ping(ctx context.Context) error
}

// BreakerState reports the reasoning circuit breaker state.
type BreakerState interface {
	GetState() reasoning.CircuitState
}

// HealthResponse represents the JSON response for health check endpoints.
type HealthResponse struct {
	Status    string `json:"status"`
	Service   string `json:"service"`
	Timestamp string `json:"timestamp,omitempty"`
	Version   string `json:"version,omitempty"`
	Commit    string `json:"commit,omitempty"`
}

// ReadyResponse represents the JSON response for readiness check endpoints.
type ReadyResponse struct {
	Status   string            `json:"status"`
	Service  string            `json:"service"`
	Checks   map[string]string `json:"checks,omitempty"`
	Duration string            `json:"duration,omitempty"`
}

// Server serves the health endpoints on the API router.
type Server struct {
	serviceName string
	version     string
	commit      string
	logger      *logrus.Logger
	db          DatabasePinger
	breaker     BreakerState
	mu          sync.RWMutex
	ready       bool
}

// Config holds the configuration for the health endpoints. DB and Breaker
// are optional.
type Config struct {
	ServiceName string
	Version     string
	Commit      string
	Logger      *logrus.Logger
	DB          DatabasePinger
	Breaker     BreakerState
}

// NewServer creates a new health server. It starts not ready.
func NewServer(cfg Config) *Server {
	return &Server{
		serviceName: cfg.ServiceName,
		version:     cfg.Version,
		commit:      cfg.Commit,
		logger:      cfg.Logger,
		db:          cfg.DB,
		breaker:     cfg.Breaker,
	}
}

// SetReady marks the server as ready to accept traffic.
func (s *Server) SetReady(ready bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ready = ready
}

// IsReady returns whether the server is ready.
func (s *Server) IsReady() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ready
}

// Health handles /health, a basic liveness check with build info.
func (s *Server) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{
		Status:    "ok",
		Service:   s.serviceName,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Version:   s.version,
		Commit:    s.commit,
	})
}

// Live handles /live, the kubernetes liveness probe.
func (s *Server) Live(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{Status: "ok", Service: s.serviceName})
}

// Ready handles /ready. An open reasoning circuit degrades the service but
// analyses still complete, so it does not fail readiness.
func (s *Server) Ready(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	checks := make(map[string]string)
	allHealthy := true
	degraded := false

	if !s.IsReady() {
		allHealthy = false
		checks["service"] = "not_ready"
	} else {
		checks["service"] = "ok"
	}

	if s.db != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
		defer cancel()

		if err := s.db.Ping(ctx); err != nil {
			allHealthy = false
			checks["database"] = fmt.Sprintf("error: %v", err)
			if s.logger != nil {
				s.logger.WithError(err).Warn("Readiness database check failed")
			}
		} else {
			checks["database"] = "ok"
		}
	}

	if s.breaker != nil {
		state := s.breaker.GetState()
		if state == reasoning.CircuitOpen {
			degraded = true
			checks["reasoning"] = "circuit_open"
		} else {
			checks["reasoning"] = "ok"
		}
	}

	response := ReadyResponse{
		Service:  s.serviceName,
		Checks:   checks,
		Duration: time.Since(start).String(),
	}

	switch {
	case !allHealthy:
		response.Status = "not_ready"
		writeJSON(w, http.StatusServiceUnavailable, response)
	case degraded:
		response.Status = "degraded"
		writeJSON(w, http.StatusOK, response)
	default:
		response.Status = "ok"
		writeJSON(w, http.StatusOK, response)
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
