package reasoning

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/matchday-consensus/internal/logger"
	"github.com/yourusername/matchday-consensus/internal/metrics"
)

// CircuitState represents the state of the circuit breaker
type CircuitState int

const (
	// CircuitClosed means calls flow normally
	CircuitClosed CircuitState = iota
	// CircuitHalfOpen means the cooldown passed and the next call is a probe
	CircuitHalfOpen
	// CircuitOpen means calls fail fast
	CircuitOpen
)

// String returns string representation of circuit state
func (s CircuitState) String() string {
	switch s {
	case CircuitClosed:
		return "CLOSED"
	case CircuitHalfOpen:
		return "HALF_OPEN"
	case CircuitOpen:
		return "OPEN"
	default:
		return "UNKNOWN"
	}
}

// CircuitBreakerConfig defines circuit breaker thresholds
type CircuitBreakerConfig struct {
	MaxFailures    int           `json:"max_failures"`
	CooldownPeriod time.Duration `json:"cooldown_period"`
}

// CircuitBreaker stops calling the reasoning provider after consecutive
// failures and lets a single probe through once the cooldown has passed.
type CircuitBreaker struct {
	config       CircuitBreakerConfig
	state        CircuitState
	failureCount int
	lastError    error
	openedAt     time.Time
	mu           sync.Mutex
	logger       *logrus.Logger
	audit        *logger.AuditLogger
	now          func() time.Time
}

// NewCircuitBreaker creates a new closed circuit breaker
func NewCircuitBreaker(config CircuitBreakerConfig, log *logrus.Logger) *CircuitBreaker {
	if config.MaxFailures <= 0 {
		config.MaxFailures = 1
	}
	return &CircuitBreaker{
		config: config,
		state:  CircuitClosed,
		logger: log,
		audit:  logger.NewAuditLogger(log),
		now:    time.Now,
	}
}

// Allow returns ErrCircuitOpen while the breaker is open. After the cooldown
// the breaker moves to half-open and admits the call.
func (cb *CircuitBreaker) Allow() error {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	if cb.state == CircuitOpen {
		if cb.now().Sub(cb.openedAt) < cb.config.CooldownPeriod {
			return fmt.Errorf("%w: %v", ErrCircuitOpen, cb.lastError)
		}
		cb.state = CircuitHalfOpen
		cb.logger.Info("Circuit breaker entering half-open state after cooldown")
	}
	return nil
}

// RecordSuccess closes the breaker and resets the failure count
func (cb *CircuitBreaker) RecordSuccess() {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	if cb.state != CircuitClosed {
		cb.logger.WithField("old_state", cb.state.String()).Info("Circuit breaker closed")
	}
	cb.state = CircuitClosed
	cb.failureCount = 0
	cb.lastError = nil
}

// RecordFailure counts a failure and opens the breaker at the threshold. A
// failed half-open probe reopens it immediately.
func (cb *CircuitBreaker) RecordFailure(err error) {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	cb.failureCount++
	cb.lastError = err

	cb.logger.WithFields(logrus.Fields{
		"failure_count": cb.failureCount,
		"max_allowed":   cb.config.MaxFailures,
		"error":         err.Error(),
	}).Warn("Reasoning failure recorded")

	if cb.state == CircuitHalfOpen || cb.failureCount >= cb.config.MaxFailures {
		cb.openLocked(err.Error())
	}
}

func (cb *CircuitBreaker) openLocked(reason string) {
	if cb.state == CircuitOpen {
		return
	}

	oldState := cb.state
	cb.state = CircuitOpen
	cb.openedAt = cb.now()

	metrics.RecordCircuitBreakerTrip()
	cb.audit.LogCircuitBreakerEvent("opened", reason, cb.failureCount)
	cb.logger.WithFields(logrus.Fields{
		"old_state":       oldState.String(),
		"new_state":       cb.state.String(),
		"cooldown_period": cb.config.CooldownPeriod,
	}).Error("Reasoning circuit breaker opened")
}

// GetState returns current circuit state
func (cb *CircuitBreaker) GetState() CircuitState {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	return cb.state
}

// Reset manually resets circuit breaker to closed state
func (cb *CircuitBreaker) Reset() {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	oldState := cb.state
	cb.state = CircuitClosed
	cb.failureCount = 0

	cb.logger.WithFields(logrus.Fields{
		"old_state": oldState.String(),
		"new_state": cb.state.String(),
	}).Info("Circuit breaker manually reset")
}

// BreakerClient guards a Client with a circuit breaker
type BreakerClient struct {
	next    Client
	breaker *CircuitBreaker
}

// NewBreakerClient wraps next with breaker
func NewBreakerClient(next Client, breaker *CircuitBreaker) *BreakerClient {
	return &BreakerClient{next: next, breaker: breaker}
}

// Complete fails fast while the breaker is open. Caller cancellation is not
// counted against the provider.
func (c *BreakerClient) Complete(ctx context.Context, req Request) (string, error) {
	if err := c.breaker.Allow(); err != nil {
		return "", err
	}

	out, err := c.next.Complete(ctx, req)
	switch {
	case err == nil:
		c.breaker.RecordSuccess()
	case errors.Is(err, context.Canceled):
	default:
		c.breaker.RecordFailure(err)
	}
	return out, err
}
