package reasoning

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/matchday-consensus/internal/config"
)

// Stack is the assembled transport: cache, then breaker, then HTTP
type Stack struct {
	Client  Client
	Breaker *CircuitBreaker
	Cache   ResponseCache

	http  *HTTPClient
	redis *RedisCache
}

// NewStack builds the reasoning transport described by cfg
func NewStack(ctx context.Context, cfg *config.Config, logger *logrus.Logger) (*Stack, error) {
	httpClient := NewHTTPClient(cfg.Reasoning, logger)
	breaker := NewCircuitBreaker(CircuitBreakerConfig{
		MaxFailures:    cfg.Reasoning.CircuitBreakerMax,
		CooldownPeriod: time.Duration(cfg.Reasoning.CooldownSeconds) * time.Second,
	}, logger)

	s := &Stack{
		Client:  NewBreakerClient(httpClient, breaker),
		Breaker: breaker,
		http:    httpClient,
	}

	switch cfg.Cache.Backend {
	case "memory":
		s.Cache = NewMemoryCache(cfg.Cache.TTL(), cfg.Cache.MaxSize)
	case "redis":
		rc, err := NewRedisCache(ctx, cfg.Cache.Redis, cfg.Cache.TTL(), logger)
		if err != nil {
			return nil, fmt.Errorf("failed to connect response cache: %w", err)
		}
		s.Cache = rc
		s.redis = rc
	}

	if s.Cache != nil {
		s.Client = NewCachedClient(s.Client, s.Cache, logger)
	}

	logger.WithFields(logrus.Fields{
		"base_url":      cfg.Reasoning.BaseURL,
		"model":         cfg.Reasoning.Model,
		"cache_backend": cfg.Cache.Backend,
	}).Info("Reasoning transport initialized")

	return s, nil
}

// Close releases connections held by the stack
func (s *Stack) Close() error {
	if s.redis != nil {
		if err := s.redis.Close(); err != nil {
			return err
		}
	}
	return s.http.Close()
}
