package reasoning

import (
	"context"

	"github.com/sirupsen/logrus"
)

// CachedClient wraps a Client with cache-aside response caching
type CachedClient struct {
	next   Client
	cache  ResponseCache
	logger *logrus.Logger
}

// NewCachedClient creates a new cached client
func NewCachedClient(next Client, cache ResponseCache, logger *logrus.Logger) *CachedClient {
	return &CachedClient{next: next, cache: cache, logger: logger}
}

// Complete serves identical prompts from the cache. Only successful
// completions the request accepts are stored; a cached entry the request
// rejects is evicted and fetched again.
func (c *CachedClient) Complete(ctx context.Context, req Request) (string, error) {
	key := CacheKey(req)

	if cached, ok := c.cache.Get(ctx, key); ok {
		if req.accepts(cached) {
			c.logger.WithField("cache_key", key[:12]).Debug("Cache hit for completion")
			return cached, nil
		}
		c.cache.Delete(ctx, key)
	}

	out, err := c.next.Complete(ctx, req)
	if err != nil {
		return "", err
	}

	if !req.accepts(out) {
		c.logger.WithField("cache_key", key[:12]).Debug("Completion rejected, not cached")
		return out, nil
	}
	c.cache.Set(ctx, key, out)
	return out, nil
}
