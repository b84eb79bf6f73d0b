package reasoning

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"sync"
	"time"

	cache "github.com/patrickmn/go-cache"

	"github.com/yourusername/matchday-consensus/internal/metrics"
)

// ResponseCache stores raw completions by prompt key
type ResponseCache interface {
	Get(ctx context.Context, key string) (string, bool)
	Set(ctx context.Context, key, value string)
	Delete(ctx context.Context, key string)
}

// CacheKey hashes the parts of a request that determine its completion
func CacheKey(req Request) string {
	h := sha256.New()
	h.Write([]byte(req.Model))
	h.Write([]byte{0})
	h.Write([]byte(req.System))
	h.Write([]byte{0})
	h.Write([]byte(req.User))
	return hex.EncodeToString(h.Sum(nil))
}

// hitStats tracks lookups and publishes the hit ratio gauge
type hitStats struct {
	mu        sync.Mutex
	hitCount  uint64
	missCount uint64
}

func (s *hitStats) record(hit bool) {
	s.mu.Lock()
	if hit {
		s.hitCount++
	} else {
		s.missCount++
	}
	ratio := float64(s.hitCount) / float64(s.hitCount+s.missCount)
	s.mu.Unlock()

	metrics.UpdateCacheHitRatio(ratio)
}

// Stats returns cache statistics
func (s *hitStats) Stats() (hits, misses uint64, ratio float64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	hits = s.hitCount
	misses = s.missCount
	if total := hits + misses; total > 0 {
		ratio = float64(hits) / float64(total)
	}
	return
}

func (s *hitStats) reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.hitCount = 0
	s.missCount = 0
}

// MemoryCache provides in-process caching of completions
type MemoryCache struct {
	hitStats
	cache   *cache.Cache
	ttl     time.Duration
	maxSize int
}

// NewMemoryCache creates a new in-memory response cache
func NewMemoryCache(ttl time.Duration, maxSize int) *MemoryCache {
	return &MemoryCache{
		cache:   cache.New(ttl, ttl*2),
		ttl:     ttl,
		maxSize: maxSize,
	}
}

// Get retrieves a cached completion
func (mc *MemoryCache) Get(ctx context.Context, key string) (string, bool) {
	if v, found := mc.cache.Get(key); found {
		if s, ok := v.(string); ok {
			mc.record(true)
			return s, true
		}
	}
	mc.record(false)
	return "", false
}

// Set stores a completion. At capacity expired entries are dropped first and
// the write is skipped if the cache is still full.
func (mc *MemoryCache) Set(ctx context.Context, key, value string) {
	if mc.maxSize > 0 && mc.cache.ItemCount() >= mc.maxSize {
		mc.cache.DeleteExpired()
		if mc.cache.ItemCount() >= mc.maxSize {
			return
		}
	}
	mc.cache.Set(key, value, mc.ttl)
}

// Delete evicts one completion
func (mc *MemoryCache) Delete(ctx context.Context, key string) {
	mc.cache.Delete(key)
}

// DeleteExpired removes expired entries
func (mc *MemoryCache) DeleteExpired() {
	mc.cache.DeleteExpired()
}

// Clear flushes the entire cache
func (mc *MemoryCache) Clear() {
	mc.cache.Flush()
	mc.reset()
}

// ItemCount returns the number of items in cache
func (mc *MemoryCache) ItemCount() int {
	return mc.cache.ItemCount()
}
