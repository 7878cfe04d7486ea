package middlewares

import (
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

// CounterStore tracks request counts per key within a fixed window. The
// in-memory implementation below is process-local; a shared store (e.g.
// redis) can be swapped in without touching any call site.
type CounterStore interface {
	// Increment bumps the counter for key and returns the new count together
	// with the end of the current window.
	Increment(key string, window time.Duration) (int, time.Time)
}

type windowCounter struct {
	count     int
	windowEnd time.Time
}

type memoryCounterStore struct {
	mu       sync.Mutex
	counters map[string]*windowCounter
}

func NewMemoryCounterStore() CounterStore {
	return &memoryCounterStore{counters: make(map[string]*windowCounter)}
}

func (s *memoryCounterStore) Increment(key string, window time.Duration) (int, time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	entry, exists := s.counters[key]
	if !exists || now.After(entry.windowEnd) {
		entry = &windowCounter{windowEnd: now.Add(window)}
		s.counters[key] = entry
	}
	entry.count++

	// Lazy sweep so abandoned keys don't accumulate forever.
	if len(s.counters) > 10000 {
		for k, e := range s.counters {
			if now.After(e.windowEnd) {
				delete(s.counters, k)
			}
		}
	}

	return entry.count, entry.windowEnd
}

var defaultCounterStore = NewMemoryCounterStore()

// RateLimitMiddleware rejects requests once a key exceeds limit hits inside
// a fixed window. The 429 response carries a retry-after hint in seconds.
func RateLimitMiddleware(limit int, window time.Duration, keyFunc func(*gin.Context) string) gin.HandlerFunc {
	return RateLimitWithStore(defaultCounterStore, limit, window, keyFunc)
}

func RateLimitWithStore(store CounterStore, limit int, window time.Duration, keyFunc func(*gin.Context) string) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.FullPath() + "|" + keyFunc(c)
		count, windowEnd := store.Increment(key, window)

		if count > limit {
			retryAfter := int(time.Until(windowEnd).Seconds()) + 1
			c.Header("Retry-After", fmt.Sprintf("%d", retryAfter))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"success": false,
				"error": gin.H{
					"code":       "RATE_LIMIT_EXCEEDED",
					"message":    "Too many requests. Please slow down :(",
					"retryAfter": retryAfter,
				},
			})
			return
		}

		c.Next()
	}
}
