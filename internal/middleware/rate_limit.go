package middleware

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

// RateLimiter is a per client token bucket limiter
type RateLimiter struct {
	tokensPerSec float64
	burstSize    float64
	buckets      map[string]*tokenBucket
	now          func() time.Time
	mu           sync.Mutex
}

type tokenBucket struct {
	tokens     float64
	lastRefill time.Time
}

// NewRateLimiter creates a limiter refilling requestsPerMinute tokens a minute
// up to burstSize
func NewRateLimiter(requestsPerMinute, burstSize int) *RateLimiter {
	if burstSize < 1 {
		burstSize = 1
	}
	return &RateLimiter{
		tokensPerSec: float64(requestsPerMinute) / 60.0,
		burstSize:    float64(burstSize),
		buckets:      make(map[string]*tokenBucket),
		now:          time.Now,
	}
}

// Allow takes one token from the bucket of key
func (r *RateLimiter) Allow(key string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	bucket, exists := r.buckets[key]
	if !exists {
		bucket = &tokenBucket{tokens: r.burstSize, lastRefill: now}
		r.buckets[key] = bucket
	}

	bucket.tokens += now.Sub(bucket.lastRefill).Seconds() * r.tokensPerSec
	bucket.lastRefill = now
	if bucket.tokens > r.burstSize {
		bucket.tokens = r.burstSize
	}

	if bucket.tokens >= 1.0 {
		bucket.tokens -= 1.0
		return true
	}
	return false
}

// Prune drops buckets that have been idle long enough to be full again
func (r *RateLimiter) Prune() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.tokensPerSec <= 0 {
		return
	}
	refill := time.Duration(r.burstSize / r.tokensPerSec * float64(time.Second))
	now := r.now()
	for key, bucket := range r.buckets {
		if now.Sub(bucket.lastRefill) > refill {
			delete(r.buckets, key)
		}
	}
}

// RateLimit creates middleware limiting requests per client IP
func RateLimit(limiter *RateLimiter, requestsPerMinute int) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !limiter.Allow(c.ClientIP()) {
			c.Header("X-RateLimit-Limit", strconv.Itoa(requestsPerMinute))
			c.Header("Retry-After", "60")
			c.JSON(http.StatusTooManyRequests, gin.H{
				"error": "Rate limit exceeded. Try again later.",
			})
			c.Abort()
			return
		}

		c.Next()
	}
}
