package middleware

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/hashicorp/golang-lru/v2/expirable"
	"golang.org/x/time/rate"
)

const (
	// maxBuckets bounds memory for distinct clients; least recently seen
	// buckets are evicted first.
	maxBuckets = 10_000
	bucketTTL  = 10 * time.Minute
)

// KeyFunc maps a request to its rate-limit bucket.
type KeyFunc func(*gin.Context) string

// KeyByClientIP buckets requests by client address.
func KeyByClientIP() KeyFunc {
	return func(c *gin.Context) string { return "ip:" + c.ClientIP() }
}

// RateLimiter is a process-local, per-key token bucket limiter. Safe for
// concurrent use.
type RateLimiter struct {
	rps     rate.Limit
	burst   int
	keyFn   KeyFunc
	skip    map[string]struct{}
	buckets *expirable.LRU[string, *rate.Limiter]
}

// NewRateLimiter builds a limiter refilling rps tokens per second up to
// burst (at least 1). Requests whose route matches a skip path are never
// limited.
func NewRateLimiter(rps float64, burst int, keyFn KeyFunc, skip ...string) *RateLimiter {
	if burst <= 0 {
		burst = 1
	}
	if keyFn == nil {
		keyFn = KeyByClientIP()
	}
	s := make(map[string]struct{}, len(skip))
	for _, p := range skip {
		s[p] = struct{}{}
	}
	return &RateLimiter{
		rps:     rate.Limit(rps),
		burst:   burst,
		keyFn:   keyFn,
		skip:    s,
		buckets: expirable.NewLRU[string, *rate.Limiter](maxBuckets, nil, bucketTTL),
	}
}

func (rl *RateLimiter) limiter(key string) *rate.Limiter {
	if lim, ok := rl.buckets.Get(key); ok {
		return lim
	}
	lim := rate.NewLimiter(rl.rps, rl.burst)
	rl.buckets.Add(key, lim)
	return lim
}

// Handler rejects requests over the limit with 429 and Retry-After: 1.
func (rl *RateLimiter) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := rl.skip[routePath(c)]; ok {
			c.Next()
			return
		}
		if rl.limiter(rl.keyFn(c)).Allow() {
			c.Next()
			return
		}
		c.Header("Retry-After", "1")
		c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
			"request_id": RequestIDFrom(c),
			"code":       "too_many_requests",
			"message":    "rate limit exceeded",
		})
	}
}
