// Package middleware contains shared Gin middleware used by the HTTP layer.
//
// This file implements the per-client token-bucket rate limiter that sits in
// front of the rental API. Buckets live in process memory, which is the right
// trade-off for a single-instance deployment; a horizontally scaled setup
// would need a shared store to enforce a global limit.
package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// bucketIdleTTL is how long an untouched bucket survives before eviction.
const bucketIdleTTL = 10 * time.Minute

// gcEvery is the lookup count between opportunistic eviction sweeps.
const gcEvery = 5000

// keyFunc selects the identity a bucket is keyed on. It must return a stable
// string for the duration of a request.
type keyFunc func(*gin.Context) string

// KeyByUserOrIP keys buckets on the authenticated user id when the auth
// middleware has run, and on the client IP otherwise. Keys are prefixed so
// the two namespaces cannot collide ("user:T-00042" vs "ip:203.0.113.7").
func KeyByUserOrIP() keyFunc {
	return func(c *gin.Context) string {
		if v, ok := c.Get("userID"); ok {
			if s, ok := v.(string); ok && s != "" {
				return "user:" + s
			}
		}
		return "ip:" + c.ClientIP()
	}
}

// bucket pairs a limiter with its last-touched time for idle eviction.
type bucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter enforces per-key token-bucket limits. Buckets are created on
// demand in a mutex-guarded map and idle entries are swept during lookups to
// bound memory. Safe for concurrent use.
type RateLimiter struct {
	rps   rate.Limit
	burst int
	keyFn keyFunc

	mu      sync.Mutex
	buckets map[string]*bucket
	lookups uint64
}

// NewRateLimiter constructs a RateLimiter replenishing rps tokens per second
// with the given burst size, keyed by keyFn. A burst <= 0 is coerced to 1;
// rps 0 rejects everything once the initial burst drains.
func NewRateLimiter(rps float64, burst int, keyFn keyFunc) *RateLimiter {
	if burst <= 0 {
		burst = 1
	}
	return &RateLimiter{
		rps:     rate.Limit(rps),
		burst:   burst,
		keyFn:   keyFn,
		buckets: make(map[string]*bucket),
	}
}

// take returns the limiter for key, creating it if absent. Every gcEvery
// lookups it first sweeps idle buckets; the sweep runs before the requested
// bucket is touched so a stale bucket can be evicted even when it is the one
// being fetched.
func (rl *RateLimiter) take(key string) *rate.Limiter {
	now := time.Now()

	rl.mu.Lock()
	rl.lookups++
	if rl.lookups >= gcEvery {
		for k, b := range rl.buckets {
			if now.Sub(b.lastSeen) >= bucketIdleTTL {
				delete(rl.buckets, k)
			}
		}
		rl.lookups = 0
	}

	if b, ok := rl.buckets[key]; ok {
		b.lastSeen = now
		lim := b.limiter
		rl.mu.Unlock()
		return lim
	}

	lim := rate.NewLimiter(rl.rps, rl.burst)
	rl.buckets[key] = &bucket{limiter: lim, lastSeen: now}
	rl.mu.Unlock()
	return lim
}

// IsRateBypass reports whether IdempotencyValidator marked this request as a
// replay of an already completed call. Replays are served without consuming
// tokens.
func IsRateBypass(c *gin.Context) bool {
	v, ok := c.Get(ctxKeyRateBypass) // set by IdempotencyValidator
	if !ok {
		return false
	}
	b, _ := v.(bool)
	return b
}

// Handler returns the Gin middleware. Over-limit requests get a 429 with a
// Retry-After header and the standard error envelope:
//
//	{
//	  "request_id": "<uuid>",
//	  "code":       "rate_limited",
//	  "message":    "rate limit exceeded"
//	}
func (rl *RateLimiter) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if IsRateBypass(c) {
			c.Next()
			return
		}

		if rl.take(rl.keyFn(c)).Allow() {
			c.Next()
			return
		}

		c.Header("Retry-After", "1")
		c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
			"request_id": c.Writer.Header().Get("X-Request-ID"),
			"code":       "rate_limited",
			"message":    "rate limit exceeded",
		})
	}
}
