package middleware

import (
	"context"
	"net/http"
	"regexp"
	"time"

	"github.com/gin-gonic/gin"
)

// HeaderIdempotencyKey carries the client-chosen key that makes payment
// initiation retries safe. A client that resends the same key for the same
// rental request gets the stored transaction back instead of a second
// gateway session.
const HeaderIdempotencyKey = "Idempotency-Key"

// Context keys stashed by IdempotencyValidator. Read them through the
// accessor helpers, not directly.
const (
	ctxKeyIdemKey    = "idem.key"
	ctxKeyIdemReplay = "idem.replay" // true when a stored replay exists
	ctxKeyRateBypass = "rate.bypass" // true to skip rate limiting
)

// GetIdempotencyKey returns the validated key stashed by IdempotencyValidator.
// The second return is false when the request carried no key.
func GetIdempotencyKey(c *gin.Context) (string, bool) {
	v, ok := c.Get(ctxKeyIdemKey)
	if !ok {
		return "", false
	}
	s, _ := v.(string)
	return s, s != ""
}

// IsReplay reports whether this request matches a previously completed
// operation. Handlers use it to serve the persisted result instead of
// re-running the payment flow.
func IsReplay(c *gin.Context) bool {
	v, ok := c.Get(ctxKeyIdemReplay)
	if !ok {
		return false
	}
	b, _ := v.(bool)
	return b
}

// IdempotencyOptions tunes header validation. TTL expiry lives in the
// lookup, not here.
type IdempotencyOptions struct {
	// MaxLen caps the accepted key length. Values <= 0 default to 200.
	MaxLen int
	// Pattern restricts allowed characters. Nil falls back to an
	// RFC 7230-style token pattern: ^[A-Za-z0-9._~\-:]+$
	Pattern *regexp.Regexp
}

// IdempotencyLookup answers whether a still-valid stored result exists for
// (userID, requestID, key) at the given time. Lookup failures should come
// back as errors, not as exists=true; a failed lookup never blocks the
// request.
type IdempotencyLookup func(ctx context.Context, userID, requestID, key string, now time.Time) (exists bool, err error)

// IdempotencyValidator validates the Idempotency-Key header when present,
// stashes the key in the context, and consults the lookup for a prior
// completed request. On a hit it flags the request as a replay and lets the
// rate limiter wave it through. Requests without the header pass untouched;
// malformed keys get a 400 before any handler runs.
//
// The middleware never serves a cached payload itself. The payment handler
// decides how a replay is answered.
func IdempotencyValidator(opts IdempotencyOptions, lookup IdempotencyLookup) gin.HandlerFunc {
	maxLen := opts.MaxLen
	if maxLen <= 0 {
		maxLen = 200
	}
	pat := opts.Pattern
	if pat == nil {
		pat = regexp.MustCompile(`^[A-Za-z0-9._~\-:]+$`)
	}

	return func(c *gin.Context) {
		key := c.GetHeader(HeaderIdempotencyKey)
		if key == "" {
			c.Next()
			return
		}
		if len(key) > maxLen || !pat.MatchString(key) {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
				"code":    "bad_idempotency_key",
				"message": "invalid Idempotency-Key",
			})
			return
		}

		c.Set(ctxKeyIdemKey, key)

		if lookup != nil {
			// POST /requests/:id/payment carries the rental request ID in :id
			requestID := c.Param("id")
			uid := userIDFromCtx(c)
			if exists, _ := lookup(c.Request.Context(), uid, requestID, key, time.Now().UTC()); exists {
				c.Set(ctxKeyIdemReplay, true)
				c.Set(ctxKeyRateBypass, true)
			}
		}

		c.Next()
	}
}

// userIDFromCtx reads the authenticated user ID set by the JWT middleware,
// "anonymous" when the route is unauthenticated.
func userIDFromCtx(c *gin.Context) string {
	if v, ok := c.Get(CtxUserID); ok {
		if s, ok := v.(string); ok && s != "" {
			return s
		}
	}
	return "anonymous"
}
