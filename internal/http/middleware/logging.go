// Package middleware holds the Gin middleware shared by the rental API:
// correlation IDs, structured access logging, panic recovery, redaction,
// rate limiting, idempotency replay, and security headers.
//
// The intended stack order is RequestID, Logger (or RedactingLogger),
// Recovery, then the per-route middleware, so that panics and errors are
// logged with the correlation ID already attached.
package middleware

import (
	"net/http"
	"runtime/debug"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const (
	// ctxKeyRequestID is the Gin context key holding the correlation ID.
	ctxKeyRequestID = "requestID"
	// headerRequestID propagates the correlation ID between client and server.
	headerRequestID = "X-Request-ID"
	// ctxKeyLogger is the Gin context key holding the request-scoped logger.
	ctxKeyLogger = "logger"
	// queryLogCap bounds the raw query string bytes written to access logs.
	queryLogCap = 2048
)

// RequestID reuses the incoming X-Request-ID header when present, otherwise
// generates a UUIDv4. The ID is stored in the Gin context and echoed on the
// response so clients can quote it in support tickets.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		rid := c.GetHeader(headerRequestID)
		if rid == "" {
			rid = uuid.NewString()
		}
		c.Set(ctxKeyRequestID, rid)
		c.Writer.Header().Set(headerRequestID, rid)
		c.Next()
	}
}

// Logger emits one structured access log line per request and stashes a
// request-scoped zerolog.Logger in the context for handlers and services.
//
// The log level follows the outcome: error for 5xx or when the Gin error
// list is non-empty, warn for 4xx, info otherwise. The path field prefers
// the matched route pattern and falls back to the raw URL path on 404s.
//
// Install after RequestID so every line carries the correlation ID. The
// authenticated user ID shows up once the auth middleware has run; for the
// access line itself it is usually still empty.
func Logger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		l := requestLogger(c)
		c.Set(ctxKeyLogger, &l)

		c.Next()

		out := l.With().
			Int("status", c.Writer.Status()).
			Dur("latency", time.Since(start)).
			Int("bytes_out", c.Writer.Size()).
			Logger()

		switch {
		case len(c.Errors) > 0:
			out.Error().Str("errors", c.Errors.String()).Msg("request")
		case c.Writer.Status() >= http.StatusInternalServerError:
			out.Error().Msg("request")
		case c.Writer.Status() >= http.StatusBadRequest:
			out.Warn().Msg("request")
		default:
			out.Info().Msg("request")
		}
	}
}

// requestLogger builds the per-request logger with the common request fields.
func requestLogger(c *gin.Context) zerolog.Logger {
	rid, _ := c.Get(ctxKeyRequestID)
	uid, _ := c.Get("userID")
	path := c.FullPath()
	if path == "" {
		// unmatched route, log the raw path
		path = c.Request.URL.Path
	}
	return log.With().
		Str("request_id", ctxString(rid)).
		Str("user_id", ctxString(uid)).
		Str("method", c.Request.Method).
		Str("path", path).
		Str("remote_ip", c.ClientIP()).
		Str("user_agent", c.Request.UserAgent()).
		Str("referer", c.Request.Referer()).
		Str("query", clipBytes(c.Request.URL.RawQuery, queryLogCap)).
		Int64("bytes_in", c.Request.ContentLength).
		Logger()
}

// Recovery turns panics into a JSON 500 with the correlation ID, after
// logging the panic value and stack. When the handler already wrote part of
// a response the body is left alone and only the status is aborted.
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if rec := recover(); rec != nil {
				rid, _ := c.Get(ctxKeyRequestID)
				log.Error().
					Interface("panic", rec).
					Bytes("stack", debug.Stack()).
					Str("request_id", ctxString(rid)).
					Msg("panic recovered")

				if c.Writer.Written() {
					c.AbortWithStatus(http.StatusInternalServerError)
					return
				}
				c.Header("Content-Type", "application/json")
				c.Header(headerRequestID, ctxString(rid))
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
					"request_id": ctxString(rid),
					"code":       "internal_error",
					"message":    "internal server error",
				})
			}
		}()
		c.Next()
	}
}

// LoggerFrom returns the request-scoped logger attached by Logger, or the
// process logger when none was attached. Never returns nil.
func LoggerFrom(c *gin.Context) *zerolog.Logger {
	if v, ok := c.Get(ctxKeyLogger); ok {
		if lg, ok := v.(*zerolog.Logger); ok {
			return lg
		}
	}
	l := log.With().Logger()
	return &l
}

// ctxString reads a Gin context value as a string, empty when absent or of
// another type.
func ctxString(v interface{}) string {
	if s, ok := v.(string); ok {
		return s
	}
	return ""
}

// clipBytes caps s at max bytes and marks the cut with an ellipsis. A
// max <= 0 disables clipping. Byte-based, which is fine for log output.
func clipBytes(s string, max int) string {
	if max <= 0 || len(s) <= max {
		return s
	}
	return s[:max] + "…"
}
