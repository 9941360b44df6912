package middleware

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// captureLogger swaps the global logger for a buffer-backed one for the
// duration of the test.
func captureLogger(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prev := log.Logger
	t.Cleanup(func() { log.Logger = prev })
	log.Logger = zerolog.New(&buf)
	return &buf
}

func TestRequestID_GenerateAndPropagate(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequestID())
	r.GET("/listings", func(c *gin.Context) {
		if v, ok := c.Get(ctxKeyRequestID); !ok || v == "" {
			t.Fatalf("request ID not set in context")
		}
		c.String(http.StatusOK, "ok")
	})

	// no header, one is generated
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/listings", nil))
	if w.Header().Get(headerRequestID) == "" {
		t.Fatalf("expected generated %s header", headerRequestID)
	}

	// lowercase incoming header is still propagated
	w2 := httptest.NewRecorder()
	req2 := httptest.NewRequest(http.MethodGet, "/listings", nil)
	req2.Header.Set(strings.ToLower(headerRequestID), "rid-abc-123")
	r.ServeHTTP(w2, req2)
	if got := w2.Header().Get(headerRequestID); got != "rid-abc-123" {
		t.Fatalf("expected propagated request id, got %q", got)
	}
}

func TestRequestID_UppercaseHeaderPropagates(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequestID())
	r.GET("/listings", func(c *gin.Context) {
		if v, _ := c.Get(ctxKeyRequestID); v != "RID-UP-9" {
			t.Fatalf("context request ID = %v; want RID-UP-9", v)
		}
		c.Status(http.StatusNoContent)
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/listings", nil)
	req.Header.Set(headerRequestID, "RID-UP-9")
	r.ServeHTTP(w, req)

	if got := w.Header().Get(headerRequestID); got != "RID-UP-9" {
		t.Fatalf("response %s = %q; want RID-UP-9", headerRequestID, got)
	}
}

func TestLogger_LevelsAndPathFallback(t *testing.T) {
	gin.SetMode(gin.TestMode)
	buf := captureLogger(t)

	r := gin.New()
	r.Use(RequestID())
	r.Use(Logger())

	r.GET("/listings", func(c *gin.Context) { c.String(http.StatusOK, "ok") })
	r.POST("/requests", func(c *gin.Context) {
		_ = c.Error(errBoom{})
		c.Status(http.StatusBadRequest)
	})

	// 200 -> info, with the matched route pattern as path
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/listings", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("GET /listings -> %d", w.Code)
	}

	// 404 -> warn, raw URL path as fallback
	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/nowhere", nil))
	if w.Code != http.StatusNotFound {
		t.Fatalf("GET /nowhere -> %d", w.Code)
	}

	// gin error collected -> error level even for a 4xx status
	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/requests", nil))
	if w.Code != http.StatusBadRequest {
		t.Fatalf("POST /requests -> %d", w.Code)
	}

	logs := buf.String()
	if !strings.Contains(logs, `"level":"info"`) || !strings.Contains(logs, `"path":"/listings"`) {
		t.Fatalf("expected info log with route path, got:\n%s", logs)
	}
	if !strings.Contains(logs, `"level":"warn"`) || !strings.Contains(logs, `"path":"/nowhere"`) {
		t.Fatalf("expected warn log with raw path fallback, got:\n%s", logs)
	}
	if !strings.Contains(logs, `"level":"error"`) {
		t.Fatalf("expected error log, got:\n%s", logs)
	}
}

type errBoom struct{}

func (errBoom) Error() string { return "boom" }

func TestRecovery_PanicsToJSON500AndLogs(t *testing.T) {
	gin.SetMode(gin.TestMode)
	buf := captureLogger(t)

	r := gin.New()
	r.Use(RequestID())
	r.Use(Logger())
	r.Use(Recovery())
	r.GET("/panic", func(c *gin.Context) { panic("kaboom") })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/panic", nil))

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500 from Recovery, got %d", w.Code)
	}
	var body map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid json body: %v", err)
	}
	if body["code"] != "internal_error" || body["message"] != "internal server error" {
		t.Fatalf("unexpected body: %v", body)
	}
	if out := buf.String(); !strings.Contains(out, "panic recovered") && !strings.Contains(out, `"panic"`) {
		t.Fatalf("expected panic log, got:\n%s", out)
	}
}

func TestRecovery_PanicAfterWrite_NoJSON(t *testing.T) {
	gin.SetMode(gin.TestMode)
	buf := captureLogger(t)

	r := gin.New()
	r.Use(RequestID())
	r.Use(Logger())
	r.Use(Recovery())

	// part of the response already flushed, Recovery must not append a JSON body
	r.GET("/panic-late", func(c *gin.Context) {
		c.String(http.StatusOK, "partial-body")
		panic("late kaboom")
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/panic-late", nil))

	if strings.Contains(w.Body.String(), "internal error") ||
		strings.Contains(strings.ToLower(w.Header().Get("Content-Type")), "application/json") {
		t.Fatalf("expected no JSON error body after partial write; got CT=%q body=%q",
			w.Header().Get("Content-Type"), w.Body.String())
	}
	if !strings.Contains(buf.String(), "panic recovered") && !strings.Contains(buf.String(), `"panic"`) {
		t.Fatalf("expected panic log, got:\n%s", buf.String())
	}
}

func TestLoggerFrom_FallbackAndRequestScoped(t *testing.T) {
	gin.SetMode(gin.TestMode)

	// without Logger() the fallback has no request fields
	buf1 := captureLogger(t)
	r1 := gin.New()
	r1.Use(RequestID())
	r1.GET("/use", func(c *gin.Context) {
		LoggerFrom(c).Info().Msg("custom")
		c.Status(http.StatusOK)
	})
	w := httptest.NewRecorder()
	r1.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/use", nil))
	if !strings.Contains(buf1.String(), `"message":"custom"`) {
		t.Fatalf("expected custom log from fallback logger")
	}
	if strings.Contains(buf1.String(), `"request_id"`) {
		t.Fatalf("fallback logger unexpectedly carried request_id")
	}

	// with Logger() the request-scoped logger carries request_id
	buf2 := captureLogger(t)
	r2 := gin.New()
	r2.Use(RequestID())
	r2.Use(Logger())
	r2.GET("/use", func(c *gin.Context) {
		LoggerFrom(c).Info().Msg("custom2")
		c.Status(http.StatusOK)
	})
	w2 := httptest.NewRecorder()
	r2.ServeHTTP(w2, httptest.NewRequest(http.MethodGet, "/use", nil))
	out := buf2.String()
	if !strings.Contains(out, `"message":"custom2"`) {
		t.Fatalf("expected custom2 log present")
	}
	if !strings.Contains(out, `"request_id"`) {
		t.Fatalf("expected request-scoped logger to include request_id")
	}
}

func Test_ctxString_and_clipBytes(t *testing.T) {
	if ctxString("x") != "x" || ctxString(123) != "" {
		t.Fatalf("ctxString failed")
	}
	if clipBytes("hello", 10) != "hello" {
		t.Fatalf("clipBytes no-op failed")
	}
	if got := clipBytes("abcdefgh", 5); got != "abcde…" {
		t.Fatalf("clipBytes = %q; want %q", got, "abcde…")
	}
	if clipBytes("abc", 0) != "abc" {
		t.Fatalf("clipBytes with max<=0 should disable clipping")
	}
}
