package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
	"golang.org/x/time/rate"
)

func TestRequestLoggerLevels(t *testing.T) {
	gin.SetMode(gin.TestMode)
	core, logs := observer.New(zap.InfoLevel)

	router := gin.New()
	router.Use(RequestLogger(zap.New(core)))
	router.GET("/ok", func(c *gin.Context) { c.Status(http.StatusOK) })
	router.GET("/gone", func(c *gin.Context) { c.Redirect(http.StatusFound, "/") })
	router.GET("/bad", func(c *gin.Context) { c.Status(http.StatusBadRequest) })
	router.GET("/boom", func(c *gin.Context) { c.Status(http.StatusServiceUnavailable) })

	for _, p := range []string{"/ok", "/gone", "/bad", "/boom"} {
		router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, p, nil))
	}

	entries := logs.All()
	if assert.Len(t, entries, 4) {
		assert.Equal(t, zap.InfoLevel, entries[0].Level)
		assert.Equal(t, zap.InfoLevel, entries[1].Level)
		assert.Equal(t, "/", entries[1].ContextMap()["redirect"])
		assert.Equal(t, zap.WarnLevel, entries[2].Level)
		assert.Equal(t, zap.ErrorLevel, entries[3].Level)
	}
}

func TestRateLimiter(t *testing.T) {
	rl := NewRateLimiter(rate.Every(time.Hour), 2, time.Minute)
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return now }

	assert.True(t, rl.Allow("10.0.0.1"))
	assert.True(t, rl.Allow("10.0.0.1"))
	assert.False(t, rl.Allow("10.0.0.1"))
	assert.True(t, rl.Allow("10.0.0.2"))

	// idle entries are evicted and start with a full bucket
	now = now.Add(2 * time.Minute)
	assert.True(t, rl.Allow("10.0.0.1"))
}

func TestCORS(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(CORS([]string{"https://admin.example.com/"}))
	router.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Origin", "https://admin.example.com")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "https://admin.example.com", w.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Origin", "https://evil.example.com")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

type recordingMetrics struct {
	mu     sync.Mutex
	counts []string
	done   chan struct{}
}

func (r *recordingMetrics) IsEnabled() bool { return true }

func (r *recordingMetrics) RecordCount(_ context.Context, name string, _ map[string]string) error {
	r.mu.Lock()
	r.counts = append(r.counts, name)
	n := len(r.counts)
	r.mu.Unlock()
	if n == 2 {
		close(r.done)
	}
	return nil
}

func (r *recordingMetrics) RecordLatency(context.Context, string, time.Duration, map[string]string) error {
	return nil
}

func TestMetricsMiddlewareRecordsErrors(t *testing.T) {
	gin.SetMode(gin.TestMode)
	rec := &recordingMetrics{done: make(chan struct{})}

	router := gin.New()
	router.Use(MetricsMiddleware(rec, "admin"))
	router.GET("/orders", func(c *gin.Context) { c.Status(http.StatusServiceUnavailable) })
	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/orders", nil))

	select {
	case <-rec.done:
	case <-time.After(time.Second):
		t.Fatal("metrics were not recorded")
	}
	rec.mu.Lock()
	defer rec.mu.Unlock()
	assert.Equal(t, []string{"HTTPRequests", "HTTP5xxErrors"}, rec.counts)
}
