package middleware

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRouter(mw ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(mw...)
	r.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") })
	return r
}

func get(r http.Handler, target string, header map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, target, nil)
	for k, v := range header {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestInternalAuthMiddleware(t *testing.T) {
	tests := []struct {
		name       string
		configured string
		sent       string
		want       int
	}{
		{"valid key", "secret", "secret", http.StatusOK},
		{"wrong key", "secret", "nope", http.StatusUnauthorized},
		{"missing key", "secret", "", http.StatusUnauthorized},
		{"not configured", "", "anything", http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newRouter(InternalAuthMiddleware(tt.configured))
			w := get(r, "/ping", map[string]string{APIKeyHeader: tt.sent})
			assert.Equal(t, tt.want, w.Code)
		})
	}
}

func TestServiceRateLimitMiddleware(t *testing.T) {
	r := newRouter(ServiceRateLimitMiddleware(0.001, 2))
	assert.Equal(t, http.StatusOK, get(r, "/ping", nil).Code)
	assert.Equal(t, http.StatusOK, get(r, "/ping", nil).Code)
	assert.Equal(t, http.StatusTooManyRequests, get(r, "/ping", nil).Code)
}

func TestRateLimitMiddlewarePerIP(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	r := newRouter(RateLimitMiddleware(ctx, RateLimiterConfig{RequestsPerSecond: 0.001, BurstSize: 1}))

	first := httptest.NewRequest(http.MethodGet, "/ping", nil)
	first.RemoteAddr = "10.0.0.1:1234"
	w := httptest.NewRecorder()
	r.ServeHTTP(w, first)
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, first)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)

	other := httptest.NewRequest(http.MethodGet, "/ping", nil)
	other.RemoteAddr = "10.0.0.2:1234"
	w = httptest.NewRecorder()
	r.ServeHTTP(w, other)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestIPRateLimiterCleanup(t *testing.T) {
	rl := NewIPRateLimiter(DefaultRateLimiterConfig())
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return now }

	rl.GetLimiter("10.0.0.1")
	now = now.Add(20 * time.Minute)
	rl.GetLimiter("10.0.0.2")

	rl.Cleanup(10 * time.Minute)
	assert.Equal(t, 1, rl.Len())
}

func TestRequestLoggerRedactsToken(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf)
	r := newRouter(RequestLogger(&logger))

	w := get(r, "/ping?token=s3cret&verbose=1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotContains(t, buf.String(), "s3cret")
	assert.Contains(t, buf.String(), "REDACTED")
	assert.Contains(t, buf.String(), `"status":200`)
}

func TestCORS(t *testing.T) {
	r := newRouter(CORS([]string{"https://admin.example"}))

	w := get(r, "/ping", map[string]string{"Origin": "https://admin.example"})
	assert.Equal(t, "https://admin.example", w.Header().Get("Access-Control-Allow-Origin"))

	w = get(r, "/ping", map[string]string{"Origin": "https://evil.example"})
	assert.Equal(t, http.StatusForbidden, w.Code)
}
