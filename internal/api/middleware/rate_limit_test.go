package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"securevault/internal/api/middleware"
	"securevault/internal/config"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func newRateLimitedRouter(requests, window, burst int) *gin.Engine {
	gin.SetMode(gin.TestMode)

	cfg := &config.Config{}
	cfg.RateLimit.Requests = requests
	cfg.RateLimit.Window = window
	cfg.RateLimit.Burst = burst

	router := gin.New()
	router.Use(middleware.NewRateLimiter(cfg).Middleware())
	router.GET("/test", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	return router
}

func TestRateLimiter_AllowsWithinLimit(t *testing.T) {
	router := newRateLimitedRouter(5, 60, 5)

	for i := 0; i < 5; i++ {
		req, _ := http.NewRequest("GET", "/test", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "5", w.Header().Get("X-RateLimit-Limit"))
	}
}

func TestRateLimiter_BlocksOverLimit(t *testing.T) {
	router := newRateLimitedRouter(3, 60, 3)

	var last *httptest.ResponseRecorder
	for i := 0; i < 4; i++ {
		req, _ := http.NewRequest("GET", "/test", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		last = httptest.NewRecorder()
		router.ServeHTTP(last, req)
	}

	assert.Equal(t, http.StatusTooManyRequests, last.Code)
	assert.Equal(t, "0", last.Header().Get("X-RateLimit-Remaining"))
	assert.Equal(t, "60", last.Header().Get("Retry-After"))
}

func TestRateLimiter_PerClientBuckets(t *testing.T) {
	router := newRateLimitedRouter(2, 60, 2)

	// Exhaust the first client's bucket
	for i := 0; i < 3; i++ {
		req, _ := http.NewRequest("GET", "/test", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
	}

	// A different client is unaffected
	req, _ := http.NewRequest("GET", "/test", nil)
	req.RemoteAddr = "10.0.0.2:1234"
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}
