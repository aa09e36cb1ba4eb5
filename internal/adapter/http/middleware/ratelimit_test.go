package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"vault-engine/config"
	"vault-engine/internal/adapter/http/middleware"
	redisStore "vault-engine/internal/adapter/storage/redis"
	"vault-engine/internal/core/ports/mocks"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"
)

func setupRateLimitRouter(t *testing.T) *gin.Engine {
	t.Helper()
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	gin.SetMode(gin.TestMode)
	r := gin.New()
	rule := middleware.RateLimitRule{Limit: 3, Window: time.Minute}
	r.GET("/test", middleware.RateLimiter(redisStore.NewRateLimitStore(client), middleware.GroupQuery, rule, zerolog.Nop()),
		func(c *gin.Context) { c.JSON(200, gin.H{"status": "ok"}) })
	return r
}

func get(router *gin.Engine, remoteAddr string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	req.RemoteAddr = remoteAddr
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestRateLimiter_AllowsWithinLimit(t *testing.T) {
	router := setupRateLimitRouter(t)

	for i := 0; i < 3; i++ {
		w := get(router, "10.0.0.1:1234")
		assert.Equal(t, 200, w.Code, "request %d should succeed", i+1)
		assert.Equal(t, "3", w.Header().Get("X-RateLimit-Limit"))
		assert.NotEmpty(t, w.Header().Get("X-RateLimit-Remaining"))
		assert.NotEmpty(t, w.Header().Get("X-RateLimit-Reset"))
	}
}

func TestRateLimiter_BlocksOverLimit(t *testing.T) {
	router := setupRateLimitRouter(t)

	for i := 0; i < 3; i++ {
		assert.Equal(t, 200, get(router, "10.0.0.1:1234").Code)
	}

	w := get(router, "10.0.0.1:1234")
	assert.Equal(t, 429, w.Code)
	assert.NotEmpty(t, w.Header().Get("Retry-After"))
	assert.Contains(t, w.Body.String(), "RATE_LIMITED")
}

func TestRateLimiter_KeysByClientIP(t *testing.T) {
	router := setupRateLimitRouter(t)

	for i := 0; i < 3; i++ {
		assert.Equal(t, 200, get(router, "10.0.0.1:1234").Code)
	}
	assert.Equal(t, 429, get(router, "10.0.0.1:5678").Code)
	assert.Equal(t, 200, get(router, "10.0.0.2:1234").Code, "other client keeps its own counter")
}

func TestRateLimiter_DegradedMode(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	limiter := mocks.NewMockRateLimiter(ctrl)
	limiter.EXPECT().Allow(gomock.Any(), "submit:10.0.0.9", int64(1), time.Minute).Return(nil, assert.AnError)

	r := gin.New()
	r.GET("/test", middleware.RateLimiter(limiter, middleware.GroupSubmit, middleware.RateLimitRule{Limit: 1, Window: time.Minute}, zerolog.Nop()),
		func(c *gin.Context) { c.Status(http.StatusOK) })

	assert.Equal(t, http.StatusOK, get(r, "10.0.0.9:1").Code)
}

func TestRateLimitRules(t *testing.T) {
	rules := middleware.RateLimitRules(config.RateLimitConfig{
		SubmitLimit:   30,
		QueryLimit:    120,
		OperatorLimit: 10,
		Window:        time.Minute,
	})
	assert.Equal(t, int64(30), rules[middleware.GroupSubmit].Limit)
	assert.Equal(t, int64(120), rules[middleware.GroupQuery].Limit)
	assert.Equal(t, int64(10), rules[middleware.GroupOperator].Limit)
	assert.Equal(t, time.Minute, rules[middleware.GroupOperator].Window)
}
