package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"golang.org/x/time/rate"
)

func rateLimitedEngine(config RateLimiterConfig) *gin.Engine {
	gin.SetMode(gin.TestMode)
	engine := gin.New()
	engine.Use(NewRateLimiter(config).RateLimit())
	engine.GET("/queue", func(c *gin.Context) { c.Status(http.StatusOK) })
	engine.POST("/patients", func(c *gin.Context) { c.Status(http.StatusCreated) })
	return engine
}

func do(engine *gin.Engine, method, path, clientAddr string) int {
	req := httptest.NewRequest(method, path, nil)
	req.RemoteAddr = clientAddr
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)
	return rec.Code
}

func TestRateLimitWritesSeparatelyFromReads(t *testing.T) {
	engine := rateLimitedEngine(RateLimiterConfig{
		Rate:       100,
		Burst:      100,
		WriteRate:  1,
		WriteBurst: 2,
	})

	assert.Equal(t, http.StatusCreated, do(engine, http.MethodPost, "/patients", "10.0.0.1:5000"))
	assert.Equal(t, http.StatusCreated, do(engine, http.MethodPost, "/patients", "10.0.0.1:5000"))
	assert.Equal(t, http.StatusTooManyRequests, do(engine, http.MethodPost, "/patients", "10.0.0.1:5000"))

	// The exhausted write bucket does not touch the read budget.
	assert.Equal(t, http.StatusOK, do(engine, http.MethodGet, "/queue", "10.0.0.1:5000"))
}

func TestRateLimitKeyedPerClient(t *testing.T) {
	engine := rateLimitedEngine(RateLimiterConfig{
		Rate:       100,
		Burst:      100,
		WriteRate:  1,
		WriteBurst: 1,
	})

	assert.Equal(t, http.StatusCreated, do(engine, http.MethodPost, "/patients", "10.0.0.1:5000"))
	assert.Equal(t, http.StatusTooManyRequests, do(engine, http.MethodPost, "/patients", "10.0.0.1:5000"))

	// A different front-desk terminal keeps its own budget.
	assert.Equal(t, http.StatusCreated, do(engine, http.MethodPost, "/patients", "10.0.0.2:5000"))
}

func TestRateLimiterWriteDefaults(t *testing.T) {
	rl := NewRateLimiter(RateLimiterConfig{Rate: 100, Burst: 40})

	limiter := rl.limiterFor("10.0.0.1")
	assert.Equal(t, rate.Limit(10), limiter.write.Limit())
	assert.Equal(t, 4, limiter.write.Burst())
}
