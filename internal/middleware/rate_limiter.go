package middleware

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	gocache "github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"
)

// RateLimiterConfig sets per-client budgets. Reads (the queue dashboard
// polls) get the larger budget; writes (check-ins, transitions, bookings)
// get WriteRate, defaulting to a tenth of the read rate since a front
// desk issues far fewer commands than dashboard refreshes.
type RateLimiterConfig struct {
	Rate       rate.Limit
	Burst      int
	WriteRate  rate.Limit
	WriteBurst int
}

type clientLimiter struct {
	read  *rate.Limiter
	write *rate.Limiter
}

// RateLimiter applies token buckets keyed by client IP. Idle clients age
// out of the table instead of accumulating forever.
type RateLimiter struct {
	config  RateLimiterConfig
	clients *gocache.Cache
}

func NewRateLimiter(config RateLimiterConfig) *RateLimiter {
	if config.WriteRate <= 0 {
		config.WriteRate = config.Rate / 10
		if config.WriteRate < 1 {
			config.WriteRate = 1
		}
	}
	if config.WriteBurst <= 0 {
		config.WriteBurst = config.Burst / 10
		if config.WriteBurst < 1 {
			config.WriteBurst = 1
		}
	}
	return &RateLimiter{
		config:  config,
		clients: gocache.New(10*time.Minute, 20*time.Minute),
	}
}

func (rl *RateLimiter) RateLimit() gin.HandlerFunc {
	return func(c *gin.Context) {
		limiter := rl.limiterFor(c.ClientIP())

		bucket := limiter.write
		if c.Request.Method == http.MethodGet || c.Request.Method == http.MethodHead {
			bucket = limiter.read
		}

		if !bucket.Allow() {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"status":  "error",
				"message": "rate limit exceeded",
			})
			return
		}
		c.Next()
	}
}

func (rl *RateLimiter) limiterFor(clientIP string) *clientLimiter {
	if cached, ok := rl.clients.Get(clientIP); ok {
		return cached.(*clientLimiter)
	}

	limiter := &clientLimiter{
		read:  rate.NewLimiter(rl.config.Rate, rl.config.Burst),
		write: rate.NewLimiter(rl.config.WriteRate, rl.config.WriteBurst),
	}
	// Two clients racing here each build a limiter; Add keeps the first
	// and the loser re-reads it, so one bucket survives per client.
	if err := rl.clients.Add(clientIP, limiter, gocache.DefaultExpiration); err != nil {
		if cached, ok := rl.clients.Get(clientIP); ok {
			return cached.(*clientLimiter)
		}
	}
	return limiter
}
