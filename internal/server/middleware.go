package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/time/rate"
)

// RateLimiter hands out a token bucket per client IP. Buckets live in
// an LRU so an open endpoint cannot grow memory without bound.
type RateLimiter struct {
	perMinute int
	buckets   *lru.Cache[string, *rate.Limiter]
}

func NewRateLimiter(perMinute int) *RateLimiter {
	buckets, _ := lru.New[string, *rate.Limiter](10000)
	return &RateLimiter{
		perMinute: perMinute,
		buckets:   buckets,
	}
}

func (rl *RateLimiter) limiterFor(key string) *rate.Limiter {
	if l, ok := rl.buckets.Get(key); ok {
		return l
	}
	l := rate.NewLimiter(rate.Limit(float64(rl.perMinute)/60.0), rl.perMinute)
	rl.buckets.Add(key, l)
	return l
}

func (rl *RateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !rl.limiterFor(c.ClientIP()).Allow() {
			c.AbortWithStatusJSON(http.StatusTooManyRequests,
				gin.H{"error": "Too many requests, please try again later"})
			return
		}
		c.Next()
	}
}
