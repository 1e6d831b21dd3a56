package middleware

import (
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/GTDGit/catalog_sync/internal/utils"
)

// LoginRateLimiter throttles admin login attempts per client IP.
// Limit: 5 attempts per minute, burst of 5.
type LoginRateLimiter struct {
	mu       sync.Mutex
	limiters map[string]*ipLimiter
	every    time.Duration
	burst    int
}

type ipLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

func NewLoginRateLimiter() *LoginRateLimiter {
	return newLoginRateLimiter(12*time.Second, 5)
}

func newLoginRateLimiter(every time.Duration, burst int) *LoginRateLimiter {
	return &LoginRateLimiter{
		limiters: make(map[string]*ipLimiter),
		every:    every,
		burst:    burst,
	}
}

// Allow reports whether ip may make another attempt now.
func (r *LoginRateLimiter) Allow(ip string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	l, ok := r.limiters[ip]
	if !ok {
		l = &ipLimiter{limiter: rate.NewLimiter(rate.Every(r.every), r.burst)}
		r.limiters[ip] = l
	}
	l.lastSeen = time.Now()
	return l.limiter.Allow()
}

// Handle rejects requests over the limit with 429.
func (r *LoginRateLimiter) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !r.Allow(c.ClientIP()) {
			utils.Error(c, 429, "RATE_LIMITED", "Too many login attempts, try again later")
			c.Abort()
			return
		}
		c.Next()
	}
}

// Cleanup drops limiters idle for longer than a few minutes until done closes.
func (r *LoginRateLimiter) Cleanup(done <-chan struct{}) {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			r.evictIdle(time.Now().Add(-5 * time.Minute))
		case <-done:
			return
		}
	}
}

func (r *LoginRateLimiter) evictIdle(before time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for ip, l := range r.limiters {
		if l.lastSeen.Before(before) {
			delete(r.limiters, ip)
		}
	}
}
