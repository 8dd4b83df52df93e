package middleware

import (
	"context"
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"bcm-backend/shared/config"
	"bcm-backend/shared/utils/response"
)

// RateLimitConfig - token bucket per client plus a block once the bucket runs dry
type RateLimitConfig struct {
	RequestsPerSecond float64
	Burst             int
	BlockDuration     time.Duration
}

// NewRateLimitConfig reads the general limiter settings from configuration
func NewRateLimitConfig(cfg *config.Config) RateLimitConfig {
	return RateLimitConfig{
		RequestsPerSecond: cfg.RateLimitRequestsPerSecond,
		Burst:             cfg.RateLimitBurst,
		BlockDuration:     cfg.RateLimitBlockDuration(),
	}
}

// NewLoginRateLimitConfig allows LoginRateLimitMaxAttempts logins per window per client
func NewLoginRateLimitConfig(cfg *config.Config) RateLimitConfig {
	window := cfg.LoginRateLimitWindow()
	rps := 0.0
	if window > 0 {
		rps = float64(cfg.LoginRateLimitMaxAttempts) / window.Seconds()
	}
	return RateLimitConfig{
		RequestsPerSecond: rps,
		Burst:             cfg.LoginRateLimitMaxAttempts,
		BlockDuration:     cfg.LoginRateLimitBlockDuration(),
	}
}

type clientLimit struct {
	limiter    *rate.Limiter
	lastAccess time.Time
	blockUntil time.Time
}

// RateLimiter - rate limiting manager keyed by client; each middleware brings its own config
type RateLimiter struct {
	store map[string]*clientLimit
	mutex sync.Mutex
	now   func() time.Time
}

// NewRateLimiter - creates a new RateLimiter instance
func NewRateLimiter() *RateLimiter {
	return &RateLimiter{
		store: make(map[string]*clientLimit),
		now:   time.Now,
	}
}

// Run removes idle clients every interval until ctx is done
func (rl *RateLimiter) Run(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			rl.cleanup(24 * time.Hour)
		}
	}
}

func (rl *RateLimiter) cleanup(idle time.Duration) {
	rl.mutex.Lock()
	defer rl.mutex.Unlock()

	now := rl.now()
	for key, limit := range rl.store {
		if now.Sub(limit.lastAccess) > idle && now.After(limit.blockUntil) {
			delete(rl.store, key)
		}
	}
}

// allow reports whether key may proceed under config and, if not, how long it must wait
func (rl *RateLimiter) allow(key string, config RateLimitConfig) (bool, time.Duration) {
	rl.mutex.Lock()
	defer rl.mutex.Unlock()

	burst := config.Burst
	if burst <= 0 {
		burst = 1
	}

	now := rl.now()
	limit, exists := rl.store[key]
	if !exists {
		limit = &clientLimit{limiter: rate.NewLimiter(rate.Limit(config.RequestsPerSecond), burst)}
		rl.store[key] = limit
	}
	limit.lastAccess = now

	if now.Before(limit.blockUntil) {
		return false, limit.blockUntil.Sub(now)
	}

	if limit.limiter.AllowN(now, 1) {
		return true, 0
	}

	if config.BlockDuration > 0 {
		limit.blockUntil = now.Add(config.BlockDuration)
		return false, config.BlockDuration
	}
	wait := time.Second
	if config.RequestsPerSecond > 0 {
		wait = time.Duration(float64(time.Second) / config.RequestsPerSecond)
	}
	return false, wait
}

func (rl *RateLimiter) limit(prefix, message string, config RateLimitConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		allowed, retryAfter := rl.allow(prefix+c.ClientIP(), config)
		if allowed {
			c.Next()
			return
		}

		seconds := int(math.Ceil(retryAfter.Seconds()))
		c.Header("Retry-After", strconv.Itoa(seconds))
		c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
			"success":     false,
			"error":       message,
			"code":        response.ErrorCode(http.StatusTooManyRequests),
			"retry_after": seconds,
			"request_id":  c.GetString(response.RequestIDKey),
		})
	}
}

// RateLimitMiddleware - general rate limiting middleware
func (rl *RateLimiter) RateLimitMiddleware(config RateLimitConfig) gin.HandlerFunc {
	return rl.limit("", "Rate limit exceeded. Please try again later.", config)
}

// LoginRateLimitMiddleware - login endpoint rate limiting middleware
func (rl *RateLimiter) LoginRateLimitMiddleware(config RateLimitConfig) gin.HandlerFunc {
	return rl.limit("login:", "Too many login attempts. Please try again later.", config)
}
