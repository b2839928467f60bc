package middleware

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// maxTrackedClients bounds the limiter map before it is reset wholesale.
const maxTrackedClients = 1000

// RateLimiterConfig holds configuration for chat rate limiting
type RateLimiterConfig struct {
	MessagesPerMinute int           // Max chat messages per client per minute
	BurstSize         int           // Allow burst of N requests
	CleanupInterval   time.Duration // How often to clean up old entries
}

// TokenBucket is a lock-protected token bucket. Tokens accrue continuously
// at refillRate per second up to capacity.
type TokenBucket struct {
	mu         sync.Mutex
	available  float64
	capacity   float64
	refillRate float64
	lastRefill time.Time
}

// NewTokenBucket creates a bucket that starts full.
func NewTokenBucket(capacity float64, refillRate float64) *TokenBucket {
	return &TokenBucket{
		available:  capacity,
		capacity:   capacity,
		refillRate: refillRate,
		lastRefill: time.Now(),
	}
}

// refillLocked credits tokens for the time elapsed since the last refill.
// Caller must hold mu.
func (tb *TokenBucket) refillLocked(now time.Time) {
	elapsed := now.Sub(tb.lastRefill).Seconds()
	tb.available = min(tb.capacity, tb.available+elapsed*tb.refillRate)
	tb.lastRefill = now
}

// Allow consumes a token if one is available.
func (tb *TokenBucket) Allow() bool {
	tb.mu.Lock()
	defer tb.mu.Unlock()

	tb.refillLocked(time.Now())
	if tb.available < 1.0 {
		return false
	}
	tb.available -= 1.0
	return true
}

// Remaining reports how many whole tokens are currently available.
func (tb *TokenBucket) Remaining() int {
	tb.mu.Lock()
	defer tb.mu.Unlock()

	tb.refillLocked(time.Now())
	return int(tb.available)
}

// ClientRateLimiter manages chat rate limits per client. Clients are keyed
// by user ID when onboarded, otherwise by remote IP.
type ClientRateLimiter struct {
	config      RateLimiterConfig
	limits      map[string]*TokenBucket
	mu          sync.RWMutex
	logger      *zap.Logger
	stopCleanup chan struct{}
}

// NewClientRateLimiter creates a per-client rate limiter and starts its
// cleanup loop. Call Stop on shutdown.
func NewClientRateLimiter(config RateLimiterConfig, logger *zap.Logger) *ClientRateLimiter {
	limiter := &ClientRateLimiter{
		config:      config,
		limits:      make(map[string]*TokenBucket),
		logger:      logger,
		stopCleanup: make(chan struct{}),
	}
	go limiter.cleanupRoutine()
	return limiter
}

func (crl *ClientRateLimiter) cleanupRoutine() {
	ticker := time.NewTicker(crl.config.CleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-crl.stopCleanup:
			return
		case <-ticker.C:
			crl.cleanup()
		}
	}
}

// cleanup resets the whole map once it grows past maxTrackedClients. Idle
// clients simply get a fresh bucket on their next request.
func (crl *ClientRateLimiter) cleanup() {
	crl.mu.Lock()
	defer crl.mu.Unlock()

	if len(crl.limits) > maxTrackedClients {
		crl.logger.Info("Cleaning up rate limiter cache", zap.Int("limiters", len(crl.limits)))
		crl.limits = make(map[string]*TokenBucket)
	}
}

// Stop terminates the cleanup loop.
func (crl *ClientRateLimiter) Stop() {
	close(crl.stopCleanup)
}

// bucketFor returns the client's bucket, creating it on first sight with
// BurstSize capacity refilling at MessagesPerMinute/60 tokens per second.
func (crl *ClientRateLimiter) bucketFor(clientKey string) *TokenBucket {
	crl.mu.Lock()
	defer crl.mu.Unlock()

	bucket, ok := crl.limits[clientKey]
	if !ok {
		bucket = NewTokenBucket(float64(crl.config.BurstSize), float64(crl.config.MessagesPerMinute)/60.0)
		crl.limits[clientKey] = bucket
	}
	return bucket
}

// Allow checks if the given client may send another chat message
func (crl *ClientRateLimiter) Allow(clientKey string) bool {
	return crl.bucketFor(clientKey).Allow()
}

// Limit returns remaining tokens and the configured burst for a client
func (crl *ClientRateLimiter) Limit(clientKey string) (remaining int, limit int) {
	crl.mu.RLock()
	bucket, ok := crl.limits[clientKey]
	crl.mu.RUnlock()

	if !ok {
		return crl.config.BurstSize, crl.config.BurstSize
	}
	return bucket.Remaining(), crl.config.BurstSize
}

// RateLimitMiddleware enforces the chat message limit. Rate limit headers
// are attached to every response so clients can pace themselves.
func RateLimitMiddleware(limiter *ClientRateLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		clientKey := UserID(c)
		if clientKey == "" {
			clientKey = c.ClientIP()
		}

		allowed := limiter.Allow(clientKey)
		remaining, limit := limiter.Limit(clientKey)

		c.Header("X-RateLimit-Limit", strconv.Itoa(limit))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(remaining))

		if !allowed {
			logger, _ := c.Get("logger")
			if zapLogger, ok := logger.(*zap.Logger); ok && zapLogger != nil {
				zapLogger.Warn("Rate limit exceeded",
					zap.String("client", clientKey),
					zap.Int("limit", limit))
			}

			c.Header("Retry-After", "60")
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error":       "rate limit exceeded",
				"limit":       limit,
				"remaining":   remaining,
				"retry_after": 60,
			})
			return
		}

		c.Next()
	}
}
