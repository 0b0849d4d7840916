package daemon

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// RateLimiter implements IP-based rate limiting using the token bucket
// algorithm. The callback endpoints accept unauthenticated requests from
// whatever can reach the loopback interface, so they are kept behind a
// per-IP budget.
type RateLimiter struct {
	buckets       sync.Map      // map[string]*bucket (IP address -> bucket)
	rate          float64       // Tokens per second
	burst         int           // Maximum burst capacity
	cleanupTicker *time.Ticker  // Periodic cleanup ticker
	stopCleanup   chan struct{} // Channel to stop cleanup goroutine
	stopOnce      sync.Once
}

// bucket represents a token bucket for a single IP address. Bursts are
// allowed up to the burst limit, then tokens refill at the configured
// rate.
type bucket struct {
	mu         sync.Mutex // Protects tokens and lastRefill
	tokens     float64    // Current number of available tokens
	lastRefill time.Time  // Last time tokens were refilled
}

// NewRateLimiter creates a new IP-based rate limiter. rate is the number
// of tokens added per second, burst the maximum number of tokens a
// bucket holds.
func NewRateLimiter(rate float64, burst int) *RateLimiter {
	rl := &RateLimiter{
		rate:        rate,
		burst:       burst,
		stopCleanup: make(chan struct{}),
	}

	rl.cleanupTicker = time.NewTicker(5 * time.Minute)
	go rl.cleanup()

	logrus.WithFields(logrus.Fields{
		"rate":  rate,
		"burst": burst,
	}).Debug("Rate limiter initialized")

	return rl
}

// Middleware returns a gin middleware enforcing the limit. Applied to
// the callback routes, which are the only ones a page outside the agent
// posts to.
func (rl *RateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		ip := c.ClientIP()

		if !rl.Allow(ip) {
			logrus.WithFields(logrus.Fields{
				"ip":     ip,
				"path":   c.Request.URL.Path,
				"method": c.Request.Method,
			}).Warn("Rate limit exceeded")

			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error": "Rate limit exceeded. Please try again later.",
			})
			return
		}

		c.Next()
	}
}

// Allow checks if a request from the given IP address should be allowed.
// Tokens refill continuously since the last request, capped at the burst
// size; each allowed request consumes one token.
func (rl *RateLimiter) Allow(ip string) bool {
	now := time.Now()

	value, _ := rl.buckets.LoadOrStore(ip, &bucket{
		tokens:     float64(rl.burst), // Start with full bucket
		lastRefill: now,
	})

	b := value.(*bucket)
	b.mu.Lock()
	defer b.mu.Unlock()

	elapsed := now.Sub(b.lastRefill).Seconds()
	b.tokens += elapsed * rl.rate

	if b.tokens > float64(rl.burst) {
		b.tokens = float64(rl.burst)
	}

	b.lastRefill = now

	if b.tokens >= 1.0 {
		b.tokens -= 1.0
		return true
	}

	return false
}

// cleanup removes buckets that have not been touched for 10 minutes so
// the map does not grow without bound.
func (rl *RateLimiter) cleanup() {
	for {
		select {
		case <-rl.cleanupTicker.C:
			cutoff := time.Now().Add(-10 * time.Minute)
			count := 0

			rl.buckets.Range(func(key, value interface{}) bool {
				b := value.(*bucket)
				b.mu.Lock()
				shouldDelete := b.lastRefill.Before(cutoff)
				b.mu.Unlock()

				if shouldDelete {
					rl.buckets.Delete(key)
					count++
				}
				return true
			})

			if count > 0 {
				logrus.WithField("count", count).Debug("Cleaned up stale rate limiter buckets")
			}

		case <-rl.stopCleanup:
			rl.cleanupTicker.Stop()
			return
		}
	}
}

// Stop stops the cleanup goroutine. Called on server shutdown, safe to
// call more than once.
func (rl *RateLimiter) Stop() {
	rl.stopOnce.Do(func() {
		close(rl.stopCleanup)
	})
}

// Size returns the number of tracked IP addresses.
func (rl *RateLimiter) Size() int {
	count := 0
	rl.buckets.Range(func(_, _ interface{}) bool {
		count++
		return true
	})
	return count
}
