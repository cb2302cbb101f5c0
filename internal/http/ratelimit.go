package http

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

// UploadLimiter locks out clients that keep sending rejected uploads.
// Failures are counted per client IP within a sliding window.
type UploadLimiter struct {
	mu              sync.Mutex
	attempts        map[string]*attemptRecord
	maxFailures     int
	windowDuration  time.Duration
	lockoutDuration time.Duration
	cleanupInterval time.Duration
	lastCleanup     time.Time
	now             func() time.Time
}

type attemptRecord struct {
	count        int
	firstAttempt time.Time
	lockedUntil  time.Time
}

// UploadLimitConfig contains configuration for the upload limiter.
type UploadLimitConfig struct {
	MaxFailures     int           // Rejected uploads before lockout (default: 10)
	WindowDuration  time.Duration // Time window for counting failures (default: 15m)
	LockoutDuration time.Duration // How long to lock out after max failures (default: 15m)
}

// DefaultUploadLimitConfig returns the defaults used when fields are zero.
func DefaultUploadLimitConfig() UploadLimitConfig {
	return UploadLimitConfig{
		MaxFailures:     10,
		WindowDuration:  15 * time.Minute,
		LockoutDuration: 15 * time.Minute,
	}
}

// NewUploadLimiter creates a new limiter with the given configuration.
func NewUploadLimiter(cfg UploadLimitConfig) *UploadLimiter {
	defaults := DefaultUploadLimitConfig()
	if cfg.MaxFailures <= 0 {
		cfg.MaxFailures = defaults.MaxFailures
	}
	if cfg.WindowDuration <= 0 {
		cfg.WindowDuration = defaults.WindowDuration
	}
	if cfg.LockoutDuration <= 0 {
		cfg.LockoutDuration = defaults.LockoutDuration
	}

	return &UploadLimiter{
		attempts:        make(map[string]*attemptRecord),
		maxFailures:     cfg.MaxFailures,
		windowDuration:  cfg.WindowDuration,
		lockoutDuration: cfg.LockoutDuration,
		cleanupInterval: cfg.WindowDuration,
		now:             time.Now,
	}
}

// Allow reports whether ip may upload, and if not, when it may retry.
func (rl *UploadLimiter) Allow(ip string) (bool, time.Duration) {
	now := rl.now()

	rl.mu.Lock()
	defer rl.mu.Unlock()

	record, exists := rl.attempts[ip]
	if !exists {
		return true, 0
	}

	if !record.lockedUntil.IsZero() && now.Before(record.lockedUntil) {
		return false, record.lockedUntil.Sub(now)
	}
	return true, 0
}

// RecordFailure counts a rejected upload. It reports whether ip is now locked out.
func (rl *UploadLimiter) RecordFailure(ip string) bool {
	now := rl.now()

	rl.mu.Lock()
	defer rl.mu.Unlock()

	rl.cleanupLocked(now)

	record, exists := rl.attempts[ip]
	if !exists || now.Sub(record.firstAttempt) > rl.windowDuration {
		record = &attemptRecord{firstAttempt: now}
		rl.attempts[ip] = record
	}

	record.count++
	if record.count >= rl.maxFailures {
		record.lockedUntil = now.Add(rl.lockoutDuration)
		return true
	}
	return false
}

// RecordSuccess clears the failure record of ip.
func (rl *UploadLimiter) RecordSuccess(ip string) {
	rl.mu.Lock()
	delete(rl.attempts, ip)
	rl.mu.Unlock()
}

// cleanupLocked drops expired records at most once per cleanup interval.
func (rl *UploadLimiter) cleanupLocked(now time.Time) {
	if now.Sub(rl.lastCleanup) < rl.cleanupInterval {
		return
	}
	rl.lastCleanup = now

	for key, record := range rl.attempts {
		windowExpired := now.Sub(record.firstAttempt) > rl.windowDuration
		lockoutExpired := record.lockedUntil.IsZero() || now.After(record.lockedUntil)
		if windowExpired && lockoutExpired {
			delete(rl.attempts, key)
		}
	}
}

// Middleware rejects locked out clients and counts the outcome of each upload.
// Only client errors count as failures; busy and server errors do not.
func (rl *UploadLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		ip := c.ClientIP()

		if allowed, retryAfter := rl.Allow(ip); !allowed {
			c.Header("Retry-After", strconv.Itoa(int(retryAfter.Seconds())+1))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, ErrorResponse{
				Error: "too many rejected uploads",
				Code:  "rate_limited",
			})
			return
		}

		c.Next()

		switch status := c.Writer.Status(); {
		case status >= 200 && status < 300:
			rl.RecordSuccess(ip)
		case status == http.StatusBadRequest || status == http.StatusRequestEntityTooLarge:
			rl.RecordFailure(ip)
		}
	}
}
