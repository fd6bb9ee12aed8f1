package auth

import (
	"strings"
	"sync"
	"time"
)

// LoginLimiter throttles login attempts per IP+username combination.
// Failures are counted inside a fixed window; reaching the limit locks the
// key out for a while.
type LoginLimiter struct {
	mu              sync.Mutex
	attempts        map[string]*attemptRecord
	maxAttempts     int
	windowDuration  time.Duration
	lockoutDuration time.Duration
	now             func() time.Time
	stopCleanup     chan struct{}
	stopOnce        sync.Once
}

type attemptRecord struct {
	count        int
	firstAttempt time.Time
	lockedUntil  time.Time
}

// LoginLimiterConfig contains configuration for the login limiter.
type LoginLimiterConfig struct {
	MaxAttempts     int           // default: 5
	WindowDuration  time.Duration // default: 15m
	LockoutDuration time.Duration // default: 30m
	CleanupInterval time.Duration // default: 5m, negative disables the cleanup goroutine
	Now             func() time.Time
}

// NewLoginLimiter creates a limiter and starts its cleanup goroutine.
func NewLoginLimiter(cfg LoginLimiterConfig) *LoginLimiter {
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 5
	}
	if cfg.WindowDuration <= 0 {
		cfg.WindowDuration = 15 * time.Minute
	}
	if cfg.LockoutDuration <= 0 {
		cfg.LockoutDuration = 30 * time.Minute
	}
	if cfg.CleanupInterval == 0 {
		cfg.CleanupInterval = 5 * time.Minute
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	l := &LoginLimiter{
		attempts:        make(map[string]*attemptRecord),
		maxAttempts:     cfg.MaxAttempts,
		windowDuration:  cfg.WindowDuration,
		lockoutDuration: cfg.LockoutDuration,
		now:             cfg.Now,
		stopCleanup:     make(chan struct{}),
	}

	if cfg.CleanupInterval > 0 {
		go l.cleanupLoop(cfg.CleanupInterval)
	}

	return l
}

// Stop stops the background cleanup goroutine. It is safe to call twice.
func (l *LoginLimiter) Stop() {
	l.stopOnce.Do(func() { close(l.stopCleanup) })
}

func limiterKey(ip, username string) string {
	return ip + "|" + strings.ToLower(username)
}

// Allow reports whether a login attempt may proceed. When it may not,
// retryAfter says how long the caller has to wait.
func (l *LoginLimiter) Allow(ip, username string) (bool, time.Duration) {
	now := l.now()

	l.mu.Lock()
	defer l.mu.Unlock()

	record, ok := l.attempts[limiterKey(ip, username)]
	if !ok {
		return true, 0
	}
	if now.Before(record.lockedUntil) {
		return false, record.lockedUntil.Sub(now)
	}
	return true, 0
}

// RecordFailure counts a failed attempt and reports whether the key is now locked out.
func (l *LoginLimiter) RecordFailure(ip, username string) (bool, time.Duration) {
	key := limiterKey(ip, username)
	now := l.now()

	l.mu.Lock()
	defer l.mu.Unlock()

	record, ok := l.attempts[key]
	if !ok || now.Sub(record.firstAttempt) > l.windowDuration {
		record = &attemptRecord{firstAttempt: now}
		l.attempts[key] = record
	}

	record.count++
	if record.count >= l.maxAttempts {
		record.lockedUntil = now.Add(l.lockoutDuration)
		return true, l.lockoutDuration
	}
	return false, 0
}

// RecordSuccess forgets the failures of a key.
func (l *LoginLimiter) RecordSuccess(ip, username string) {
	l.mu.Lock()
	delete(l.attempts, limiterKey(ip, username))
	l.mu.Unlock()
}

func (l *LoginLimiter) cleanupLoop(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			l.cleanup()
		case <-l.stopCleanup:
			return
		}
	}
}

// cleanup drops records whose window and lockout have both run out.
func (l *LoginLimiter) cleanup() {
	now := l.now()

	l.mu.Lock()
	defer l.mu.Unlock()

	for key, record := range l.attempts {
		if now.Sub(record.firstAttempt) > l.windowDuration && !now.Before(record.lockedUntil) {
			delete(l.attempts, key)
		}
	}
}

// tracked returns the number of keys currently held.
func (l *LoginLimiter) tracked() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.attempts)
}
