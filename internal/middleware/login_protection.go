package middleware

import (
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// LoginProtection provides combined IP rate limiting and account lockout
// protection for the login endpoint.
type LoginProtection struct {
	limiters   map[string]*rate.Limiter
	limitersMu sync.Mutex

	failedAttempts map[string]*loginAttempt
	attemptsMu     sync.RWMutex

	ipRateLimit       rate.Limit
	ipBurst           int
	maxFailedAttempts int           // Lock account after this many failures
	lockoutDuration   time.Duration // Base lockout duration (doubles with each lockout)
	attemptWindow     time.Duration // Window to count failed attempts
}

// loginAttempt tracks failed login attempts for an account.
type loginAttempt struct {
	count       int
	firstFailed time.Time
	lockedUntil time.Time
	lockouts    int // Number of times account has been locked (for exponential backoff)
}

// LoginProtectionConfig holds configuration for login protection.
type LoginProtectionConfig struct {
	// IPRateLimit is requests per second per IP (default: 0.5 = 1 request per 2 seconds)
	IPRateLimit float64
	// IPBurst is the maximum burst size for IP rate limiting (default: 5)
	IPBurst int
	// MaxFailedAttempts before account lockout (default: 5)
	MaxFailedAttempts int
	// LockoutDuration is base lockout time, doubles with each lockout (default: 15 minutes)
	LockoutDuration time.Duration
	// AttemptWindow is the time window for counting failed attempts (default: 15 minutes)
	AttemptWindow time.Duration
}

// DefaultLoginProtectionConfig returns sensible defaults.
func DefaultLoginProtectionConfig() LoginProtectionConfig {
	return LoginProtectionConfig{
		IPRateLimit:       0.5,
		IPBurst:           5,
		MaxFailedAttempts: 5,
		LockoutDuration:   15 * time.Minute,
		AttemptWindow:     15 * time.Minute,
	}
}

// NewLoginProtection creates a new login protection instance.
func NewLoginProtection(cfg LoginProtectionConfig) *LoginProtection {
	if cfg.IPRateLimit <= 0 {
		cfg.IPRateLimit = 0.5
	}
	if cfg.IPBurst <= 0 {
		cfg.IPBurst = 5
	}
	if cfg.MaxFailedAttempts <= 0 {
		cfg.MaxFailedAttempts = 5
	}
	if cfg.LockoutDuration <= 0 {
		cfg.LockoutDuration = 15 * time.Minute
	}
	if cfg.AttemptWindow <= 0 {
		cfg.AttemptWindow = 15 * time.Minute
	}

	return &LoginProtection{
		limiters:          make(map[string]*rate.Limiter),
		failedAttempts:    make(map[string]*loginAttempt),
		ipRateLimit:       rate.Limit(cfg.IPRateLimit),
		ipBurst:           cfg.IPBurst,
		maxFailedAttempts: cfg.MaxFailedAttempts,
		lockoutDuration:   cfg.LockoutDuration,
		attemptWindow:     cfg.AttemptWindow,
	}
}

func (lp *LoginProtection) limiterFor(ip string) *rate.Limiter {
	lp.limitersMu.Lock()
	defer lp.limitersMu.Unlock()

	limiter, ok := lp.limiters[ip]
	if !ok {
		limiter = rate.NewLimiter(lp.ipRateLimit, lp.ipBurst)
		lp.limiters[ip] = limiter
	}
	return limiter
}

// Middleware rate-limits login submissions per client IP.
func (lp *LoginProtection) Middleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip := clientIP(r)
			if !lp.limiterFor(ip).Allow() {
				slog.Warn("login rate limit exceeded", "ip", ip)
				http.Error(w, "Too many requests, slow down", http.StatusTooManyRequests)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// IsAccountLocked reports whether the account is currently locked and,
// if so, how long remains.
func (lp *LoginProtection) IsAccountLocked(email string) (bool, time.Duration) {
	lp.attemptsMu.RLock()
	defer lp.attemptsMu.RUnlock()

	attempt, ok := lp.failedAttempts[email]
	if !ok {
		return false, 0
	}
	if remaining := time.Until(attempt.lockedUntil); remaining > 0 {
		return true, remaining
	}
	return false, 0
}

// RecordFailedAttempt registers a failed login. Returns true with the
// lockout duration when this failure locks the account.
func (lp *LoginProtection) RecordFailedAttempt(email string) (bool, time.Duration) {
	lp.attemptsMu.Lock()
	defer lp.attemptsMu.Unlock()

	now := time.Now()
	attempt, ok := lp.failedAttempts[email]
	if !ok || now.Sub(attempt.firstFailed) > lp.attemptWindow {
		lockouts := 0
		if ok {
			lockouts = attempt.lockouts
		}
		attempt = &loginAttempt{firstFailed: now, lockouts: lockouts}
		lp.failedAttempts[email] = attempt
	}

	attempt.count++
	if attempt.count >= lp.maxFailedAttempts {
		attempt.lockouts++
		// Exponential backoff: double the lockout for each prior lockout
		duration := lp.lockoutDuration * time.Duration(1<<(attempt.lockouts-1))
		attempt.lockedUntil = now.Add(duration)
		attempt.count = 0
		slog.Warn("account locked after repeated failures", "email", email, "duration", duration)
		return true, duration
	}
	return false, 0
}

// RecordSuccess clears failure tracking for the account after a
// successful login.
func (lp *LoginProtection) RecordSuccess(email string) {
	lp.attemptsMu.Lock()
	defer lp.attemptsMu.Unlock()
	delete(lp.failedAttempts, email)
}

// RemainingAttempts returns how many failures remain before lockout.
func (lp *LoginProtection) RemainingAttempts(email string) int {
	lp.attemptsMu.RLock()
	defer lp.attemptsMu.RUnlock()

	attempt, ok := lp.failedAttempts[email]
	if !ok {
		return lp.maxFailedAttempts
	}
	remaining := lp.maxFailedAttempts - attempt.count
	if remaining < 0 {
		return 0
	}
	return remaining
}

// clientIP extracts the bare host from RemoteAddr. Behind chi's RealIP
// middleware RemoteAddr already carries the forwarded address.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
