package middleware

import (
	"context"
	"encoding/json"
	"log/slog"
	"math"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/DukeRupert/boxoffice/internal/metrics"
)

// =============================================================================
// Rate Limiter
// =============================================================================

// RateLimiter keeps a token bucket per key. A key may spend maxAttempts
// tokens at once; they refill evenly over window.
type RateLimiter struct {
	limit  rate.Limit
	burst  int
	window time.Duration
	now    func() time.Time

	mu      sync.Mutex
	entries map[string]*limiterEntry
}

type limiterEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewRateLimiter creates a rate limiter allowing maxAttempts per window.
func NewRateLimiter(maxAttempts int, window time.Duration) *RateLimiter {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	return &RateLimiter{
		limit:   rate.Every(window / time.Duration(maxAttempts)),
		burst:   maxAttempts,
		window:  window,
		now:     time.Now,
		entries: make(map[string]*limiterEntry),
	}
}

// Allow reports whether a request from key may proceed. When it may not, the
// returned duration is how long until the next token is available.
func (rl *RateLimiter) Allow(key string) (bool, time.Duration) {
	now := rl.now()

	rl.mu.Lock()
	entry, ok := rl.entries[key]
	if !ok {
		entry = &limiterEntry{limiter: rate.NewLimiter(rl.limit, rl.burst)}
		rl.entries[key] = entry
	}
	entry.lastSeen = now
	rl.mu.Unlock()

	r := entry.limiter.ReserveN(now, 1)
	if !r.OK() {
		return false, rl.window
	}
	if delay := r.DelayFrom(now); delay > 0 {
		r.CancelAt(now)
		return false, delay
	}
	return true, 0
}

// Reset forgets key, restoring its full allowance.
func (rl *RateLimiter) Reset(key string) {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	delete(rl.entries, key)
}

// Sweep removes keys idle for longer than the window. An idle key's bucket
// is full again, so dropping it changes nothing.
func (rl *RateLimiter) Sweep() int {
	now := rl.now()

	rl.mu.Lock()
	defer rl.mu.Unlock()

	removed := 0
	for key, entry := range rl.entries {
		if now.Sub(entry.lastSeen) > rl.window {
			delete(rl.entries, key)
			removed++
		}
	}
	return removed
}

// Run sweeps idle keys every window until ctx is done.
func (rl *RateLimiter) Run(ctx context.Context) {
	ticker := time.NewTicker(rl.window)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			rl.Sweep()
		}
	}
}

// =============================================================================
// Rate Limit Middleware
// =============================================================================

// RateLimitMiddleware wraps a rate limiter for use as HTTP middleware.
type RateLimitMiddleware struct {
	limiter    *RateLimiter
	route      string // metrics label
	trustProxy bool   // key on X-Forwarded-For / X-Real-IP instead of RemoteAddr
	logger     *slog.Logger
}

// NewRateLimitMiddleware creates a new rate limit middleware. Set trustProxy
// only when a reverse proxy overwrites the forwarding headers; otherwise a
// client could rotate them to get a fresh allowance per request.
func NewRateLimitMiddleware(limiter *RateLimiter, route string, trustProxy bool, logger *slog.Logger) *RateLimitMiddleware {
	return &RateLimitMiddleware{
		limiter:    limiter,
		route:      route,
		trustProxy: trustProxy,
		logger:     logger,
	}
}

// Limit returns middleware that rate limits requests per client IP.
func (m *RateLimitMiddleware) Limit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		clientIP := rateLimitKey(r, m.trustProxy)

		allowed, retry := m.limiter.Allow(clientIP)
		if allowed {
			next.ServeHTTP(w, r)
			return
		}

		m.logger.Warn("rate limit exceeded",
			"ip", clientIP,
			"path", r.URL.Path,
			"method", r.Method,
		)
		metrics.RateLimited(m.route)

		retryAfter := int(math.Ceil(retry.Seconds()))
		if retryAfter < 1 {
			retryAfter = 1
		}
		w.Header().Set("Retry-After", strconv.Itoa(retryAfter))

		if isAPIRequest(r) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusTooManyRequests)
			_ = json.NewEncoder(w).Encode(map[string]string{
				"error":   "rate_limit_exceeded",
				"message": "Too many requests. Please try again later.",
			})
			return
		}

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`<!DOCTYPE html>
<html>
<head><title>Too Many Requests</title></head>
<body>
<h1>Too Many Requests</h1>
<p>Too many attempts from your network. Please wait a moment and try again.</p>
</body>
</html>`))
	})
}

// =============================================================================
// Auth Rate Limiter (combined limiter for auth endpoints)
// =============================================================================

// AuthRateLimiter rate limits the credential-accepting endpoints.
type AuthRateLimiter struct {
	loginLimiter    *RateLimiter
	registerLimiter *RateLimiter
	trustProxy      bool
	logger          *slog.Logger
}

// NewAuthRateLimiter creates rate limiters for auth endpoints.
// - Login: loginAttempts per loginWindow
// - Register: 3 attempts per hour
func NewAuthRateLimiter(loginAttempts int, loginWindow time.Duration, trustProxy bool, logger *slog.Logger) *AuthRateLimiter {
	return &AuthRateLimiter{
		loginLimiter:    NewRateLimiter(loginAttempts, loginWindow),
		registerLimiter: NewRateLimiter(3, time.Hour),
		trustProxy:      trustProxy,
		logger:          logger,
	}
}

// LimitLogin returns middleware for rate limiting login attempts.
func (a *AuthRateLimiter) LimitLogin(next http.Handler) http.Handler {
	return NewRateLimitMiddleware(a.loginLimiter, "login", a.trustProxy, a.logger).Limit(next)
}

// LimitRegister returns middleware for rate limiting registration attempts.
func (a *AuthRateLimiter) LimitRegister(next http.Handler) http.Handler {
	return NewRateLimitMiddleware(a.registerLimiter, "register", a.trustProxy, a.logger).Limit(next)
}

// Run sweeps idle entries from both limiters until ctx is done.
func (a *AuthRateLimiter) Run(ctx context.Context) {
	go a.registerLimiter.Run(ctx)
	a.loginLimiter.Run(ctx)
}

// =============================================================================
// Helpers
// =============================================================================

// rateLimitKey returns the address a request is throttled under. The
// forwarding headers are client-controlled unless a proxy rewrites them.
func rateLimitKey(r *http.Request, trustProxy bool) string {
	if trustProxy {
		return getClientIP(r)
	}
	return remoteIP(r)
}

// getClientIP extracts the client IP from the request, considering proxy
// headers. Use it for logging; see rateLimitKey for throttling.
func getClientIP(r *http.Request) string {
	// X-Forwarded-For: client, proxy1, proxy2
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		if clientIP := strings.TrimSpace(first); clientIP != "" {
			return clientIP
		}
	}

	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return strings.TrimSpace(xri)
	}

	return remoteIP(r)
}

// remoteIP is the peer address of the connection without its port.
func remoteIP(r *http.Request) string {
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		// RemoteAddr might not have a port
		return r.RemoteAddr
	}
	return ip
}
