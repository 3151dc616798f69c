package api

import (
	"context"
	"net/http"
	"strconv"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// ipRateLimiter keeps one token bucket per client IP for the
// credential-bearing endpoints. Entries idle longer than pruneAfter are
// dropped on the next pass.
type ipRateLimiter struct {
	mu      sync.Mutex
	buckets map[string]*ipBucket

	every rate.Limit
	burst int

	pruneAfter time.Duration
	lastPrune  time.Time
}

type ipBucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

func newIPRateLimiter(perSec float64, burst int) *ipRateLimiter {
	if perSec <= 0 {
		return nil
	}
	if burst <= 0 {
		burst = 1
	}
	return &ipRateLimiter{
		buckets:    make(map[string]*ipBucket),
		every:      rate.Limit(perSec),
		burst:      burst,
		pruneAfter: 10 * time.Minute,
		lastPrune:  time.Now(),
	}
}

func (l *ipRateLimiter) allow(ip string, now time.Time) bool {
	if l == nil || ip == "" {
		return true
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if now.Sub(l.lastPrune) > l.pruneAfter {
		for k, b := range l.buckets {
			if now.Sub(b.lastSeen) > l.pruneAfter {
				delete(l.buckets, k)
			}
		}
		l.lastPrune = now
	}

	b, ok := l.buckets[ip]
	if !ok {
		b = &ipBucket{limiter: rate.NewLimiter(l.every, l.burst)}
		l.buckets[ip] = b
	}
	b.lastSeen = now

	return b.limiter.Allow()
}

// throttle wraps a handler with per-IP limiting. Over-limit requests get a
// 429 with the standard error envelope.
func (h *Handler) throttle(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ip := clientIP(r, h.cfg.TrustProxy)
		if !h.limiter.allow(ip, time.Now()) {
			writeRateLimited(w, 0)
			return
		}
		next(w, r)
	}
}

// loginLockedOut consults the audit trail for recent failed logins against
// the account. Fails open on audit errors: a broken audit query must not
// lock every dealer out.
func (h *Handler) loginLockedOut(ctx context.Context, now time.Time, emailNorm string) bool {
	if h.cfg.LockoutMaxFailures <= 0 || h.cfg.LockoutWindow <= 0 {
		return false
	}
	n, err := h.audit.countLoginFailures(ctx, emailNorm, now.Add(-h.cfg.LockoutWindow))
	if err != nil {
		h.log.Error("auth.login.lockout.count.fail", "err", err)
		return false
	}
	return n >= h.cfg.LockoutMaxFailures
}

func writeRateLimited(w http.ResponseWriter, retryAfter time.Duration) {
	if retryAfter > 0 {
		w.Header().Set("Retry-After", strconv.FormatInt(int64(retryAfter.Seconds()), 10))
	}
	writeError(w, http.StatusTooManyRequests, codeRateLimited, "too many attempts")
}
