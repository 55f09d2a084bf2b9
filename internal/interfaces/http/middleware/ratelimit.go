package middleware

import (
	"encoding/json"
	"math"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/turtacn/StayLedger/pkg/errors"
	"github.com/turtacn/StayLedger/pkg/types/common"
)

// RateLimiter decides whether a request identified by key may proceed.
type RateLimiter interface {
	Allow(key string) (bool, RateLimitInfo)
}

// RateLimitInfo is the limiter state reported in response headers.
type RateLimitInfo struct {
	Limit      int
	Remaining  int
	RetryAfter time.Duration
}

// RateLimitConfig configures the rate limit middleware.
type RateLimitConfig struct {
	RequestsPerSecond float64
	BurstSize         int
	// KeyFunc extracts the limiter key. Defaults to OrgKeyFunc.
	KeyFunc   func(r *http.Request) string
	SkipPaths []string
	// IdleTTL is how long an unused key keeps its limiter.
	IdleTTL time.Duration
}

func DefaultRateLimitConfig() RateLimitConfig {
	return RateLimitConfig{
		RequestsPerSecond: 10,
		BurstSize:         20,
		SkipPaths:         []string{"/healthz", "/readyz", "/metrics"},
		IdleTTL:           5 * time.Minute,
	}
}

type keyedLimiter struct {
	lim      *rate.Limiter
	lastSeen time.Time
}

// KeyLimiter keeps one token bucket per key.
type KeyLimiter struct {
	mu      sync.Mutex
	limit   rate.Limit
	burst   int
	idleTTL time.Duration
	keys    map[string]*keyedLimiter
	now     func() time.Time
}

func NewKeyLimiter(rps float64, burst int, idleTTL time.Duration) *KeyLimiter {
	if burst < 1 {
		burst = 1
	}
	return &KeyLimiter{
		limit:   rate.Limit(rps),
		burst:   burst,
		idleTTL: idleTTL,
		keys:    make(map[string]*keyedLimiter),
		now:     time.Now,
	}
}

// Allow consumes one token for key. Idle keys are swept on the way.
func (l *KeyLimiter) Allow(key string) (bool, RateLimitInfo) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	l.sweep(now)
	k, ok := l.keys[key]
	if !ok {
		k = &keyedLimiter{lim: rate.NewLimiter(l.limit, l.burst)}
		l.keys[key] = k
	}
	k.lastSeen = now

	info := RateLimitInfo{Limit: l.burst}
	if k.lim.AllowN(now, 1) {
		info.Remaining = int(math.Max(0, math.Floor(k.lim.TokensAt(now))))
		return true, info
	}
	r := k.lim.ReserveN(now, 1)
	info.RetryAfter = r.DelayFrom(now)
	r.CancelAt(now)
	return false, info
}

func (l *KeyLimiter) sweep(now time.Time) {
	if l.idleTTL <= 0 {
		return
	}
	for key, k := range l.keys {
		if now.Sub(k.lastSeen) > l.idleTTL {
			delete(l.keys, key)
		}
	}
}

// Len returns the number of tracked keys.
func (l *KeyLimiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.keys)
}

// RateLimit enforces limiter per key and answers 429 with Retry-After.
func RateLimit(limiter RateLimiter, cfg RateLimitConfig) func(http.Handler) http.Handler {
	skip := make(map[string]bool, len(cfg.SkipPaths))
	for _, p := range cfg.SkipPaths {
		skip[p] = true
	}
	keyFunc := cfg.KeyFunc
	if keyFunc == nil {
		keyFunc = OrgKeyFunc
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if skip[r.URL.Path] {
				next.ServeHTTP(w, r)
				return
			}
			allowed, info := limiter.Allow(keyFunc(r))
			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(info.Limit))
			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(info.Remaining))
			if !allowed {
				secs := int(math.Ceil(info.RetryAfter.Seconds()))
				if secs < 1 {
					secs = 1
				}
				w.Header().Set("Retry-After", strconv.Itoa(secs))
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusTooManyRequests)
				_ = json.NewEncoder(w).Encode(common.NewErrorResponse(errors.ErrCodeTooManyRequests.String(), "rate limit exceeded"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// ClientIP returns the remote host without its port.
func ClientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// OrgKeyFunc limits per organisation, falling back to the client address.
func OrgKeyFunc(r *http.Request) string {
	if org := OrgFromContext(r.Context()); org != "" {
		return "org:" + org
	}
	return "ip:" + ClientIP(r)
}

//Personal.AI order the ending
