package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedLimiter(rps float64, burst int, ttl time.Duration) (*KeyLimiter, *time.Time) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	l := NewKeyLimiter(rps, burst, ttl)
	l.now = func() time.Time { return now }
	return l, &now
}

func TestKeyLimiter_BurstThenReject(t *testing.T) {
	l, now := fixedLimiter(1, 2, time.Minute)

	ok, info := l.Allow("org:a")
	require.True(t, ok)
	assert.Equal(t, 2, info.Limit)
	assert.Equal(t, 1, info.Remaining)

	ok, _ = l.Allow("org:a")
	require.True(t, ok)

	ok, info = l.Allow("org:a")
	assert.False(t, ok)
	assert.Equal(t, time.Second, info.RetryAfter)

	// other keys have their own bucket
	ok, _ = l.Allow("org:b")
	assert.True(t, ok)

	*now = now.Add(time.Second)
	ok, _ = l.Allow("org:a")
	assert.True(t, ok)
}

func TestKeyLimiter_SweepsIdleKeys(t *testing.T) {
	l, now := fixedLimiter(5, 5, time.Minute)
	l.Allow("a")
	l.Allow("b")
	assert.Equal(t, 2, l.Len())

	*now = now.Add(2 * time.Minute)
	l.Allow("c")
	assert.Equal(t, 1, l.Len())
}

func TestRateLimit_Middleware(t *testing.T) {
	l, _ := fixedLimiter(1, 1, 0)
	h := RateLimit(l, DefaultRateLimitConfig())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	send := func(path string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		req.RemoteAddr = "10.0.0.1:5555"
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, req)
		return rr
	}

	assert.Equal(t, http.StatusOK, send("/api/v1/rates/USD").Code)
	rr := send("/api/v1/rates/USD")
	assert.Equal(t, http.StatusTooManyRequests, rr.Code)
	assert.Equal(t, "1", rr.Header().Get("Retry-After"))
	assert.Contains(t, rr.Body.String(), "COMMON_007")

	// probes are never limited
	assert.Equal(t, http.StatusOK, send("/healthz").Code)
}

func TestOrgKeyFunc(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "192.0.2.7:1234"
	assert.Equal(t, "ip:192.0.2.7", OrgKeyFunc(req))
}

//Personal.AI order the ending
