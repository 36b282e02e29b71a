package kit

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRateLimiter_SlidingWindow(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	l := NewRateLimiter(2, time.Minute)
	l.now = func() time.Time { return now }

	assert.True(t, l.Allow("a"))
	assert.True(t, l.Allow("a"))
	assert.False(t, l.Allow("a"))
	assert.True(t, l.Allow("b"))

	now = now.Add(61 * time.Second)
	assert.True(t, l.Allow("a"))
}

func TestRateLimiter_Middleware(t *testing.T) {
	l := NewRateLimiter(1, time.Minute)
	h := l.Middleware(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	do := func(xff string) int {
		req := httptest.NewRequest(http.MethodPost, "/admin/login", nil)
		req.Header.Set("X-Forwarded-For", xff)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec.Code
	}

	assert.Equal(t, http.StatusNoContent, do("10.0.0.1"))
	assert.Equal(t, http.StatusTooManyRequests, do("10.0.0.1, 192.168.0.1"))
	assert.Equal(t, http.StatusNoContent, do("10.0.0.2"))
}

func TestMetricsAuth(t *testing.T) {
	h := MetricsAuth("s3cret")(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	cases := map[string]int{
		"":              http.StatusForbidden,
		"Bearer wrong":  http.StatusForbidden,
		"Basic s3cret":  http.StatusForbidden,
		"Bearer s3cret": http.StatusOK,
	}
	for authz, want := range cases {
		req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
		if authz != "" {
			req.Header.Set("Authorization", authz)
		}
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		assert.Equal(t, want, rec.Code, "authz=%q", authz)
	}
}
