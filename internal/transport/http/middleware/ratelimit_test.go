package middleware

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/stretchr/testify/assert"
	"golang.org/x/time/rate"
)

func TestClientIP_RemoteAddr(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "192.168.1.1:54321"
	assert.Equal(t, "192.168.1.1", clientIP(req))
}

func TestClientIP_RemoteAddrWithoutPort(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "10.0.0.1"
	assert.Equal(t, "10.0.0.1", clientIP(req))
}

func TestClientIP_IgnoresForwardedHeaders(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "203.0.113.9:1234"
	req.Header.Set("X-Forwarded-For", "1.2.3.4")
	req.Header.Set("X-Real-Ip", "5.6.7.8")
	assert.Equal(t, "203.0.113.9", clientIP(req))
}

func okLimited(rl *RateLimiter) http.Handler {
	return rl.Limit(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) }))
}

func TestRateLimiter_BurstThenReject(t *testing.T) {
	rl := NewRateLimiter(rate.Limit(0.001), 2)
	defer rl.Stop()
	h := okLimited(rl)

	codes := make([]int, 0, 3)
	var last *httptest.ResponseRecorder
	for range 3 {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = "203.0.113.9:1234"
		last = httptest.NewRecorder()
		h.ServeHTTP(last, req)
		codes = append(codes, last.Code)
	}
	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)
	assert.Equal(t, "application/json", last.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"error":"too many requests"}`, last.Body.String())
	// one token per 1000s
	assert.Equal(t, "1000", last.Header().Get("Retry-After"))

	// a different client has its own bucket
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "203.0.113.10:1234"
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestRateLimiter_RotatingForwardedForSharesPeerBucket(t *testing.T) {
	rl := NewRateLimiter(rate.Limit(0.001), 1)
	defer rl.Stop()
	h := okLimited(rl)

	allowed := 0
	for i := range 20 {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = "203.0.113.9:1234"
		req.Header.Set("X-Forwarded-For", fmt.Sprintf("198.51.100.%d", i))
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, req)
		if rr.Code == http.StatusOK {
			allowed++
		}
	}
	assert.Equal(t, 1, allowed)
}

func TestRateLimiter_BehindRealIPUsesForwardedClient(t *testing.T) {
	rl := NewRateLimiter(rate.Limit(0.001), 1)
	defer rl.Stop()
	h := chimiddleware.RealIP(okLimited(rl))

	for _, client := range []string{"198.51.100.1", "198.51.100.2"} {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = "10.0.0.2:443" // proxy
		req.Header.Set("X-Forwarded-For", client)
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, req)
		assert.Equal(t, http.StatusOK, rr.Code, client)
	}
}
