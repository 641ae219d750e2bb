package kit

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestIPRateLimiter_SlidingWindow(t *testing.T) {
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	l := NewIPRateLimiter(2, time.Minute)
	l.now = func() time.Time { return now }

	_, ok := l.allow("10.0.0.1")
	assert.True(t, ok)
	now = now.Add(10 * time.Second)
	_, ok = l.allow("10.0.0.1")
	assert.True(t, ok)

	wait, ok := l.allow("10.0.0.1")
	assert.False(t, ok)
	assert.Equal(t, 50*time.Second, wait)

	_, ok = l.allow("10.0.0.2")
	assert.True(t, ok, "other clients are counted separately")

	now = now.Add(51 * time.Second)
	_, ok = l.allow("10.0.0.1")
	assert.True(t, ok, "first hit left the window")
}

func TestIPRateLimiter_Middleware(t *testing.T) {
	l := NewIPRateLimiter(1, time.Minute)
	h := l.Middleware(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	req := httptest.NewRequest(http.MethodPost, "/api/products", nil)
	req.RemoteAddr = "192.0.2.7:51234"

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "61", rec.Header().Get("Retry-After"))
	assert.JSONEq(t, `{"message":"too many requests"}`, rec.Body.String())
}
