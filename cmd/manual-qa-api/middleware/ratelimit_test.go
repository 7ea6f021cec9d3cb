package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/wladywlady/t3-render/internal/cache"
	"github.com/wladywlady/t3-render/internal/observability"
)

type failingStore struct{}

func (failingStore) Incr(ctx context.Context, key string, window time.Duration) (int64, error) {
	return 0, errors.New("store down")
}

func (failingStore) Close() error { return nil }

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestRateLimit_AllowsUnderBudget(t *testing.T) {
	limiter := RateLimit(cache.NewMemoryStore(), RateLimitConfig{
		RequestsPerWindow: 3,
		Window:            time.Minute,
	}, observability.NopLogger())

	handler := limiter(okHandler())

	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodPost, "/api/chat", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)
	}
}

func TestRateLimit_RejectsOverBudget(t *testing.T) {
	limiter := RateLimit(cache.NewMemoryStore(), RateLimitConfig{
		RequestsPerWindow: 2,
		Window:            time.Minute,
	}, observability.NopLogger())

	handler := limiter(okHandler())

	var last *httptest.ResponseRecorder
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodPost, "/api/chat", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		last = httptest.NewRecorder()
		handler.ServeHTTP(last, req)
	}

	assert.Equal(t, http.StatusTooManyRequests, last.Code)
	assert.NotEmpty(t, last.Header().Get("Retry-After"))
	assert.Contains(t, last.Body.String(), "Demasiadas solicitudes")
}

func TestRateLimit_CountsPerClient(t *testing.T) {
	limiter := RateLimit(cache.NewMemoryStore(), RateLimitConfig{
		RequestsPerWindow: 1,
		Window:            time.Minute,
	}, observability.NopLogger())

	handler := limiter(okHandler())

	first := httptest.NewRequest(http.MethodPost, "/api/chat", nil)
	first.RemoteAddr = "10.0.0.1:1234"
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, first)
	assert.Equal(t, http.StatusOK, rec.Code)

	// A different client keeps its own window.
	second := httptest.NewRequest(http.MethodPost, "/api/chat", nil)
	second.RemoteAddr = "10.0.0.2:1234"
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, second)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRateLimit_StoreFailureAllowsRequest(t *testing.T) {
	limiter := RateLimit(failingStore{}, RateLimitConfig{
		RequestsPerWindow: 1,
		Window:            time.Minute,
	}, observability.NopLogger())

	handler := limiter(okHandler())

	req := httptest.NewRequest(http.MethodPost, "/api/chat", nil)
	req.RemoteAddr = "10.0.0.1:1234"
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}
