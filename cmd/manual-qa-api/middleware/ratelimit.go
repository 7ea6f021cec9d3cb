package middleware

import (
	"net"
	"net/http"
	"time"

	"github.com/wladywlady/t3-render/internal/cache"
	"github.com/wladywlady/t3-render/internal/observability"
)

// RateLimitConfig configures the fixed-window rate limiter.
type RateLimitConfig struct {
	RequestsPerWindow int
	Window            time.Duration
}

// RateLimit returns middleware limiting requests per client IP over a fixed
// window. The counter store decides single-instance (memory) versus shared
// (redis) accounting. A store failure lets the request through; the limiter
// protects the backends, it must not take the service down with them.
func RateLimit(store cache.CounterStore, cfg RateLimitConfig, logger *observability.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip := clientIP(r)

			count, err := store.Incr(r.Context(), "ratelimit:"+ip, cfg.Window)
			if err != nil {
				logger.Warn().Err(err).Str("ip", ip).Msg("Rate limit store unavailable, allowing request")
				next.ServeHTTP(w, r)
				return
			}

			if count > int64(cfg.RequestsPerWindow) {
				w.Header().Set("Content-Type", "application/json")
				w.Header().Set("Retry-After", cfg.Window.String())
				w.WriteHeader(http.StatusTooManyRequests)
				w.Write([]byte(`{"error":"Demasiadas solicitudes, intenta nuevamente más tarde."}`))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func clientIP(r *http.Request) string {
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}
