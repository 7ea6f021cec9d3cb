package middleware

import (
	"net/http"
	"runtime/debug"

	"github.com/wladywlady/t3-render/internal/observability"
	"github.com/wladywlady/t3-render/internal/qa"
)

// Recover returns middleware that converts a handler panic into the standard
// internal-error response. The error contract promises an {error: ...} body
// for every failure class, including faults nothing anticipated.
func Recover(logger *observability.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					logger.Error().
						Interface("panic", rec).
						Str("path", r.URL.Path).
						Str("stack", string(debug.Stack())).
						Msg("Recovered from handler panic")

					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					w.Write([]byte(`{"error":"` + qa.MsgInternal + `"}`))
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}
