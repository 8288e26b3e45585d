package graceful_shutdown

import (
	"context"
	"net/http"
	"sync/atomic"
)

const drainBody = `{"error":"Service Unavailable","message":"Server is draining, retry on another instance."}`

// Middleware после начала остановки отвечает 503 и просит клиента закрыть соединение,
// чтобы балансировщик перевёл его на другой инстанс.
func Middleware(draining *atomic.Bool, inFlight context.Context) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !draining.Load() && inFlight.Err() == nil {
				next.ServeHTTP(w, r)
				return
			}

			DrainRejectedRequests.Inc()
			w.Header().Set("Connection", "close")
			w.Header().Set("Retry-After", "1")
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte(drainBody))
		})
	}
}
