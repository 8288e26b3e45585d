package rate_limiter

import (
	"net"
	"net/http"
	"strconv"
	"strings"

	"gathr/internal/pkg/middlewares/auth"
	"gathr/pkg/logger"

	"github.com/gorilla/mux"
)

// Middleware ограничивает запросы на клиента: аутентифицированный клиент
// считается по id пользователя, остальные по IP.
func Middleware(log handlerLogger, rps float64, limiter Limiter) func(http.Handler) http.Handler {
	limitHeader := strconv.FormatFloat(rps, 'f', -1, 64)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := clientKey(r)
			if !limiter.Allow(key) {
				handlerPath := r.URL.Path
				route := mux.CurrentRoute(r)
				if route != nil {
					if template, err := route.GetPathTemplate(); err == nil {
						handlerPath = template
					}
				}

				log.With(
					logger.NewField("method", r.Method),
					logger.NewField("path", r.URL.Path),
					logger.NewField("route", handlerPath),
					logger.NewField("client", key),
				).Warn("rate limit exceeded")

				RejectedRequests.WithLabelValues(r.Method, handlerPath, clientKind(key)).Inc()

				w.Header().Set("X-RateLimit-Limit", limitHeader)
				w.Header().Set("Retry-After", "1")
				w.WriteHeader(http.StatusTooManyRequests)

				_, err := w.Write([]byte(`{"error":"Too Many Requests","message":"Rate limit exceeded. Try again later."}`))
				if err != nil {
					log.With(
						logger.NewField("error", err),
						logger.NewField("path", r.URL.Path),
					).Error("failed to write rate limit response")
				}
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func clientKey(r *http.Request) string {
	if userID := auth.UserID(r.Context()); userID != "" {
		return "user:" + userID
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}
	return "ip:" + host
}

func clientKind(key string) string {
	kind, _, _ := strings.Cut(key, ":")
	return kind
}
