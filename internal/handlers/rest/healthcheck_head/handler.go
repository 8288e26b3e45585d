package healthcheck_head

import (
	"context"
	"net/http"
	"sync/atomic"
	"time"

	"gathr/pkg/logger"
)

const pingTimeout = 2 * time.Second

type Handler struct {
	log            handlerLogger
	isShuttingDown *atomic.Bool
	deps           map[string]Pinger
}

func New(log handlerLogger, isShuttingDown *atomic.Bool, deps map[string]Pinger) *Handler {
	handlerLog := log.With()

	return &Handler{
		log:            handlerLog,
		isShuttingDown: isShuttingDown,
		deps:           deps,
	}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if h.isShuttingDown.Load() {
		w.WriteHeader(http.StatusServiceUnavailable)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), pingTimeout)
	defer cancel()

	for name, dep := range h.deps {
		if err := dep.Ping(ctx); err != nil {
			h.log.With(
				logger.NewField("dependency", name),
				logger.NewField("error", err),
			).Warn("dependency is not ready")
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
	}
	w.WriteHeader(http.StatusNoContent)
}

// PingerFunc позволяет передать проверку в виде функции, например для redis-клиента.
type PingerFunc func(ctx context.Context) error

func (f PingerFunc) Ping(ctx context.Context) error {
	return f(ctx)
}
