package ping_get

import (
	"encoding/json"
	"net/http"
	"time"

	"gathr/internal/generated/dto"
	"gathr/pkg/logger"
)

// Handler отвечает pong с именем сервиса и временем сервера.
// Клиенты трекинга сверяют по нему часы для расчёта ETA.
type Handler struct {
	log     handlerLogger
	service string
	now     func() time.Time
}

func New(log handlerLogger, service string) *Handler {
	return &Handler{
		log:     log.With(logger.NewField("handler", "ping_get")),
		service: service,
		now:     time.Now,
	}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	message := "pong"
	now := h.now().UTC()
	res := dto.PingResponse{
		Message: &message,
		Service: &h.service,
		Time:    &now,
	}

	w.Header().Set("Content-Type", "application/json")
	err := json.NewEncoder(w).Encode(res)
	if err != nil {
		h.log.With(
			logger.NewField("error", err),
		).Error("encode JSON response")
	}
}
