package payment_webhook_post

import (
	"errors"
	"io"
	"net/http"

	"gathr/internal/service/payment"
	"gathr/pkg/logger"
)

// Stripe не присылает события больше 64 КБ.
const maxPayloadBytes = 65536

const signatureHeader = "Stripe-Signature"

type Handler struct {
	log     handlerLogger
	service Service
}

func New(log handlerLogger, service Service) *Handler {
	handlerLog := log.With()

	return &Handler{
		log:     handlerLog,
		service: service,
	}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	payload, err := io.ReadAll(io.LimitReader(r.Body, maxPayloadBytes))
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	err = h.service.HandleWebhook(r.Context(), payload, r.Header.Get(signatureHeader))
	if err != nil {
		switch {
		case errors.Is(err, payment.ErrInvalidSignature),
			errors.Is(err, payment.ErrMissingReference):
			h.log.With(
				logger.NewField("error", err),
			).Warn("webhook rejected")
			w.WriteHeader(http.StatusBadRequest)
		default:
			// 5xx заставит шлюз повторить доставку события
			h.log.With(
				logger.NewField("error", err),
			).Error("handle payment webhook")
			w.WriteHeader(http.StatusInternalServerError)
		}
		return
	}

	w.WriteHeader(http.StatusOK)
}
