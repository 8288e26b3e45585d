package dispatch_otp_resend_post

import (
	"encoding/json"
	"errors"
	"net/http"

	"gathr/internal/generated/dto"
	"gathr/internal/pkg/middlewares/auth"
	"gathr/internal/service/authz"
	"gathr/internal/service/delivery"
	"gathr/internal/service/order"
	"gathr/internal/service/otp"
	"gathr/pkg/logger"

	"github.com/gorilla/mux"
)

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
	orderID := mux.Vars(r)["id"]

	expiresAt, err := h.service.ResendDeliveryOtp(r.Context(), auth.UserID(r.Context()), orderID)
	if err != nil {
		switch {
		case errors.Is(err, order.ErrInvalidOrderID):
			w.WriteHeader(http.StatusBadRequest)
		case errors.Is(err, authz.ErrUnauthorized):
			w.WriteHeader(http.StatusUnauthorized)
		case errors.Is(err, authz.ErrForbidden):
			w.WriteHeader(http.StatusForbidden)
		case errors.Is(err, order.ErrOrderNotFound):
			w.WriteHeader(http.StatusNotFound)
		case errors.Is(err, order.ErrInvalidTransition):
			w.WriteHeader(http.StatusConflict)
		case errors.Is(err, delivery.ErrNoContact):
			w.WriteHeader(http.StatusUnprocessableEntity)
		case errors.Is(err, otp.ErrNotifyUnavailable):
			w.WriteHeader(http.StatusServiceUnavailable)
		default:
			h.log.With(
				logger.NewField("order_id", orderID),
				logger.NewField("error", err),
			).Error("resend delivery otp")
			w.WriteHeader(http.StatusInternalServerError)
		}
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	err = json.NewEncoder(w).Encode(dto.OtpIssued{ExpiresAt: expiresAt})
	if err != nil {
		h.log.With(
			logger.NewField("error", err),
		).Error("encode JSON response")
	}
}
