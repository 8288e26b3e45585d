package dispatch_deliver_post

import (
	"encoding/json"
	"errors"
	"net/http"

	"gathr/internal/generated/dto"
	"gathr/internal/handlers/rest/presenter"
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

	var deliveryCompleteDTO dto.DeliveryComplete
	err := json.NewDecoder(r.Body).Decode(&deliveryCompleteDTO)
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	receipt, err := h.service.CompleteDelivery(r.Context(), auth.UserID(r.Context()), orderID, deliveryCompleteDTO.OtpCode)
	if err != nil {
		switch {
		case errors.Is(err, order.ErrInvalidOrderID),
			errors.Is(err, delivery.ErrMissingOtpCode):
			w.WriteHeader(http.StatusBadRequest)
		case errors.Is(err, authz.ErrUnauthorized):
			w.WriteHeader(http.StatusUnauthorized)
		case errors.Is(err, authz.ErrForbidden):
			w.WriteHeader(http.StatusForbidden)
		case errors.Is(err, order.ErrOrderNotFound),
			errors.Is(err, otp.ErrNotFound):
			w.WriteHeader(http.StatusNotFound)
		case errors.Is(err, order.ErrInvalidTransition):
			w.WriteHeader(http.StatusConflict)
		case errors.Is(err, otp.ErrExpired):
			w.WriteHeader(http.StatusGone)
		case errors.Is(err, otp.ErrMismatch),
			errors.Is(err, delivery.ErrNotGeocoded):
			w.WriteHeader(http.StatusUnprocessableEntity)
		default:
			h.log.With(
				logger.NewField("order_id", orderID),
				logger.NewField("error", err),
			).Error("complete delivery")
			w.WriteHeader(http.StatusInternalServerError)
		}
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	err = json.NewEncoder(w).Encode(presenter.Receipt(receipt))
	if err != nil {
		h.log.With(
			logger.NewField("error", err),
		).Error("encode JSON response")
	}
}
