package payment_refund_post

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"gathr/internal/generated/dto"
	"gathr/internal/handlers/rest/presenter"
	"gathr/internal/pkg/middlewares/auth"
	"gathr/internal/service/authz"
	"gathr/internal/service/order"
	"gathr/internal/service/payment"
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

	// пустое тело означает возврат всей оплаченной суммы
	var refundDTO dto.RefundRequest
	err := json.NewDecoder(r.Body).Decode(&refundDTO)
	if err != nil && !errors.Is(err, io.EOF) {
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	orderEntity, err := h.service.Refund(r.Context(), auth.UserID(r.Context()), orderID, refundDTO.Amount)
	if err != nil {
		switch {
		case errors.Is(err, order.ErrInvalidOrderID),
			errors.Is(err, payment.ErrInvalidAmount):
			w.WriteHeader(http.StatusBadRequest)
		case errors.Is(err, authz.ErrUnauthorized):
			w.WriteHeader(http.StatusUnauthorized)
		case errors.Is(err, authz.ErrForbidden):
			w.WriteHeader(http.StatusForbidden)
		case errors.Is(err, order.ErrOrderNotFound):
			w.WriteHeader(http.StatusNotFound)
		case errors.Is(err, payment.ErrNotOnlinePayment),
			errors.Is(err, payment.ErrRefundNotAllowed),
			errors.Is(err, payment.ErrRefundInProgress),
			errors.Is(err, payment.ErrRefundUnavailable):
			w.WriteHeader(http.StatusConflict)
		case errors.Is(err, payment.ErrGatewayUnavailable):
			w.WriteHeader(http.StatusServiceUnavailable)
		default:
			h.log.With(
				logger.NewField("order_id", orderID),
				logger.NewField("error", err),
			).Error("refund payment")
			w.WriteHeader(http.StatusInternalServerError)
		}
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	err = json.NewEncoder(w).Encode(presenter.PaymentStatus(orderEntity))
	if err != nil {
		h.log.With(
			logger.NewField("error", err),
		).Error("encode JSON response")
	}
}
