package dispatch_accept_post

import (
	"encoding/json"
	"errors"
	"net/http"

	"gathr/internal/handlers/rest/presenter"
	"gathr/internal/pkg/middlewares/auth"
	"gathr/internal/service/authz"
	"gathr/internal/service/order"
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

	orderEntity, err := h.service.AcceptOrder(r.Context(), auth.UserID(r.Context()), orderID)
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
		case errors.Is(err, order.ErrAlreadyClaimed),
			errors.Is(err, order.ErrNotDispatchable),
			errors.Is(err, order.ErrInvalidTransition):
			w.WriteHeader(http.StatusConflict)
		default:
			h.log.With(
				logger.NewField("order_id", orderID),
				logger.NewField("error", err),
			).Error("accept order")
			w.WriteHeader(http.StatusInternalServerError)
		}
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	err = json.NewEncoder(w).Encode(presenter.Order(orderEntity))
	if err != nil {
		h.log.With(
			logger.NewField("error", err),
		).Error("encode JSON response")
	}
}
