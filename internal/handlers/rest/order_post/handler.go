package order_post

import (
	"encoding/json"
	"errors"
	"net/http"

	"gathr/internal/entities"
	"gathr/internal/generated/dto"
	"gathr/internal/handlers/rest/presenter"
	"gathr/internal/pkg/middlewares/auth"
	"gathr/internal/service/authz"
	"gathr/internal/service/order"
	"gathr/pkg/logger"
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
	var orderCreateDTO dto.OrderCreate
	err := json.NewDecoder(r.Body).Decode(&orderCreateDTO)
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	lines := make([]entities.CartLine, 0, len(orderCreateDTO.Items))
	for _, item := range orderCreateDTO.Items {
		lines = append(lines, entities.CartLine{
			ItemID:   item.ItemID,
			Quantity: item.Quantity,
		})
	}
	checkout := entities.Checkout{
		AddressID:     orderCreateDTO.AddressID,
		ShopID:        orderCreateDTO.ShopID,
		PaymentMethod: entities.PaymentMethodType(orderCreateDTO.PaymentMethod),
		Lines:         lines,
	}

	orderEntity, err := h.service.CreateOrderFromCart(r.Context(), auth.UserID(r.Context()), checkout)
	if err != nil {
		switch {
		case errors.Is(err, order.ErrMissingRequiredFields),
			errors.Is(err, order.ErrInvalidQuantity),
			errors.Is(err, order.ErrInvalidPaymentMethod),
			errors.Is(err, order.ErrItemNotInShop):
			w.WriteHeader(http.StatusBadRequest)
		case errors.Is(err, authz.ErrUnauthorized):
			w.WriteHeader(http.StatusUnauthorized)
		case errors.Is(err, authz.ErrForbidden):
			w.WriteHeader(http.StatusForbidden)
		case errors.Is(err, order.ErrAddressNotFound),
			errors.Is(err, order.ErrShopNotFound),
			errors.Is(err, order.ErrItemNotFound):
			w.WriteHeader(http.StatusNotFound)
		case errors.Is(err, order.ErrOutOfStock),
			errors.Is(err, order.ErrCartAlreadyOrdered):
			w.WriteHeader(http.StatusConflict)
		case errors.Is(err, order.ErrAddressNotGeocoded):
			w.WriteHeader(http.StatusUnprocessableEntity)
		default:
			h.log.With(
				logger.NewField("error", err),
			).Error("create order")
			w.WriteHeader(http.StatusInternalServerError)
		}
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	err = json.NewEncoder(w).Encode(presenter.Order(orderEntity))
	if err != nil {
		h.log.With(
			logger.NewField("error", err),
		).Error("encode JSON response")
	}
}
