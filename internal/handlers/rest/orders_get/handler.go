package orders_get

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strconv"

	"gathr/internal/entities"
	"gathr/internal/handlers/rest/presenter"
	"gathr/internal/pkg/middlewares/auth"
	"gathr/internal/service/authz"
	"gathr/internal/service/order"
	"gathr/pkg/logger"
)

const (
	defaultLimit = 50
	maxLimit     = 200
)

var errInvalidQuery = errors.New("invalid query parameter")

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
	filter, err := parseFilter(r.URL.Query())
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	orders, err := h.service.ListOrders(r.Context(), auth.UserID(r.Context()), filter)
	if err != nil {
		switch {
		case errors.Is(err, order.ErrInvalidFilter):
			w.WriteHeader(http.StatusBadRequest)
		case errors.Is(err, authz.ErrUnauthorized):
			w.WriteHeader(http.StatusUnauthorized)
		case errors.Is(err, authz.ErrForbidden):
			w.WriteHeader(http.StatusForbidden)
		default:
			h.log.With(
				logger.NewField("error", err),
			).Error("list orders")
			w.WriteHeader(http.StatusInternalServerError)
		}
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	err = json.NewEncoder(w).Encode(presenter.Orders(orders))
	if err != nil {
		h.log.With(
			logger.NewField("error", err),
		).Error("encode JSON response")
	}
}

func parseFilter(query url.Values) (entities.OrderFilter, error) {
	filter := entities.OrderFilter{
		ShopIDs: query["shop_id"],
		Limit:   defaultLimit,
	}
	for _, status := range query["status"] {
		filter.Statuses = append(filter.Statuses, entities.OrderStatusType(status))
	}

	if raw := query.Get("limit"); raw != "" {
		limit, err := strconv.ParseUint(raw, 10, 64)
		if err != nil || limit == 0 || limit > maxLimit {
			return entities.OrderFilter{}, errInvalidQuery
		}
		filter.Limit = limit
	}
	if raw := query.Get("offset"); raw != "" {
		offset, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			return entities.OrderFilter{}, errInvalidQuery
		}
		filter.Offset = offset
	}
	return filter, nil
}
