package dispatch_orders_get

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strconv"

	"gathr/internal/handlers/rest/presenter"
	"gathr/internal/pkg/middlewares/auth"
	"gathr/internal/service/authz"
	"gathr/internal/service/dispatch"
	"gathr/pkg/geo"
	"gathr/pkg/logger"
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
	origin, radiusKm, err := parseQuery(r.URL.Query())
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	nearby, err := h.service.ListNearbyOrders(r.Context(), auth.UserID(r.Context()), origin, radiusKm)
	if err != nil {
		switch {
		case errors.Is(err, geo.ErrInvalidCoordinates),
			errors.Is(err, dispatch.ErrInvalidRadius):
			w.WriteHeader(http.StatusBadRequest)
		case errors.Is(err, authz.ErrUnauthorized):
			w.WriteHeader(http.StatusUnauthorized)
		case errors.Is(err, authz.ErrForbidden):
			w.WriteHeader(http.StatusForbidden)
		default:
			h.log.With(
				logger.NewField("error", err),
			).Error("list nearby orders")
			w.WriteHeader(http.StatusInternalServerError)
		}
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	err = json.NewEncoder(w).Encode(presenter.NearbyOrders(nearby))
	if err != nil {
		h.log.With(
			logger.NewField("error", err),
		).Error("encode JSON response")
	}
}

// parseQuery читает lat, long (обязательны) и radius_km (0 - радиус по умолчанию).
func parseQuery(query url.Values) (geo.Point, float64, error) {
	if query.Get("lat") == "" || query.Get("long") == "" {
		return geo.Point{}, 0, errInvalidQuery
	}
	lat, err := strconv.ParseFloat(query.Get("lat"), 64)
	if err != nil {
		return geo.Point{}, 0, errInvalidQuery
	}
	long, err := strconv.ParseFloat(query.Get("long"), 64)
	if err != nil {
		return geo.Point{}, 0, errInvalidQuery
	}

	var radiusKm float64
	if raw := query.Get("radius_km"); raw != "" {
		radiusKm, err = strconv.ParseFloat(raw, 64)
		if err != nil {
			return geo.Point{}, 0, errInvalidQuery
		}
	}
	return geo.Point{Lat: lat, Long: long}, radiusKm, nil
}
