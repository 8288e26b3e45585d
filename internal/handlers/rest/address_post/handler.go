package address_post

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
	"gathr/pkg/geo"
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
	var addressCreateDTO dto.AddressCreate
	err := json.NewDecoder(r.Body).Decode(&addressCreateDTO)
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	// координаты либо обе, либо ни одной
	if (addressCreateDTO.Lat == nil) != (addressCreateDTO.Long == nil) {
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	addressModify := entities.AddressModify{
		Label: &addressCreateDTO.Label,
		Line:  &addressCreateDTO.Line,
		City:  &addressCreateDTO.City,
	}
	if addressCreateDTO.Lat != nil {
		addressModify.Location = &geo.Point{
			Lat:  *addressCreateDTO.Lat,
			Long: *addressCreateDTO.Long,
		}
	}

	address, err := h.service.CreateAddress(r.Context(), auth.UserID(r.Context()), addressModify)
	if err != nil {
		switch {
		case errors.Is(err, order.ErrMissingRequiredFields),
			errors.Is(err, geo.ErrInvalidCoordinates):
			w.WriteHeader(http.StatusBadRequest)
		case errors.Is(err, authz.ErrUnauthorized):
			w.WriteHeader(http.StatusUnauthorized)
		case errors.Is(err, authz.ErrForbidden):
			w.WriteHeader(http.StatusForbidden)
		default:
			h.log.With(
				logger.NewField("error", err),
			).Error("create address")
			w.WriteHeader(http.StatusInternalServerError)
		}
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	err = json.NewEncoder(w).Encode(presenter.Address(address))
	if err != nil {
		h.log.With(
			logger.NewField("error", err),
		).Error("encode JSON response")
	}
}
