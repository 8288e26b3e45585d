//go:generate mockgen -source=contract.go -destination=./contract_mocks_test.go -package=tracking_test
package tracking

import (
	"context"
	"time"

	"gathr/internal/entities"
	"gathr/pkg/logger"
)

type Repository interface {
	GetByID(ctx context.Context, id string) (*entities.Order, error)
	GetAddressByID(ctx context.Context, id string) (*entities.Address, error)
}

type Authorizer interface {
	RequireRole(ctx context.Context, userID string, roles ...entities.Role) (*entities.User, error)
}

// LocationStore хранит только последнюю точку курьера.
type LocationStore interface {
	Save(ctx context.Context, location entities.CarrierLocation) error
	Get(ctx context.Context, carrierID string) (*entities.CarrierLocation, error)
	Delete(ctx context.Context, carrierID string) error
}

// EtaCalculator - та же тарифная политика, что считает стоимость доставки.
type EtaCalculator interface {
	CalculateETA(distanceKm float64) time.Duration
}

type serviceLogger interface {
	Info(msg string, fields ...logger.Field)
	Warn(msg string, fields ...logger.Field)
	Error(msg string, fields ...logger.Field)
	With(fields ...logger.Field) logger.Logger
}
