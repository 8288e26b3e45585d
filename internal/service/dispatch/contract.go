//go:generate mockgen -source=contract.go -destination=./contract_mocks_test.go -package=dispatch_test
package dispatch

import (
	"context"

	"gathr/internal/entities"
	"gathr/pkg/geo"
	"gathr/pkg/logger"
)

type Repository interface {
	// ListDispatchable отдаёт страницу кандидатов в порядке (created_at, id) строго после after.
	ListDispatchable(ctx context.Context, box geo.BoundingBox, after *entities.Order, limit uint64) ([]entities.NearbyOrder, error)
	Claim(ctx context.Context, orderID, carrierID string) (*entities.Order, error)
	GetByID(ctx context.Context, id string) (*entities.Order, error)
	UpdateStatus(ctx context.Context, update entities.StatusUpdate) (*entities.Order, error)
}

type Authorizer interface {
	RequireRole(ctx context.Context, userID string, roles ...entities.Role) (*entities.User, error)
}

type EventPublisher interface {
	PublishStatusChanged(ctx context.Context, event entities.OrderStatusChanged) error
}

type serviceLogger interface {
	Info(msg string, fields ...logger.Field)
	Warn(msg string, fields ...logger.Field)
	Error(msg string, fields ...logger.Field)
	With(fields ...logger.Field) logger.Logger
}
