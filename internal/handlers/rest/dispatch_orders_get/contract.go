//go:generate mockgen -source=contract.go -destination=./contract_mocks_test.go -package=dispatch_orders_get_test
package dispatch_orders_get

import (
	"context"

	"gathr/internal/entities"
	"gathr/pkg/geo"
	"gathr/pkg/logger"
)

type handlerLogger interface {
	Info(msg string, fields ...logger.Field)
	Warn(msg string, fields ...logger.Field)
	Error(msg string, fields ...logger.Field)
	With(fields ...logger.Field) logger.Logger
}

type Service interface {
	ListNearbyOrders(ctx context.Context, carrierID string, origin geo.Point, radiusKm float64) ([]entities.NearbyOrder, error)
}
