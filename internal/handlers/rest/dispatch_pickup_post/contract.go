//go:generate mockgen -source=contract.go -destination=./contract_mocks_test.go -package=dispatch_pickup_post_test
package dispatch_pickup_post

import (
	"context"

	"gathr/internal/entities"
	"gathr/pkg/logger"
)

type handlerLogger interface {
	Info(msg string, fields ...logger.Field)
	Warn(msg string, fields ...logger.Field)
	Error(msg string, fields ...logger.Field)
	With(fields ...logger.Field) logger.Logger
}

type Service interface {
	CompletePickup(ctx context.Context, carrierID, orderID string) (*entities.Order, error)
}
