//go:generate mockgen -source=contract.go -destination=./contract_mocks_test.go -package=dispatch_deliver_post_test
package dispatch_deliver_post

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
	CompleteDelivery(ctx context.Context, carrierID, orderID, code string) (*entities.Receipt, error)
}
