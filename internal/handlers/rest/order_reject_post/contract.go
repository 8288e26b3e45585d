//go:generate mockgen -source=contract.go -destination=./contract_mocks_test.go -package=order_reject_post_test
package order_reject_post

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
	RejectOrder(ctx context.Context, merchantID, orderID string) (*entities.Order, error)
}
