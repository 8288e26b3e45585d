//go:generate mockgen -source=contract.go -destination=./contract_mocks_test.go -package=address_post_test
package address_post

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
	CreateAddress(ctx context.Context, customerID string, addressModify entities.AddressModify) (*entities.Address, error)
}
