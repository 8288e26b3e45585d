//go:generate mockgen -source=contract.go -destination=./contract_mocks_test.go -package=tracking_location_get_test
package tracking_location_get

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
	GetCarrierLocation(ctx context.Context, userID, orderID string) (*entities.CarrierTracking, error)
}
