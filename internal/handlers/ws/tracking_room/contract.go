//go:generate mockgen -source=contract.go -destination=./contract_mocks_test.go -package=tracking_room_test
package tracking_room

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
	Join(ctx context.Context, userID, orderID, name string) (Session, error)
}

// Session - участие одного подключения в комнате заказа.
type Session interface {
	OrderID() string
	Messages() <-chan entities.TrackingMessage
	PublishLocation(ctx context.Context, point geo.Point) error
	SendChat(text string) error
	Leave(ctx context.Context)
}
