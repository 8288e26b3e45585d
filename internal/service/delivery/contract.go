//go:generate mockgen -source=contract.go -destination=./contract_mocks_test.go -package=delivery_test
package delivery

import (
	"context"
	"time"

	"gathr/internal/entities"
	"gathr/pkg/geo"
	"gathr/pkg/logger"
)

type Repository interface {
	GetByID(ctx context.Context, id string) (*entities.Order, error)
	GetCartByID(ctx context.Context, cartID string) (*entities.Cart, error)
	GetAddressByID(ctx context.Context, id string) (*entities.Address, error)
	UpdateStatus(ctx context.Context, update entities.StatusUpdate) (*entities.Order, error)
}

type Authorizer interface {
	RequireRole(ctx context.Context, userID string, roles ...entities.Role) (*entities.User, error)
}

type ContactProvider interface {
	GetUserContact(ctx context.Context, userID string) (*entities.Contact, error)
}

type ShopProvider interface {
	GetShop(ctx context.Context, shopID string) (*entities.Shop, error)
}

type OtpGate interface {
	Issue(ctx context.Context, key string) (time.Time, error)
	Resend(ctx context.Context, key string) (time.Time, error)
	Verify(ctx context.Context, key, code string) error
}

type ReceiptComposer interface {
	Quote(items []entities.CartItem, shop geo.Point, destination geo.Point) (entities.Charges, error)
	Compose(order *entities.Order, cart *entities.Cart, deliveredAt time.Time) *entities.Receipt
}

type LocationStore interface {
	Delete(ctx context.Context, carrierID string) error
}

type TrackingRooms interface {
	Close(orderID string)
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
