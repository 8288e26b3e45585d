//go:generate mockgen -source=contract.go -destination=./contract_mocks_test.go -package=order_test
package order

import (
	"context"

	"gathr/internal/entities"
	"gathr/pkg/geo"
	"gathr/pkg/logger"
)

type Repository interface {
	CreateCart(ctx context.Context, cart entities.Cart) (*entities.Cart, error)
	Create(ctx context.Context, orderModify entities.OrderModify) (*entities.Order, error)
	LinkCart(ctx context.Context, cartID, orderID string) error

	GetByID(ctx context.Context, id string) (*entities.Order, error)
	List(ctx context.Context, filter entities.OrderFilter) ([]entities.Order, error)
	UpdateStatus(ctx context.Context, update entities.StatusUpdate) (*entities.Order, error)

	CreateAddress(ctx context.Context, addressModify entities.AddressModify) (*entities.Address, error)
	GetAddressByID(ctx context.Context, id string) (*entities.Address, error)
}

type Authorizer interface {
	RequireRole(ctx context.Context, userID string, roles ...entities.Role) (*entities.User, error)
}

type Catalog interface {
	GetItem(ctx context.Context, itemID string) (*entities.CatalogItem, error)
	GetShop(ctx context.Context, shopID string) (*entities.Shop, error)
	DecrementStock(ctx context.Context, shopID string, changes []entities.StockChange) error
	RestoreStock(ctx context.Context, shopID string, changes []entities.StockChange) error
}

type Pricer interface {
	Quote(items []entities.CartItem, shop geo.Point, destination geo.Point) (entities.Charges, error)
}

type EventPublisher interface {
	PublishStatusChanged(ctx context.Context, event entities.OrderStatusChanged) error
}

type TrackingRooms interface {
	Close(orderID string)
}

type TxManager interface {
	Do(ctx context.Context, fn func(ctx context.Context) error) error
}

type serviceLogger interface {
	Info(msg string, fields ...logger.Field)
	Warn(msg string, fields ...logger.Field)
	Error(msg string, fields ...logger.Field)
	With(fields ...logger.Field) logger.Logger
}
