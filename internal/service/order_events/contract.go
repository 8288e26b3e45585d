//go:generate mockgen -source=contract.go -destination=./contract_mocks_test.go -package=order_events_test
package order_events

import (
	"context"

	"gathr/internal/entities"
)

type Repository interface {
	GetByID(ctx context.Context, id string) (*entities.Order, error)
}

// SideEffects - отметки однократных реакций в строке заказа.
type SideEffects interface {
	ClaimSideEffect(ctx context.Context, orderID string, effect entities.OrderSideEffect) (bool, error)
	ReleaseSideEffect(ctx context.Context, orderID string, effect entities.OrderSideEffect) error
}

type ReceiptSender interface {
	SendReceipt(ctx context.Context, order *entities.Order) error
}

type StockRestorer interface {
	RestoreOrderStock(ctx context.Context, order *entities.Order) error
}

type LocationStore interface {
	Delete(ctx context.Context, carrierID string) error
}

type (
	ExecuteFn      func(ctx context.Context, order *entities.Order) error
	HandlerFactory interface {
		GetHandler(status entities.OrderStatusType) (ExecuteFn, error)
	}
)
