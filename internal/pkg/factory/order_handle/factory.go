package order_handle

import (
	"context"
	"errors"
	"fmt"

	"gathr/internal/entities"
	"gathr/internal/service/order_events"
)

type StatusHandlerFactory struct {
	effects   order_events.SideEffects
	receipts  order_events.ReceiptSender
	stock     order_events.StockRestorer
	locations order_events.LocationStore
}

func NewStatusHandlerFactory(
	effects order_events.SideEffects,
	receipts order_events.ReceiptSender,
	stock order_events.StockRestorer,
	locations order_events.LocationStore,
) *StatusHandlerFactory {
	return &StatusHandlerFactory{
		effects:   effects,
		receipts:  receipts,
		stock:     stock,
		locations: locations,
	}
}

func (f *StatusHandlerFactory) GetHandler(status entities.OrderStatusType) (order_events.ExecuteFn, error) {
	switch status {
	case entities.OrderDelivered:
		return f.deliveredHandler, nil
	case entities.OrderCancelled:
		return f.cancelledHandler, nil
	case entities.OrderRejected:
		return f.rejectedHandler, nil
	default:
		return nil, fmt.Errorf("%w: %s", order_events.ErrUndefinedStatus, status)
	}
}

func (f *StatusHandlerFactory) deliveredHandler(ctx context.Context, order *entities.Order) error {
	locationErr := f.clearLocation(ctx, order)
	receiptErr := f.once(ctx, order, entities.SideEffectReceiptSent, func(ctx context.Context) error {
		if err := f.receipts.SendReceipt(ctx, order); err != nil {
			return fmt.Errorf("send receipt for delivered order %s: %w", order.ID, err)
		}
		return nil
	})
	return errors.Join(locationErr, receiptErr)
}

func (f *StatusHandlerFactory) cancelledHandler(ctx context.Context, order *entities.Order) error {
	locationErr := f.clearLocation(ctx, order)
	return errors.Join(locationErr, f.restoreStock(ctx, order))
}

func (f *StatusHandlerFactory) rejectedHandler(ctx context.Context, order *entities.Order) error {
	return f.restoreStock(ctx, order)
}

func (f *StatusHandlerFactory) restoreStock(ctx context.Context, order *entities.Order) error {
	return f.once(ctx, order, entities.SideEffectStockRestored, func(ctx context.Context) error {
		if err := f.stock.RestoreOrderStock(ctx, order); err != nil {
			return fmt.Errorf("restore stock for %s order %s: %w", order.Status, order.ID, err)
		}
		return nil
	})
}

func (f *StatusHandlerFactory) clearLocation(ctx context.Context, order *entities.Order) error {
	if order.CarrierID == nil {
		return nil
	}
	if err := f.locations.Delete(ctx, *order.CarrierID); err != nil {
		return fmt.Errorf("clear location of carrier %s: %w", *order.CarrierID, err)
	}
	return nil
}

// once выполняет реакцию не более одного раза на заказ. При ошибке отметка снимается,
// и повторная доставка события попробует снова.
func (f *StatusHandlerFactory) once(
	ctx context.Context,
	order *entities.Order,
	effect entities.OrderSideEffect,
	fn func(ctx context.Context) error,
) error {
	claimed, err := f.effects.ClaimSideEffect(ctx, order.ID, effect)
	if err != nil {
		return err
	}
	if !claimed {
		return nil
	}

	if err := fn(ctx); err != nil {
		if releaseErr := f.effects.ReleaseSideEffect(context.WithoutCancel(ctx), order.ID, effect); releaseErr != nil {
			return errors.Join(err, releaseErr)
		}
		return err
	}
	return nil
}
