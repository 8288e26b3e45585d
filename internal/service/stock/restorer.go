package stock

import (
	"context"
	"fmt"

	"gathr/internal/entities"
)

// Restorer возвращает в каталог остатки по снимку корзины отменённого или отклонённого заказа.
type Restorer struct {
	carts   CartRepository
	catalog Catalog
}

func NewRestorer(carts CartRepository, catalog Catalog) *Restorer {
	return &Restorer{
		carts:   carts,
		catalog: catalog,
	}
}

func (r *Restorer) RestoreOrderStock(ctx context.Context, order *entities.Order) error {
	cart, err := r.carts.GetCartByID(ctx, order.CartID)
	if err != nil {
		return fmt.Errorf("get cart %s: %w", order.CartID, err)
	}
	if len(cart.Items) == 0 {
		return nil
	}

	if err := r.catalog.RestoreStock(ctx, order.ShopID, entities.StockChangesFromCart(cart.Items)); err != nil {
		return fmt.Errorf("restore stock for order %s: %w", order.ID, err)
	}
	return nil
}
