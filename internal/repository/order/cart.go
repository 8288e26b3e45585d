package order

import (
	"context"
	"errors"
	"fmt"

	"gathr/internal/entities"
	"gathr/internal/repository"
	"gathr/internal/service/order"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
)

// CreateCart сохраняет снимок корзины. Позиции пишутся одним батчем, вызывать внутри транзакции.
func (r *Repository) CreateCart(ctx context.Context, cart entities.Cart) (*entities.Cart, error) {
	if cart.CustomerID == "" || cart.ShopID == "" || len(cart.Items) == 0 {
		return nil, fmt.Errorf("create cart: %w", order.ErrMissingRequiredFields)
	}

	var cartDB CartDB
	err := r.querier.QueryRow(ctx,
		`INSERT INTO carts (customer_id, shop_id)
		VALUES ($1, $2)
		RETURNING id, customer_id, shop_id, order_id, created_at`,
		cart.CustomerID, cart.ShopID,
	).Scan(&cartDB.ID, &cartDB.CustomerID, &cartDB.ShopID, &cartDB.OrderID, &cartDB.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("create cart: %w", err)
	}

	batch := &pgx.Batch{}
	items := make([]CartItemDB, 0, len(cart.Items))
	for _, item := range cart.Items {
		batch.Queue(
			`INSERT INTO cart_items (cart_id, item_id, name, quantity, unit_price)
			VALUES ($1, $2, $3, $4, $5)`,
			cartDB.ID, item.ItemID, item.Name, item.Quantity, item.UnitPrice,
		)
		items = append(items, CartItemDB(item))
	}

	results := r.querier.SendBatch(ctx, batch)
	for range cart.Items {
		if _, err := results.Exec(); err != nil {
			_ = results.Close()
			if repository.IsPgErrorWithCode(err, repository.PgErrCheckViolation) {
				return nil, fmt.Errorf("create cart item: %w", order.ErrInvalidQuantity)
			}
			return nil, fmt.Errorf("create cart item: %w", err)
		}
	}
	if err := results.Close(); err != nil {
		return nil, fmt.Errorf("close cart items batch: %w", err)
	}

	return ToCartDomain(&cartDB, items), nil
}

// LinkCart проставляет обратную ссылку корзина -> заказ ровно один раз.
func (r *Repository) LinkCart(ctx context.Context, cartID, orderID string) error {
	query, args, err := qb.Update("carts").
		Set("order_id", orderID).
		Where(sq.Eq{"id": cartID}).
		Where(sq.Eq{"order_id": nil}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build link cart query: %w", err)
	}

	tag, err := r.querier.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("link cart %s: %w", cartID, err)
	}
	if tag.RowsAffected() == 0 {
		return order.ErrCartAlreadyOrdered
	}
	return nil
}

func (r *Repository) GetCartByID(ctx context.Context, cartID string) (*entities.Cart, error) {
	var cartDB CartDB
	err := r.querier.QueryRow(ctx,
		`SELECT id, customer_id, shop_id, order_id, created_at FROM carts WHERE id = $1`,
		cartID,
	).Scan(&cartDB.ID, &cartDB.CustomerID, &cartDB.ShopID, &cartDB.OrderID, &cartDB.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) || repository.IsPgErrorWithCode(err, repository.PgErrInvalidTextRepresentation) {
			return nil, order.ErrCartNotFound
		}
		return nil, fmt.Errorf("get cart %s: %w", cartID, err)
	}

	rows, err := r.querier.Query(ctx,
		`SELECT item_id, name, quantity, unit_price FROM cart_items WHERE cart_id = $1 ORDER BY id`,
		cartID,
	)
	if err != nil {
		return nil, fmt.Errorf("get cart items %s: %w", cartID, err)
	}
	defer rows.Close()

	var items []CartItemDB
	for rows.Next() {
		var item CartItemDB
		if err := rows.Scan(&item.ItemID, &item.Name, &item.Quantity, &item.UnitPrice); err != nil {
			return nil, fmt.Errorf("scan cart item: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration: %w", err)
	}

	return ToCartDomain(&cartDB, items), nil
}
