//go:generate mockgen -source=contract.go -destination=./contract_mocks_test.go -package=stock_test
package stock

import (
	"context"

	"gathr/internal/entities"
)

type CartRepository interface {
	GetCartByID(ctx context.Context, cartID string) (*entities.Cart, error)
}

type Catalog interface {
	RestoreStock(ctx context.Context, shopID string, changes []entities.StockChange) error
}
