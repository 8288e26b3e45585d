package entities

import "time"

// Cart - снимок корзины на момент оформления. После создания заказа меняется
// только обратная ссылка OrderID.
type Cart struct {
	ID         string
	CustomerID string
	ShopID     string
	OrderID    *string
	Items      []CartItem
	CreatedAt  time.Time
}

type CartItem struct {
	ItemID    string
	Name      string
	Quantity  int32
	UnitPrice int64
}

func (c CartItem) LineTotal() int64 {
	return c.UnitPrice * int64(c.Quantity)
}

// CartLine - позиция, которую клиент хочет купить; цена берётся из каталога.
type CartLine struct {
	ItemID   string
	Quantity int32
}

type Checkout struct {
	AddressID     string
	ShopID        string
	PaymentMethod PaymentMethodType
	Lines         []CartLine
}

type CatalogItem struct {
	ID     string
	ShopID string
	Name   string
	Price  int64
}

type StockChange struct {
	ItemID   string
	Quantity int32
}

func StockChangesFromCart(items []CartItem) []StockChange {
	changes := make([]StockChange, 0, len(items))
	for _, item := range items {
		changes = append(changes, StockChange{ItemID: item.ItemID, Quantity: item.Quantity})
	}
	return changes
}
