package order

import "time"

type OrderDB struct {
	ID                     string
	CartID                 string
	ShopID                 string
	CustomerID             string
	AddressID              string
	CarrierID              *string
	Status                 string
	PaymentStatus          string
	PaymentMethod          string
	AmountPaid             int64
	GatewaySessionID       *string
	GatewayPaymentIntentID *string
	Subtotal               int64
	Tax                    int64
	DeliveryFee            int64
	Total                  int64
	DistanceKm             float64
	Currency               string
	CreatedAt              time.Time
	UpdatedAt              time.Time
}

type CartDB struct {
	ID         string
	CustomerID string
	ShopID     string
	OrderID    *string
	CreatedAt  time.Time
}

type CartItemDB struct {
	ItemID    string
	Name      string
	Quantity  int32
	UnitPrice int64
}

type AddressDB struct {
	ID         string
	CustomerID string
	Label      string
	Line       string
	City       string
	Lat        *float64
	Long       *float64
	CreatedAt  time.Time
}
