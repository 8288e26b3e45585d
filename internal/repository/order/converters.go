package order

import (
	"gathr/internal/entities"
	"gathr/pkg/geo"
)

func ToDomain(o *OrderDB) *entities.Order {
	if o == nil {
		return nil
	}
	return &entities.Order{
		ID:                     o.ID,
		CartID:                 o.CartID,
		ShopID:                 o.ShopID,
		CustomerID:             o.CustomerID,
		AddressID:              o.AddressID,
		CarrierID:              o.CarrierID,
		Status:                 entities.OrderStatusType(o.Status),
		PaymentStatus:          entities.PaymentStatusType(o.PaymentStatus),
		PaymentMethod:          entities.PaymentMethodType(o.PaymentMethod),
		AmountPaid:             o.AmountPaid,
		GatewaySessionID:       o.GatewaySessionID,
		GatewayPaymentIntentID: o.GatewayPaymentIntentID,
		Charges: entities.Charges{
			Subtotal:    o.Subtotal,
			Tax:         o.Tax,
			DeliveryFee: o.DeliveryFee,
			Total:       o.Total,
			DistanceKm:  o.DistanceKm,
			Currency:    o.Currency,
		},
		CreatedAt: o.CreatedAt,
		UpdatedAt: o.UpdatedAt,
	}
}

func ToDomainList(orders []OrderDB) []entities.Order {
	result := make([]entities.Order, 0, len(orders))
	for i := range orders {
		result = append(result, *ToDomain(&orders[i]))
	}
	return result
}

func ToCartDomain(c *CartDB, items []CartItemDB) *entities.Cart {
	if c == nil {
		return nil
	}
	cart := &entities.Cart{
		ID:         c.ID,
		CustomerID: c.CustomerID,
		ShopID:     c.ShopID,
		OrderID:    c.OrderID,
		Items:      make([]entities.CartItem, 0, len(items)),
		CreatedAt:  c.CreatedAt,
	}
	for _, item := range items {
		cart.Items = append(cart.Items, entities.CartItem(item))
	}
	return cart
}

func ToAddressDomain(a *AddressDB) *entities.Address {
	if a == nil {
		return nil
	}
	address := &entities.Address{
		ID:         a.ID,
		CustomerID: a.CustomerID,
		Label:      a.Label,
		Line:       a.Line,
		City:       a.City,
		CreatedAt:  a.CreatedAt,
	}
	if a.Lat != nil && a.Long != nil {
		address.Location = &geo.Point{Lat: *a.Lat, Long: *a.Long}
	}
	return address
}

func FromAddressModify(m *entities.AddressModify) *AddressDB {
	if m == nil {
		return nil
	}
	addressDB := &AddressDB{}
	if m.CustomerID != nil {
		addressDB.CustomerID = *m.CustomerID
	}
	if m.Label != nil {
		addressDB.Label = *m.Label
	}
	if m.Line != nil {
		addressDB.Line = *m.Line
	}
	if m.City != nil {
		addressDB.City = *m.City
	}
	if m.Location != nil {
		addressDB.Lat = &m.Location.Lat
		addressDB.Long = &m.Location.Long
	}
	return addressDB
}
