// Package presenter переводит доменные сущности в DTO ответов REST и WebSocket.
package presenter

import (
	"gathr/internal/entities"
	"gathr/internal/generated/dto"

	"github.com/AlekSi/pointer"
)

func Order(o *entities.Order) dto.Order {
	return dto.Order{
		ID:            o.ID,
		CartID:        o.CartID,
		ShopID:        o.ShopID,
		CustomerID:    o.CustomerID,
		AddressID:     o.AddressID,
		CarrierID:     o.CarrierID,
		Status:        o.Status.String(),
		PaymentStatus: o.PaymentStatus.String(),
		PaymentMethod: o.PaymentMethod.String(),
		AmountPaid:    o.AmountPaid,
		Charges:       Charges(o.Charges),
		CreatedAt:     o.CreatedAt,
		UpdatedAt:     o.UpdatedAt,
	}
}

func Orders(orders []entities.Order) []dto.Order {
	res := make([]dto.Order, 0, len(orders))
	for i := range orders {
		res = append(res, Order(&orders[i]))
	}
	return res
}

func Charges(c entities.Charges) dto.Charges {
	return dto.Charges{
		Subtotal:    c.Subtotal,
		Tax:         c.Tax,
		DeliveryFee: c.DeliveryFee,
		Total:       c.Total,
		DistanceKm:  c.DistanceKm,
		Currency:    c.Currency,
	}
}

func Address(a *entities.Address) dto.Address {
	res := dto.Address{
		ID:        a.ID,
		Label:     a.Label,
		Line:      a.Line,
		City:      a.City,
		CreatedAt: a.CreatedAt,
	}
	if a.Location != nil {
		res.Lat = pointer.To(a.Location.Lat)
		res.Long = pointer.To(a.Location.Long)
	}
	return res
}

func NearbyOrders(orders []entities.NearbyOrder) []dto.NearbyOrder {
	res := make([]dto.NearbyOrder, 0, len(orders))
	for i := range orders {
		res = append(res, dto.NearbyOrder{
			Order:       Order(&orders[i].Order),
			Destination: Address(&orders[i].Destination),
			DistanceKm:  orders[i].DistanceKm,
		})
	}
	return res
}

func Receipt(r *entities.Receipt) dto.Receipt {
	lines := make([]dto.ReceiptLine, 0, len(r.Lines))
	for _, l := range r.Lines {
		lines = append(lines, dto.ReceiptLine{
			Name:      l.Name,
			Quantity:  l.Quantity,
			UnitPrice: l.UnitPrice,
			Total:     l.Total,
		})
	}

	return dto.Receipt{
		OrderID:       r.OrderID,
		Lines:         lines,
		Charges:       Charges(r.Charges),
		PaymentMethod: r.PaymentMethod.String(),
		AmountPaid:    r.AmountPaid,
		DeliveredAt:   r.DeliveredAt,
	}
}

func PaymentStatus(o *entities.Order) dto.PaymentStatus {
	return dto.PaymentStatus{
		OrderID:       o.ID,
		PaymentStatus: o.PaymentStatus.String(),
		AmountPaid:    o.AmountPaid,
	}
}

func CarrierLocation(t *entities.CarrierTracking) dto.CarrierLocation {
	return dto.CarrierLocation{
		CarrierID:  t.Location.CarrierID,
		OrderID:    t.Location.OrderID,
		Lat:        t.Location.Point.Lat,
		Long:       t.Location.Point.Long,
		UpdatedAt:  t.Location.UpdatedAt,
		DistanceKm: t.DistanceKm,
		EtaSeconds: int64(t.ETA.Seconds()),
	}
}

// TrackingFrame - кадр WebSocket; координаты только у location, текст только у chat.
func TrackingFrame(m entities.TrackingMessage) dto.TrackingFrame {
	frame := dto.TrackingFrame{
		Type:    string(m.Type),
		OrderID: m.OrderID,
		SentAt:  m.SentAt,
	}
	if m.FromRole != "" {
		frame.FromRole = pointer.To(m.FromRole.String())
	}
	if m.FromName != "" {
		frame.FromName = pointer.To(m.FromName)
	}

	switch m.Type {
	case entities.TrackingLocation:
		frame.Lat = pointer.To(m.Lat)
		frame.Long = pointer.To(m.Long)
	case entities.TrackingChat:
		frame.Text = pointer.To(m.Text)
	}
	return frame
}
