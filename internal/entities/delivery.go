package entities

import (
	"time"

	"gathr/pkg/geo"
)

// CarrierLocation - последняя известная точка курьера, историю не храним.
type CarrierLocation struct {
	CarrierID string
	OrderID   string
	Point     geo.Point
	UpdatedAt time.Time
}

type CarrierTracking struct {
	Location   CarrierLocation
	DistanceKm float64
	ETA        time.Duration
}

type OtpChallenge struct {
	Key       string
	Code      string
	ExpiresAt time.Time
}

func (c OtpChallenge) IsExpired(now time.Time) bool {
	return now.After(c.ExpiresAt)
}

type ReceiptLine struct {
	Name      string
	Quantity  int32
	UnitPrice int64
	Total     int64
}

type Receipt struct {
	OrderID       string
	Lines         []ReceiptLine
	Charges       Charges
	PaymentMethod PaymentMethodType
	AmountPaid    int64
	DeliveredAt   time.Time
}
