package entities

import (
	"time"

	"gathr/pkg/geo"
)

type Address struct {
	ID         string
	CustomerID string
	Label      string
	Line       string
	City       string
	// nil, если адрес не геокодирован; такие заказы не попадают в выдачу курьерам
	Location  *geo.Point
	CreatedAt time.Time
}

type AddressModify struct {
	CustomerID *string
	Label      *string
	Line       *string
	City       *string
	Location   *geo.Point
}

type Shop struct {
	ID       string
	OwnerID  string
	Name     string
	Location geo.Point
}
