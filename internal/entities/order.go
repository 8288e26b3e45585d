package entities

import (
	"time"
)

type Order struct {
	ID         string
	CartID     string
	ShopID     string
	CustomerID string
	AddressID  string
	CarrierID  *string

	Status OrderStatusType

	PaymentStatus          PaymentStatusType
	PaymentMethod          PaymentMethodType
	AmountPaid             int64
	GatewaySessionID       *string
	GatewayPaymentIntentID *string

	Charges Charges

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Charges - суммы заказа в минимальных единицах валюты (пайсы, копейки).
type Charges struct {
	Subtotal    int64
	Tax         int64
	DeliveryFee int64
	Total       int64
	DistanceKm  float64
	Currency    string
}

// IsDispatchable - заказ можно предлагать курьерам: ещё не взят и либо COD, либо уже оплачен.
func (o *Order) IsDispatchable() bool {
	if o.Status != OrderPending || o.CarrierID != nil {
		return false
	}
	return o.PaymentMethod == PaymentCOD || o.PaymentStatus == PaymentPaid
}

func (o *Order) IsAssignedTo(carrierID string) bool {
	return o.CarrierID != nil && *o.CarrierID == carrierID
}

type OrderStatusType string

const (
	OrderPending   OrderStatusType = "pending"
	OrderAccepted  OrderStatusType = "accepted"
	OrderRejected  OrderStatusType = "rejected"
	OrderOnTheWay  OrderStatusType = "ontheway"
	OrderDelivered OrderStatusType = "delivered"
	OrderCancelled OrderStatusType = "cancelled"
)

func (s OrderStatusType) String() string {
	return string(s)
}

func (s OrderStatusType) IsValid() bool {
	_, ok := orderTransitions[s]
	return ok
}

func (s OrderStatusType) IsTerminal() bool {
	return s.IsValid() && len(orderTransitions[s]) == 0
}

// CanTransitionTo - допустимые переходы статуса заказа. Движение только вперёд,
// из терминальных статусов (delivered, rejected, cancelled) выхода нет.
func (s OrderStatusType) CanTransitionTo(next OrderStatusType) bool {
	for _, allowed := range orderTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

var orderTransitions = map[OrderStatusType][]OrderStatusType{
	OrderPending:   {OrderAccepted, OrderRejected, OrderCancelled},
	OrderAccepted:  {OrderOnTheWay, OrderCancelled},
	OrderOnTheWay:  {OrderDelivered, OrderCancelled},
	OrderDelivered: {},
	OrderRejected:  {},
	OrderCancelled: {},
}

type OrderModify struct {
	ID            *string
	CartID        *string
	ShopID        *string
	CustomerID    *string
	AddressID     *string
	Status        *OrderStatusType
	PaymentStatus *PaymentStatusType
	PaymentMethod *PaymentMethodType
	Charges       *Charges
}

// StatusUpdate - переход статуса с compare-and-set по текущему статусу.
// Поля-указатели применяются только вместе с успешным переходом.
type StatusUpdate struct {
	OrderID string
	From    OrderStatusType
	To      OrderStatusType

	// если задан, строка должна принадлежать этому курьеру
	CarrierID *string

	Charges       *Charges
	PaymentStatus *PaymentStatusType
	AmountPaid    *int64
}

type OrderFilter struct {
	CustomerID *string
	CarrierID  *string
	ShopIDs    []string
	Statuses   []OrderStatusType
	Limit      uint64
	Offset     uint64
}

type NearbyOrder struct {
	Order       Order
	Destination Address
	DistanceKm  float64
}
