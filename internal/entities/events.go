package entities

import "time"

type OrderStatusChanged struct {
	OrderID       string
	Status        OrderStatusType
	PaymentStatus PaymentStatusType
	CarrierID     *string
	CustomerID    string
	OccurredAt    time.Time
}

func NewOrderStatusChanged(order *Order, at time.Time) OrderStatusChanged {
	return OrderStatusChanged{
		OrderID:       order.ID,
		Status:        order.Status,
		PaymentStatus: order.PaymentStatus,
		CarrierID:     order.CarrierID,
		CustomerID:    order.CustomerID,
		OccurredAt:    at,
	}
}

type TrackingMessageType string

const (
	TrackingLocation TrackingMessageType = "location"
	TrackingChat     TrackingMessageType = "chat"
	TrackingClosed   TrackingMessageType = "closed"
	TrackingJoined   TrackingMessageType = "joined"
	TrackingLeft     TrackingMessageType = "left"
)

// TrackingMessage - кадр, рассылаемый участникам комнаты заказа.
type TrackingMessage struct {
	Type     TrackingMessageType
	OrderID  string
	FromRole Role
	FromName string
	Lat      float64
	Long     float64
	Text     string
	SentAt   time.Time
}

// OrderSideEffect - однократная реакция на статус заказа. Отметка в строке заказа
// защищает от повтора при повторной доставке события.
type OrderSideEffect string

const (
	SideEffectStockRestored OrderSideEffect = "stock_restored"
	SideEffectReceiptSent   OrderSideEffect = "receipt_sent"
)

func (e OrderSideEffect) String() string {
	return string(e)
}
