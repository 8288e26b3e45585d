package entities

type PaymentStatusType string

const (
	PaymentPending  PaymentStatusType = "pending"
	PaymentPaid     PaymentStatusType = "paid"
	PaymentFailed   PaymentStatusType = "failed"
	PaymentRefunded PaymentStatusType = "refunded"
)

func (s PaymentStatusType) String() string {
	return string(s)
}

// IsSettled - платёж больше не меняется входящими событиями шлюза.
func (s PaymentStatusType) IsSettled() bool {
	return s == PaymentPaid || s == PaymentRefunded
}

type PaymentMethodType string

const (
	PaymentCOD    PaymentMethodType = "cod"
	PaymentOnline PaymentMethodType = "online"
)

func (m PaymentMethodType) String() string {
	return string(m)
}

func (m PaymentMethodType) IsValid() bool {
	return m == PaymentCOD || m == PaymentOnline
}

type LineItem struct {
	Name       string
	UnitAmount int64
	Quantity   int64
}

type CheckoutRequest struct {
	OrderID   string
	Currency  string
	LineItems []LineItem
}

type CheckoutSession struct {
	ID  string
	URL string
}

// GatewaySession - состояние checkout-сессии на стороне платёжного шлюза.
type GatewaySession struct {
	ID              string
	OrderID         string
	Paid            bool
	Expired         bool
	AmountTotal     int64
	PaymentIntentID string
}

type PaymentEventType string

const (
	PaymentEventCheckoutCompleted PaymentEventType = "checkout.session.completed"
	PaymentEventIntentSucceeded   PaymentEventType = "payment_intent.succeeded"
	PaymentEventIntentFailed      PaymentEventType = "payment_intent.payment_failed"
)

type PaymentEvent struct {
	ID              string
	Type            PaymentEventType
	SessionID       string
	PaymentIntentID string
	OrderID         string
	Paid            bool
	Amount          int64
}

// PaymentUpdate - идемпотентное применение результата оплаты.
// Строка ищется по SessionID, а если он пуст - по PaymentIntentID.
type PaymentUpdate struct {
	SessionID       string
	PaymentIntentID string
	Status          PaymentStatusType
	AmountPaid      *int64
}
