//go:generate mockgen -source=contract.go -destination=./contract_mocks_test.go -package=payment_test
package payment

import (
	"context"
	"time"

	"gathr/internal/entities"
	"gathr/pkg/logger"
)

type Repository interface {
	GetByID(ctx context.Context, id string) (*entities.Order, error)
	GetCartByID(ctx context.Context, cartID string) (*entities.Cart, error)
	SetCheckoutSession(ctx context.Context, orderID, sessionID string) (*entities.Order, error)
	ApplyPayment(ctx context.Context, update entities.PaymentUpdate) (*entities.Order, bool, error)
	ClaimRefund(ctx context.Context, orderID string) error
	ReleaseRefund(ctx context.Context, orderID string) error
	MarkRefunded(ctx context.Context, orderID string) (*entities.Order, error)
	ListStalePendingPayments(ctx context.Context, before time.Time, limit uint64) ([]entities.Order, error)
}

type Gateway interface {
	CreateCheckoutSession(ctx context.Context, req entities.CheckoutRequest) (*entities.CheckoutSession, error)
	RetrieveSession(ctx context.Context, sessionID string) (*entities.GatewaySession, error)
	VerifyWebhook(payload []byte, signature string) (*entities.PaymentEvent, error)
	CreateRefund(ctx context.Context, paymentIntentID string, amount *int64) error
}

type Authorizer interface {
	RequireRole(ctx context.Context, userID string, roles ...entities.Role) (*entities.User, error)
}

type ShopProvider interface {
	GetShop(ctx context.Context, shopID string) (*entities.Shop, error)
}

type serviceLogger interface {
	Info(msg string, fields ...logger.Field)
	Warn(msg string, fields ...logger.Field)
	Error(msg string, fields ...logger.Field)
	With(fields ...logger.Field) logger.Logger
}
