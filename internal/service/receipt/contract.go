//go:generate mockgen -source=contract.go -destination=./contract_mocks_test.go -package=receipt_test
package receipt

import (
	"context"

	"gathr/internal/entities"
)

type FeeCalculator interface {
	CalculateFee(distanceKm float64) int64
}

type CartRepository interface {
	GetCartByID(ctx context.Context, cartID string) (*entities.Cart, error)
}

type ContactProvider interface {
	GetUserContact(ctx context.Context, userID string) (*entities.Contact, error)
}

type NotificationSender interface {
	Send(ctx context.Context, destination, subject, body string) error
}
