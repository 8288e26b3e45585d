package receipt

import (
	"context"
	"fmt"

	"gathr/internal/entities"
)

// Sender отправляет чек покупателю после доставки. Вызывается воркером событий заказа.
type Sender struct {
	composer *Composer
	carts    CartRepository
	contacts ContactProvider
	notifier NotificationSender
}

func NewSender(composer *Composer, carts CartRepository, contacts ContactProvider, notifier NotificationSender) *Sender {
	return &Sender{
		composer: composer,
		carts:    carts,
		contacts: contacts,
		notifier: notifier,
	}
}

func (s *Sender) SendReceipt(ctx context.Context, order *entities.Order) error {
	cart, err := s.carts.GetCartByID(ctx, order.CartID)
	if err != nil {
		return fmt.Errorf("get cart: %w", err)
	}

	contact, err := s.contacts.GetUserContact(ctx, order.CustomerID)
	if err != nil {
		return fmt.Errorf("get customer contact: %w", err)
	}

	subject, body := s.composer.Render(s.composer.Compose(order, cart, order.UpdatedAt))
	if err := s.notifier.Send(ctx, contact.Destination, subject, body); err != nil {
		return fmt.Errorf("send receipt: %w", err)
	}
	return nil
}
