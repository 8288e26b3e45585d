package delivery

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"gathr/internal/entities"
	"gathr/internal/service/authz"
	"gathr/internal/service/order"
	"gathr/pkg/logger"

	"golang.org/x/sync/errgroup"
)

type Delivery struct {
	repository Repository
	authorizer Authorizer
	contacts   ContactProvider
	shops      ShopProvider
	otp        OtpGate
	receipts   ReceiptComposer
	locations  LocationStore
	rooms      TrackingRooms
	publisher  EventPublisher
	log        serviceLogger
	now        func() time.Time
}

func New(
	repository Repository,
	authorizer Authorizer,
	contacts ContactProvider,
	shops ShopProvider,
	otp OtpGate,
	receipts ReceiptComposer,
	locations LocationStore,
	rooms TrackingRooms,
	publisher EventPublisher,
	log serviceLogger,
) *Delivery {
	return &Delivery{
		repository: repository,
		authorizer: authorizer,
		contacts:   contacts,
		shops:      shops,
		otp:        otp,
		receipts:   receipts,
		locations:  locations,
		rooms:      rooms,
		publisher:  publisher,
		log:        log,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// IssueDeliveryOtp выпускает код на контакт покупателя. Вызывает назначенный курьер у двери.
func (d *Delivery) IssueDeliveryOtp(ctx context.Context, carrierID, orderID string) (time.Time, error) {
	current, err := d.assignedInTransit(ctx, carrierID, orderID)
	if err != nil {
		return time.Time{}, err
	}

	contact, err := d.customerContact(ctx, current.CustomerID)
	if err != nil {
		return time.Time{}, err
	}

	expiresAt, err := d.otp.Issue(ctx, contact.Destination)
	if err != nil {
		return expiresAt, fmt.Errorf("issue delivery otp: %w", err)
	}
	return expiresAt, nil
}

// ResendDeliveryOtp повторяет отправку уже выпущенного кода.
func (d *Delivery) ResendDeliveryOtp(ctx context.Context, carrierID, orderID string) (time.Time, error) {
	current, err := d.assignedInTransit(ctx, carrierID, orderID)
	if err != nil {
		return time.Time{}, err
	}

	contact, err := d.customerContact(ctx, current.CustomerID)
	if err != nil {
		return time.Time{}, err
	}

	expiresAt, err := d.otp.Resend(ctx, contact.Destination)
	if err != nil {
		return expiresAt, fmt.Errorf("resend delivery otp: %w", err)
	}
	return expiresAt, nil
}

// CompleteDelivery проверяет код, пересчитывает суммы по снимку корзины и переводит
// заказ ontheway -> delivered. COD считается оплаченным на полную сумму.
func (d *Delivery) CompleteDelivery(ctx context.Context, carrierID, orderID, code string) (*entities.Receipt, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, ErrMissingOtpCode
	}

	current, err := d.assignedInTransit(ctx, carrierID, orderID)
	if err != nil {
		return nil, err
	}

	var (
		contact *entities.Contact
		cart    *entities.Cart
		address *entities.Address
		shop    *entities.Shop
		mu      sync.Mutex
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		c, err := d.customerContact(gctx, current.CustomerID)
		mu.Lock()
		contact = c
		mu.Unlock()
		return err
	})
	g.Go(func() error {
		c, err := d.repository.GetCartByID(gctx, current.CartID)
		if err != nil {
			return fmt.Errorf("get cart: %w", err)
		}
		mu.Lock()
		cart = c
		mu.Unlock()
		return nil
	})
	g.Go(func() error {
		a, err := d.repository.GetAddressByID(gctx, current.AddressID)
		if err != nil {
			return fmt.Errorf("get address: %w", err)
		}
		mu.Lock()
		address = a
		mu.Unlock()
		return nil
	})
	g.Go(func() error {
		s, err := d.shops.GetShop(gctx, current.ShopID)
		if err != nil {
			return fmt.Errorf("get shop: %w", err)
		}
		mu.Lock()
		shop = s
		mu.Unlock()
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if address.Location == nil {
		return nil, ErrNotGeocoded
	}

	if err := d.otp.Verify(ctx, contact.Destination, code); err != nil {
		return nil, fmt.Errorf("verify delivery otp: %w", err)
	}

	charges, err := d.receipts.Quote(cart.Items, shop.Location, *address.Location)
	if err != nil {
		return nil, fmt.Errorf("compose charges: %w", err)
	}
	if charges.Currency == "" {
		charges.Currency = current.Charges.Currency
	}

	update := entities.StatusUpdate{
		OrderID:   current.ID,
		From:      entities.OrderOnTheWay,
		To:        entities.OrderDelivered,
		CarrierID: &carrierID,
		Charges:   &charges,
	}
	if current.PaymentMethod == entities.PaymentCOD {
		paid := entities.PaymentPaid
		update.PaymentStatus = &paid
		update.AmountPaid = &charges.Total
	}

	delivered, err := d.repository.UpdateStatus(ctx, update)
	if err != nil {
		return nil, err
	}

	d.rooms.Close(delivered.ID)
	if err := d.locations.Delete(ctx, carrierID); err != nil {
		d.log.Warn("clear carrier location",
			logger.NewField("carrier_id", carrierID),
			logger.NewField("error", err),
		)
	}
	if err := d.publisher.PublishStatusChanged(ctx, entities.NewOrderStatusChanged(delivered, d.now())); err != nil {
		d.log.Warn("publish order status changed",
			logger.NewField("order_id", delivered.ID),
			logger.NewField("status", delivered.Status.String()),
			logger.NewField("error", err),
		)
	}

	return d.receipts.Compose(delivered, cart, delivered.UpdatedAt), nil
}

func (d *Delivery) assignedInTransit(ctx context.Context, carrierID, orderID string) (*entities.Order, error) {
	if _, err := d.authorizer.RequireRole(ctx, carrierID, entities.RoleCarrier); err != nil {
		return nil, err
	}
	if !order.IsValidID(orderID) {
		return nil, order.ErrInvalidOrderID
	}

	current, err := d.repository.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !current.IsAssignedTo(carrierID) {
		return nil, fmt.Errorf("%w: order %s is not assigned to carrier", authz.ErrForbidden, orderID)
	}
	if current.Status != entities.OrderOnTheWay {
		return nil, fmt.Errorf("%w: %w: status %s", order.ErrInvalidTransition, ErrNotOnTheWay, current.Status)
	}
	return current, nil
}

func (d *Delivery) customerContact(ctx context.Context, customerID string) (*entities.Contact, error) {
	contact, err := d.contacts.GetUserContact(ctx, customerID)
	if err != nil {
		return nil, fmt.Errorf("get customer contact: %w", err)
	}
	if strings.TrimSpace(contact.Destination) == "" {
		return nil, ErrNoContact
	}
	return contact, nil
}
