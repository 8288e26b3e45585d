package order

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"gathr/internal/entities"
	"gathr/internal/service/authz"
	"gathr/pkg/logger"

	"golang.org/x/sync/errgroup"
)

// maxCatalogCalls ограничивает параллельные запросы цен в каталог на одну корзину.
const maxCatalogCalls = 8

type Service struct {
	repository Repository
	authorizer Authorizer
	catalog    Catalog
	pricer     Pricer
	publisher  EventPublisher
	rooms      TrackingRooms
	txManager  TxManager
	log        serviceLogger
	now        func() time.Time
}

func New(
	repository Repository,
	authorizer Authorizer,
	catalog Catalog,
	pricer Pricer,
	publisher EventPublisher,
	rooms TrackingRooms,
	txManager TxManager,
	log serviceLogger,
) *Service {
	return &Service{
		repository: repository,
		authorizer: authorizer,
		catalog:    catalog,
		pricer:     pricer,
		publisher:  publisher,
		rooms:      rooms,
		txManager:  txManager,
		log:        log,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// CreateOrderFromCart фиксирует снимок корзины по ценам каталога, списывает остатки
// и создаёт заказ в статусе pending. Если запись в БД не удалась, остатки возвращаются.
func (s *Service) CreateOrderFromCart(ctx context.Context, customerID string, checkout entities.Checkout) (*entities.Order, error) {
	if _, err := s.authorizer.RequireRole(ctx, customerID, entities.RoleCustomer); err != nil {
		return nil, err
	}
	if err := validateCheckout(checkout); err != nil {
		return nil, err
	}
	lines := mergeLines(checkout.Lines)

	address, err := s.repository.GetAddressByID(ctx, checkout.AddressID)
	if err != nil {
		return nil, fmt.Errorf("get address: %w", err)
	}
	if address.CustomerID != customerID {
		return nil, fmt.Errorf("%w: address belongs to another customer", authz.ErrForbidden)
	}
	if address.Location == nil {
		return nil, ErrAddressNotGeocoded
	}

	shop, items, err := s.resolveCart(ctx, checkout.ShopID, lines)
	if err != nil {
		return nil, err
	}

	charges, err := s.pricer.Quote(items, shop.Location, *address.Location)
	if err != nil {
		return nil, fmt.Errorf("quote charges: %w", err)
	}

	stock := entities.StockChangesFromCart(items)
	if err := s.catalog.DecrementStock(ctx, shop.ID, stock); err != nil {
		return nil, fmt.Errorf("decrement stock: %w", err)
	}

	var created *entities.Order
	err = s.txManager.Do(ctx, func(ctx context.Context) error {
		cart, err := s.repository.CreateCart(ctx, entities.Cart{
			CustomerID: customerID,
			ShopID:     shop.ID,
			Items:      items,
		})
		if err != nil {
			return fmt.Errorf("create cart: %w", err)
		}

		method := checkout.PaymentMethod
		created, err = s.repository.Create(ctx, entities.OrderModify{
			CartID:        &cart.ID,
			ShopID:        &shop.ID,
			CustomerID:    &customerID,
			AddressID:     &address.ID,
			PaymentMethod: &method,
			Charges:       &charges,
		})
		if err != nil {
			return fmt.Errorf("create order: %w", err)
		}

		if err := s.repository.LinkCart(ctx, cart.ID, created.ID); err != nil {
			return fmt.Errorf("link cart: %w", err)
		}
		return nil
	})
	if err != nil {
		// контекст запроса мог уже истечь, компенсацию выполняем независимо от него
		restoreCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()
		if restoreErr := s.catalog.RestoreStock(restoreCtx, shop.ID, stock); restoreErr != nil {
			s.log.Error("restore stock after failed checkout",
				logger.NewField("shop_id", shop.ID),
				logger.NewField("error", restoreErr),
			)
		}
		return nil, err
	}

	s.publish(ctx, created)
	return created, nil
}

// resolveCart параллельно запрашивает магазин и актуальные цены позиций.
func (s *Service) resolveCart(ctx context.Context, shopID string, lines []entities.CartLine) (*entities.Shop, []entities.CartItem, error) {
	var (
		shop  *entities.Shop
		items = make([]entities.CartItem, len(lines))
		mu    sync.Mutex
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxCatalogCalls)

	g.Go(func() error {
		found, err := s.catalog.GetShop(gctx, shopID)
		if err != nil {
			return fmt.Errorf("get shop: %w", err)
		}
		mu.Lock()
		shop = found
		mu.Unlock()
		return nil
	})

	for i, line := range lines {
		g.Go(func() error {
			item, err := s.catalog.GetItem(gctx, line.ItemID)
			if err != nil {
				return fmt.Errorf("get item %s: %w", line.ItemID, err)
			}
			if item.ShopID != shopID {
				return fmt.Errorf("%w: %s", ErrItemNotInShop, line.ItemID)
			}
			items[i] = entities.CartItem{
				ItemID:    item.ID,
				Name:      item.Name,
				Quantity:  line.Quantity,
				UnitPrice: item.Price,
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return shop, items, nil
}

func (s *Service) CreateAddress(ctx context.Context, customerID string, addressModify entities.AddressModify) (*entities.Address, error) {
	if _, err := s.authorizer.RequireRole(ctx, customerID, entities.RoleCustomer); err != nil {
		return nil, err
	}
	if addressModify.Label == nil || addressModify.Line == nil || addressModify.City == nil {
		return nil, ErrMissingRequiredFields
	}
	if !isValidLabel(*addressModify.Label) || strings.TrimSpace(*addressModify.Line) == "" {
		return nil, ErrMissingRequiredFields
	}
	if addressModify.Location != nil {
		if err := addressModify.Location.Validate(); err != nil {
			return nil, err
		}
	}

	addressModify.CustomerID = &customerID
	address, err := s.repository.CreateAddress(ctx, addressModify)
	if err != nil {
		return nil, fmt.Errorf("create address: %w", err)
	}
	return address, nil
}

func (s *Service) GetOrder(ctx context.Context, userID, orderID string) (*entities.Order, error) {
	user, err := s.authorizer.RequireRole(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !IsValidID(orderID) {
		return nil, ErrInvalidOrderID
	}

	order, err := s.repository.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if err := s.checkAccess(ctx, user, order); err != nil {
		return nil, err
	}
	return order, nil
}

// ListOrders возвращает заказы в разрезе роли: покупатель видит свои, курьер назначенные ему,
// продавец заказы своих магазинов.
func (s *Service) ListOrders(ctx context.Context, userID string, filter entities.OrderFilter) ([]entities.Order, error) {
	user, err := s.authorizer.RequireRole(ctx, userID)
	if err != nil {
		return nil, err
	}
	for _, status := range filter.Statuses {
		if !status.IsValid() {
			return nil, fmt.Errorf("%w: unknown status %q", ErrInvalidFilter, status)
		}
	}

	filter.CustomerID, filter.CarrierID = nil, nil
	switch user.Role {
	case entities.RoleCustomer:
		filter.CustomerID = &user.ID
		filter.ShopIDs = nil
	case entities.RoleCarrier:
		filter.CarrierID = &user.ID
		filter.ShopIDs = nil
	case entities.RoleMerchant:
		if len(filter.ShopIDs) == 0 {
			return nil, fmt.Errorf("%w: shop id is required", ErrInvalidFilter)
		}
		if err := s.checkShopsOwned(ctx, user.ID, filter.ShopIDs); err != nil {
			return nil, err
		}
	default:
		return nil, authz.ErrForbidden
	}

	orders, err := s.repository.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	return orders, nil
}

// RejectOrder - продавец отказывается от ещё не взятого заказа.
func (s *Service) RejectOrder(ctx context.Context, merchantID, orderID string) (*entities.Order, error) {
	if _, err := s.authorizer.RequireRole(ctx, merchantID, entities.RoleMerchant); err != nil {
		return nil, err
	}
	if !IsValidID(orderID) {
		return nil, ErrInvalidOrderID
	}

	order, err := s.repository.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if err := s.checkShopsOwned(ctx, merchantID, []string{order.ShopID}); err != nil {
		return nil, err
	}

	updated, err := s.repository.UpdateStatus(ctx, entities.StatusUpdate{
		OrderID: order.ID,
		From:    entities.OrderPending,
		To:      entities.OrderRejected,
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, updated)
	return updated, nil
}

// CancelOrder: покупатель может отменить заказ до выезда курьера, продавец на любом
// незавершённом этапе.
func (s *Service) CancelOrder(ctx context.Context, userID, orderID string) (*entities.Order, error) {
	user, err := s.authorizer.RequireRole(ctx, userID, entities.RoleCustomer, entities.RoleMerchant)
	if err != nil {
		return nil, err
	}
	if !IsValidID(orderID) {
		return nil, ErrInvalidOrderID
	}

	order, err := s.repository.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	switch user.Role {
	case entities.RoleCustomer:
		if order.CustomerID != user.ID {
			return nil, authz.ErrForbidden
		}
		if order.Status == entities.OrderOnTheWay {
			return nil, fmt.Errorf("%w: order is already on the way", ErrInvalidTransition)
		}
	case entities.RoleMerchant:
		if err := s.checkShopsOwned(ctx, user.ID, []string{order.ShopID}); err != nil {
			return nil, err
		}
	}

	if !order.Status.CanTransitionTo(entities.OrderCancelled) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, order.Status, entities.OrderCancelled)
	}

	updated, err := s.repository.UpdateStatus(ctx, entities.StatusUpdate{
		OrderID: order.ID,
		From:    order.Status,
		To:      entities.OrderCancelled,
	})
	if err != nil {
		return nil, err
	}

	s.rooms.Close(updated.ID)
	s.publish(ctx, updated)
	return updated, nil
}

func (s *Service) checkAccess(ctx context.Context, user *entities.User, order *entities.Order) error {
	switch user.Role {
	case entities.RoleCustomer:
		if order.CustomerID == user.ID {
			return nil
		}
	case entities.RoleCarrier:
		if order.IsAssignedTo(user.ID) {
			return nil
		}
	case entities.RoleMerchant:
		return s.checkShopsOwned(ctx, user.ID, []string{order.ShopID})
	}
	return authz.ErrForbidden
}

func (s *Service) checkShopsOwned(ctx context.Context, merchantID string, shopIDs []string) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxCatalogCalls)
	for _, shopID := range shopIDs {
		g.Go(func() error {
			shop, err := s.catalog.GetShop(gctx, shopID)
			if err != nil {
				return fmt.Errorf("get shop %s: %w", shopID, err)
			}
			if shop.OwnerID != merchantID {
				return fmt.Errorf("%w: shop %s", authz.ErrForbidden, shopID)
			}
			return nil
		})
	}
	return g.Wait()
}

// publish отправляет событие смены статуса. Ошибка не откатывает переход.
func (s *Service) publish(ctx context.Context, order *entities.Order) {
	err := s.publisher.PublishStatusChanged(ctx, entities.NewOrderStatusChanged(order, s.now()))
	if err != nil {
		s.log.Warn("publish order status changed",
			logger.NewField("order_id", order.ID),
			logger.NewField("status", order.Status.String()),
			logger.NewField("error", err),
		)
	}
}
