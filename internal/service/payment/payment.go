package payment

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gathr/internal/entities"
	"gathr/internal/pkg/config"
	"gathr/internal/service/authz"
	"gathr/internal/service/order"
	"gathr/pkg/logger"
)

const (
	sourceWebhook   = "webhook"
	sourcePoll      = "poll"
	sourceReconcile = "reconcile"

	reconcileBatch = 100
	releaseTimeout = 5 * time.Second
)

// Service сводит два независимых источника статуса оплаты (вебхук шлюза и опрос клиентом)
// к одному условному обновлению: результат применяется, только пока платёж не закрыт.
type Service struct {
	repository Repository
	gateway    Gateway
	authorizer Authorizer
	shops      ShopProvider
	currency   string
	log        serviceLogger
	now        func() time.Time
}

func New(
	repository Repository,
	gateway Gateway,
	authorizer Authorizer,
	shops ShopProvider,
	cfg config.Payment,
	log serviceLogger,
) *Service {
	return &Service{
		repository: repository,
		gateway:    gateway,
		authorizer: authorizer,
		shops:      shops,
		currency:   cfg.Currency,
		log:        log,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// CreateCheckoutSession открывает сессию оплаты на суммы, зафиксированные при оформлении.
func (s *Service) CreateCheckoutSession(ctx context.Context, customerID, orderID string) (*entities.CheckoutSession, error) {
	current, err := s.customerOrder(ctx, customerID, orderID)
	if err != nil {
		return nil, err
	}
	if current.PaymentMethod != entities.PaymentOnline {
		return nil, ErrNotOnlinePayment
	}
	if current.PaymentStatus.IsSettled() {
		return nil, ErrAlreadyPaid
	}
	if current.Status != entities.OrderPending {
		return nil, fmt.Errorf("%w: order is %s", order.ErrInvalidTransition, current.Status)
	}

	cart, err := s.repository.GetCartByID(ctx, current.CartID)
	if err != nil {
		return nil, fmt.Errorf("get cart: %w", err)
	}

	session, err := s.gateway.CreateCheckoutSession(ctx, s.checkoutRequest(current, cart))
	if err != nil {
		return nil, fmt.Errorf("create checkout session: %w", err)
	}

	if _, err := s.repository.SetCheckoutSession(ctx, current.ID, session.ID); err != nil {
		return nil, fmt.Errorf("store checkout session: %w", err)
	}
	return session, nil
}

// HandleWebhook проверяет подпись до любых изменений. Неизвестные и повторные события
// подтверждаются без ошибки, чтобы шлюз не ретраил их бесконечно.
func (s *Service) HandleWebhook(ctx context.Context, payload []byte, signature string) error {
	event, err := s.gateway.VerifyWebhook(payload, signature)
	if err != nil {
		PaymentUpdatesTotal.WithLabelValues(sourceWebhook, "invalid_signature").Inc()
		return err
	}

	log := s.log.With(
		logger.NewField("event_id", event.ID),
		logger.NewField("event_type", string(event.Type)),
	)

	update, ok := updateFromEvent(event)
	if !ok {
		PaymentUpdatesTotal.WithLabelValues(sourceWebhook, "ignored").Inc()
		log.Info("payment event ignored")
		return nil
	}

	updated, applied, err := s.apply(ctx, sourceWebhook, update)
	if err != nil {
		return err
	}

	// событие payment_intent может прийти раньше, чем у заказа сохранён intent id
	if !applied && update.SessionID == "" && event.OrderID != "" && order.IsValidID(event.OrderID) {
		current, err := s.repository.GetByID(ctx, event.OrderID)
		switch {
		case errors.Is(err, order.ErrOrderNotFound):
		case err != nil:
			return fmt.Errorf("get order for payment event: %w", err)
		case current.GatewaySessionID != nil:
			update.SessionID = *current.GatewaySessionID
			updated, applied, err = s.apply(ctx, sourceWebhook, update)
			if err != nil {
				return err
			}
		}
	}

	if !applied {
		log.Info("payment event did not change any order")
		return nil
	}
	log.Info("payment status updated",
		logger.NewField("order_id", updated.ID),
		logger.NewField("payment_status", updated.PaymentStatus.String()),
	)
	return nil
}

// PollPaymentStatus - клиентский путь: после редиректа со страницы оплаты заказ
// сверяется с шлюзом тем же условным обновлением, что и вебхук.
func (s *Service) PollPaymentStatus(ctx context.Context, customerID, orderID string) (*entities.Order, error) {
	current, err := s.customerOrder(ctx, customerID, orderID)
	if err != nil {
		return nil, err
	}
	return s.sync(ctx, sourcePoll, current)
}

// Refund возвращает оплату целиком или частично. Статус платежа в любом случае refunded.
// Возврат сначала захватывается в БД: из параллельных запросов до шлюза доходит один.
func (s *Service) Refund(ctx context.Context, merchantID, orderID string, amount *int64) (*entities.Order, error) {
	if _, err := s.authorizer.RequireRole(ctx, merchantID, entities.RoleMerchant); err != nil {
		return nil, err
	}
	if !order.IsValidID(orderID) {
		return nil, order.ErrInvalidOrderID
	}

	current, err := s.repository.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	shop, err := s.shops.GetShop(ctx, current.ShopID)
	if err != nil {
		return nil, fmt.Errorf("get shop: %w", err)
	}
	if shop.OwnerID != merchantID {
		return nil, authz.ErrForbidden
	}

	if current.PaymentStatus != entities.PaymentPaid {
		return nil, fmt.Errorf("%w: payment is %s", ErrRefundNotAllowed, current.PaymentStatus)
	}
	if current.GatewayPaymentIntentID == nil || *current.GatewayPaymentIntentID == "" {
		return nil, ErrRefundUnavailable
	}
	if amount != nil && (*amount <= 0 || *amount > current.AmountPaid) {
		return nil, fmt.Errorf("%w: %d of %d", ErrInvalidAmount, *amount, current.AmountPaid)
	}

	if err := s.repository.ClaimRefund(ctx, current.ID); err != nil {
		return nil, fmt.Errorf("claim refund: %w", err)
	}

	if err := s.gateway.CreateRefund(ctx, *current.GatewayPaymentIntentID, amount); err != nil {
		releaseCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), releaseTimeout)
		defer cancel()
		if releaseErr := s.repository.ReleaseRefund(releaseCtx, current.ID); releaseErr != nil {
			s.log.Error("release refund claim",
				logger.NewField("order_id", current.ID),
				logger.NewField("error", releaseErr),
			)
		}
		return nil, fmt.Errorf("create refund: %w", err)
	}

	refunded, err := s.repository.MarkRefunded(ctx, current.ID)
	if err != nil {
		return nil, fmt.Errorf("mark refunded: %w", err)
	}
	return refunded, nil
}

// ReconcileStale опрашивает шлюз по онлайн-заказам, которые давно висят в pending.
// Возвращает число заказов, у которых сменился статус оплаты.
func (s *Service) ReconcileStale(ctx context.Context, staleAfter time.Duration) (int, error) {
	orders, err := s.repository.ListStalePendingPayments(ctx, s.now().Add(-staleAfter), reconcileBatch)
	if err != nil {
		return 0, fmt.Errorf("list stale payments: %w", err)
	}

	changed := 0
	for i := range orders {
		if err := ctx.Err(); err != nil {
			return changed, err
		}
		before := orders[i].PaymentStatus
		updated, err := s.sync(ctx, sourceReconcile, &orders[i])
		if err != nil {
			s.log.Warn("reconcile payment",
				logger.NewField("order_id", orders[i].ID),
				logger.NewField("error", err),
			)
			continue
		}
		if updated.PaymentStatus != before {
			changed++
		}
	}
	return changed, nil
}

func (s *Service) sync(ctx context.Context, source string, current *entities.Order) (*entities.Order, error) {
	if current.PaymentMethod != entities.PaymentOnline || current.PaymentStatus.IsSettled() ||
		current.GatewaySessionID == nil {
		return current, nil
	}

	session, err := s.gateway.RetrieveSession(ctx, *current.GatewaySessionID)
	if err != nil {
		return nil, fmt.Errorf("retrieve checkout session: %w", err)
	}

	update := entities.PaymentUpdate{
		SessionID:       session.ID,
		PaymentIntentID: session.PaymentIntentID,
	}
	switch {
	case session.Paid:
		update.Status = entities.PaymentPaid
		update.AmountPaid = &session.AmountTotal
	case session.Expired:
		update.Status = entities.PaymentFailed
	default:
		return current, nil
	}

	updated, applied, err := s.apply(ctx, source, update)
	if err != nil {
		return nil, err
	}
	if applied {
		return updated, nil
	}
	// другой источник успел раньше, отдаём актуальное состояние
	return s.repository.GetByID(ctx, current.ID)
}

func (s *Service) apply(ctx context.Context, source string, update entities.PaymentUpdate) (*entities.Order, bool, error) {
	updated, applied, err := s.repository.ApplyPayment(ctx, update)
	if err != nil {
		PaymentUpdatesTotal.WithLabelValues(source, "error").Inc()
		return nil, false, fmt.Errorf("apply payment: %w", err)
	}
	if !applied {
		PaymentUpdatesTotal.WithLabelValues(source, "noop").Inc()
		return nil, false, nil
	}
	PaymentUpdatesTotal.WithLabelValues(source, update.Status.String()).Inc()
	return updated, true, nil
}

func (s *Service) customerOrder(ctx context.Context, customerID, orderID string) (*entities.Order, error) {
	if _, err := s.authorizer.RequireRole(ctx, customerID, entities.RoleCustomer); err != nil {
		return nil, err
	}
	if !order.IsValidID(orderID) {
		return nil, order.ErrInvalidOrderID
	}

	current, err := s.repository.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if current.CustomerID != customerID {
		return nil, authz.ErrForbidden
	}
	return current, nil
}

func (s *Service) checkoutRequest(current *entities.Order, cart *entities.Cart) entities.CheckoutRequest {
	currency := current.Charges.Currency
	if currency == "" {
		currency = s.currency
	}

	items := make([]entities.LineItem, 0, len(cart.Items)+2)
	for _, item := range cart.Items {
		items = append(items, entities.LineItem{
			Name:       item.Name,
			UnitAmount: item.UnitPrice,
			Quantity:   int64(item.Quantity),
		})
	}
	if current.Charges.DeliveryFee > 0 {
		items = append(items, entities.LineItem{Name: "Delivery fee", UnitAmount: current.Charges.DeliveryFee, Quantity: 1})
	}
	if current.Charges.Tax > 0 {
		items = append(items, entities.LineItem{Name: "Tax", UnitAmount: current.Charges.Tax, Quantity: 1})
	}

	return entities.CheckoutRequest{
		OrderID:   current.ID,
		Currency:  currency,
		LineItems: items,
	}
}

func updateFromEvent(event *entities.PaymentEvent) (entities.PaymentUpdate, bool) {
	update := entities.PaymentUpdate{
		SessionID:       event.SessionID,
		PaymentIntentID: event.PaymentIntentID,
	}

	switch event.Type {
	case entities.PaymentEventCheckoutCompleted:
		// асинхронные способы оплаты завершают сессию до фактического списания
		if !event.Paid || event.SessionID == "" {
			return update, false
		}
		update.Status = entities.PaymentPaid
		update.AmountPaid = &event.Amount
	case entities.PaymentEventIntentSucceeded:
		update.SessionID = ""
		update.Status = entities.PaymentPaid
		update.AmountPaid = &event.Amount
	case entities.PaymentEventIntentFailed:
		update.SessionID = ""
		update.Status = entities.PaymentFailed
	default:
		return update, false
	}

	if update.SessionID == "" && update.PaymentIntentID == "" {
		return update, false
	}
	return update, true
}
