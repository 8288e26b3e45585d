// Package stripe - платёжный шлюз на Stripe Checkout: сессии оплаты, проверка
// подписи вебхуков и возвраты. Вызовы API идут через circuit breaker.
package stripe

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"gathr/internal/entities"
	"gathr/internal/pkg/config"
	"gathr/internal/service/payment"

	"github.com/sony/gobreaker/v2"
	stripeapi "github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"
	"github.com/stripe/stripe-go/v76/webhook"
)

const (
	metadataOrderID = "order_id"

	breakerName        = "stripe"
	breakerMaxRequests = 1
	breakerInterval    = time.Minute
	breakerTimeout     = 30 * time.Second
	breakerFailures    = 5
)

type Gateway struct {
	sessions      sessionClient
	refunds       refundClient
	webhookSecret string
	successURL    string
	cancelURL     string
	breaker       *gobreaker.CircuitBreaker[any]
}

func New(cfg config.Payment) *Gateway {
	api := client.New(cfg.StripeSecretKey, nil)
	return NewWithClients(api.CheckoutSessions, api.Refunds, cfg)
}

func NewWithClients(sessions sessionClient, refunds refundClient, cfg config.Payment) *Gateway {
	return &Gateway{
		sessions:      sessions,
		refunds:       refunds,
		webhookSecret: cfg.WebhookSecret,
		successURL:    cfg.SuccessURL,
		cancelURL:     cfg.CancelURL,
		breaker: gobreaker.NewCircuitBreaker[any](gobreaker.Settings{
			Name:        breakerName,
			MaxRequests: breakerMaxRequests,
			Interval:    breakerInterval,
			Timeout:     breakerTimeout,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= breakerFailures
			},
			// отказ карты или неверный запрос не говорят о недоступности шлюза
			IsSuccessful: func(err error) bool {
				return err == nil || !isUnavailable(err)
			},
			OnStateChange: func(name string, _ gobreaker.State, to gobreaker.State) {
				StripeBreakerState.WithLabelValues(name).Set(float64(to))
			},
		}),
	}
}

func (g *Gateway) CreateCheckoutSession(ctx context.Context, req entities.CheckoutRequest) (*entities.CheckoutSession, error) {
	lineItems := make([]*stripeapi.CheckoutSessionLineItemParams, 0, len(req.LineItems))
	for _, item := range req.LineItems {
		lineItems = append(lineItems, &stripeapi.CheckoutSessionLineItemParams{
			PriceData: &stripeapi.CheckoutSessionLineItemPriceDataParams{
				Currency: stripeapi.String(req.Currency),
				ProductData: &stripeapi.CheckoutSessionLineItemPriceDataProductDataParams{
					Name: stripeapi.String(item.Name),
				},
				UnitAmount: stripeapi.Int64(item.UnitAmount),
			},
			Quantity: stripeapi.Int64(item.Quantity),
		})
	}

	metadata := map[string]string{metadataOrderID: req.OrderID}
	params := &stripeapi.CheckoutSessionParams{
		Mode:              stripeapi.String(string(stripeapi.CheckoutSessionModePayment)),
		SuccessURL:        stripeapi.String(g.successURL),
		CancelURL:         stripeapi.String(g.cancelURL),
		ClientReferenceID: stripeapi.String(req.OrderID),
		LineItems:         lineItems,
		PaymentIntentData: &stripeapi.CheckoutSessionPaymentIntentDataParams{
			Metadata: metadata,
		},
	}
	params.Context = ctx
	params.Metadata = metadata

	s, err := execute(g, "create_session", func() (*stripeapi.CheckoutSession, error) {
		return g.sessions.New(params)
	})
	if err != nil {
		return nil, fmt.Errorf("create checkout session: %w", err)
	}

	return &entities.CheckoutSession{
		ID:  s.ID,
		URL: s.URL,
	}, nil
}

func (g *Gateway) RetrieveSession(ctx context.Context, sessionID string) (*entities.GatewaySession, error) {
	params := &stripeapi.CheckoutSessionParams{}
	params.Context = ctx

	s, err := execute(g, "retrieve_session", func() (*stripeapi.CheckoutSession, error) {
		return g.sessions.Get(sessionID, params)
	})
	if err != nil {
		return nil, fmt.Errorf("retrieve checkout session %s: %w", sessionID, err)
	}

	return toGatewaySession(s), nil
}

// VerifyWebhook проверяет подпись и разбирает событие. Типы, не влияющие на оплату,
// возвращаются с пустыми ссылками и игнорируются сервисом.
func (g *Gateway) VerifyWebhook(payload []byte, signature string) (*entities.PaymentEvent, error) {
	event, err := webhook.ConstructEventWithOptions(payload, signature, g.webhookSecret, webhook.ConstructEventOptions{
		IgnoreAPIVersionMismatch: true,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", payment.ErrInvalidSignature, err)
	}

	result := &entities.PaymentEvent{
		ID:   event.ID,
		Type: entities.PaymentEventType(event.Type),
	}

	switch result.Type {
	case entities.PaymentEventCheckoutCompleted:
		var s stripeapi.CheckoutSession
		if err := json.Unmarshal(event.Data.Raw, &s); err != nil {
			return nil, fmt.Errorf("decode checkout session: %w", err)
		}
		gs := toGatewaySession(&s)
		result.SessionID = gs.ID
		result.PaymentIntentID = gs.PaymentIntentID
		result.OrderID = gs.OrderID
		result.Paid = gs.Paid
		result.Amount = gs.AmountTotal

	case entities.PaymentEventIntentSucceeded, entities.PaymentEventIntentFailed:
		var pi stripeapi.PaymentIntent
		if err := json.Unmarshal(event.Data.Raw, &pi); err != nil {
			return nil, fmt.Errorf("decode payment intent: %w", err)
		}
		result.PaymentIntentID = pi.ID
		result.OrderID = pi.Metadata[metadataOrderID]
		result.Paid = pi.Status == stripeapi.PaymentIntentStatusSucceeded
		result.Amount = pi.AmountReceived
	}

	return result, nil
}

// CreateRefund при amount == nil возвращает всю сумму.
func (g *Gateway) CreateRefund(ctx context.Context, paymentIntentID string, amount *int64) error {
	params := &stripeapi.RefundParams{
		PaymentIntent: stripeapi.String(paymentIntentID),
	}
	if amount != nil {
		params.Amount = stripeapi.Int64(*amount)
	}
	params.SetIdempotencyKey(refundIdempotencyKey(paymentIntentID, amount))
	params.Context = ctx

	_, err := execute(g, "create_refund", func() (*stripeapi.Refund, error) {
		return g.refunds.New(params)
	})
	if err != nil {
		return fmt.Errorf("refund %s: %w", paymentIntentID, err)
	}
	return nil
}

// refundIdempotencyKey схлопывает повтор того же возврата в один платёж на стороне Stripe.
func refundIdempotencyKey(paymentIntentID string, amount *int64) string {
	if amount == nil {
		return "refund:" + paymentIntentID + ":full"
	}
	return fmt.Sprintf("refund:%s:%d", paymentIntentID, *amount)
}

func execute[T any](g *Gateway, operation string, fn func() (*T, error)) (*T, error) {
	start := time.Now()

	res, err := g.breaker.Execute(func() (any, error) {
		return fn()
	})

	result := "ok"
	switch {
	case errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests):
		result = "breaker_open"
		err = fmt.Errorf("%w: %v", payment.ErrGatewayUnavailable, err)
	case err != nil && isUnavailable(err):
		result = "unavailable"
		err = fmt.Errorf("%w: %w", payment.ErrGatewayUnavailable, err)
	case err != nil:
		result = "error"
	}
	StripeRequestDuration.WithLabelValues(operation, result).Observe(time.Since(start).Seconds())

	if err != nil {
		return nil, err
	}
	out, _ := res.(*T)
	return out, nil
}

// isUnavailable - сетевая ошибка, 429 или 5xx от Stripe.
func isUnavailable(err error) bool {
	if errors.Is(err, context.Canceled) {
		return false
	}
	var stripeErr *stripeapi.Error
	if !errors.As(err, &stripeErr) {
		return true
	}
	return stripeErr.HTTPStatusCode == http.StatusTooManyRequests ||
		stripeErr.HTTPStatusCode >= http.StatusInternalServerError
}

func toGatewaySession(s *stripeapi.CheckoutSession) *entities.GatewaySession {
	gs := &entities.GatewaySession{
		ID:          s.ID,
		OrderID:     s.ClientReferenceID,
		Paid:        s.PaymentStatus == stripeapi.CheckoutSessionPaymentStatusPaid,
		Expired:     s.Status == stripeapi.CheckoutSessionStatusExpired,
		AmountTotal: s.AmountTotal,
	}
	if gs.OrderID == "" {
		gs.OrderID = s.Metadata[metadataOrderID]
	}
	if s.PaymentIntent != nil {
		gs.PaymentIntentID = s.PaymentIntent.ID
	}
	return gs
}
