package order_status_changed

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"gathr/internal/entities"
	"gathr/internal/generated/dto"
	"gathr/internal/service/order_events"
	"gathr/pkg/logger"
	"gathr/pkg/retrier"
	"gathr/pkg/retrier/backoff_adapter"

	"github.com/IBM/sarama"
)

var defaultRetry = retrier.Config{
	InitialInterval: 50 * time.Millisecond,
	MaxInterval:     500 * time.Millisecond,
	Randomization:   0.5,
	Multiplier:      2,
	MaxRetries:      3,
}

type Handler struct {
	orderService             Service
	log                      handlerLogger
	messageProcessingTimeout time.Duration
	retrier                  retrier.Retrier
}

type Option func(*retrier.Config)

// WithRetryConfig заменяет паузы между повторами реакции.
func WithRetryConfig(cfg retrier.Config) Option {
	return func(c *retrier.Config) {
		*c = cfg
	}
}

func New(log handlerLogger, orderService Service, timeout time.Duration, opts ...Option) *Handler {
	retryCfg := defaultRetry
	for _, opt := range opts {
		opt(&retryCfg)
	}
	retryCfg.ShouldRetry = isRetryable

	return &Handler{
		orderService:             orderService,
		log:                      log.With(logger.NewField("handler", "order.status.changed")),
		messageProcessingTimeout: timeout,
		retrier:                  backoff_adapter.New(retryCfg),
	}
}

func (h *Handler) Setup(sarama.ConsumerGroupSession) error {
	return nil
}

func (h *Handler) Cleanup(sarama.ConsumerGroupSession) error {
	return nil
}

func (h *Handler) ConsumeClaim(sess sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	for {
		select {
		case message, ok := <-claim.Messages():
			if !ok {
				h.log.Info("claim messages closed, exiting ConsumeClaim")
				return nil
			}

			if stop := h.process(sess, message); stop {
				return nil
			}

		case <-sess.Context().Done():
			// rebalance или остановка consumer group
			h.log.Info("session context done, exiting ConsumeClaim")
			return nil
		}
	}
}

// process возвращает true, если обработку партиции надо прервать без коммита:
// сообщение перечитается после ребалансировки или рестарта.
func (h *Handler) process(sess sarama.ConsumerGroupSession, message *sarama.ConsumerMessage) bool {
	ctx, cancel := context.WithTimeout(sess.Context(), h.messageProcessingTimeout)
	defer cancel()

	var event dto.OrderStatusChangedEvent
	if err := json.Unmarshal(message.Value, &event); err != nil {
		h.log.With(
			logger.NewField("error", err),
			logger.NewField("offset", message.Offset),
		).Error("bad message, skipping")
		sess.MarkMessage(message, "")
		return false
	}

	msgLog := h.log.With(
		logger.NewField("order", event.OrderID),
		logger.NewField("status", event.Status),
		logger.NewField("offset", message.Offset),
	)

	var (
		order    *entities.Order
		attempts int
	)
	err := h.retrier.ExecuteWithContext(ctx, func(ctx context.Context) error {
		attempts++
		var err error
		order, err = h.orderService.ProcessOrderStatusChange(ctx, toEntity(event))
		return err
	})
	if err != nil {
		errLog := msgLog.With(
			logger.NewField("error", err),
			logger.NewField("attempts", attempts),
		)
		switch {
		case errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded):
			errLog.Warn("processing interrupted, message will be reprocessed")
			return true

		case errors.Is(err, order_events.ErrStatusMismatch):
			// заказ уже в другом статусе, его событие обработается отдельно
			errLog.Info("stale event skipped")

		case errors.Is(err, order_events.ErrMissingFields),
			errors.Is(err, order_events.ErrUndefinedStatus):
			errLog.Warn("invalid event skipped")

		default:
			// реакция освободила отметку, повтор возможен при следующем событии заказа
			errLog.Error("reaction failed after retries")
		}
		sess.MarkMessage(message, "")
		return false
	}

	msgLog.With(
		logger.NewField("current_status", order.Status.String()),
		logger.NewField("attempts", attempts),
	).Info("processed")

	sess.MarkMessage(message, "")
	return false
}

func isRetryable(err error) bool {
	return !errors.Is(err, order_events.ErrStatusMismatch) &&
		!errors.Is(err, order_events.ErrMissingFields) &&
		!errors.Is(err, order_events.ErrUndefinedStatus) &&
		!errors.Is(err, context.Canceled) &&
		!errors.Is(err, context.DeadlineExceeded)
}

func toEntity(event dto.OrderStatusChangedEvent) entities.OrderStatusChanged {
	return entities.OrderStatusChanged{
		OrderID:       event.OrderID,
		Status:        entities.OrderStatusType(event.Status),
		PaymentStatus: entities.PaymentStatusType(event.PaymentStatus),
		CarrierID:     event.CarrierID,
		CustomerID:    event.CustomerID,
		OccurredAt:    event.OccurredAt,
	}
}
