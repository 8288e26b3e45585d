// Package status_events публикует смену статуса заказа в Kafka, ключ сообщения - id заказа.
package status_events

import (
	"context"
	"encoding/json"
	"fmt"

	"gathr/internal/entities"
	"gathr/internal/generated/dto"
)

type Publisher struct {
	producer publisher
	topic    string
}

func New(producer publisher, topic string) *Publisher {
	return &Publisher{
		producer: producer,
		topic:    topic,
	}
}

func (p *Publisher) PublishStatusChanged(ctx context.Context, event entities.OrderStatusChanged) error {
	payload, err := json.Marshal(toDTO(event))
	if err != nil {
		return fmt.Errorf("marshal order status changed: %w", err)
	}

	if err := p.producer.Publish(ctx, p.topic, event.OrderID, payload); err != nil {
		return fmt.Errorf("publish order status changed: %w", err)
	}
	return nil
}

func toDTO(event entities.OrderStatusChanged) dto.OrderStatusChangedEvent {
	return dto.OrderStatusChangedEvent{
		OrderID:       event.OrderID,
		Status:        event.Status.String(),
		PaymentStatus: event.PaymentStatus.String(),
		CarrierID:     event.CarrierID,
		CustomerID:    event.CustomerID,
		OccurredAt:    event.OccurredAt,
	}
}
