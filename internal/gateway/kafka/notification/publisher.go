// Package notification отправляет уведомления (OTP, чеки) в топик, который читает сервис доставки сообщений.
package notification

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"gathr/internal/generated/dto"
)

type Publisher struct {
	producer publisher
	topic    string
	now      func() time.Time
}

func New(producer publisher, topic string) *Publisher {
	return &Publisher{
		producer: producer,
		topic:    topic,
		now:      time.Now,
	}
}

// Send ключом берёт адрес получателя, чтобы сообщения одному адресату шли по порядку.
func (p *Publisher) Send(ctx context.Context, destination, subject, body string) error {
	payload, err := json.Marshal(dto.NotificationMessage{
		Destination: destination,
		Subject:     subject,
		Body:        body,
		CreatedAt:   p.now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("marshal notification: %w", err)
	}

	if err := p.producer.Publish(ctx, p.topic, destination, payload); err != nil {
		return fmt.Errorf("publish notification: %w", err)
	}
	return nil
}
