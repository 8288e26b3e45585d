package kafka

import (
	"context"
	"fmt"

	"gathr/internal/pkg/config"
	"gathr/pkg/logger"

	"github.com/IBM/sarama"
)

type Producer struct {
	log      logger.Logger
	producer sarama.SyncProducer
}

func NewProducer(ctx context.Context, log logger.Logger, cfg *config.Kafka) (*Producer, error) {
	brokers := Brokers(cfg.Brokers)

	saramaConfig, err := NewSaramaConfig(
		cfg.Sarama.Version,
		cfg.Sarama.ConsumerOffsetsAutocommit,
		sarama.OffsetOldest,
		sarama.NewBalanceStrategyRoundRobin(),
	)
	if err != nil {
		return nil, fmt.Errorf("build saramaConfig: %w", err)
	}

	kafkaLog := log.With(
		logger.NewField("component", "kafka-producer"),
		logger.NewField("brokers", brokers),
	)

	topics := []string{cfg.Topics.OrderStatusChanged, cfg.Topics.Notifications}
	if err := pingKafka(ctx, kafkaLog, brokers, saramaConfig, topics); err != nil {
		return nil, fmt.Errorf("kafka connection: %w", err)
	}

	producer, err := sarama.NewSyncProducer(brokers, saramaConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create sync producer: %w", err)
	}

	return NewProducerFrom(kafkaLog, producer), nil
}

// NewProducerFrom оборачивает готовый sarama.SyncProducer, в тестах это mocks.SyncProducer.
func NewProducerFrom(log logger.Logger, producer sarama.SyncProducer) *Producer {
	return &Producer{
		log:      log,
		producer: producer,
	}
}

// Publish отправляет сообщение и ждёт подтверждения брокера.
func (p *Producer) Publish(ctx context.Context, topic, key string, value []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	partition, offset, err := p.producer.SendMessage(&sarama.ProducerMessage{
		Topic: topic,
		Key:   sarama.StringEncoder(key),
		Value: sarama.ByteEncoder(value),
	})
	if err != nil {
		return fmt.Errorf("send message to %s: %w", topic, err)
	}

	p.log.Info("message published",
		logger.NewField("topic", topic),
		logger.NewField("key", key),
		logger.NewField("partition", partition),
		logger.NewField("offset", offset),
	)
	return nil
}

func (p *Producer) Close() error {
	return p.producer.Close()
}
