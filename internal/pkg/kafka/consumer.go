package kafka

import (
	"context"
	"fmt"
	"sort"

	"gathr/internal/pkg/config"
	"gathr/pkg/logger"
	retrierconfig "gathr/pkg/retrier"
	"gathr/pkg/retrier/backoff_adapter"

	"github.com/IBM/sarama"
)

type Consumer struct {
	log     logger.Logger
	client  sarama.ConsumerGroup
	topics  []string
	handler sarama.ConsumerGroupHandler
}

// NewConsumer подключает группу cfg.ConsumerGroup и ждёт, пока брокеры отдадут все topics.
func NewConsumer(ctx context.Context, log logger.Logger, cfg *config.Kafka, topics []string, handler sarama.ConsumerGroupHandler) (*Consumer, error) {
	brokers := Brokers(cfg.Brokers)
	groupID := cfg.ConsumerGroup

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
		logger.NewField("component", "kafka-consumer"),
		logger.NewField("brokers", brokers),
		logger.NewField("group", groupID),
		logger.NewField("topics", topics),
	)

	// топики проверяются до создания группы, иначе Consume молча ждёт несуществующий топик
	if err := pingKafka(ctx, kafkaLog, brokers, saramaConfig, topics); err != nil {
		return nil, fmt.Errorf("kafka connection: %w", err)
	}

	client, err := sarama.NewConsumerGroup(brokers, groupID, saramaConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create consumer group: %w", err)
	}

	return &Consumer{
		log:     kafkaLog,
		client:  client,
		topics:  topics,
		handler: handler,
	}, nil
}

// Start блокирует до отмены ctx. Consume возвращается после каждой ребалансировки,
// поэтому вызывается в цикле.
func (c *Consumer) Start(ctx context.Context) error {
	c.log.Info("kafka consumer starting")

	go c.logGroupErrors(ctx)

	for {
		err := c.client.Consume(ctx, c.topics, c.handler)
		if ctx.Err() != nil {
			c.log.Warn("context cancelled, stopping consumer")
			return ctx.Err()
		}

		if err != nil {
			c.log.With(
				logger.NewField("error", err),
			).Error("consumer group session failed")
			return fmt.Errorf("consumer error: %w", err)
		}
	}
}

func (c *Consumer) Close() error {
	return c.client.Close()
}

// logGroupErrors вычитывает фоновые ошибки группы (коммит оффсетов, heartbeat).
// Без читателя канал заполняется и группа встаёт.
func (c *Consumer) logGroupErrors(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case err, ok := <-c.client.Errors():
			if !ok {
				return
			}
			c.log.With(logger.NewField("error", err)).Warn("consumer group error")
		}
	}
}

// pingKafka ждёт доступности брокеров и появления нужных топиков. Общий для consumer и producer.
func pingKafka(ctx context.Context, log logger.Logger, brokers []string, cfg *sarama.Config, required []string) error {
	retrier := backoff_adapter.New(retrierconfig.Config{
		InitialInterval: initialInterval,
		MaxInterval:     maxInterval,
		MaxElapsedTime:  maxElapsedTime,
		Randomization:   randomization,
		Multiplier:      multiplier,
	})

	var attempt uint64
	err := retrier.ExecuteWithContext(ctx, func(ctx context.Context) error {
		attempt++
		log.With(
			logger.NewField("attempt", attempt),
		).Info("attempting kafka connection")

		client, err := sarama.NewClient(brokers, cfg)
		if err != nil {
			return err
		}
		defer func() {
			if err := client.Close(); err != nil {
				log.Error("failed to close kafka connection", logger.NewField("error", err))
			}
		}()

		available, err := client.Topics()
		if err != nil {
			return err
		}
		if missing := missingTopics(available, required); len(missing) > 0 {
			return fmt.Errorf("topics not found: %v", missing)
		}
		return nil
	})
	if err != nil {
		log.With(
			logger.NewField("error", err),
			logger.NewField("attempts", attempt),
		).Error("kafka connection failed after retries")
		return fmt.Errorf("failed to connect to kafka: %w", err)
	}

	log.With(
		logger.NewField("attempts", attempt),
	).Info("kafka connection established")
	return nil
}

func missingTopics(available, required []string) []string {
	present := make(map[string]struct{}, len(available))
	for _, topic := range available {
		present[topic] = struct{}{}
	}

	var missing []string
	for _, topic := range required {
		if topic == "" {
			continue
		}
		if _, ok := present[topic]; !ok {
			missing = append(missing, topic)
		}
	}
	sort.Strings(missing)
	return missing
}
