package redis

import (
	"context"
	"fmt"
	"time"

	"gathr/internal/pkg/config"
	"gathr/pkg/logger"
	retrierconfig "gathr/pkg/retrier"
	"gathr/pkg/retrier/backoff_adapter"

	goredis "github.com/redis/go-redis/v9"
)

const (
	dialTimeout  = 5 * time.Second
	readTimeout  = 3 * time.Second
	writeTimeout = 3 * time.Second
	poolSize     = 20

	initialInterval = 1 * time.Second
	maxInterval     = 10 * time.Second
	maxElapsedTime  = time.Minute
	randomization   = 0.5
	multiplier      = 2
)

// NewClient поднимает клиента и дожидается ответа на PING с ретраями.
// Вызывается только при непустом cfg.Addr.
func NewClient(ctx context.Context, log logger.Logger, cfg config.Redis) (*goredis.Client, error) {
	client := goredis.NewClient(&goredis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  dialTimeout,
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
		PoolSize:     poolSize,
	})

	redisLog := log.With(
		logger.NewField("addr", cfg.Addr),
		logger.NewField("db", cfg.DB),
	)

	if err := pingRedis(ctx, redisLog, client); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis connection: %w", err)
	}
	return client, nil
}

func pingRedis(ctx context.Context, log logger.Logger, client *goredis.Client) error {
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
		).Info("attempting Redis connection")

		return client.Ping(ctx).Err()
	})
	if err != nil {
		log.With(
			logger.NewField("error", err),
			logger.NewField("attempts", attempt),
		).Error("Redis connection failed after retries")
		return fmt.Errorf("failed to ping redis: %w", err)
	}

	log.With(
		logger.NewField("attempts", attempt),
	).Info("Redis connection established")
	return nil
}
