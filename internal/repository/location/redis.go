package location

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"gathr/internal/entities"
	"gathr/internal/service/tracking"
	"gathr/pkg/geo"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "carrier_location:"

// RedisStore - последняя точка курьера в hash с TTL, устаревание делает сам Redis.
type RedisStore struct {
	client redis.UniversalClient
	ttl    time.Duration
}

func NewRedisStore(client redis.UniversalClient, ttl time.Duration) *RedisStore {
	return &RedisStore{
		client: client,
		ttl:    ttl,
	}
}

func redisKey(carrierID string) string {
	return keyPrefix + carrierID
}

func (s *RedisStore) Save(ctx context.Context, location entities.CarrierLocation) error {
	key := redisKey(location.CarrierID)
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, key,
			"order_id", location.OrderID,
			"lat", strconv.FormatFloat(location.Point.Lat, 'f', -1, 64),
			"long", strconv.FormatFloat(location.Point.Long, 'f', -1, 64),
			"updated_at", location.UpdatedAt.UnixMilli(),
		)
		if s.ttl > 0 {
			pipe.PExpire(ctx, key, s.ttl)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("save carrier location: %w", err)
	}
	return nil
}

func (s *RedisStore) Get(ctx context.Context, carrierID string) (*entities.CarrierLocation, error) {
	values, err := s.client.HGetAll(ctx, redisKey(carrierID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, tracking.ErrLocationUnavailable
		}
		return nil, fmt.Errorf("get carrier location: %w", err)
	}
	if len(values) == 0 {
		return nil, tracking.ErrLocationUnavailable
	}

	lat, err := strconv.ParseFloat(values["lat"], 64)
	if err != nil {
		return nil, fmt.Errorf("parse latitude: %w", err)
	}
	long, err := strconv.ParseFloat(values["long"], 64)
	if err != nil {
		return nil, fmt.Errorf("parse longitude: %w", err)
	}
	updatedAt, err := strconv.ParseInt(values["updated_at"], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("parse location time: %w", err)
	}

	return &entities.CarrierLocation{
		CarrierID: carrierID,
		OrderID:   values["order_id"],
		Point:     geo.Point{Lat: lat, Long: long},
		UpdatedAt: time.UnixMilli(updatedAt).UTC(),
	}, nil
}

func (s *RedisStore) Delete(ctx context.Context, carrierID string) error {
	if err := s.client.Del(ctx, redisKey(carrierID)).Err(); err != nil {
		return fmt.Errorf("delete carrier location: %w", err)
	}
	return nil
}

// DeleteStale ничего не делает: записи истекают по TTL ключа.
func (s *RedisStore) DeleteStale(context.Context, time.Time) (int, error) {
	return 0, nil
}
