package otp

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"gathr/internal/entities"
	"gathr/internal/service/otp"

	"github.com/redis/go-redis/v9"
)

const (
	keyPrefix = "otp:"
	// ключ живёт чуть дольше вызова, чтобы проверка успела ответить "истёк", а не "не найден"
	expiryGrace = time.Minute
)

var deleteIfMatch = redis.NewScript(`
if redis.call("HGET", KEYS[1], "code") == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

type RedisStore struct {
	client redis.UniversalClient
}

func NewRedisStore(client redis.UniversalClient) *RedisStore {
	return &RedisStore{
		client: client,
	}
}

func redisKey(key string) string {
	return keyPrefix + key
}

func (s *RedisStore) Save(ctx context.Context, challenge entities.OtpChallenge) error {
	key := redisKey(challenge.Key)
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, key)
		pipe.HSet(ctx, key,
			"code", challenge.Code,
			"expires_at", challenge.ExpiresAt.UnixMilli(),
		)
		pipe.PExpireAt(ctx, key, challenge.ExpiresAt.Add(expiryGrace))
		return nil
	})
	if err != nil {
		return fmt.Errorf("save otp challenge: %w", err)
	}
	return nil
}

func (s *RedisStore) Get(ctx context.Context, key string) (*entities.OtpChallenge, error) {
	values, err := s.client.HGetAll(ctx, redisKey(key)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, otp.ErrNotFound
		}
		return nil, fmt.Errorf("get otp challenge: %w", err)
	}
	if len(values) == 0 {
		return nil, otp.ErrNotFound
	}

	expiresAt, err := strconv.ParseInt(values["expires_at"], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("parse otp expiry: %w", err)
	}

	return &entities.OtpChallenge{
		Key:       key,
		Code:      values["code"],
		ExpiresAt: time.UnixMilli(expiresAt).UTC(),
	}, nil
}

func (s *RedisStore) Delete(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, redisKey(key)).Err(); err != nil {
		return fmt.Errorf("delete otp challenge: %w", err)
	}
	return nil
}

func (s *RedisStore) DeleteIfMatch(ctx context.Context, key, code string) (bool, error) {
	deleted, err := deleteIfMatch.Run(ctx, s.client, []string{redisKey(key)}, code).Int()
	if err != nil {
		return false, fmt.Errorf("consume otp challenge: %w", err)
	}
	return deleted == 1, nil
}
