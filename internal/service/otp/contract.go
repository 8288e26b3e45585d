//go:generate mockgen -source=contract.go -destination=./contract_mocks_test.go -package=otp_test
package otp

import (
	"context"
	"time"

	"gathr/internal/entities"
)

// Store - хранилище вызовов с TTL. На ключ не больше одного живого вызова.
type Store interface {
	Save(ctx context.Context, challenge entities.OtpChallenge) error
	Get(ctx context.Context, key string) (*entities.OtpChallenge, error)
	Delete(ctx context.Context, key string) error
	// DeleteIfMatch атомарно удаляет вызов, если код совпал. false - вызов уже погашен.
	DeleteIfMatch(ctx context.Context, key, code string) (bool, error)
}

// Sweeper реализуют хранилища без собственного TTL.
type Sweeper interface {
	Sweep(ctx context.Context, now time.Time) (int, error)
}

type NotificationSender interface {
	Send(ctx context.Context, destination, subject, body string) error
}
