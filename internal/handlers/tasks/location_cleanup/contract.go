//go:generate mockgen -source=contract.go -destination=./contract_mocks_test.go -package=location_cleanup_test
package location_cleanup

import (
	"context"
	"time"

	"gathr/pkg/logger"
)

type taskLogger interface {
	Info(msg string, fields ...logger.Field)
	Warn(msg string, fields ...logger.Field)
	Error(msg string, fields ...logger.Field)
	With(fields ...logger.Field) logger.Logger
}

type Store interface {
	DeleteStale(ctx context.Context, now time.Time) (int, error)
}
