//go:generate mockgen -source=contract.go -destination=./contract_mocks_test.go -package=otp_sweep_test
package otp_sweep

import (
	"context"

	"gathr/pkg/logger"
)

type taskLogger interface {
	Info(msg string, fields ...logger.Field)
	Warn(msg string, fields ...logger.Field)
	Error(msg string, fields ...logger.Field)
	With(fields ...logger.Field) logger.Logger
}

type Service interface {
	Sweep(ctx context.Context) (int, error)
}
