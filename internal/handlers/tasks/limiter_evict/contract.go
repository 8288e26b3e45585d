//go:generate mockgen -source=contract.go -destination=./contract_mocks_test.go -package=limiter_evict_test
package limiter_evict

import (
	"gathr/pkg/logger"
)

type taskLogger interface {
	Info(msg string, fields ...logger.Field)
	Warn(msg string, fields ...logger.Field)
	Error(msg string, fields ...logger.Field)
	With(fields ...logger.Field) logger.Logger
}

type Limiter interface {
	Evict() int
	Len() int
}
