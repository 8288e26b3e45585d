//go:generate mockgen -source=contract.go -destination=./contract_mocks_test.go -package=dispatch_otp_post_test
package dispatch_otp_post

import (
	"context"
	"time"

	"gathr/pkg/logger"
)

type handlerLogger interface {
	Info(msg string, fields ...logger.Field)
	Warn(msg string, fields ...logger.Field)
	Error(msg string, fields ...logger.Field)
	With(fields ...logger.Field) logger.Logger
}

type Service interface {
	IssueDeliveryOtp(ctx context.Context, carrierID, orderID string) (time.Time, error)
}
