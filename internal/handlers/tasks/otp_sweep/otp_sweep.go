package otp_sweep

import (
	"context"
	"time"

	"gathr/pkg/logger"
)

type OtpSweep struct {
	log      taskLogger
	service  Service
	interval time.Duration
}

func NewOtpSweep(log taskLogger, service Service, interval time.Duration) *OtpSweep {
	return &OtpSweep{
		log:      log,
		service:  service,
		interval: interval,
	}
}

func (o *OtpSweep) TTL() time.Duration {
	return o.interval
}

func (o *OtpSweep) Do(ctx context.Context) error {
	ctxWithTimeout, cancel := context.WithTimeout(ctx, o.interval)
	defer cancel()

	removed, err := o.service.Sweep(ctxWithTimeout)

	if removed > 0 {
		o.log.With(
			logger.NewField("expired_challenges", removed),
		).Info("otp sweep")
	}

	return err
}

func (o *OtpSweep) Info() string {
	return "otp sweep"
}
