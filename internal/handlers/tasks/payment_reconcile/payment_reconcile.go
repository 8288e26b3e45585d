package payment_reconcile

import (
	"context"
	"time"

	"gathr/pkg/logger"
)

// PaymentReconcile подбирает онлайн-заказы, по которым вебхук так и не пришёл.
type PaymentReconcile struct {
	log        taskLogger
	service    Service
	interval   time.Duration
	staleAfter time.Duration
}

func NewPaymentReconcile(log taskLogger, service Service, interval, staleAfter time.Duration) *PaymentReconcile {
	return &PaymentReconcile{
		log:        log,
		service:    service,
		interval:   interval,
		staleAfter: staleAfter,
	}
}

func (p *PaymentReconcile) TTL() time.Duration {
	return p.interval
}

func (p *PaymentReconcile) Do(ctx context.Context) error {
	ctxWithTimeout, cancel := context.WithTimeout(ctx, p.interval)
	defer cancel()

	changed, err := p.service.ReconcileStale(ctxWithTimeout, p.staleAfter)

	if changed > 0 {
		p.log.With(
			logger.NewField("changed_payments", changed),
		).Info("payment reconcile")
	}

	return err
}

func (p *PaymentReconcile) Info() string {
	return "payment reconcile"
}
