package limiter_evict

import (
	"context"
	"time"

	"gathr/pkg/logger"
)

// LimiterEvict освобождает бакеты клиентов, которые давно не присылали запросов.
type LimiterEvict struct {
	log      taskLogger
	limiter  Limiter
	interval time.Duration
}

func NewLimiterEvict(log taskLogger, limiter Limiter, interval time.Duration) *LimiterEvict {
	return &LimiterEvict{
		log:      log,
		limiter:  limiter,
		interval: interval,
	}
}

func (l *LimiterEvict) TTL() time.Duration {
	return l.interval
}

func (l *LimiterEvict) Do(context.Context) error {
	evicted := l.limiter.Evict()

	if evicted > 0 {
		l.log.With(
			logger.NewField("evicted_buckets", evicted),
			logger.NewField("active_buckets", l.limiter.Len()),
		).Info("rate limiter evict")
	}

	return nil
}

func (l *LimiterEvict) Info() string {
	return "rate limiter evict"
}
