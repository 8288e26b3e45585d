package location_cleanup

import (
	"context"
	"time"

	"gathr/pkg/logger"
)

// LocationCleanup удаляет точки курьеров, которые давно не обновлялись.
// Redis-хранилище истекает само, задача нужна in-memory варианту.
type LocationCleanup struct {
	log      taskLogger
	store    Store
	interval time.Duration
	now      func() time.Time
}

func NewLocationCleanup(log taskLogger, store Store, interval time.Duration) *LocationCleanup {
	return &LocationCleanup{
		log:      log,
		store:    store,
		interval: interval,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

func (l *LocationCleanup) TTL() time.Duration {
	return l.interval
}

func (l *LocationCleanup) Do(ctx context.Context) error {
	ctxWithTimeout, cancel := context.WithTimeout(ctx, l.interval)
	defer cancel()

	removed, err := l.store.DeleteStale(ctxWithTimeout, l.now())

	if removed > 0 {
		l.log.With(
			logger.NewField("stale_locations", removed),
		).Info("location cleanup")
	}

	return err
}

func (l *LocationCleanup) Info() string {
	return "location cleanup"
}
