package tx

import (
	"context"
	"errors"
	"time"

	"gathr/pkg/retrier"
	"gathr/pkg/retrier/backoff_adapter"

	"github.com/avito-tech/go-transaction-manager/pgxv5"
	"github.com/avito-tech/go-transaction-manager/trm/manager"
	"github.com/avito-tech/go-transaction-manager/trm/settings"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// https://www.postgresql.org/docs/current/errcodes-appendix.html
const (
	pgSerializationFailure = "40001"
	pgDeadlockDetected     = "40P01"
)

const (
	retryInitialInterval = 20 * time.Millisecond
	retryMaxInterval     = 200 * time.Millisecond
	retryMaxElapsed      = 2 * time.Second
	retryMaxAttempts     = 3
)

// Manager открывает транзакцию READ COMMITTED и повторяет её целиком,
// если Postgres откатил её из-за сериализации или дедлока.
// Переходы статусов заказа защищены compare-and-set в самом UPDATE, более строгая изоляция не нужна.
type Manager struct {
	internal *manager.Manager
	settings pgxv5.Settings
	retrier  retrier.Retrier
}

func New(db pgxv5.Transactional) *Manager {
	txSettings := pgxv5.MustSettings(
		settings.Must(),
		pgxv5.WithTxOptions(pgx.TxOptions{IsoLevel: pgx.ReadCommitted}),
	)

	return &Manager{
		internal: manager.Must(pgxv5.NewDefaultFactory(db)),
		settings: txSettings,
		retrier: backoff_adapter.New(retrier.Config{
			InitialInterval: retryInitialInterval,
			MaxInterval:     retryMaxInterval,
			MaxElapsedTime:  retryMaxElapsed,
			Randomization:   0.5,
			Multiplier:      2,
			MaxRetries:      retryMaxAttempts,
			ShouldRetry:     isTransient,
		}),
	}
}

// Do выполняет fn в транзакции. fn может быть вызвана повторно и не должна иметь внешних побочных эффектов.
func (m *Manager) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	return m.retrier.ExecuteWithContext(ctx, func(ctx context.Context) error {
		return m.internal.DoWithSettings(ctx, m.settings, fn)
	})
}

func isTransient(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	return pgErr.Code == pgSerializationFailure || pgErr.Code == pgDeadlockDetected
}
