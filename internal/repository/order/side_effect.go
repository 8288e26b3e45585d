package order

import (
	"context"
	"fmt"

	"gathr/internal/entities"

	sq "github.com/Masterminds/squirrel"
)

var sideEffectColumns = map[entities.OrderSideEffect]string{
	entities.SideEffectStockRestored: "stock_restored_at",
	entities.SideEffectReceiptSent:   "receipt_sent_at",
}

func sideEffectColumn(effect entities.OrderSideEffect) (string, error) {
	column, ok := sideEffectColumns[effect]
	if !ok {
		return "", fmt.Errorf("unknown side effect %q", effect)
	}
	return column, nil
}

// ClaimSideEffect отмечает реакцию выполненной. false - её уже выполнил другой обработчик.
func (r *Repository) ClaimSideEffect(ctx context.Context, orderID string, effect entities.OrderSideEffect) (bool, error) {
	column, err := sideEffectColumn(effect)
	if err != nil {
		return false, err
	}

	query, args, err := qb.Update(ordersTable).
		Set(column, sq.Expr("NOW()")).
		Where(sq.Eq{"id": orderID}).
		Where(sq.Eq{column: nil}).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("build claim %s query: %w", effect, err)
	}

	tag, err := r.querier.Exec(ctx, query, args...)
	if err != nil {
		return false, fmt.Errorf("claim %s for order %s: %w", effect, orderID, err)
	}
	return tag.RowsAffected() == 1, nil
}

// ReleaseSideEffect снимает отметку, если реакция не удалась и должна повториться.
func (r *Repository) ReleaseSideEffect(ctx context.Context, orderID string, effect entities.OrderSideEffect) error {
	column, err := sideEffectColumn(effect)
	if err != nil {
		return err
	}

	query, args, err := qb.Update(ordersTable).
		Set(column, nil).
		Where(sq.Eq{"id": orderID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build release %s query: %w", effect, err)
	}

	if _, err := r.querier.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("release %s for order %s: %w", effect, orderID, err)
	}
	return nil
}
