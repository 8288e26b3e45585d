package order

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gathr/internal/entities"
	"gathr/internal/service/order"
	"gathr/internal/service/payment"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
)

// unsettledPayments - статусы, которые ещё может перезаписать шлюз.
var unsettledPayments = []string{entities.PaymentPending.String(), entities.PaymentFailed.String()}

// refundClaimTTL - через столько захват возврата, брошенный упавшим процессом, можно перехватить.
// Повтор безопасен: ключ идемпотентности шлюза не даст вернуть деньги дважды.
const refundClaimTTL = 5 * time.Minute

func (r *Repository) SetCheckoutSession(ctx context.Context, orderID, sessionID string) (*entities.Order, error) {
	query, args, err := qb.Update(ordersTable).
		Set("gateway_session_id", sessionID).
		Set("updated_at", sq.Expr("NOW()")).
		Where(sq.Eq{"id": orderID}).
		Where(sq.Eq{"status": entities.OrderPending.String()}).
		Where(sq.Eq{"payment_method": entities.PaymentOnline.String()}).
		Where(sq.Eq{"payment_status": unsettledPayments}).
		Suffix(returningOrder()).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build set checkout session query: %w", err)
	}

	orderDB, err := scanOrder(r.querier.QueryRow(ctx, query, args...))
	if err == nil {
		return ToDomain(orderDB), nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("set checkout session for order %s: %w", orderID, err)
	}

	current, err := r.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if current.PaymentStatus.IsSettled() {
		return nil, payment.ErrAlreadyPaid
	}
	return nil, fmt.Errorf("%w: order is %s", order.ErrInvalidTransition, current.Status)
}

// ApplyPayment применяет результат оплаты, только пока платёж не закрыт.
// Повторная доставка того же события ничего не меняет и возвращает applied=false.
func (r *Repository) ApplyPayment(ctx context.Context, update entities.PaymentUpdate) (*entities.Order, bool, error) {
	builder := qb.Update(ordersTable).
		Set("payment_status", update.Status.String()).
		Set("updated_at", sq.Expr("NOW()")).
		Where(sq.Eq{"payment_status": unsettledPayments})

	switch {
	case update.SessionID != "":
		builder = builder.Where(sq.Eq{"gateway_session_id": update.SessionID})
	case update.PaymentIntentID != "":
		builder = builder.Where(sq.Eq{"gateway_payment_intent_id": update.PaymentIntentID})
	default:
		return nil, false, fmt.Errorf("apply payment: %w", payment.ErrMissingReference)
	}

	if update.PaymentIntentID != "" {
		builder = builder.Set("gateway_payment_intent_id", update.PaymentIntentID)
	}
	if update.AmountPaid != nil {
		builder = builder.Set("amount_paid", *update.AmountPaid)
	}

	query, args, err := builder.Suffix(returningOrder()).ToSql()
	if err != nil {
		return nil, false, fmt.Errorf("build apply payment query: %w", err)
	}

	orderDB, err := scanOrder(r.querier.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("apply payment: %w", err)
	}
	return ToDomain(orderDB), true, nil
}

// ClaimRefund захватывает возврат оплаченного заказа одним условным UPDATE.
func (r *Repository) ClaimRefund(ctx context.Context, orderID string) error {
	query, args, err := qb.Update(ordersTable).
		Set("refund_claimed_at", sq.Expr("NOW()")).
		Where(sq.Eq{"id": orderID}).
		Where(sq.Eq{"payment_status": entities.PaymentPaid.String()}).
		Where(sq.Or{
			sq.Eq{"refund_claimed_at": nil},
			sq.Lt{"refund_claimed_at": time.Now().Add(-refundClaimTTL)},
		}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build claim refund query: %w", err)
	}

	tag, err := r.querier.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("claim refund for order %s: %w", orderID, err)
	}
	if tag.RowsAffected() == 1 {
		return nil
	}

	current, err := r.GetByID(ctx, orderID)
	if err != nil {
		return err
	}
	if current.PaymentStatus != entities.PaymentPaid {
		return fmt.Errorf("%w: payment is %s", payment.ErrRefundNotAllowed, current.PaymentStatus)
	}
	return payment.ErrRefundInProgress
}

// ReleaseRefund снимает захват, если шлюз отказал и возврат можно повторить.
func (r *Repository) ReleaseRefund(ctx context.Context, orderID string) error {
	query, args, err := qb.Update(ordersTable).
		Set("refund_claimed_at", nil).
		Where(sq.Eq{"id": orderID}).
		Where(sq.Eq{"payment_status": entities.PaymentPaid.String()}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build release refund query: %w", err)
	}

	if _, err := r.querier.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("release refund for order %s: %w", orderID, err)
	}
	return nil
}

func (r *Repository) MarkRefunded(ctx context.Context, orderID string) (*entities.Order, error) {
	query, args, err := qb.Update(ordersTable).
		Set("payment_status", entities.PaymentRefunded.String()).
		Set("updated_at", sq.Expr("NOW()")).
		Where(sq.Eq{"id": orderID}).
		Where(sq.Eq{"payment_status": entities.PaymentPaid.String()}).
		Suffix(returningOrder()).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build mark refunded query: %w", err)
	}

	orderDB, err := scanOrder(r.querier.QueryRow(ctx, query, args...))
	if err == nil {
		return ToDomain(orderDB), nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("mark order %s refunded: %w", orderID, err)
	}

	if _, err := r.GetByID(ctx, orderID); err != nil {
		return nil, err
	}
	return nil, payment.ErrRefundNotAllowed
}
