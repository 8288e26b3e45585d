package order

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gathr/internal/entities"
	"gathr/internal/repository"
	"gathr/internal/service/order"
	"gathr/pkg/geo"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
)

const ordersTable = "orders"

var orderColumns = []string{
	"id", "cart_id", "shop_id", "customer_id", "address_id", "carrier_id",
	"status", "payment_status", "payment_method", "amount_paid",
	"gateway_session_id", "gateway_payment_intent_id",
	"subtotal", "tax", "delivery_fee", "total", "distance_km", "currency",
	"created_at", "updated_at",
}

var addressColumns = []string{"id", "customer_id", "label", "line", "city", "lat", "long", "created_at"}

var qb sq.StatementBuilderType = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

type Repository struct {
	querier Querier
}

func New(querier Querier) *Repository {
	return &Repository{
		querier: querier,
	}
}

func prefixed(prefix string, columns []string) []string {
	result := make([]string, 0, len(columns))
	for _, c := range columns {
		result = append(result, prefix+"."+c)
	}
	return result
}

func orderDest(o *OrderDB) []any {
	return []any{
		&o.ID, &o.CartID, &o.ShopID, &o.CustomerID, &o.AddressID, &o.CarrierID,
		&o.Status, &o.PaymentStatus, &o.PaymentMethod, &o.AmountPaid,
		&o.GatewaySessionID, &o.GatewayPaymentIntentID,
		&o.Subtotal, &o.Tax, &o.DeliveryFee, &o.Total, &o.DistanceKm, &o.Currency,
		&o.CreatedAt, &o.UpdatedAt,
	}
}

func addressDest(a *AddressDB) []any {
	return []any{&a.ID, &a.CustomerID, &a.Label, &a.Line, &a.City, &a.Lat, &a.Long, &a.CreatedAt}
}

func scanOrder(row pgx.Row) (*OrderDB, error) {
	var orderDB OrderDB
	if err := row.Scan(orderDest(&orderDB)...); err != nil {
		return nil, err
	}
	return &orderDB, nil
}

// returningOrder добавляет RETURNING со всеми колонками заказа.
func returningOrder() string {
	return "RETURNING " + strings.Join(orderColumns, ", ")
}

func (r *Repository) Create(ctx context.Context, orderModify entities.OrderModify) (*entities.Order, error) {
	if orderModify.CartID == nil || orderModify.ShopID == nil || orderModify.CustomerID == nil ||
		orderModify.AddressID == nil || orderModify.PaymentMethod == nil || orderModify.Charges == nil {
		return nil, fmt.Errorf("create order: %w", order.ErrMissingRequiredFields)
	}

	status := entities.OrderPending
	if orderModify.Status != nil {
		status = *orderModify.Status
	}
	paymentStatus := entities.PaymentPending
	if orderModify.PaymentStatus != nil {
		paymentStatus = *orderModify.PaymentStatus
	}
	charges := orderModify.Charges

	query, args, err := qb.Insert(ordersTable).
		Columns(
			"cart_id", "shop_id", "customer_id", "address_id", "status", "payment_status",
			"payment_method", "subtotal", "tax", "delivery_fee", "total", "distance_km", "currency",
		).
		Values(
			*orderModify.CartID, *orderModify.ShopID, *orderModify.CustomerID, *orderModify.AddressID,
			status, paymentStatus, *orderModify.PaymentMethod,
			charges.Subtotal, charges.Tax, charges.DeliveryFee, charges.Total, charges.DistanceKm, charges.Currency,
		).
		Suffix(returningOrder()).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build create order query: %w", err)
	}

	orderDB, err := scanOrder(r.querier.QueryRow(ctx, query, args...))
	if err != nil {
		if repository.IsPgErrorWithCode(err, repository.PgErrUniqueViolation) {
			return nil, fmt.Errorf("create order: %w", order.ErrCartAlreadyOrdered)
		}
		if repository.IsPgErrorWithCode(err, repository.PgErrForeignKeyViolation) {
			return nil, fmt.Errorf("create order: %w", order.ErrAddressNotFound)
		}
		return nil, fmt.Errorf("create order: %w", err)
	}
	return ToDomain(orderDB), nil
}

func (r *Repository) GetByID(ctx context.Context, id string) (*entities.Order, error) {
	query, args, err := qb.Select(orderColumns...).
		From(ordersTable).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build get order query: %w", err)
	}

	orderDB, err := scanOrder(r.querier.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) || repository.IsPgErrorWithCode(err, repository.PgErrInvalidTextRepresentation) {
			return nil, order.ErrOrderNotFound
		}
		return nil, fmt.Errorf("get order %s: %w", id, err)
	}
	return ToDomain(orderDB), nil
}

func (r *Repository) List(ctx context.Context, filter entities.OrderFilter) ([]entities.Order, error) {
	builder := qb.Select(orderColumns...).
		From(ordersTable).
		OrderBy("created_at DESC", "id")

	if filter.CustomerID != nil {
		builder = builder.Where(sq.Eq{"customer_id": *filter.CustomerID})
	}
	if filter.CarrierID != nil {
		builder = builder.Where(sq.Eq{"carrier_id": *filter.CarrierID})
	}
	if len(filter.ShopIDs) > 0 {
		builder = builder.Where(sq.Eq{"shop_id": filter.ShopIDs})
	}
	if len(filter.Statuses) > 0 {
		statuses := make([]string, 0, len(filter.Statuses))
		for _, s := range filter.Statuses {
			statuses = append(statuses, s.String())
		}
		builder = builder.Where(sq.Eq{"status": statuses})
	}
	if filter.Limit > 0 {
		builder = builder.Limit(filter.Limit)
	}
	if filter.Offset > 0 {
		builder = builder.Offset(filter.Offset)
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list orders query: %w", err)
	}

	rows, err := r.querier.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	defer rows.Close()

	var orders []OrderDB
	for rows.Next() {
		var orderDB OrderDB
		if err := rows.Scan(orderDest(&orderDB)...); err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		orders = append(orders, orderDB)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration: %w", err)
	}
	return ToDomainList(orders), nil
}

// ListDispatchable отбирает кандидатов для курьеров грубым фильтром по bounding box;
// точное расстояние досчитывает сервис. Страницы идут по ключу (created_at, id) после after.
func (r *Repository) ListDispatchable(ctx context.Context, box geo.BoundingBox, after *entities.Order, limit uint64) ([]entities.NearbyOrder, error) {
	columns := append(prefixed("o", orderColumns), prefixed("a", addressColumns)...)
	builder := qb.Select(columns...).
		From(ordersTable + " o").
		Join("addresses a ON a.id = o.address_id").
		Where(sq.Eq{"o.status": entities.OrderPending.String()}).
		Where(sq.Eq{"o.carrier_id": nil}).
		Where(sq.Or{
			sq.Eq{"o.payment_method": entities.PaymentCOD.String()},
			sq.Eq{"o.payment_status": entities.PaymentPaid.String()},
		}).
		Where(sq.NotEq{"a.lat": nil}).
		Where(sq.NotEq{"a.long": nil}).
		Where(sq.GtOrEq{"a.lat": box.MinLat}).
		Where(sq.LtOrEq{"a.lat": box.MaxLat}).
		Where(sq.GtOrEq{"a.long": box.MinLong}).
		Where(sq.LtOrEq{"a.long": box.MaxLong}).
		OrderBy("o.created_at", "o.id")
	if after != nil {
		builder = builder.Where(sq.Expr("(o.created_at, o.id) > (?, ?::uuid)", after.CreatedAt, after.ID))
	}
	if limit > 0 {
		builder = builder.Limit(limit)
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build dispatchable orders query: %w", err)
	}

	rows, err := r.querier.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list dispatchable orders: %w", err)
	}
	defer rows.Close()

	var result []entities.NearbyOrder
	for rows.Next() {
		var (
			orderDB   OrderDB
			addressDB AddressDB
		)
		if err := rows.Scan(append(orderDest(&orderDB), addressDest(&addressDB)...)...); err != nil {
			return nil, fmt.Errorf("scan dispatchable order: %w", err)
		}
		result = append(result, entities.NearbyOrder{
			Order:       *ToDomain(&orderDB),
			Destination: *ToAddressDomain(&addressDB),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration: %w", err)
	}
	return result, nil
}

// Claim назначает курьера одним условным UPDATE. Победитель гонки получает строку,
// остальные ничего не меняют и узнают причину повторным чтением.
func (r *Repository) Claim(ctx context.Context, orderID, carrierID string) (*entities.Order, error) {
	query, args, err := qb.Update(ordersTable).
		Set("carrier_id", carrierID).
		Set("status", entities.OrderAccepted.String()).
		Set("updated_at", sq.Expr("NOW()")).
		Where(sq.Eq{"id": orderID}).
		Where(sq.Eq{"status": entities.OrderPending.String()}).
		Where(sq.Eq{"carrier_id": nil}).
		Where(sq.Or{
			sq.Eq{"payment_method": entities.PaymentCOD.String()},
			sq.Eq{"payment_status": entities.PaymentPaid.String()},
		}).
		Suffix(returningOrder()).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build claim query: %w", err)
	}

	orderDB, err := scanOrder(r.querier.QueryRow(ctx, query, args...))
	if err == nil {
		return ToDomain(orderDB), nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		if repository.IsPgErrorWithCode(err, repository.PgErrInvalidTextRepresentation) {
			return nil, order.ErrOrderNotFound
		}
		return nil, fmt.Errorf("claim order %s: %w", orderID, err)
	}

	current, err := r.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	switch {
	case current.CarrierID != nil:
		return nil, order.ErrAlreadyClaimed
	case current.Status != entities.OrderPending:
		return nil, fmt.Errorf("%w: %s -> %s", order.ErrInvalidTransition, current.Status, entities.OrderAccepted)
	default:
		return nil, order.ErrNotDispatchable
	}
}

func (r *Repository) UpdateStatus(ctx context.Context, update entities.StatusUpdate) (*entities.Order, error) {
	if !update.From.CanTransitionTo(update.To) {
		return nil, fmt.Errorf("%w: %s -> %s", order.ErrInvalidTransition, update.From, update.To)
	}

	builder := qb.Update(ordersTable).
		Set("status", update.To.String()).
		Set("updated_at", sq.Expr("NOW()")).
		Where(sq.Eq{"id": update.OrderID}).
		Where(sq.Eq{"status": update.From.String()})

	if update.CarrierID != nil {
		builder = builder.Where(sq.Eq{"carrier_id": *update.CarrierID})
	}
	if c := update.Charges; c != nil {
		builder = builder.
			Set("subtotal", c.Subtotal).
			Set("tax", c.Tax).
			Set("delivery_fee", c.DeliveryFee).
			Set("total", c.Total).
			Set("distance_km", c.DistanceKm)
	}
	if update.PaymentStatus != nil {
		builder = builder.Set("payment_status", update.PaymentStatus.String())
	}
	if update.AmountPaid != nil {
		builder = builder.Set("amount_paid", *update.AmountPaid)
	}

	query, args, err := builder.Suffix(returningOrder()).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build update status query: %w", err)
	}

	orderDB, err := scanOrder(r.querier.QueryRow(ctx, query, args...))
	if err == nil {
		return ToDomain(orderDB), nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("update order %s status: %w", update.OrderID, err)
	}

	current, err := r.GetByID(ctx, update.OrderID)
	if err != nil {
		return nil, err
	}
	return nil, fmt.Errorf("%w: %s -> %s", order.ErrInvalidTransition, current.Status, update.To)
}

// ListStalePendingPayments - онлайн-заказы с открытой сессией, по которым давно не было
// ни вебхука, ни опроса.
func (r *Repository) ListStalePendingPayments(ctx context.Context, before time.Time, limit uint64) ([]entities.Order, error) {
	builder := qb.Select(orderColumns...).
		From(ordersTable).
		Where(sq.Eq{"payment_method": entities.PaymentOnline.String()}).
		Where(sq.Eq{"payment_status": entities.PaymentPending.String()}).
		Where(sq.Eq{"status": entities.OrderPending.String()}).
		Where(sq.NotEq{"gateway_session_id": nil}).
		Where(sq.Lt{"updated_at": before}).
		OrderBy("updated_at")
	if limit > 0 {
		builder = builder.Limit(limit)
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build stale payments query: %w", err)
	}

	rows, err := r.querier.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list stale payments: %w", err)
	}
	defer rows.Close()

	var orders []OrderDB
	for rows.Next() {
		var orderDB OrderDB
		if err := rows.Scan(orderDest(&orderDB)...); err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		orders = append(orders, orderDB)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration: %w", err)
	}
	return ToDomainList(orders), nil
}
