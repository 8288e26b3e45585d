package dispatch

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"time"

	"gathr/internal/entities"
	"gathr/internal/pkg/config"
	"gathr/internal/service/authz"
	"gathr/internal/service/order"
	"gathr/pkg/geo"
	"gathr/pkg/logger"
)

type Service struct {
	repository Repository
	authorizer Authorizer
	publisher  EventPublisher
	cfg        config.Dispatch
	log        serviceLogger
	now        func() time.Time
}

func New(
	repository Repository,
	authorizer Authorizer,
	publisher EventPublisher,
	cfg config.Dispatch,
	log serviceLogger,
) *Service {
	return &Service{
		repository: repository,
		authorizer: authorizer,
		publisher:  publisher,
		cfg:        cfg,
		log:        log,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// ListNearbyOrders возвращает свободные заказы в радиусе от курьера, ближайшие первыми.
// radiusKm = 0 означает радиус по умолчанию.
func (s *Service) ListNearbyOrders(ctx context.Context, carrierID string, origin geo.Point, radiusKm float64) ([]entities.NearbyOrder, error) {
	if _, err := s.authorizer.RequireRole(ctx, carrierID, entities.RoleCarrier); err != nil {
		return nil, err
	}
	if err := origin.Validate(); err != nil {
		return nil, err
	}

	radius, err := s.radius(radiusKm)
	if err != nil {
		return nil, err
	}

	box, err := geo.BoundingBoxAround(origin, radius)
	if err != nil {
		return nil, err
	}

	// углы bounding box лежат вне радиуса, поэтому страницы выбираются до конца box,
	// иначе лимит мог бы отрезать заказы внутри радиуса
	nearby := make([]entities.NearbyOrder, 0)
	var after *entities.Order
	for {
		page, err := s.repository.ListDispatchable(ctx, box, after, s.cfg.CandidateLimit)
		if err != nil {
			return nil, fmt.Errorf("list dispatchable orders: %w", err)
		}
		nearby = append(nearby, s.withinRadius(origin, radius, page)...)

		if s.cfg.CandidateLimit == 0 || uint64(len(page)) < s.cfg.CandidateLimit {
			break
		}
		last := page[len(page)-1].Order
		after = &last
	}

	sort.SliceStable(nearby, func(i, j int) bool {
		return nearby[i].DistanceKm < nearby[j].DistanceKm
	})

	NearbyOrdersReturned.Observe(float64(len(nearby)))
	return nearby, nil
}

func (s *Service) withinRadius(origin geo.Point, radius float64, candidates []entities.NearbyOrder) []entities.NearbyOrder {
	nearby := make([]entities.NearbyOrder, 0, len(candidates))
	for _, candidate := range candidates {
		if candidate.Destination.Location == nil || !candidate.Order.IsDispatchable() {
			continue
		}
		distance, err := geo.Distance(origin, *candidate.Destination.Location)
		if err != nil {
			// битые координаты в адресе не должны ломать выдачу остальным
			s.log.Warn("skip order with invalid destination",
				logger.NewField("order_id", candidate.Order.ID),
				logger.NewField("error", err),
			)
			continue
		}
		if distance > radius {
			continue
		}
		candidate.DistanceKm = distance
		nearby = append(nearby, candidate)
	}
	return nearby
}

// AcceptOrder - атомарный захват заказа. Проигравший гонку получает ErrAlreadyClaimed без повтора.
func (s *Service) AcceptOrder(ctx context.Context, carrierID, orderID string) (*entities.Order, error) {
	if _, err := s.authorizer.RequireRole(ctx, carrierID, entities.RoleCarrier); err != nil {
		return nil, err
	}
	if !order.IsValidID(orderID) {
		return nil, order.ErrInvalidOrderID
	}

	claimed, err := s.repository.Claim(ctx, orderID, carrierID)
	if err != nil {
		ClaimsTotal.WithLabelValues(claimResult(err)).Inc()
		return nil, err
	}
	ClaimsTotal.WithLabelValues("won").Inc()

	s.publish(ctx, claimed)
	return claimed, nil
}

// CompletePickup - назначенный курьер забрал заказ из магазина.
func (s *Service) CompletePickup(ctx context.Context, carrierID, orderID string) (*entities.Order, error) {
	if _, err := s.authorizer.RequireRole(ctx, carrierID, entities.RoleCarrier); err != nil {
		return nil, err
	}
	if !order.IsValidID(orderID) {
		return nil, order.ErrInvalidOrderID
	}

	current, err := s.repository.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !current.IsAssignedTo(carrierID) {
		return nil, fmt.Errorf("%w: order %s is not assigned to carrier", authz.ErrForbidden, orderID)
	}

	updated, err := s.repository.UpdateStatus(ctx, entities.StatusUpdate{
		OrderID:   orderID,
		From:      entities.OrderAccepted,
		To:        entities.OrderOnTheWay,
		CarrierID: &carrierID,
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, updated)
	return updated, nil
}

func (s *Service) radius(radiusKm float64) (float64, error) {
	if math.IsNaN(radiusKm) || math.IsInf(radiusKm, 0) || radiusKm < 0 {
		return 0, ErrInvalidRadius
	}
	if radiusKm == 0 {
		return s.cfg.DefaultRadiusKm, nil
	}
	if s.cfg.MaxRadiusKm > 0 && radiusKm > s.cfg.MaxRadiusKm {
		return 0, fmt.Errorf("%w: %.1f km exceeds %.1f km", ErrInvalidRadius, radiusKm, s.cfg.MaxRadiusKm)
	}
	return radiusKm, nil
}

func (s *Service) publish(ctx context.Context, o *entities.Order) {
	if err := s.publisher.PublishStatusChanged(ctx, entities.NewOrderStatusChanged(o, s.now())); err != nil {
		s.log.Warn("publish order status changed",
			logger.NewField("order_id", o.ID),
			logger.NewField("status", o.Status.String()),
			logger.NewField("error", err),
		)
	}
}

func claimResult(err error) string {
	switch {
	case errors.Is(err, order.ErrAlreadyClaimed):
		return "already_claimed"
	case errors.Is(err, order.ErrOrderNotFound):
		return "not_found"
	case errors.Is(err, order.ErrInvalidTransition), errors.Is(err, order.ErrNotDispatchable):
		return "rejected"
	default:
		return "error"
	}
}
