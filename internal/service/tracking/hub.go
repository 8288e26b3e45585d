package tracking

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"
	"unicode/utf8"

	"gathr/internal/entities"
	"gathr/internal/service/authz"
	"gathr/internal/service/order"
	"gathr/pkg/geo"
	"gathr/pkg/logger"
)

const (
	participantBuffer = 32
	MaxMessageLength  = 1000
	leaveTimeout      = 5 * time.Second
	// closedTTL покрывает окно между чтением статуса в Join и созданием комнаты.
	closedTTL = 10 * time.Minute
)

// Hub - комнаты отслеживания по заказам. Разные заказы не делят блокировок,
// общая только короткая секция над картой комнат.
type Hub struct {
	mu     sync.Mutex
	rooms  map[string]*room
	nextID atomic.Uint64
	// closed - заказы, вышедшие из ontheway; комнату для них больше не создаём.
	closed    map[string]time.Time
	lastPrune time.Time

	repository Repository
	authorizer Authorizer
	locations  LocationStore
	eta        EtaCalculator
	log        serviceLogger
	now        func() time.Time
}

func New(
	repository Repository,
	authorizer Authorizer,
	locations LocationStore,
	eta EtaCalculator,
	log serviceLogger,
) *Hub {
	return &Hub{
		rooms:      make(map[string]*room),
		closed:     make(map[string]time.Time),
		repository: repository,
		authorizer: authorizer,
		locations:  locations,
		eta:        eta,
		log:        log,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// Join допускает в комнату назначенного курьера и клиента-владельца заказа, пока заказ в пути.
func (h *Hub) Join(ctx context.Context, userID, orderID, name string) (*Participant, error) {
	user, err := h.authorizer.RequireRole(ctx, userID, entities.RoleCarrier, entities.RoleCustomer)
	if err != nil {
		return nil, err
	}
	current, err := h.transitOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !canTrack(user, current) {
		return nil, authz.ErrForbidden
	}

	if strings.TrimSpace(name) == "" {
		name = user.Role.String()
	}
	p := &Participant{
		id:       h.nextID.Add(1),
		UserID:   user.ID,
		Role:     user.Role,
		Name:     name,
		OrderID:  current.ID,
		messages: make(chan entities.TrackingMessage, participantBuffer),
	}

	for {
		r := h.roomFor(current.ID, *current.CarrierID)
		if r == nil {
			return nil, fmt.Errorf("%w: room closed", ErrOrderNotInTransit)
		}
		if r.add(p) {
			p.room = r
			break
		}
		h.dropRoom(current.ID, r)
	}
	ActiveParticipants.Inc()

	h.log.Info("joined tracking room",
		logger.NewField("order_id", current.ID),
		logger.NewField("role", user.Role.String()),
	)
	return p, nil
}

// Leave идемпотентен. Уход курьера сбрасывает его последнюю точку.
func (h *Hub) Leave(ctx context.Context, p *Participant) {
	if p == nil || p.room == nil {
		return
	}
	removed, empty := p.room.remove(p, entities.TrackingMessage{
		Type:     entities.TrackingLeft,
		OrderID:  p.OrderID,
		FromRole: p.Role,
		FromName: p.Name,
		SentAt:   h.now(),
	})
	if !removed {
		return
	}
	ActiveParticipants.Dec()
	if empty {
		h.dropRoom(p.OrderID, p.room)
	}

	if p.Role == entities.RoleCarrier {
		ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), leaveTimeout)
		defer cancel()
		if err := h.locations.Delete(ctx, p.UserID); err != nil {
			h.log.Warn("clear carrier location",
				logger.NewField("carrier_id", p.UserID),
				logger.NewField("error", err),
			)
		}
	}
}

// PublishLocation перезаписывает последнюю точку курьера и рассылает её остальным.
func (h *Hub) PublishLocation(ctx context.Context, p *Participant, point geo.Point) error {
	if p.Role != entities.RoleCarrier {
		return ErrCarrierOnly
	}
	if err := point.Validate(); err != nil {
		return err
	}

	if p.room.isClosed() {
		return ErrRoomClosed
	}

	now := h.now()
	err := h.locations.Save(ctx, entities.CarrierLocation{
		CarrierID: p.UserID,
		OrderID:   p.OrderID,
		Point:     point,
		UpdatedAt: now,
	})
	if err != nil {
		return fmt.Errorf("save carrier location: %w", err)
	}
	// комнату разобрали, пока шла запись: точка не должна пережить доставку
	if p.room.isClosed() {
		if err := h.locations.Delete(ctx, p.UserID); err != nil {
			h.log.Warn("clear carrier location",
				logger.NewField("carrier_id", p.UserID),
				logger.NewField("error", err),
			)
		}
		return ErrRoomClosed
	}

	return p.room.broadcast(p.id, entities.TrackingMessage{
		Type:     entities.TrackingLocation,
		OrderID:  p.OrderID,
		FromRole: p.Role,
		FromName: p.Name,
		Lat:      point.Lat,
		Long:     point.Long,
		SentAt:   now,
	})
}

// RelayChat пересылает текст как есть, история не хранится.
func (h *Hub) RelayChat(p *Participant, text string) error {
	if strings.TrimSpace(text) == "" {
		return ErrEmptyMessage
	}
	if utf8.RuneCountInString(text) > MaxMessageLength {
		return fmt.Errorf("%w: limit %d", ErrMessageTooLong, MaxMessageLength)
	}

	return p.room.broadcast(p.id, entities.TrackingMessage{
		Type:     entities.TrackingChat,
		OrderID:  p.OrderID,
		FromRole: p.Role,
		FromName: p.Name,
		Text:     text,
		SentAt:   h.now(),
	})
}

// Close разбирает комнату, когда заказ выходит из статуса ontheway,
// и запрещает создавать её заново.
func (h *Hub) Close(orderID string) {
	now := h.now()
	h.mu.Lock()
	h.pruneClosedLocked(now)
	h.closed[orderID] = now
	r, ok := h.rooms[orderID]
	if ok {
		delete(h.rooms, orderID)
		ActiveRooms.Dec()
	}
	h.mu.Unlock()
	if !ok {
		return
	}

	n := r.teardown(entities.TrackingMessage{
		Type:    entities.TrackingClosed,
		OrderID: orderID,
		SentAt:  h.now(),
	})
	ActiveParticipants.Sub(float64(n))
	h.log.Info("tracking room closed",
		logger.NewField("order_id", orderID),
		logger.NewField("participants", n),
	)
}

// GetCarrierLocation отдаёт последнюю точку курьера, расстояние до адреса и ETA.
func (h *Hub) GetCarrierLocation(ctx context.Context, userID, orderID string) (*entities.CarrierTracking, error) {
	user, err := h.authorizer.RequireRole(ctx, userID, entities.RoleCarrier, entities.RoleCustomer)
	if err != nil {
		return nil, err
	}
	current, err := h.transitOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !canTrack(user, current) {
		return nil, authz.ErrForbidden
	}

	location, err := h.locations.Get(ctx, *current.CarrierID)
	if err != nil {
		return nil, err
	}
	// точка могла остаться от предыдущего заказа курьера
	if location.OrderID != "" && location.OrderID != current.ID {
		return nil, ErrLocationUnavailable
	}

	address, err := h.repository.GetAddressByID(ctx, current.AddressID)
	if err != nil {
		return nil, fmt.Errorf("get address: %w", err)
	}
	if address.Location == nil {
		return nil, fmt.Errorf("%w: destination has no coordinates", ErrLocationUnavailable)
	}

	distance, err := geo.Distance(location.Point, *address.Location)
	if err != nil {
		return nil, err
	}

	return &entities.CarrierTracking{
		Location:   *location,
		DistanceKm: distance,
		ETA:        h.eta.CalculateETA(distance),
	}, nil
}

func (h *Hub) transitOrder(ctx context.Context, orderID string) (*entities.Order, error) {
	if !order.IsValidID(orderID) {
		return nil, order.ErrInvalidOrderID
	}
	current, err := h.repository.GetByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, order.ErrOrderNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("get order: %w", err)
	}
	if current.Status != entities.OrderOnTheWay || current.CarrierID == nil {
		return nil, fmt.Errorf("%w: status %s", ErrOrderNotInTransit, current.Status)
	}
	return current, nil
}

// roomFor возвращает nil, если заказ уже вышел из ontheway.
func (h *Hub) roomFor(orderID, carrierID string) *room {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, closed := h.closed[orderID]; closed {
		return nil
	}
	r, ok := h.rooms[orderID]
	if !ok {
		r = newRoom(orderID, carrierID)
		h.rooms[orderID] = r
		ActiveRooms.Inc()
	}
	return r
}

// dropRoom убирает из карты именно эту комнату: на её месте уже может быть новая.
func (h *Hub) dropRoom(orderID string, r *room) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.rooms[orderID] == r {
		delete(h.rooms, orderID)
		ActiveRooms.Dec()
	}
}

func (h *Hub) pruneClosedLocked(now time.Time) {
	if now.Sub(h.lastPrune) < time.Minute {
		return
	}
	h.lastPrune = now
	for id, at := range h.closed {
		if now.Sub(at) > closedTTL {
			delete(h.closed, id)
		}
	}
}

// RoomSize - число участников в комнате, 0 если комнаты нет.
func (h *Hub) RoomSize(orderID string) int {
	h.mu.Lock()
	r, ok := h.rooms[orderID]
	h.mu.Unlock()
	if !ok {
		return 0
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.participants)
}

func canTrack(user *entities.User, o *entities.Order) bool {
	switch user.Role {
	case entities.RoleCustomer:
		return o.CustomerID == user.ID
	case entities.RoleCarrier:
		return o.IsAssignedTo(user.ID)
	default:
		return false
	}
}
