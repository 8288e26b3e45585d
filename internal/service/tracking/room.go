package tracking

import (
	"sync"

	"gathr/internal/entities"
)

// Participant - одно подключение к комнате заказа. Канал Messages закрывается
// при выходе участника или закрытии комнаты.
type Participant struct {
	id       uint64
	UserID   string
	Role     entities.Role
	Name     string
	OrderID  string
	messages chan entities.TrackingMessage
	room     *room
}

func (p *Participant) Messages() <-chan entities.TrackingMessage {
	return p.messages
}

type room struct {
	mu           sync.Mutex
	orderID      string
	carrierID    string
	participants map[uint64]*Participant
	closed       bool
}

func newRoom(orderID, carrierID string) *room {
	return &room{
		orderID:      orderID,
		carrierID:    carrierID,
		participants: make(map[uint64]*Participant, 2),
	}
}

// add возвращает false, если комнату уже разобрали: вызывающий создаёт новую.
func (r *room) add(p *Participant) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return false
	}
	r.participants[p.id] = p
	r.broadcastLocked(p.id, entities.TrackingMessage{
		Type:     entities.TrackingJoined,
		OrderID:  r.orderID,
		FromRole: p.Role,
		FromName: p.Name,
	})
	return true
}

// remove возвращает true, если участник был последним и комната закрыта.
func (r *room) remove(p *Participant, msg entities.TrackingMessage) (removed, empty bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.participants[p.id]; !ok {
		return false, false
	}
	delete(r.participants, p.id)
	close(p.messages)
	r.broadcastLocked(p.id, msg)

	if len(r.participants) == 0 {
		r.closed = true
		return true, true
	}
	return true, false
}

func (r *room) isClosed() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.closed
}

func (r *room) broadcast(from uint64, msg entities.TrackingMessage) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return ErrRoomClosed
	}
	if _, ok := r.participants[from]; !ok {
		return ErrRoomClosed
	}
	r.broadcastLocked(from, msg)
	return nil
}

// broadcastLocked не блокируется: медленный получатель теряет кадр, а не тормозит комнату.
func (r *room) broadcastLocked(from uint64, msg entities.TrackingMessage) {
	for id, p := range r.participants {
		if id == from {
			continue
		}
		select {
		case p.messages <- msg:
			MessagesTotal.WithLabelValues(string(msg.Type), "delivered").Inc()
		default:
			MessagesTotal.WithLabelValues(string(msg.Type), "dropped").Inc()
		}
	}
}

// teardown закрывает комнату и возвращает число отключённых участников.
func (r *room) teardown(msg entities.TrackingMessage) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return 0
	}
	r.closed = true

	n := len(r.participants)
	for id, p := range r.participants {
		select {
		case p.messages <- msg:
		default:
		}
		close(p.messages)
		delete(r.participants, id)
	}
	return n
}
