package tracking_room

import (
	"context"

	"gathr/internal/entities"
	"gathr/internal/service/tracking"
	"gathr/pkg/geo"
)

type hub interface {
	Join(ctx context.Context, userID, orderID, name string) (*tracking.Participant, error)
	Leave(ctx context.Context, p *tracking.Participant)
	PublishLocation(ctx context.Context, p *tracking.Participant, point geo.Point) error
	RelayChat(p *tracking.Participant, text string) error
}

// HubService привязывает подключение к участнику комнаты tracking.Hub.
type HubService struct {
	hub hub
}

func NewHubService(h hub) *HubService {
	return &HubService{hub: h}
}

func (s *HubService) Join(ctx context.Context, userID, orderID, name string) (Session, error) {
	p, err := s.hub.Join(ctx, userID, orderID, name)
	if err != nil {
		return nil, err
	}
	return &hubSession{hub: s.hub, participant: p}, nil
}

type hubSession struct {
	hub         hub
	participant *tracking.Participant
}

func (s *hubSession) OrderID() string {
	return s.participant.OrderID
}

func (s *hubSession) Messages() <-chan entities.TrackingMessage {
	return s.participant.Messages()
}

func (s *hubSession) PublishLocation(ctx context.Context, point geo.Point) error {
	return s.hub.PublishLocation(ctx, s.participant, point)
}

func (s *hubSession) SendChat(text string) error {
	return s.hub.RelayChat(s.participant, text)
}

func (s *hubSession) Leave(ctx context.Context) {
	s.hub.Leave(ctx, s.participant)
}
