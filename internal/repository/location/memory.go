package location

import (
	"context"
	"sync"
	"time"

	"gathr/internal/entities"
	"gathr/internal/service/tracking"
)

// MemoryStore держит последние точки курьеров в памяти процесса.
// Устаревшие записи не отдаются и вычищаются DeleteStale.
type MemoryStore struct {
	mu        sync.RWMutex
	ttl       time.Duration
	locations map[string]entities.CarrierLocation
	now       func() time.Time
}

func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		ttl:       ttl,
		locations: make(map[string]entities.CarrierLocation),
		now:       time.Now,
	}
}

func (s *MemoryStore) Save(_ context.Context, location entities.CarrierLocation) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.locations[location.CarrierID] = location
	return nil
}

func (s *MemoryStore) Get(_ context.Context, carrierID string) (*entities.CarrierLocation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	location, ok := s.locations[carrierID]
	if !ok || s.isStale(location, s.now()) {
		return nil, tracking.ErrLocationUnavailable
	}
	return &location, nil
}

func (s *MemoryStore) Delete(_ context.Context, carrierID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.locations, carrierID)
	return nil
}

func (s *MemoryStore) DeleteStale(_ context.Context, now time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for carrierID, location := range s.locations {
		if s.isStale(location, now) {
			delete(s.locations, carrierID)
			removed++
		}
	}
	return removed, nil
}

func (s *MemoryStore) isStale(location entities.CarrierLocation, now time.Time) bool {
	return s.ttl > 0 && now.Sub(location.UpdatedAt) > s.ttl
}
