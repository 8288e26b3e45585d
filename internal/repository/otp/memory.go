package otp

import (
	"context"
	"sync"
	"time"

	"gathr/internal/entities"
	"gathr/internal/service/otp"
)

// MemoryStore - хранилище для одного инстанса и тестов.
type MemoryStore struct {
	mu         sync.Mutex
	challenges map[string]entities.OtpChallenge
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		challenges: make(map[string]entities.OtpChallenge),
	}
}

func (s *MemoryStore) Save(_ context.Context, challenge entities.OtpChallenge) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.challenges[challenge.Key] = challenge
	return nil
}

func (s *MemoryStore) Get(_ context.Context, key string) (*entities.OtpChallenge, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	challenge, ok := s.challenges[key]
	if !ok {
		return nil, otp.ErrNotFound
	}
	return &challenge, nil
}

func (s *MemoryStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.challenges, key)
	return nil
}

func (s *MemoryStore) DeleteIfMatch(_ context.Context, key, code string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	challenge, ok := s.challenges[key]
	if !ok || challenge.Code != code {
		return false, nil
	}
	delete(s.challenges, key)
	return true, nil
}

func (s *MemoryStore) Sweep(_ context.Context, now time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for key, challenge := range s.challenges {
		if challenge.IsExpired(now) {
			delete(s.challenges, key)
			removed++
		}
	}
	return removed, nil
}
