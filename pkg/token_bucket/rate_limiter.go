package token_bucket

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

/*
Токен-бакет на каждого клиента (ключ - IP или идентификатор пользователя).
Сам алгоритм берём из golang.org/x/time/rate, здесь только реестр бакетов
и вытеснение давно не активных клиентов.
*/

type Limiter interface {
	Allow(key string) bool
}

type bucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

type KeyedBucket struct {
	mu      sync.Mutex
	buckets map[string]*bucket
	rps     rate.Limit
	burst   int
	idleTTL time.Duration
	now     func() time.Time
}

func NewKeyedBucket(rps float64, burst int, idleTTL time.Duration) *KeyedBucket {
	return &KeyedBucket{
		buckets: make(map[string]*bucket),
		rps:     rate.Limit(rps),
		burst:   burst,
		idleTTL: idleTTL,
		now:     time.Now,
	}
}

func (k *KeyedBucket) Allow(key string) bool {
	k.mu.Lock()
	now := k.now()
	b, ok := k.buckets[key]
	if !ok {
		b = &bucket{limiter: rate.NewLimiter(k.rps, k.burst)}
		k.buckets[key] = b
	}
	b.lastSeen = now
	k.mu.Unlock()

	return b.limiter.AllowN(now, 1)
}

// Evict удаляет бакеты клиентов, не делавших запросов дольше idleTTL.
func (k *KeyedBucket) Evict() int {
	k.mu.Lock()
	defer k.mu.Unlock()

	now := k.now()
	evicted := 0
	for key, b := range k.buckets {
		if now.Sub(b.lastSeen) > k.idleTTL {
			delete(k.buckets, key)
			evicted++
		}
	}
	return evicted
}

func (k *KeyedBucket) Len() int {
	k.mu.Lock()
	defer k.mu.Unlock()
	return len(k.buckets)
}
