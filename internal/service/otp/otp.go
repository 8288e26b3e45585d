package otp

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"fmt"
	"math/big"
	"strings"
	"time"

	"gathr/internal/entities"
)

const (
	DefaultTTL = 5 * time.Minute
	codeDigits = 6
)

var codeSpace = big.NewInt(1_000_000)

type Option func(g *Gate)

func WithClock(now func() time.Time) Option {
	return func(g *Gate) {
		g.now = now
	}
}

func WithCodeGenerator(generate func() (string, error)) Option {
	return func(g *Gate) {
		g.generate = generate
	}
}

// Gate выдаёт и проверяет одноразовые коды подтверждения доставки.
type Gate struct {
	store    Store
	notifier NotificationSender
	ttl      time.Duration
	now      func() time.Time
	generate func() (string, error)
}

func New(store Store, notifier NotificationSender, ttl time.Duration, opts ...Option) *Gate {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	g := &Gate{
		store:    store,
		notifier: notifier,
		ttl:      ttl,
		now:      func() time.Time { return time.Now().UTC() },
		generate: generateCode,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Issue перезаписывает прежний вызов по ключу и отправляет код. Если отправка не удалась,
// вызов остаётся в хранилище и код можно переотправить через Resend.
func (g *Gate) Issue(ctx context.Context, key string) (time.Time, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return time.Time{}, ErrEmptyKey
	}

	code, err := g.generate()
	if err != nil {
		return time.Time{}, fmt.Errorf("generate code: %w", err)
	}

	challenge := entities.OtpChallenge{
		Key:       key,
		Code:      code,
		ExpiresAt: g.now().Add(g.ttl),
	}
	if err := g.store.Save(ctx, challenge); err != nil {
		return time.Time{}, fmt.Errorf("save challenge: %w", err)
	}

	if err := g.send(ctx, challenge); err != nil {
		return challenge.ExpiresAt, err
	}
	return challenge.ExpiresAt, nil
}

// Resend повторно отправляет живой код без перевыпуска.
func (g *Gate) Resend(ctx context.Context, key string) (time.Time, error) {
	challenge, err := g.live(ctx, key)
	if err != nil {
		return time.Time{}, err
	}
	if err := g.send(ctx, *challenge); err != nil {
		return challenge.ExpiresAt, err
	}
	return challenge.ExpiresAt, nil
}

// Verify гасит вызов при первом совпадении. Неверный код вызов не гасит.
func (g *Gate) Verify(ctx context.Context, key, code string) error {
	challenge, err := g.live(ctx, key)
	if err != nil {
		return err
	}

	if subtle.ConstantTimeCompare([]byte(challenge.Code), []byte(strings.TrimSpace(code))) != 1 {
		return ErrMismatch
	}

	consumed, err := g.store.DeleteIfMatch(ctx, challenge.Key, challenge.Code)
	if err != nil {
		return fmt.Errorf("consume challenge: %w", err)
	}
	if !consumed {
		// параллельная проверка успела раньше
		return ErrNotFound
	}
	return nil
}

// Sweep удаляет просроченные вызовы в хранилищах без собственного TTL.
func (g *Gate) Sweep(ctx context.Context) (int, error) {
	sweeper, ok := g.store.(Sweeper)
	if !ok {
		return 0, nil
	}
	return sweeper.Sweep(ctx, g.now())
}

func (g *Gate) live(ctx context.Context, key string) (*entities.OtpChallenge, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return nil, ErrEmptyKey
	}

	challenge, err := g.store.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	if challenge.IsExpired(g.now()) {
		if err := g.store.Delete(ctx, key); err != nil {
			return nil, fmt.Errorf("delete expired challenge: %w", err)
		}
		return nil, ErrExpired
	}
	return challenge, nil
}

func (g *Gate) send(ctx context.Context, challenge entities.OtpChallenge) error {
	minutes := int(g.ttl.Round(time.Minute) / time.Minute)
	body := fmt.Sprintf("Your delivery code is %s. Share it with the carrier only at the door. It expires in %d minutes.",
		challenge.Code, minutes)
	if err := g.notifier.Send(ctx, challenge.Key, "Delivery code", body); err != nil {
		return fmt.Errorf("%w: %w", ErrNotifyUnavailable, err)
	}
	return nil
}

func generateCode() (string, error) {
	n, err := rand.Int(rand.Reader, codeSpace)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%0*d", codeDigits, n.Int64()), nil
}
