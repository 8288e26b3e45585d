package authz

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"gathr/internal/entities"

	"golang.org/x/sync/errgroup"
)

// Authorizer - единая точка проверки ролей. Роль и бан всегда берутся из identity-провайдера,
// JWT даёт только идентификатор пользователя.
type Authorizer struct {
	identity IdentityProvider
}

func New(identity IdentityProvider) *Authorizer {
	return &Authorizer{
		identity: identity,
	}
}

// RequireRole возвращает пользователя, если он не забанен и имеет одну из ролей.
// Без ролей проверяется только бан.
func (a *Authorizer) RequireRole(ctx context.Context, userID string, roles ...entities.Role) (*entities.User, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, ErrUnauthorized
	}

	var (
		role   entities.Role
		banned bool
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		role, err = a.identity.GetUserRole(gctx, userID)
		return err
	})
	g.Go(func() error {
		var err error
		banned, err = a.identity.GetUserBanStatus(gctx, userID)
		return err
	})
	if err := g.Wait(); err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, fmt.Errorf("%w: %w", ErrUnauthorized, err)
		}
		return nil, fmt.Errorf("resolve user %s: %w", userID, err)
	}

	if banned {
		return nil, fmt.Errorf("%w: user %s is banned", ErrUnauthorized, userID)
	}
	if len(roles) > 0 && !slices.Contains(roles, role) {
		return nil, fmt.Errorf("%w: role %s not allowed", ErrUnauthorized, role)
	}

	return &entities.User{
		ID:     userID,
		Role:   role,
		Banned: banned,
	}, nil
}
