//go:generate mockgen -source=contract.go -destination=./contract_mocks_test.go -package=authz_test
package authz

import (
	"context"

	"gathr/internal/entities"
)

type IdentityProvider interface {
	GetUserRole(ctx context.Context, userID string) (entities.Role, error)
	GetUserBanStatus(ctx context.Context, userID string) (bool, error)
}
