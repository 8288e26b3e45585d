// Package identity - клиент сервиса пользователей: роль, бан и контакт для уведомлений.
package identity

import (
	"context"
	"fmt"

	"gathr/internal/entities"
	"gathr/internal/gateway/grpc/invoker"
	"gathr/internal/service/authz"

	"google.golang.org/grpc/codes"
	"google.golang.org/protobuf/types/known/structpb"
)

const ServiceName = "identity.v1.IdentityService"

type Gateway struct {
	client caller
}

func New(client caller) *Gateway {
	return &Gateway{client: client}
}

func (g *Gateway) GetUserRole(ctx context.Context, userID string) (entities.Role, error) {
	f, err := g.user(ctx, "GetUserRole", userID)
	if err != nil {
		return "", err
	}

	role := entities.Role(f["role"].GetStringValue())
	if !role.IsValid() {
		return "", fmt.Errorf("unknown role %q for user %s", role, userID)
	}
	return role, nil
}

func (g *Gateway) GetUserBanStatus(ctx context.Context, userID string) (bool, error) {
	f, err := g.user(ctx, "GetUserBanStatus", userID)
	if err != nil {
		return false, err
	}
	return f["banned"].GetBoolValue(), nil
}

func (g *Gateway) GetUserContact(ctx context.Context, userID string) (*entities.Contact, error) {
	f, err := g.user(ctx, "GetUserContact", userID)
	if err != nil {
		return nil, err
	}

	return &entities.Contact{
		UserID:      userID,
		Name:        f["name"].GetStringValue(),
		Destination: f["destination"].GetStringValue(),
	}, nil
}

func (g *Gateway) user(ctx context.Context, method, userID string) (map[string]*structpb.Value, error) {
	resp, err := g.client.Call(ctx, method, &structpb.Struct{
		Fields: map[string]*structpb.Value{"user_id": structpb.NewStringValue(userID)},
	})
	if err != nil {
		if invoker.IsCode(err, codes.NotFound) {
			return nil, fmt.Errorf("%w: %s", authz.ErrUserNotFound, userID)
		}
		return nil, fmt.Errorf("identity %s: %w", method, err)
	}
	return resp.GetFields(), nil
}
