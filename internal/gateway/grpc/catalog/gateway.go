// Package catalog - клиент сервиса каталога: товары, магазины и остатки.
package catalog

import (
	"context"
	"fmt"

	"gathr/internal/entities"
	"gathr/internal/gateway/grpc/invoker"
	"gathr/internal/service/order"
	"gathr/pkg/geo"

	"google.golang.org/grpc/codes"
	"google.golang.org/protobuf/types/known/structpb"
)

const ServiceName = "catalog.v1.CatalogService"

type Gateway struct {
	client caller
}

func New(client caller) *Gateway {
	return &Gateway{client: client}
}

func (g *Gateway) GetItem(ctx context.Context, itemID string) (*entities.CatalogItem, error) {
	resp, err := g.client.Call(ctx, "GetItem", &structpb.Struct{
		Fields: map[string]*structpb.Value{"item_id": structpb.NewStringValue(itemID)},
	})
	if err != nil {
		if invoker.IsCode(err, codes.NotFound) {
			return nil, fmt.Errorf("%w: %s", order.ErrItemNotFound, itemID)
		}
		return nil, fmt.Errorf("get item: %w", err)
	}

	f := resp.GetFields()
	if f["id"].GetStringValue() == "" {
		return nil, fmt.Errorf("%w: %s", order.ErrItemNotFound, itemID)
	}

	return &entities.CatalogItem{
		ID:     f["id"].GetStringValue(),
		ShopID: f["shop_id"].GetStringValue(),
		Name:   f["name"].GetStringValue(),
		Price:  int64(f["price"].GetNumberValue()),
	}, nil
}

func (g *Gateway) GetShop(ctx context.Context, shopID string) (*entities.Shop, error) {
	resp, err := g.client.Call(ctx, "GetShop", &structpb.Struct{
		Fields: map[string]*structpb.Value{"shop_id": structpb.NewStringValue(shopID)},
	})
	if err != nil {
		if invoker.IsCode(err, codes.NotFound) {
			return nil, fmt.Errorf("%w: %s", order.ErrShopNotFound, shopID)
		}
		return nil, fmt.Errorf("get shop: %w", err)
	}

	f := resp.GetFields()
	if f["id"].GetStringValue() == "" {
		return nil, fmt.Errorf("%w: %s", order.ErrShopNotFound, shopID)
	}

	return &entities.Shop{
		ID:      f["id"].GetStringValue(),
		OwnerID: f["owner_id"].GetStringValue(),
		Name:    f["name"].GetStringValue(),
		Location: geo.Point{
			Lat:  f["lat"].GetNumberValue(),
			Long: f["long"].GetNumberValue(),
		},
	}, nil
}

// DecrementStock списывает все позиции атомарно на стороне каталога,
// FailedPrecondition означает нехватку хотя бы одной позиции.
func (g *Gateway) DecrementStock(ctx context.Context, shopID string, changes []entities.StockChange) error {
	_, err := g.client.Call(ctx, "DecrementStock", stockRequest(shopID, changes))
	if err != nil {
		if invoker.IsCode(err, codes.FailedPrecondition) {
			return fmt.Errorf("%w: %v", order.ErrOutOfStock, err)
		}
		if invoker.IsCode(err, codes.NotFound) {
			return fmt.Errorf("%w: %v", order.ErrItemNotFound, err)
		}
		return fmt.Errorf("decrement stock: %w", err)
	}
	return nil
}

func (g *Gateway) RestoreStock(ctx context.Context, shopID string, changes []entities.StockChange) error {
	if _, err := g.client.Call(ctx, "RestoreStock", stockRequest(shopID, changes)); err != nil {
		return fmt.Errorf("restore stock: %w", err)
	}
	return nil
}

func stockRequest(shopID string, changes []entities.StockChange) *structpb.Struct {
	items := make([]*structpb.Value, 0, len(changes))
	for _, c := range changes {
		items = append(items, structpb.NewStructValue(&structpb.Struct{
			Fields: map[string]*structpb.Value{
				"item_id":  structpb.NewStringValue(c.ItemID),
				"quantity": structpb.NewNumberValue(float64(c.Quantity)),
			},
		}))
	}

	return &structpb.Struct{
		Fields: map[string]*structpb.Value{
			"shop_id": structpb.NewStringValue(shopID),
			"items":   structpb.NewListValue(&structpb.ListValue{Values: items}),
		},
	}
}
