//go:generate mockgen -source=contract.go -destination=./contract_mocks_test.go -package=catalog_test
package catalog

import (
	"context"

	"google.golang.org/protobuf/types/known/structpb"
)

type caller interface {
	Call(ctx context.Context, method string, req *structpb.Struct) (*structpb.Struct, error)
}
