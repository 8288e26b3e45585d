//go:generate mockgen -source=contract.go -destination=./contract_mocks_test.go -package=invoker_test
package invoker

import (
	"context"

	"google.golang.org/grpc"
)

type conn interface {
	Invoke(ctx context.Context, method string, args any, reply any, opts ...grpc.CallOption) error
}

type retrier interface {
	ExecuteWithContext(ctx context.Context, fn func(context.Context) error) error
}
