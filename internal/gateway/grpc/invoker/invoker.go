// Package invoker выполняет унарные gRPC-вызовы внешних сервисов со structpb-сообщениями:
// ретраи по временным кодам, метрики длительности и повторов.
package invoker

import (
	"context"
	"time"

	retrierconfig "gathr/pkg/retrier"
	"gathr/pkg/retrier/backoff_adapter"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

const (
	initialInterval = 100 * time.Millisecond
	maxInterval     = 2 * time.Second
	maxElapsedTime  = 1 * time.Second
	randomization   = 0.5
	multiplier      = 2.0
)

type Invoker struct {
	conn    conn
	service string
	retrier retrier
}

// New - service в виде полного имени gRPC-сервиса, например "catalog.v1.CatalogService".
func New(conn conn, service string) *Invoker {
	retryConfig := retrierconfig.Config{
		InitialInterval: initialInterval,
		MaxInterval:     maxInterval,
		MaxElapsedTime:  maxElapsedTime,
		Randomization:   randomization,
		Multiplier:      multiplier,
		ShouldRetry:     IsRetryableCode,
	}

	return &Invoker{
		conn:    conn,
		service: service,
		retrier: backoff_adapter.New(retryConfig),
	}
}

func (i *Invoker) Call(ctx context.Context, method string, req *structpb.Struct) (*structpb.Struct, error) {
	fullMethod := "/" + i.service + "/" + method
	resp := &structpb.Struct{}

	err := i.executeWithMetrics(ctx, method, func(ctx context.Context) error {
		resp.Reset()
		return i.conn.Invoke(ctx, fullMethod, req, resp)
	})
	if err != nil {
		return nil, err
	}
	return resp, nil
}

func IsRetryableCode(err error) bool {
	if err == nil {
		return false
	}
	st, ok := status.FromError(err)
	if !ok {
		return false
	}

	switch st.Code() {
	case codes.ResourceExhausted,
		codes.Unavailable,
		codes.DeadlineExceeded:
		return true
	default:
		return false
	}
}

// Порядок: latency metric -> attempts metric -> retrier -> вызов
func (i *Invoker) executeWithMetrics(ctx context.Context, method string, fn func(context.Context) error) error {
	var attempt uint64
	start := time.Now()

	err := i.retrier.ExecuteWithContext(ctx, func(ctx context.Context) error {
		attempt++
		return fn(ctx)
	})

	grpcCode := Code(err)
	GatewayRequestDuration.WithLabelValues(i.service, method, grpcCode).Observe(time.Since(start).Seconds())

	if attempt > 1 {
		GatewayRetriesTotal.WithLabelValues(i.service, method, grpcCode).Inc()
	}

	return err
}

func Code(err error) string {
	if err == nil {
		return "OK"
	}
	if st, ok := status.FromError(err); ok {
		return st.Code().String()
	}
	return "UNKNOWN"
}

// IsCode - ошибка вызова содержит gRPC-статус с указанным кодом.
func IsCode(err error, code codes.Code) bool {
	st, ok := status.FromError(err)
	return ok && st.Code() == code
}
