package grpcclient

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"google.golang.org/grpc"
	"google.golang.org/grpc/status"
)

var clientCallDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Name:    "grpc_client_call_duration_seconds",
		Help:    "Duration of outgoing unary gRPC calls",
		Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5},
	},
	[]string{"method", "code"},
)

// metricsInterceptor пишет длительность каждого вызова, включая повторы invoker'а по отдельности.
func metricsInterceptor(
	ctx context.Context,
	method string,
	req, reply any,
	cc *grpc.ClientConn,
	invoker grpc.UnaryInvoker,
	opts ...grpc.CallOption,
) error {
	started := time.Now()
	err := invoker(ctx, method, req, reply, cc, opts...)
	clientCallDuration.WithLabelValues(method, status.Code(err).String()).Observe(time.Since(started).Seconds())
	return err
}
