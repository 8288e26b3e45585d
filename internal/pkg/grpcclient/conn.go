package grpcclient

import (
	"context"
	"fmt"
	"time"

	"gathr/internal/pkg/config"
	"gathr/pkg/logger"
	retrierconfig "gathr/pkg/retrier"
	"gathr/pkg/retrier/backoff_adapter"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/keepalive"
	"google.golang.org/grpc/status"
)

const (
	KeepaliveTime                = 5 * time.Minute
	KeepaliveTimeout             = 3 * time.Second
	KeepalivePermitWithoutStream = false

	initialInterval = 1 * time.Second
	maxInterval     = 30 * time.Second
	maxElapsedTime  = 2 * time.Minute
	randomization   = 0.5
	multiplier      = 2
)

// NewConnClient открывает соединение и ждёт, пока сервис начнёт отвечать на health-check.
func NewConnClient(ctx context.Context, log logger.Logger, cfg config.GRPCService, service string) (*grpc.ClientConn, error) {
	conn, err := grpc.NewClient(
		cfg.GRPCHost,
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithKeepaliveParams(keepalive.ClientParameters{
			Time:                KeepaliveTime,
			Timeout:             KeepaliveTimeout,
			PermitWithoutStream: KeepalivePermitWithoutStream,
		}),
		grpc.WithChainUnaryInterceptor(metricsInterceptor),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create gRPC client: %w", err)
	}

	grpcLog := log.With(
		logger.NewField("component", "grpc-client"),
		logger.NewField("host", cfg.GRPCHost),
		logger.NewField("service", service),
	)

	err = pingGRPC(ctx, grpcLog, conn, service)
	if err != nil {
		connCloseErr := conn.Close()
		if connCloseErr != nil {
			return nil, fmt.Errorf("gRPC connection: %w (failed to close: %v)", err, connCloseErr)
		}
		return nil, fmt.Errorf("gRPC connection: %w", err)
	}

	return conn, nil
}

func pingGRPC(ctx context.Context, log logger.Logger, conn *grpc.ClientConn, service string) error {
	client := healthpb.NewHealthClient(conn)

	retrier := backoff_adapter.New(retrierconfig.Config{
		InitialInterval: initialInterval,
		MaxInterval:     maxInterval,
		MaxElapsedTime:  maxElapsedTime,
		Randomization:   randomization,
		Multiplier:      multiplier,
	})

	var attempt uint64
	err := retrier.ExecuteWithContext(ctx, func(ctx context.Context) error {
		attempt++
		log.With(
			logger.NewField("attempt", attempt),
		).Info("attempting gRPC connection")

		resp, err := client.Check(ctx, &healthpb.HealthCheckRequest{Service: service})
		if status.Code(err) == codes.Unimplemented {
			// сервер отвечает, но health-сервис не зарегистрирован
			return nil
		}
		if err != nil {
			return err
		}
		if resp.GetStatus() != healthpb.HealthCheckResponse_SERVING {
			return fmt.Errorf("service status %s", resp.GetStatus())
		}
		return nil
	})
	if err != nil {
		log.With(
			logger.NewField("error", err),
			logger.NewField("attempts", attempt),
		).Error("gRPC connection failed after retries")
		return fmt.Errorf("failed to establish gRPC connection: %w", err)
	}

	log.With(
		logger.NewField("attempts", attempt),
	).Info("gRPC connection established")
	return nil
}
