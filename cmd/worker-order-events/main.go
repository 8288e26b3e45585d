package main

import (
	"context"
	"errors"
	"fmt"
	stdlog "log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"gathr/internal/app"
	"gathr/internal/gateway/grpc/catalog"
	"gathr/internal/gateway/grpc/identity"
	orderstatushandler "gathr/internal/handlers/kafka-consumer/order_status_changed"
	"gathr/internal/handlers/rest/healthcheck_head"
	"gathr/internal/handlers/rest/ping_get"
	"gathr/internal/pkg/config"
	"gathr/internal/pkg/dotenv"
	"gathr/internal/pkg/grpcclient"
	"gathr/internal/pkg/kafka"
	"gathr/internal/pkg/postgres"
	"gathr/internal/pkg/redis"
	"gathr/pkg/logger"
	"gathr/pkg/logger/zap_adapter"

	"github.com/IBM/sarama"
	"github.com/avito-tech/go-transaction-manager/pgxv5"
	goredis "github.com/redis/go-redis/v9"
)

const serviceName = "gathr-worker-order-events"

func main() {
	zapLogger, err := zap_adapter.NewZapAdapter(
		zap_adapter.WithService(serviceName),
		zap_adapter.WithLevel(os.Getenv("LOG_LEVEL")),
	)
	if err != nil {
		stdlog.Fatalf("failed to initialize logger: %v", err)
	}
	defer func() {
		if err := zapLogger.Sync(); err != nil {
			stdlog.Printf("failed to sync logger: %v", err)
		}
	}()

	var appLogger logger.Logger = zapLogger
	mainLog := appLogger.With()

	mainLog.Info("starting kafka-worker application")

	envFiles, err := dotenv.Load()
	if err != nil {
		mainLog.Error("failed to load env files", logger.NewField("error", err))
		return
	}
	if len(envFiles) == 0 {
		mainLog.Warn("no env files found, using system environment variables")
	} else {
		mainLog.Info("env files loaded", logger.NewField("files", envFiles))
	}

	cfg, err := config.Load()
	if err != nil {
		mainLog.Error("load config",
			logger.NewField("error", err),
		)
		return
	}

	err = run(context.Background(), appLogger, cfg)
	if err != nil {
		mainLog.Error("application failed",
			logger.NewField("error", err),
		)
		return
	}
}

//nolint:contextcheck,funlen // наследование от context.Background() - часть graceful shutdown
func run(ctx context.Context, log logger.Logger, cfg *config.Config) error {
	const (
		shutdownPeriod      = 15 * time.Second
		shutdownHardPeriod  = 3 * time.Second
		readinessDrainDelay = 5 * time.Second
	)

	// https://victoriametrics.com/blog/go-graceful-shutdown/#b-use-basecontext-to-provide-a-global-context-to-all-connections
	var isShuttingDown atomic.Bool

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	runLog := log.With()

	pool, err := postgres.NewConnPool(ctx, log, &cfg.Database)
	if err != nil {
		return fmt.Errorf("database: %w", err)
	}
	defer pool.Close()

	// при пустом REDIS_ADDR геопозиции живут в памяти HTTP-сервиса и воркеру недоступны,
	// их вычистит location_cleanup по TTL
	var redisClient *goredis.Client
	if cfg.Redis.Addr != "" {
		redisClient, err = redis.NewClient(ctx, log, cfg.Redis)
		if err != nil {
			return fmt.Errorf("redis: %w", err)
		}
		defer func() {
			if err := redisClient.Close(); err != nil {
				runLog.Error("failed to close redis client", logger.NewField("error", err))
			}
		}()
	}

	catalogConn, err := grpcclient.NewConnClient(ctx, log, cfg.Catalog, catalog.ServiceName)
	if err != nil {
		return fmt.Errorf("catalog gRPC client: %w", err)
	}
	defer func() {
		if err := catalogConn.Close(); err != nil {
			runLog.Error("failed to close catalog gRPC connection", logger.NewField("error", err))
		}
	}()

	identityConn, err := grpcclient.NewConnClient(ctx, log, cfg.Identity, identity.ServiceName)
	if err != nil {
		return fmt.Errorf("identity gRPC client: %w", err)
	}
	defer func() {
		if err := identityConn.Close(); err != nil {
			runLog.Error("failed to close identity gRPC connection", logger.NewField("error", err))
		}
	}()

	producer, err := kafka.NewProducer(ctx, log, &cfg.Kafka)
	if err != nil {
		return fmt.Errorf("kafka producer: %w", err)
	}
	defer func() {
		if err := producer.Close(); err != nil {
			runLog.Error("failed to close kafka producer", logger.NewField("error", err))
		}
	}()

	businessApp, err := app.InitializeKafkaWorkerApp(
		ctx,
		log,
		pool,
		pgxv5.DefaultCtxGetter,
		catalogConn,
		identityConn,
		producer,
		redisClient,
		cfg,
	)
	if err != nil {
		return fmt.Errorf("business logic: %w", err)
	}

	deps := map[string]healthcheck_head.Pinger{
		"postgres": healthcheck_head.PingerFunc(pool.Ping),
	}

	// ongoingCtx используется для BaseContext и не должен отменяться при SIGTERM.
	// Он отменяется только после server.Shutdown() для завершения in-flight запросов.
	// https://victoriametrics.com/blog/go-graceful-shutdown/#b-use-basecontext-to-provide-a-global-context-to-all-connections
	ongoingCtx, stopOngoingGracefully := context.WithCancel(context.Background())
	defer stopOngoingGracefully()

	healthServer := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Kafka.PortHealthcheck),
		Handler: initHealthcheckRouter(log, &isShuttingDown, deps),
		BaseContext: func(_ net.Listener) context.Context {
			return ongoingCtx
		},

		ReadHeaderTimeout: 5 * time.Second, // Slowloris DoS gosec G112
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	healthServerErr := make(chan error, 1)
	go func() {
		defer close(healthServerErr)

		runLog.With(
			logger.NewField("port", cfg.Kafka.PortHealthcheck),
		).Info("Server starting")
		if err := healthServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			healthServerErr <- err
		}
	}()

	kafkaHandler := orderstatushandler.New(log, businessApp.OrderEvents, cfg.Kafka.Handlers.OrderStatusChanged.ProcessTimeout)
	topics := []string{cfg.Kafka.Topics.OrderStatusChanged}

	consumer, err := kafka.NewConsumer(ctx, log, &cfg.Kafka, topics, kafkaHandler)
	if err != nil {
		return fmt.Errorf("kafka consumer: %w", err)
	}

	consumerErr := make(chan error, 1)
	go func() {
		defer close(consumerErr)

		runLog.With(
			logger.NewField("brokers", kafka.Brokers(cfg.Kafka.Brokers)),
			logger.NewField("topics", topics),
			logger.NewField("group", cfg.Kafka.ConsumerGroup),
		).Info("Kafka consumer starting")

		if err := consumer.Start(ongoingCtx); err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, sarama.ErrClosedConsumerGroup) {
				runLog.Info("Kafka consumer stopped gracefully")
			} else {
				consumerErr <- err
			}
		}
	}()

	select {
	case <-ctx.Done():
		runLog.Info("Shutdown signal received")
	case err := <-consumerErr:
		return fmt.Errorf("consumer: %w", err)
	case err := <-healthServerErr:
		return fmt.Errorf("healthcheck server: %w", err)
	}

	stop()
	isShuttingDown.Store(true)

	time.Sleep(readinessDrainDelay)
	runLog.Info("Draining Kafka messages")

	// shutdownCtx должен быть независим от ctx, который уже отменен на этом этапе.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownPeriod)
	defer cancel()

	err = healthServer.Shutdown(shutdownCtx)
	if err != nil {
		runLog.Info("Graceful shutdown timeout, forcing close")
		time.Sleep(shutdownHardPeriod)
	}

	stopOngoingGracefully()

	if err := consumer.Close(); err != nil {
		runLog.With(logger.NewField("error", err)).Error("Failed to close Kafka consumer")
	}

	runLog.Info("Worker stopped")
	return nil
}

func initHealthcheckRouter(log logger.Logger, isShuttingDown *atomic.Bool, deps map[string]healthcheck_head.Pinger) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("HEAD /healthcheck", healthcheck_head.New(log, isShuttingDown, deps))
	mux.Handle("GET /ping", ping_get.New(log, serviceName))
	return mux
}
