//go:build wireinject
// +build wireinject

package app

import (
	"context"

	"gathr/internal/pkg/config"
	"gathr/internal/pkg/kafka"
	deliveryService "gathr/internal/service/delivery"
	dispatchService "gathr/internal/service/dispatch"
	orderService "gathr/internal/service/order"
	paymentService "gathr/internal/service/payment"
	"gathr/internal/service/tracking"
	"gathr/pkg/logger"

	"github.com/avito-tech/go-transaction-manager/pgxv5"
	"github.com/google/wire"
	"github.com/jackc/pgx/v5/pgxpool"
	goredis "github.com/redis/go-redis/v9"
)

var commonSet = wire.NewSet(
	provideTxManager,
	provideQuerier,
	provideOrderRepository,

	provideCatalogGateway,
	provideIdentityGateway,
	provideStatusEventsPublisher,
	provideNotificationPublisher,
	provideAuthorizer,

	provideLocationStore,
	provideFeeFactory,
	provideReceiptComposer,
)

// InitializeApplication для HTTP сервиса (cmd/service)
func InitializeApplication(
	ctx context.Context,
	log logger.Logger,
	pool *pgxpool.Pool,
	getter *pgxv5.CtxGetter,
	catalogConn CatalogConn,
	identityConn IdentityConn,
	producer *kafka.Producer,
	redisClient *goredis.Client,
	cfg *config.Config,
) (*Application, error) {
	wire.Build(
		commonSet,

		provideOtpStore,
		provideOtpGate,
		provideTrackingHub,
		provideOrderService,
		provideDispatchService,
		provideDeliveryService,
		providePaymentService,
		provideStripeGateway,
		provideRateLimiter,

		provideOtpSweepTask,
		providePaymentReconcileTask,
		provideLocationCleanupTask,
		provideLimiterEvictTask,
		provideTaskList,
		provideBackgroundWorkers,

		wire.Struct(new(Application), "*"),

		wire.Bind(new(ServiceOrders), new(*orderService.Service)),
		wire.Bind(new(ServiceDispatch), new(*dispatchService.Service)),
		wire.Bind(new(ServiceDelivery), new(*deliveryService.Delivery)),
		wire.Bind(new(ServicePayments), new(*paymentService.Service)),
		wire.Bind(new(ServiceTracking), new(*tracking.Hub)),
	)
	return &Application{}, nil
}

// InitializeKafkaWorkerApp для Kafka воркера (cmd/worker-order-events)
func InitializeKafkaWorkerApp(
	ctx context.Context,
	log logger.Logger,
	pool *pgxpool.Pool,
	getter *pgxv5.CtxGetter,
	catalogConn CatalogConn,
	identityConn IdentityConn,
	producer *kafka.Producer,
	redisClient *goredis.Client,
	cfg *config.Config,
) (*KafkaWorkerApp, error) {
	wire.Build(
		commonSet,

		provideReceiptSender,
		provideStockRestorer,
		provideStatusHandlerFactory,
		provideOrderEventsService,

		wire.Struct(new(KafkaWorkerApp), "*"),
	)
	return nil, nil
}
