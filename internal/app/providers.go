package app

import (
	"context"
	"fmt"
	"time"

	"gathr/internal/gateway/grpc/catalog"
	"gathr/internal/gateway/grpc/identity"
	"gathr/internal/gateway/grpc/invoker"
	"gathr/internal/gateway/kafka/notification"
	"gathr/internal/gateway/kafka/status_events"
	"gathr/internal/gateway/stripe"
	"gathr/internal/handlers/rest/address_post"
	"gathr/internal/handlers/rest/dispatch_accept_post"
	"gathr/internal/handlers/rest/dispatch_deliver_post"
	"gathr/internal/handlers/rest/dispatch_orders_get"
	"gathr/internal/handlers/rest/dispatch_otp_post"
	"gathr/internal/handlers/rest/dispatch_otp_resend_post"
	"gathr/internal/handlers/rest/dispatch_pickup_post"
	"gathr/internal/handlers/rest/order_cancel_post"
	"gathr/internal/handlers/rest/order_get"
	"gathr/internal/handlers/rest/order_post"
	"gathr/internal/handlers/rest/order_reject_post"
	"gathr/internal/handlers/rest/orders_get"
	"gathr/internal/handlers/rest/payment_checkout_post"
	"gathr/internal/handlers/rest/payment_refund_post"
	"gathr/internal/handlers/rest/payment_status_get"
	"gathr/internal/handlers/rest/payment_webhook_post"
	"gathr/internal/handlers/rest/tracking_location_get"
	"gathr/internal/handlers/tasks/limiter_evict"
	"gathr/internal/handlers/tasks/location_cleanup"
	"gathr/internal/handlers/tasks/otp_sweep"
	"gathr/internal/handlers/tasks/payment_reconcile"
	"gathr/internal/pkg/config"
	"gathr/internal/pkg/factory/delivery_fee"
	"gathr/internal/pkg/factory/order_handle"
	"gathr/internal/pkg/kafka"
	locationRepo "gathr/internal/repository/location"
	orderRepo "gathr/internal/repository/order"
	otpRepo "gathr/internal/repository/otp"
	"gathr/internal/service/authz"
	deliveryService "gathr/internal/service/delivery"
	dispatchService "gathr/internal/service/dispatch"
	orderService "gathr/internal/service/order"
	"gathr/internal/service/order_events"
	otpService "gathr/internal/service/otp"
	paymentService "gathr/internal/service/payment"
	"gathr/internal/service/receipt"
	"gathr/internal/service/stock"
	"gathr/internal/service/tracking"
	"gathr/pkg/background"
	"gathr/pkg/geo"
	"gathr/pkg/logger"
	"gathr/pkg/querier"
	"gathr/pkg/token_bucket"
	"gathr/pkg/tx"

	"github.com/avito-tech/go-transaction-manager/pgxv5"
	"github.com/jackc/pgx/v5/pgxpool"
	goredis "github.com/redis/go-redis/v9"
	"google.golang.org/grpc"
)

// limiterIdleTTL - сколько живёт бакет клиента без запросов.
const limiterIdleTTL = 10 * time.Minute

type (
	// CatalogConn и IdentityConn различают два gRPC-соединения для wire.
	CatalogConn  *grpc.ClientConn
	IdentityConn *grpc.ClientConn
)

type Application struct {
	Orders            ServiceOrders
	Dispatch          ServiceDispatch
	Delivery          ServiceDelivery
	Payments          ServicePayments
	Tracking          ServiceTracking
	RateLimiter       *token_bucket.KeyedBucket
	BackgroundWorkers *background.Worker
}

type ServiceOrders interface {
	order_post.Service
	address_post.Service
	order_get.Service
	orders_get.Service
	order_reject_post.Service
	order_cancel_post.Service
}

type ServiceDispatch interface {
	dispatch_orders_get.Service
	dispatch_accept_post.Service
	dispatch_pickup_post.Service
}

type ServiceDelivery interface {
	dispatch_otp_post.Service
	dispatch_otp_resend_post.Service
	dispatch_deliver_post.Service
}

type ServicePayments interface {
	payment_checkout_post.Service
	payment_status_get.Service
	payment_refund_post.Service
	payment_webhook_post.Service
}

// ServiceTracking - и REST опрос, и комнаты WebSocket.
type ServiceTracking interface {
	tracking_location_get.Service
	Join(ctx context.Context, userID, orderID, name string) (*tracking.Participant, error)
	Leave(ctx context.Context, p *tracking.Participant)
	PublishLocation(ctx context.Context, p *tracking.Participant, point geo.Point) error
	RelayChat(p *tracking.Participant, text string) error
}

type KafkaWorkerApp struct {
	OrderEvents *order_events.Service
}

// LocationStore - Redis при заданном REDIS_ADDR, иначе память процесса.
type LocationStore interface {
	tracking.LocationStore
	location_cleanup.Store
}

func provideTxManager(pool *pgxpool.Pool) *tx.Manager {
	return tx.New(pool)
}

func provideQuerier(pool *pgxpool.Pool, getter *pgxv5.CtxGetter) *querier.Querier {
	return querier.New(pool, getter)
}

func provideOrderRepository(querier *querier.Querier) *orderRepo.Repository {
	return orderRepo.New(querier)
}

func provideCatalogGateway(conn CatalogConn) *catalog.Gateway {
	return catalog.New(invoker.New((*grpc.ClientConn)(conn), catalog.ServiceName))
}

func provideIdentityGateway(conn IdentityConn) *identity.Gateway {
	return identity.New(invoker.New((*grpc.ClientConn)(conn), identity.ServiceName))
}

func provideStatusEventsPublisher(producer *kafka.Producer, cfg *config.Config) *status_events.Publisher {
	return status_events.New(producer, cfg.Kafka.Topics.OrderStatusChanged)
}

func provideNotificationPublisher(producer *kafka.Producer, cfg *config.Config) *notification.Publisher {
	return notification.New(producer, cfg.Kafka.Topics.Notifications)
}

func provideStripeGateway(cfg *config.Config) *stripe.Gateway {
	return stripe.New(cfg.Payment)
}

func provideAuthorizer(identityGateway *identity.Gateway) *authz.Authorizer {
	return authz.New(identityGateway)
}

func provideLocationStore(client *goredis.Client, cfg *config.Config) LocationStore {
	if client == nil {
		return locationRepo.NewMemoryStore(cfg.Tracking.LocationTTL)
	}
	return locationRepo.NewRedisStore(client, cfg.Tracking.LocationTTL)
}

func provideOtpStore(client *goredis.Client) otpService.Store {
	if client == nil {
		return otpRepo.NewMemoryStore()
	}
	return otpRepo.NewRedisStore(client)
}

func provideFeeFactory(cfg *config.Config) *delivery_fee.FeeFactory {
	return delivery_fee.New(cfg.Pricing)
}

func provideReceiptComposer(fees *delivery_fee.FeeFactory, cfg *config.Config) (*receipt.Composer, error) {
	composer, err := receipt.New(fees, cfg.Pricing.TaxRate, cfg.Payment.Currency)
	if err != nil {
		return nil, fmt.Errorf("receipt composer: %w", err)
	}
	return composer, nil
}

func provideOtpGate(store otpService.Store, notifier *notification.Publisher, cfg *config.Config) *otpService.Gate {
	return otpService.New(store, notifier, cfg.Otp.TTL)
}

func provideTrackingHub(
	repository *orderRepo.Repository,
	authorizer *authz.Authorizer,
	locations LocationStore,
	fees *delivery_fee.FeeFactory,
	log logger.Logger,
) *tracking.Hub {
	return tracking.New(repository, authorizer, locations, fees, log)
}

func provideOrderService(
	repository *orderRepo.Repository,
	authorizer *authz.Authorizer,
	catalogGateway *catalog.Gateway,
	composer *receipt.Composer,
	publisher *status_events.Publisher,
	hub *tracking.Hub,
	txManager *tx.Manager,
	log logger.Logger,
) *orderService.Service {
	return orderService.New(
		repository,
		authorizer,
		catalogGateway,
		composer,
		publisher,
		hub,
		txManager,
		log,
	)
}

func provideDispatchService(
	repository *orderRepo.Repository,
	authorizer *authz.Authorizer,
	publisher *status_events.Publisher,
	cfg *config.Config,
	log logger.Logger,
) *dispatchService.Service {
	return dispatchService.New(repository, authorizer, publisher, cfg.Dispatch, log)
}

func provideDeliveryService(
	repository *orderRepo.Repository,
	authorizer *authz.Authorizer,
	identityGateway *identity.Gateway,
	catalogGateway *catalog.Gateway,
	gate *otpService.Gate,
	composer *receipt.Composer,
	locations LocationStore,
	hub *tracking.Hub,
	publisher *status_events.Publisher,
	log logger.Logger,
) *deliveryService.Delivery {
	return deliveryService.New(
		repository,
		authorizer,
		identityGateway,
		catalogGateway,
		gate,
		composer,
		locations,
		hub,
		publisher,
		log,
	)
}

func providePaymentService(
	repository *orderRepo.Repository,
	gateway *stripe.Gateway,
	authorizer *authz.Authorizer,
	catalogGateway *catalog.Gateway,
	cfg *config.Config,
	log logger.Logger,
) *paymentService.Service {
	return paymentService.New(repository, gateway, authorizer, catalogGateway, cfg.Payment, log)
}

func provideRateLimiter(cfg *config.Config) *token_bucket.KeyedBucket {
	return token_bucket.NewKeyedBucket(cfg.Server.RateLimiterRPS, cfg.Server.RateLimiterBurst, limiterIdleTTL)
}

func provideReceiptSender(
	composer *receipt.Composer,
	repository *orderRepo.Repository,
	identityGateway *identity.Gateway,
	notifier *notification.Publisher,
) *receipt.Sender {
	return receipt.NewSender(composer, repository, identityGateway, notifier)
}

func provideStockRestorer(repository *orderRepo.Repository, catalogGateway *catalog.Gateway) *stock.Restorer {
	return stock.NewRestorer(repository, catalogGateway)
}

func provideStatusHandlerFactory(
	repository *orderRepo.Repository,
	sender *receipt.Sender,
	restorer *stock.Restorer,
	locations LocationStore,
) *order_handle.StatusHandlerFactory {
	return order_handle.NewStatusHandlerFactory(repository, sender, restorer, locations)
}

func provideOrderEventsService(
	repository *orderRepo.Repository,
	factory *order_handle.StatusHandlerFactory,
) *order_events.Service {
	return order_events.New(repository, factory)
}

func provideOtpSweepTask(log logger.Logger, gate *otpService.Gate, cfg *config.Config) *otp_sweep.OtpSweep {
	return otp_sweep.NewOtpSweep(log, gate, cfg.Tasks.OtpSweepInterval)
}

func providePaymentReconcileTask(
	log logger.Logger,
	payments *paymentService.Service,
	cfg *config.Config,
) *payment_reconcile.PaymentReconcile {
	return payment_reconcile.NewPaymentReconcile(log, payments, cfg.Tasks.PaymentReconcileInterval, cfg.Tasks.PaymentStaleAfter)
}

func provideLocationCleanupTask(
	log logger.Logger,
	locations LocationStore,
	cfg *config.Config,
) *location_cleanup.LocationCleanup {
	return location_cleanup.NewLocationCleanup(log, locations, cfg.Tasks.LocationCleanupInterval)
}

func provideLimiterEvictTask(
	log logger.Logger,
	limiter *token_bucket.KeyedBucket,
	cfg *config.Config,
) *limiter_evict.LimiterEvict {
	return limiter_evict.NewLimiterEvict(log, limiter, cfg.Tasks.LimiterEvictInterval)
}

func provideTaskList(
	otpSweepTask *otp_sweep.OtpSweep,
	paymentReconcileTask *payment_reconcile.PaymentReconcile,
	locationCleanupTask *location_cleanup.LocationCleanup,
	limiterEvictTask *limiter_evict.LimiterEvict,
) []background.Task {
	return []background.Task{
		otpSweepTask,
		paymentReconcileTask,
		locationCleanupTask,
		limiterEvictTask,
	}
}

func provideBackgroundWorkers(ctx context.Context, log logger.Logger, tasks []background.Task) (*background.Worker, error) {
	return background.New(ctx, log, tasks)
}
