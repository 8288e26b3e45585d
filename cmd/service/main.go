package main

import (
	"context"
	"fmt"
	stdlog "log"
	"net"
	"net/http"
	_ "net/http/pprof" //nolint:gosec // localhost-only ${PPROF_PORT}
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	application "gathr/internal/app"
	"gathr/internal/gateway/grpc/catalog"
	"gathr/internal/gateway/grpc/identity"
	"gathr/internal/handlers/rest/address_post"
	"gathr/internal/handlers/rest/dispatch_accept_post"
	"gathr/internal/handlers/rest/dispatch_deliver_post"
	"gathr/internal/handlers/rest/dispatch_orders_get"
	"gathr/internal/handlers/rest/dispatch_otp_post"
	"gathr/internal/handlers/rest/dispatch_otp_resend_post"
	"gathr/internal/handlers/rest/dispatch_pickup_post"
	"gathr/internal/handlers/rest/healthcheck_head"
	"gathr/internal/handlers/rest/order_cancel_post"
	"gathr/internal/handlers/rest/order_get"
	"gathr/internal/handlers/rest/order_post"
	"gathr/internal/handlers/rest/order_reject_post"
	"gathr/internal/handlers/rest/orders_get"
	"gathr/internal/handlers/rest/payment_checkout_post"
	"gathr/internal/handlers/rest/payment_refund_post"
	"gathr/internal/handlers/rest/payment_status_get"
	"gathr/internal/handlers/rest/payment_webhook_post"
	"gathr/internal/handlers/rest/ping_get"
	"gathr/internal/handlers/rest/tracking_location_get"
	"gathr/internal/handlers/ws/tracking_room"
	"gathr/internal/pkg/config"
	"gathr/internal/pkg/dotenv"
	"gathr/internal/pkg/grpcclient"
	"gathr/internal/pkg/kafka"
	metrics_system "gathr/internal/pkg/metrics"
	"gathr/internal/pkg/middlewares/auth"
	"gathr/internal/pkg/middlewares/graceful_shutdown"
	"gathr/internal/pkg/middlewares/metrics"
	"gathr/internal/pkg/middlewares/rate_limiter"
	"gathr/internal/pkg/middlewares/timeout"
	"gathr/internal/pkg/postgres"
	"gathr/internal/pkg/redis"
	"gathr/pkg/logger"
	"gathr/pkg/logger/zap_adapter"

	"github.com/avito-tech/go-transaction-manager/pgxv5"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	goredis "github.com/redis/go-redis/v9"
)

const serviceName = "gathr"

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

	mainLog.Info("starting gathr application")

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
		mainLog.Error("load config", logger.NewField("error", err))
		return
	}

	err = run(context.Background(), cfg, appLogger)
	if err != nil {
		mainLog.Error("application failed", logger.NewField("error", err))
		return
	}
}

//nolint:contextcheck,funlen // наследование от context.Background() - часть graceful shutdown
func run(ctx context.Context, cfg *config.Config, log logger.Logger) error {
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

	if err := postgres.Migrate(ctx, log, pool); err != nil {
		return fmt.Errorf("migrations: %w", err)
	}

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
	} else {
		runLog.Warn("REDIS_ADDR is empty, OTP and carrier locations are kept in memory")
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

	// фоновые задачи живут до SIGTERM
	businessApp, err := application.InitializeApplication(
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

	metrics_system.StartSystemMetricsCollector(ctx, 0)

	deps := map[string]healthcheck_head.Pinger{
		"postgres": healthcheck_head.PingerFunc(pool.Ping),
	}
	if redisClient != nil {
		deps["redis"] = healthcheck_head.PingerFunc(func(ctx context.Context) error {
			return redisClient.Ping(ctx).Err()
		})
	}

	// ongoingCtx используется для BaseContext и не должен отменяться при SIGTERM.
	// Он отменяется только после server.Shutdown() для завершения in-flight запросов.
	// https://victoriametrics.com/blog/go-graceful-shutdown/#b-use-basecontext-to-provide-a-global-context-to-all-connections
	ongoingCtx, stopOngoingGracefully := context.WithCancel(context.Background())
	defer stopOngoingGracefully()

	// основной http сервер
	// WriteTimeout не задан: WebSocket-соединения трекинга живут до конца доставки,
	// обычные запросы ограничивает timeout middleware.
	server := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Server.Port),
		Handler: initRouter(ongoingCtx, log, &isShuttingDown, businessApp, cfg, deps),
		BaseContext: func(_ net.Listener) context.Context {
			return ongoingCtx
		},

		ReadHeaderTimeout: 5 * time.Second, // Slowloris DoS gosec G112
		IdleTimeout:       60 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		defer close(serverErr)
		runLog.Info("server starting",
			logger.NewField("port", cfg.Server.Port),
		)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErr <- err
		}
	}()
	// основной http сервер

	// pprof http сервер
	var pprofServer *http.Server
	var pprofServerErr chan error
	if cfg.Server.PprofEnabled {
		pprofServer = &http.Server{
			Addr:    fmt.Sprintf(":%s", cfg.Server.PprofPort),
			Handler: initPprofRouter(log, &isShuttingDown, deps),
			BaseContext: func(_ net.Listener) context.Context {
				return ongoingCtx
			},

			ReadHeaderTimeout: 5 * time.Second, // Slowloris DoS gosec G112
			ReadTimeout:       60 * time.Second,
			WriteTimeout:      60 * time.Second,
			IdleTimeout:       60 * time.Second,
		}

		pprofServerErr = make(chan error, 1)
		go func() {
			defer close(pprofServerErr)
			runLog.Info("pprof server starting",
				logger.NewField("port", cfg.Server.PprofPort),
			)
			if err := pprofServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				pprofServerErr <- err
			}
		}()
	}
	// pprof http сервер

	select {
	case <-ctx.Done():
		runLog.Info("Shutdown signal received")
	case err := <-serverErr:
		return fmt.Errorf("server: %w", err)
	case err := <-pprofServerErr: // if !cfg.Server.PprofEnabled будет nil по умолчанию, и данный кейс будет проигнорирован
		return fmt.Errorf("pprof server: %w", err)
	}

	stop()
	isShuttingDown.Store(true)

	time.Sleep(readinessDrainDelay)
	runLog.Info("draining requests")

	// shutdownCtx должен быть независим от ctx, который уже отменен на этом этапе.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownPeriod)

	defer cancel()

	var shutdownErr error
	err = server.Shutdown(shutdownCtx)
	if pprofServer != nil {
		shutdownErr = pprofServer.Shutdown(shutdownCtx)
		if shutdownErr != nil {
			runLog.Error("pprof server shutdown error", logger.NewField("error", shutdownErr))
		} else {
			runLog.Info("pprof server stopped")
		}
	}

	stopOngoingGracefully()
	if err != nil || shutdownErr != nil {
		runLog.Info("Graceful shutdown timeout, forcing close")
		time.Sleep(shutdownHardPeriod)
	}

	businessApp.BackgroundWorkers.Wait()

	runLog.Info("Server stopped")
	return nil
}

func initRouter(
	ongoingCtx context.Context,
	log logger.Logger,
	isShuttingDown *atomic.Bool,
	app *application.Application,
	cfg *config.Config,
	deps map[string]healthcheck_head.Pinger,
) http.Handler {
	router := mux.NewRouter()

	router.Use(graceful_shutdown.Middleware(isShuttingDown, ongoingCtx))

	// WebSocket-апгрейды timeout middleware пропускает сам
	router.Use(timeout.Middleware(cfg.Server.RequestTimeout))
	router.Use(metrics.Middleware(log))
	router.Handle("/metrics", promhttp.Handler())

	router.Handle("/healthcheck", healthcheck_head.New(log, isShuttingDown, deps)).Methods("HEAD")
	router.Handle("/ping", ping_get.New(log, serviceName)).Methods("GET")

	// Stripe подписывает тело, JWT тут нет
	router.Handle("/payments/webhook", payment_webhook_post.New(log, app.Payments)).Methods("POST")

	api := router.NewRoute().Subrouter()
	api.Use(auth.Middleware(log, []byte(cfg.Auth.JWTSecret)))
	api.Use(rate_limiter.Middleware(log, cfg.Server.RateLimiterRPS, app.RateLimiter))

	api.Handle("/addresses", address_post.New(log, app.Orders)).Methods("POST")

	api.Handle("/orders", order_post.New(log, app.Orders)).Methods("POST")
	api.Handle("/orders", orders_get.New(log, app.Orders)).Methods("GET")
	api.Handle("/orders/{id}", order_get.New(log, app.Orders)).Methods("GET")
	api.Handle("/orders/{id}/reject", order_reject_post.New(log, app.Orders)).Methods("POST")
	api.Handle("/orders/{id}/cancel", order_cancel_post.New(log, app.Orders)).Methods("POST")

	api.Handle("/dispatch/orders", dispatch_orders_get.New(log, app.Dispatch)).Methods("GET")
	api.Handle("/dispatch/orders/{id}/accept", dispatch_accept_post.New(log, app.Dispatch)).Methods("POST")
	api.Handle("/dispatch/orders/{id}/pickup", dispatch_pickup_post.New(log, app.Dispatch)).Methods("POST")
	api.Handle("/dispatch/orders/{id}/otp", dispatch_otp_post.New(log, app.Delivery)).Methods("POST")
	api.Handle("/dispatch/orders/{id}/otp/resend", dispatch_otp_resend_post.New(log, app.Delivery)).Methods("POST")
	api.Handle("/dispatch/orders/{id}/deliver", dispatch_deliver_post.New(log, app.Delivery)).Methods("POST")

	api.Handle("/payments/orders/{id}/checkout", payment_checkout_post.New(log, app.Payments)).Methods("POST")
	api.Handle("/payments/orders/{id}/status", payment_status_get.New(log, app.Payments)).Methods("GET")
	api.Handle("/payments/orders/{id}/refund", payment_refund_post.New(log, app.Payments)).Methods("POST")

	api.Handle("/tracking/orders/{id}/location", tracking_location_get.New(log, app.Tracking)).Methods("GET")
	api.Handle("/tracking/orders/{id}/ws", tracking_room.New(
		log,
		tracking_room.NewHubService(app.Tracking),
		cfg.Tracking.OriginPatterns,
	)).Methods("GET")

	return router
}

func initPprofRouter(log logger.Logger, isShuttingDown *atomic.Bool, deps map[string]healthcheck_head.Pinger) http.Handler {
	router := mux.NewRouter()

	router.Handle("/healthcheck", healthcheck_head.New(log, isShuttingDown, deps)).Methods("HEAD")
	router.PathPrefix("/debug/pprof/").Handler(http.DefaultServeMux)

	return router
}
