package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type (
	Tasks struct {
		OtpSweepInterval         time.Duration
		PaymentReconcileInterval time.Duration
		PaymentStaleAfter        time.Duration
		LocationCleanupInterval  time.Duration
		LimiterEvictInterval     time.Duration
	}

	HTTPServer struct {
		Port             string
		RequestTimeout   time.Duration // middleware timeout
		RateLimiterRPS   float64       // middleware rate limiter, запросов в секунду на клиента
		RateLimiterBurst int           // middleware rate limiter burst
		PprofEnabled     bool
		PprofPort        string
	}

	Database struct {
		Host     string
		Port     string
		User     string
		Password string
		DBName   string
		SSLMode  string
		MaxConns int32
		MinConns int32
	}

	// Redis пустой Addr означает in-memory хранилища OTP и геопозиций (один инстанс).
	Redis struct {
		Addr     string
		Password string
		DB       int
	}

	GRPCService struct {
		GRPCHost string
	}

	Kafka struct {
		PortHealthcheck string
		Brokers         string
		ConsumerGroup   string
		Topics          KafkaTopics
		Sarama          Sarama
		Handlers        KafkaHandlers
	}

	KafkaTopics struct {
		OrderStatusChanged string
		Notifications      string
	}

	Sarama struct {
		Version                   string
		ConsumerOffsetsAutocommit bool
	}

	KafkaHandlers struct {
		OrderStatusChanged OrderStatusChanged
	}

	OrderStatusChanged struct {
		ProcessTimeout time.Duration
	}

	Payment struct {
		StripeSecretKey string
		WebhookSecret   string
		Currency        string
		SuccessURL      string
		CancelURL       string
	}

	// Pricing суммы в минимальных единицах валюты.
	Pricing struct {
		BaseKm      float64
		BaseFee     int64
		PerKmFee    int64
		TaxRate     string // десятичная строка, "0.05" = 5%
		AvgSpeedKmh float64
	}

	Dispatch struct {
		DefaultRadiusKm float64
		MaxRadiusKm     float64
		CandidateLimit  uint64
	}

	Otp struct {
		TTL time.Duration
	}

	Tracking struct {
		LocationTTL time.Duration
		// хосты, с которых браузер может открыть WebSocket; пусто - только тот же хост
		OriginPatterns []string
	}

	Auth struct {
		JWTSecret string
	}

	Config struct {
		Tasks    Tasks
		Server   HTTPServer
		Database Database
		Redis    Redis
		Catalog  GRPCService
		Identity GRPCService
		Kafka    Kafka
		Payment  Payment
		Pricing  Pricing
		Dispatch Dispatch
		Otp      Otp
		Tracking Tracking
		Auth     Auth
	}
)

const (
	defaultRadiusKm       = 5.0
	defaultMaxRadiusKm    = 25.0
	defaultCandidateLimit = 200
	defaultOtpTTL         = 5 * time.Minute
	defaultLocationTTL    = 2 * time.Minute
	defaultAvgSpeedKmh    = 20.0
	defaultLimiterEvict   = 5 * time.Minute
	defaultPgMaxConns     = 10
	defaultPgMinConns     = 2
)

func Load() (*Config, error) {
	cfg, err := loadFromEnv()
	if err != nil {
		return nil, fmt.Errorf("environment loading: %w", err)
	}

	if err := validateConfig(cfg); err != nil {
		return nil, fmt.Errorf("validation: %w", err)
	}
	return cfg, nil
}

//nolint:funlen,gocyclo // плоский список переменных окружения
func loadFromEnv() (*Config, error) {
	otpSweepInterval, err := osGetEnvDuration("BACKGROUND_OTP_SWEEP_INTERVAL")
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	paymentReconcileInterval, err := osGetEnvDuration("BACKGROUND_PAYMENT_RECONCILE_INTERVAL")
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	paymentStaleAfter, err := osGetEnvDuration("BACKGROUND_PAYMENT_STALE_AFTER")
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	locationCleanupInterval, err := osGetEnvDuration("BACKGROUND_LOCATION_CLEANUP_INTERVAL")
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	limiterEvictInterval, err := osGetEnvDuration("BACKGROUND_LIMITER_EVICT_INTERVAL")
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	pgMaxConns, err := osGetInt("POSTGRES_MAX_CONNS")
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	pgMinConns, err := osGetInt("POSTGRES_MIN_CONNS")
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	saramaOffsetsAutocommit, err := osGetBool("KAFKA_SARAMA_OFFSETS_AUTOCOMMIT")
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	orderStatusChangedTimeout, err := osGetEnvDuration("KAFKA_HANDLER_ORDER_STATUS_CHANGED_PROCESS_TIMEOUT")
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	requestTimeout, err := osGetEnvDuration("MIDDLEWARE_REQUEST_TIMEOUT")
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	rateLimiterRPS, err := osGetFloat("MIDDLEWARE_RATE_LIMIT_RPS")
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	rateLimiterBurst, err := osGetInt("MIDDLEWARE_RATE_LIMIT_BURST")
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	pprofEnabled, err := osGetBool("PPROF_ENABLED")
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	redisDB, err := osGetInt("REDIS_DB")
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	baseKm, err := osGetFloat("PRICING_BASE_KM")
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	baseFee, err := osGetInt64("PRICING_BASE_FEE")
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	perKmFee, err := osGetInt64("PRICING_PER_KM_FEE")
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	avgSpeed, err := osGetFloat("PRICING_AVG_SPEED_KMH")
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	radius, err := osGetFloat("DISPATCH_DEFAULT_RADIUS_KM")
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	maxRadius, err := osGetFloat("DISPATCH_MAX_RADIUS_KM")
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	candidateLimit, err := osGetInt("DISPATCH_CANDIDATE_LIMIT")
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	otpTTL, err := osGetEnvDuration("OTP_TTL")
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	locationTTL, err := osGetEnvDuration("TRACKING_LOCATION_TTL")
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	cfg := &Config{
		Tasks: Tasks{
			OtpSweepInterval:         otpSweepInterval,
			PaymentReconcileInterval: paymentReconcileInterval,
			PaymentStaleAfter:        paymentStaleAfter,
			LocationCleanupInterval:  locationCleanupInterval,
			LimiterEvictInterval:     limiterEvictInterval,
		},
		Server: HTTPServer{
			Port:             os.Getenv("PORT"),
			RequestTimeout:   requestTimeout,
			RateLimiterRPS:   rateLimiterRPS,
			RateLimiterBurst: rateLimiterBurst,
			PprofEnabled:     pprofEnabled,
			PprofPort:        os.Getenv("PPROF_PORT"),
		},
		Database: Database{
			Host:     os.Getenv("POSTGRES_HOST"),
			Port:     os.Getenv("POSTGRES_PORT"),
			User:     os.Getenv("POSTGRES_USER"),
			Password: os.Getenv("POSTGRES_PASSWORD"),
			DBName:   os.Getenv("POSTGRES_DB"),
			SSLMode:  os.Getenv("POSTGRES_SSLMODE"),
			MaxConns: int32(pgMaxConns), //nolint:gosec // размер пула мал
			MinConns: int32(pgMinConns), //nolint:gosec // размер пула мал
		},
		Redis: Redis{
			Addr:     os.Getenv("REDIS_ADDR"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       redisDB,
		},
		Catalog: GRPCService{
			GRPCHost: os.Getenv("CATALOG_SERVICE_GRPC_HOST"),
		},
		Identity: GRPCService{
			GRPCHost: os.Getenv("IDENTITY_SERVICE_GRPC_HOST"),
		},
		Kafka: Kafka{
			Brokers:         os.Getenv("KAFKA_BROKERS"),
			ConsumerGroup:   os.Getenv("KAFKA_CONSUMER_GROUP"),
			PortHealthcheck: os.Getenv("KAFKA_HTTP_HEALTHCHECK_PORT"),
			Topics: KafkaTopics{
				OrderStatusChanged: os.Getenv("KAFKA_TOPIC_ORDER_STATUS_CHANGED"),
				Notifications:      os.Getenv("KAFKA_TOPIC_NOTIFICATIONS"),
			},
			Sarama: Sarama{
				Version:                   os.Getenv("KAFKA_SARAMA_VERSION"),
				ConsumerOffsetsAutocommit: saramaOffsetsAutocommit,
			},
			Handlers: KafkaHandlers{
				OrderStatusChanged: OrderStatusChanged{
					ProcessTimeout: orderStatusChangedTimeout,
				},
			},
		},
		Payment: Payment{
			StripeSecretKey: os.Getenv("STRIPE_SECRET_KEY"),
			WebhookSecret:   os.Getenv("STRIPE_WEBHOOK_SECRET"),
			Currency:        os.Getenv("PAYMENT_CURRENCY"),
			SuccessURL:      os.Getenv("PAYMENT_SUCCESS_URL"),
			CancelURL:       os.Getenv("PAYMENT_CANCEL_URL"),
		},
		Pricing: Pricing{
			BaseKm:      baseKm,
			BaseFee:     baseFee,
			PerKmFee:    perKmFee,
			TaxRate:     os.Getenv("PRICING_TAX_RATE"),
			AvgSpeedKmh: avgSpeed,
		},
		Dispatch: Dispatch{
			DefaultRadiusKm: radius,
			MaxRadiusKm:     maxRadius,
			CandidateLimit:  uint64(candidateLimit), //nolint:gosec // проверяется в validateConfig
		},
		Otp: Otp{
			TTL: otpTTL,
		},
		Tracking: Tracking{
			LocationTTL:    locationTTL,
			OriginPatterns: splitList(os.Getenv("TRACKING_WS_ORIGINS")),
		},
		Auth: Auth{
			JWTSecret: os.Getenv("AUTH_JWT_SECRET"),
		},
	}

	applyDefaults(cfg)
	return cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Dispatch.DefaultRadiusKm == 0 {
		cfg.Dispatch.DefaultRadiusKm = defaultRadiusKm
	}
	if cfg.Dispatch.MaxRadiusKm == 0 {
		cfg.Dispatch.MaxRadiusKm = defaultMaxRadiusKm
	}
	if cfg.Dispatch.CandidateLimit == 0 {
		cfg.Dispatch.CandidateLimit = defaultCandidateLimit
	}
	if cfg.Otp.TTL == 0 {
		cfg.Otp.TTL = defaultOtpTTL
	}
	if cfg.Tracking.LocationTTL == 0 {
		cfg.Tracking.LocationTTL = defaultLocationTTL
	}
	if cfg.Pricing.AvgSpeedKmh == 0 {
		cfg.Pricing.AvgSpeedKmh = defaultAvgSpeedKmh
	}
	if cfg.Tasks.LimiterEvictInterval == 0 {
		cfg.Tasks.LimiterEvictInterval = defaultLimiterEvict
	}
	if cfg.Database.MaxConns == 0 {
		cfg.Database.MaxConns = defaultPgMaxConns
	}
	if cfg.Database.MinConns == 0 {
		cfg.Database.MinConns = defaultPgMinConns
	}
	if cfg.Pricing.TaxRate == "" {
		cfg.Pricing.TaxRate = "0"
	}
}

//nolint:gocyclo,cyclop // плоский список проверок
func validateConfig(cfg *Config) error {
	if cfg.Server.Port == "" {
		return errors.New("server port is required (set via PORT env variable)")
	}
	if cfg.Server.RequestTimeout == time.Duration(0) {
		return errors.New("MIDDLEWARE_REQUEST_TIMEOUT is required")
	}
	if cfg.Server.RateLimiterRPS <= 0 {
		return errors.New("MIDDLEWARE_RATE_LIMIT_RPS is required")
	}
	if cfg.Server.RateLimiterBurst == 0 {
		return errors.New("MIDDLEWARE_RATE_LIMIT_BURST is required")
	}
	if cfg.Server.PprofPort == "" && cfg.Server.PprofEnabled {
		return errors.New("PprofPort is required (set via PPROF_PORT env variable)")
	}

	if cfg.Database.Host == "" {
		return errors.New("POSTGRES_HOST is required")
	}
	if cfg.Database.Port == "" {
		return errors.New("POSTGRES_PORT is required")
	}
	if cfg.Database.MinConns > cfg.Database.MaxConns {
		return errors.New("POSTGRES_MIN_CONNS must not exceed POSTGRES_MAX_CONNS")
	}
	if cfg.Database.User == "" {
		return errors.New("POSTGRES_USER is required")
	}
	if cfg.Database.Password == "" {
		return errors.New("POSTGRES_PASSWORD is required")
	}
	if cfg.Database.DBName == "" {
		return errors.New("POSTGRES_DB is required")
	}
	if cfg.Database.SSLMode == "" {
		return errors.New("POSTGRES_SSLMODE is required")
	}

	if cfg.Tasks.OtpSweepInterval == time.Duration(0) {
		return errors.New("BACKGROUND_OTP_SWEEP_INTERVAL is required")
	}
	if cfg.Tasks.PaymentReconcileInterval == time.Duration(0) {
		return errors.New("BACKGROUND_PAYMENT_RECONCILE_INTERVAL is required")
	}
	if cfg.Tasks.PaymentStaleAfter == time.Duration(0) {
		return errors.New("BACKGROUND_PAYMENT_STALE_AFTER is required")
	}
	if cfg.Tasks.LocationCleanupInterval == time.Duration(0) {
		return errors.New("BACKGROUND_LOCATION_CLEANUP_INTERVAL is required")
	}

	if cfg.Catalog.GRPCHost == "" {
		return errors.New("CATALOG_SERVICE_GRPC_HOST is required")
	}
	if cfg.Identity.GRPCHost == "" {
		return errors.New("IDENTITY_SERVICE_GRPC_HOST is required")
	}

	if cfg.Kafka.Brokers == "" {
		return errors.New("KAFKA_BROKERS is required")
	}
	if cfg.Kafka.Topics.OrderStatusChanged == "" {
		return errors.New("KAFKA_TOPIC_ORDER_STATUS_CHANGED is required")
	}
	if cfg.Kafka.Topics.Notifications == "" {
		return errors.New("KAFKA_TOPIC_NOTIFICATIONS is required")
	}
	if cfg.Kafka.ConsumerGroup == "" {
		return errors.New("KAFKA_CONSUMER_GROUP is required")
	}
	if cfg.Kafka.PortHealthcheck == "" {
		return errors.New("KAFKA_HTTP_HEALTHCHECK_PORT is required")
	}
	if cfg.Kafka.Sarama.Version == "" {
		return errors.New("KAFKA_SARAMA_VERSION is required")
	}
	if cfg.Kafka.Handlers.OrderStatusChanged.ProcessTimeout == time.Duration(0) {
		return errors.New("KAFKA_HANDLER_ORDER_STATUS_CHANGED_PROCESS_TIMEOUT is required")
	}

	if cfg.Payment.StripeSecretKey == "" {
		return errors.New("STRIPE_SECRET_KEY is required")
	}
	if cfg.Payment.WebhookSecret == "" {
		return errors.New("STRIPE_WEBHOOK_SECRET is required")
	}
	if cfg.Payment.Currency == "" {
		return errors.New("PAYMENT_CURRENCY is required")
	}
	if cfg.Payment.SuccessURL == "" || cfg.Payment.CancelURL == "" {
		return errors.New("PAYMENT_SUCCESS_URL and PAYMENT_CANCEL_URL are required")
	}

	if cfg.Pricing.BaseKm < 0 || cfg.Pricing.BaseFee < 0 || cfg.Pricing.PerKmFee < 0 {
		return errors.New("PRICING_BASE_KM, PRICING_BASE_FEE and PRICING_PER_KM_FEE must not be negative")
	}
	if cfg.Pricing.AvgSpeedKmh <= 0 {
		return errors.New("PRICING_AVG_SPEED_KMH must be positive")
	}
	if _, err := strconv.ParseFloat(cfg.Pricing.TaxRate, 64); err != nil {
		return fmt.Errorf("PRICING_TAX_RATE: %w", err)
	}

	if cfg.Dispatch.DefaultRadiusKm <= 0 || cfg.Dispatch.MaxRadiusKm < cfg.Dispatch.DefaultRadiusKm {
		return errors.New("DISPATCH_DEFAULT_RADIUS_KM must be positive and not exceed DISPATCH_MAX_RADIUS_KM")
	}

	if cfg.Auth.JWTSecret == "" {
		return errors.New("AUTH_JWT_SECRET is required")
	}

	return nil
}

func osGetInt(s string) (int, error) {
	val := os.Getenv(s)
	if val == "" {
		return 0, nil
	}

	res, err := strconv.Atoi(val)
	if err != nil {
		return 0, fmt.Errorf("invalid int format for %s=%q: %w", s, val, err)
	}
	return res, nil
}

func osGetInt64(s string) (int64, error) {
	val := os.Getenv(s)
	if val == "" {
		return 0, nil
	}

	res, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid int64 format for %s=%q: %w", s, val, err)
	}
	return res, nil
}

func osGetFloat(s string) (float64, error) {
	val := os.Getenv(s)
	if val == "" {
		return 0, nil
	}

	res, err := strconv.ParseFloat(val, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid float format for %s=%q: %w", s, val, err)
	}
	return res, nil
}

func osGetEnvDuration(s string) (time.Duration, error) {
	val := os.Getenv(s)
	if val == "" {
		return time.Duration(0), nil
	}

	res, err := time.ParseDuration(val)
	if err != nil {
		return time.Duration(0), fmt.Errorf("invalid duration format for %s=%q: %w", s, val, err)
	}
	return res, nil
}

func osGetBool(s string) (bool, error) {
	val := os.Getenv(s)
	if val == "" {
		return false, nil
	}

	res, err := strconv.ParseBool(val)
	if err != nil {
		return false, fmt.Errorf("invalid bool format for %s=%q: %w", s, val, err)
	}
	return res, nil
}

// splitList разбирает список через запятую, пустые элементы отбрасываются.
func splitList(val string) []string {
	var res []string
	for _, part := range strings.Split(val, ",") {
		if part = strings.TrimSpace(part); part != "" {
			res = append(res, part)
		}
	}
	return res
}
