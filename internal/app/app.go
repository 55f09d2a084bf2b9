// Package app assembles StayLedger's infrastructure and services from a
// Config. Both the API server and the CLI build on it.
package app

import (
	"context"
	"fmt"
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/turtacn/StayLedger/internal/application/commission"
	"github.com/turtacn/StayLedger/internal/application/payout"
	"github.com/turtacn/StayLedger/internal/application/reservation"
	"github.com/turtacn/StayLedger/internal/application/revenue"
	"github.com/turtacn/StayLedger/internal/application/shared"
	"github.com/turtacn/StayLedger/internal/config"
	"github.com/turtacn/StayLedger/internal/domain/booking"
	domainCommission "github.com/turtacn/StayLedger/internal/domain/commission"
	"github.com/turtacn/StayLedger/internal/domain/currency"
	domainPayout "github.com/turtacn/StayLedger/internal/domain/payout"
	domainRevenue "github.com/turtacn/StayLedger/internal/domain/revenue"
	"github.com/turtacn/StayLedger/internal/infrastructure/database/postgres"
	"github.com/turtacn/StayLedger/internal/infrastructure/database/postgres/repositories"
	redisclient "github.com/turtacn/StayLedger/internal/infrastructure/database/redis"
	"github.com/turtacn/StayLedger/internal/infrastructure/exchangerate"
	"github.com/turtacn/StayLedger/internal/infrastructure/messaging/kafka"
	"github.com/turtacn/StayLedger/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/StayLedger/internal/infrastructure/monitoring/prometheus"
	minioclient "github.com/turtacn/StayLedger/internal/infrastructure/storage/minio"
	"github.com/turtacn/StayLedger/internal/interfaces/http/handlers"
)

// App holds the wired services and the clients they share.
type App struct {
	Config  *config.Config
	Logger  logging.Logger
	Metrics prometheus.MetricsCollector
	Finance *prometheus.FinanceMetrics

	DB       *postgres.Connection
	Redis    *redisclient.Client
	MinIO    *minioclient.Client
	Producer *kafka.Producer

	Rates        *currency.RateService
	Converter    *currency.Converter
	Revenue      *revenue.Service
	Commissions  *commission.Service
	Payouts      *payout.Service
	Reservations *reservation.Service

	checkers []handlers.HealthChecker
	closers  []func() error
}

// New connects to every enabled backend and wires the services. On error
// whatever was opened is closed again.
func New(ctx context.Context, cfg *config.Config, logger logging.Logger) (a *App, err error) {
	a = &App{Config: cfg, Logger: logger}
	defer func() {
		if err != nil {
			a.Close()
			a = nil
		}
	}()

	if err = a.initMetrics(); err != nil {
		return nil, err
	}
	if err = a.initInfrastructure(ctx); err != nil {
		return nil, err
	}
	if err = a.initServices(); err != nil {
		return nil, err
	}
	logger.Info("application initialized",
		logging.Bool("redis", a.Redis != nil),
		logging.Bool("kafka", a.Producer != nil),
		logging.Bool("minio", a.MinIO != nil))
	return a, nil
}

func (a *App) initMetrics() error {
	collector, err := prometheus.NewMetricsCollector(prometheus.CollectorConfig{
		Namespace:            a.Config.Metrics.Namespace,
		EnableProcessMetrics: true,
		EnableGoMetrics:      true,
	}, a.Logger)
	if err != nil {
		return fmt.Errorf("metrics: %w", err)
	}
	a.Metrics = collector
	a.Finance = prometheus.NewFinanceMetrics(collector)
	return nil
}

func (a *App) initInfrastructure(ctx context.Context) error {
	cfg := a.Config

	db, err := postgres.NewConnection(cfg.Database, a.Logger.Named("postgres"))
	if err != nil {
		return fmt.Errorf("postgres: %w", err)
	}
	a.DB = db
	a.closers = append(a.closers, db.Close)
	a.checkers = append(a.checkers, db)

	if cfg.Redis.Enabled {
		rdb, err := redisclient.NewClient(ctx, cfg.Redis, a.Logger.Named("redis"))
		if err != nil {
			return fmt.Errorf("redis: %w", err)
		}
		a.Redis = rdb
		a.closers = append(a.closers, rdb.Close)
		a.checkers = append(a.checkers, rdb)
	}

	if cfg.MinIO.Enabled {
		mc, err := minioclient.NewClient(ctx, cfg.MinIO, a.Logger.Named("minio"))
		if err != nil {
			return fmt.Errorf("minio: %w", err)
		}
		if err := mc.EnsureBucket(ctx); err != nil {
			return fmt.Errorf("minio: %w", err)
		}
		a.MinIO = mc
		a.checkers = append(a.checkers, mc)
	}

	if cfg.Kafka.Enabled {
		p, err := kafka.NewProducer(kafka.ProducerConfigFrom(cfg.Kafka), a.Logger.Named("kafka"))
		if err != nil {
			return fmt.Errorf("kafka: %w", err)
		}
		a.Producer = p
		a.closers = append(a.closers, p.Close)
	}
	return nil
}

func (a *App) initServices() error {
	cfg := a.Config
	log := a.Logger

	var cache currency.RateCache = currency.NewMemoryCache()
	if a.Redis != nil {
		cache = redisclient.NewRateCache(a.Redis, cfg.Exchange.CacheTTL, log)
	}
	httpClient := &http.Client{Timeout: cfg.Exchange.ProviderTimeout}
	a.Rates = currency.NewRateService(cache,
		exchangerate.BuildChain(cfg.Exchange, httpClient, log),
		currency.ServiceConfig{
			Supported:       cfg.Exchange.SupportedCurrencies,
			TTL:             cfg.Exchange.CacheTTL,
			ProviderTimeout: cfg.Exchange.ProviderTimeout,
			ChainDeadline:   cfg.Exchange.ChainDeadline,
		},
		currency.WithMetrics(a.Finance),
		currency.WithLogger(log))
	a.Converter = currency.NewConverter(a.Rates, cfg.Exchange.BaseCurrency, log, a.Finance)

	normalizer := booking.NewNormalizer(cfg.Booking.LegacySources, nil, nil, log)
	bookings := repositories.NewBookingRepo(a.DB, log)

	var publisher shared.Publisher = shared.NopPublisher{}
	if a.Producer != nil {
		publisher = a.Producer
	}

	a.Revenue = revenue.NewService(bookings,
		repositories.NewRevenueSourceRepo(a.DB),
		normalizer,
		domainRevenue.NewAggregator(a.Converter, log, a.Finance),
		log)

	trackerOpts := []domainPayout.TrackerOption{
		domainPayout.WithLogger(log),
		domainPayout.WithMetrics(a.Finance),
	}
	var receipts payout.ReceiptStore
	if a.MinIO != nil {
		store := minioclient.NewReceiptStore(a.MinIO)
		receipts = store
		trackerOpts = append(trackerOpts, domainPayout.WithReceiptVerifier(store))
	}
	tracker := domainPayout.NewTracker(repositories.NewBalanceRepo(a.DB),
		repositories.NewPayoutRepo(a.DB), a.DB, cfg.Exchange.BaseCurrency, trackerOpts...)
	a.Payouts = payout.NewService(tracker, receipts, publisher, log)

	calculator, err := domainCommission.NewCalculator(bookings, normalizer,
		repositories.NewAssignmentRepo(a.DB),
		repositories.NewCommissionRepo(a.DB),
		a.Converter,
		ratesFromConfig(cfg.Commission),
		domainCommission.WithLogger(log),
		domainCommission.WithMetrics(a.Finance))
	if err != nil {
		return fmt.Errorf("commission: %w", err)
	}
	a.Commissions = commission.NewService(calculator, tracker, a.Converter, a.DB, publisher, log)

	var locker reservation.Locker
	if a.Redis != nil {
		locker = redisclient.NewLocker(a.Redis, log)
	}
	a.Reservations = reservation.NewService(bookings, normalizer, a.DB, locker, publisher, log)
	return nil
}

func ratesFromConfig(c config.CommissionConfig) domainCommission.Rates {
	return domainCommission.Rates{
		Management:       decimal.NewFromFloat(c.DefaultManagementRate),
		PortfolioManager: decimal.NewFromFloat(c.PortfolioManagerRate),
		ReferralAgent:    decimal.NewFromFloat(c.ReferralAgentRate),
	}
}

// HealthCheckers returns the probes of every connected backend.
func (a *App) HealthCheckers() []handlers.HealthChecker {
	return a.checkers
}

// Close releases connections in reverse order of creation.
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			a.Logger.Warn("close failed", logging.Err(err))
		}
	}
	a.closers = nil
}

//Personal.AI order the ending
