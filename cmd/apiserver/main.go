// API server entry point for StayLedger.
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/turtacn/StayLedger/internal/app"
	"github.com/turtacn/StayLedger/internal/config"
	"github.com/turtacn/StayLedger/internal/infrastructure/database/postgres"
	"github.com/turtacn/StayLedger/internal/infrastructure/messaging/kafka"
	"github.com/turtacn/StayLedger/internal/infrastructure/monitoring/logging"
	httpapi "github.com/turtacn/StayLedger/internal/interfaces/http"
	"github.com/turtacn/StayLedger/internal/interfaces/http/handlers"
	"github.com/turtacn/StayLedger/internal/interfaces/http/middleware"
)

// Build-time variables injected via ldflags.
var (
	version = "dev"
	commit  = "unknown"
)

const defaultConfigPath = "configs/config.yaml"

func main() {
	configPath := flag.String("config", defaultConfigPath, "path to configuration file")
	httpPort := flag.Int("http-port", 0, "HTTP server port (overrides config)")
	migrate := flag.Bool("migrate", false, "apply pending migrations before serving")
	replication := flag.Int("kafka-replication", 1, "replication factor for topics created at startup")
	flag.Parse()

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	if *httpPort > 0 {
		cfg.Server.Port = *httpPort
	}

	logger, err := app.NewLogger(cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	logging.SetDefault(logger)
	logger.Info("starting StayLedger API server",
		logging.String("version", version),
		logging.String("commit", commit),
		logging.Int("port", cfg.Server.Port),
		logging.Currency("base_currency", cfg.Exchange.BaseCurrency))

	if *migrate {
		if err := postgres.NewMigrator(cfg.Database.DSN(), cfg.Database.MigrationPath).Up(); err != nil {
			logger.Fatal("migrations failed", logging.Err(err))
		}
		logger.Info("migrations applied")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("failed to initialize application", logging.Err(err))
	}
	defer a.Close()

	if cfg.Kafka.Enabled {
		ensureTopics(ctx, cfg, *replication, logger)
	}
	if _, statErr := os.Stat(*configPath); statErr == nil {
		config.Watch(*configPath, func(next *config.Config) {
			logger.Info("configuration file changed; restart to apply",
				logging.String("path", *configPath),
				logging.String("log_level", next.Log.Level))
		})
	}

	srv := httpapi.NewServer(cfg.Server, newRouter(a), logger)
	errCh := make(chan error, 1)
	go func() { errCh <- srv.Start() }()

	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	case err := <-errCh:
		if err != nil {
			logger.Error("http server failed", logging.Err(err))
		}
	}

	if err := srv.Stop(context.Background()); err != nil {
		logger.Error("http server shutdown error", logging.Err(err))
	}
	logger.Info("StayLedger API server stopped")
}

func newRouter(a *app.App) http.Handler {
	cfg := a.Config
	log := a.Logger

	rl := middleware.DefaultRateLimitConfig()
	rl.SkipPaths = append(rl.SkipPaths, cfg.Metrics.Path)

	rc := httpapi.RouterConfig{
		RevenueHandler:     handlers.NewRevenueHandler(a.Revenue, log),
		CommissionHandler:  handlers.NewCommissionHandler(a.Commissions, log),
		PayoutHandler:      handlers.NewPayoutHandler(a.Payouts, log),
		RatesHandler:       handlers.NewRatesHandler(a.Rates, a.Converter, log),
		ReservationHandler: handlers.NewReservationHandler(a.Reservations, log),
		HealthHandler:      handlers.NewHealthHandler(version, a.Finance, a.HealthCheckers()...),

		Scope:       middleware.DefaultScopeConfig(),
		RateLimiter: middleware.NewKeyLimiter(rl.RequestsPerSecond, rl.BurstSize, rl.IdleTTL),
		RateLimit:   rl,
		Logging:     middleware.DefaultLoggingConfig(),

		Logger:      log,
		HTTPMetrics: a.Finance,
	}
	if cfg.Metrics.Enabled {
		rc.MetricsHandler = a.Metrics.Handler()
		rc.MetricsPath = cfg.Metrics.Path
	}
	return httpapi.NewRouter(rc)
}

// ensureTopics creates missing event topics. Failure is not fatal: events
// are published best effort.
func ensureTopics(ctx context.Context, cfg *config.Config, replication int, logger logging.Logger) {
	tm, err := kafka.NewTopicManager(cfg.Kafka.Brokers, logger.Named("kafka"))
	if err != nil {
		logger.Warn("kafka topic manager unavailable", logging.Err(err))
		return
	}
	defer tm.Close()

	ctx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()
	if err := tm.EnsureDefaultTopics(ctx, replication); err != nil {
		logger.Warn("failed to ensure kafka topics", logging.Err(err))
	}
}

// loadConfig reads path when it exists and falls back to the environment.
func loadConfig(path string) (*config.Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return config.LoadFromEnv()
	}
	return config.Load(path)
}

//Personal.AI order the ending
