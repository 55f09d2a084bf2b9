// Command stayledger is the operator CLI for StayLedger.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/turtacn/StayLedger/internal/app"
	"github.com/turtacn/StayLedger/internal/config"
	"github.com/turtacn/StayLedger/internal/infrastructure/database/postgres"
	"github.com/turtacn/StayLedger/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/StayLedger/internal/interfaces/cli"
)

// Injected via ldflags.
var (
	version   = "dev"
	gitCommit = "unknown"
	buildDate = "unknown"
)

func main() {
	cli.Version = version
	cli.GitCommit = gitCommit
	cli.BuildDate = buildDate

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	err := cli.Execute(ctx, cli.Dependencies{
		LoadConfig: config.Load,
		Services:   buildServices,
		Migrator: func(cfg *config.Config) cli.Migrator {
			return postgres.NewMigrator(cfg.Database.DSN(), cfg.Database.MigrationPath)
		},
	})
	stop()
	if err != nil {
		os.Exit(1)
	}
}

func buildServices(ctx context.Context, cfg *config.Config, logger logging.Logger) (*cli.Services, error) {
	a, err := app.New(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	return &cli.Services{
		Rates:       a.Rates,
		Converter:   a.Converter,
		Revenue:     a.Revenue,
		Commissions: a.Commissions,
		Payouts:     a.Payouts,
		Close:       a.Close,
	}, nil
}

//Personal.AI order the ending
