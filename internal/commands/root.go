// Package commands wires the ledger services into the corebank CLI.
package commands

import (
	"context"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/corebank/ledger/internal/clock"
	"github.com/corebank/ledger/internal/config"
	"github.com/corebank/ledger/internal/db"
	"github.com/corebank/ledger/internal/notify"
	"github.com/corebank/ledger/internal/service"
)

// NewRootCommand creates the root CLI command with all subcommands registered.
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "corebank",
		Short: "Transaction ledger core",
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
	}

	rootCmd.AddCommand(newSweepCommand())
	rootCmd.AddCommand(newWorkerCommand())

	return rootCmd
}

// app bundles the shared runtime the subcommands build on.
type app struct {
	cfg      *config.Config
	logger   *slog.Logger
	database *db.DB
	sweep    *service.SweepService
}

// newApp loads configuration, connects the database and wires the sweep
// service. The caller owns the database handle.
func newApp(ctx context.Context) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	logger := cfg.Logger.NewLogger()
	slog.SetDefault(logger)

	database, err := db.Connect(ctx, &cfg.Database, logger)
	if err != nil {
		return nil, err
	}

	var notifier service.Notifier = notify.Nop{}
	if cfg.Notify.WebhookURL != "" {
		notifier = notify.NewWebhookNotifier(cfg.Notify.WebhookURL, cfg.Notify.Timeout)
	}

	clk := clock.System()
	limits := service.NewLimitChecker(clk)
	fraud := service.NewFraudScorer(clk)
	transfers := service.NewTransferService(database, limits, fraud, clk, notifier, logger)
	sweep := service.NewSweepService(database, transfers, notifier, clk, logger)

	return &app{
		cfg:      cfg,
		logger:   logger,
		database: database,
		sweep:    sweep,
	}, nil
}

func (a *app) close() {
	if err := a.database.Close(); err != nil {
		a.logger.Error("failed to close database", "error", err)
	}
}
