package main

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jasonesanders/marquee/internal/config"
	"github.com/jasonesanders/marquee/internal/logging"
	"github.com/jasonesanders/marquee/internal/storage"
	"github.com/jasonesanders/marquee/internal/storage/memory"
	"github.com/jasonesanders/marquee/internal/storage/postgres"
	"github.com/jasonesanders/marquee/internal/telemetry"
)

var cfgFile string

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "marquee",
		Short: "Venue event calendar scraper",
		Long: `marquee scrapes event calendars from configured venues, normalizes
dates, prices, and event types, and writes deduplicated event records
to the store.`,
		SilenceUsage: true,
	}
	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "path to config file (YAML)")
	cmd.AddCommand(newScrapeCmd(), newServeCmd(), newVenuesCmd())
	return cmd
}

// app bundles the shared service wiring behind the subcommands.
type app struct {
	cfg       config.Config
	logger    *zap.Logger
	registry  *prometheus.Registry
	metrics   *telemetry.Metrics
	store     storage.Store
	closeFunc func()
}

func buildApp(ctx context.Context) (*app, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, err
	}
	logger, err := logging.New(cfg.Logging.Development)
	if err != nil {
		return nil, err
	}

	registry := prometheus.NewRegistry()
	metrics := telemetry.New(registry)

	a := &app{
		cfg:       cfg,
		logger:    logger,
		registry:  registry,
		metrics:   metrics,
		closeFunc: func() {},
	}

	if cfg.DB.DSN != "" {
		pg, err := postgres.New(ctx, postgres.Config{DSN: cfg.DB.DSN, MaxConns: cfg.DB.MaxConns})
		if err != nil {
			return nil, fmt.Errorf("open event store: %w", err)
		}
		a.store = pg
		a.closeFunc = pg.Close
	} else {
		logger.Warn("no db.dsn configured, events will not be persisted beyond this process")
		a.store = memory.New()
	}
	return a, nil
}

func (a *app) close() {
	a.closeFunc()
	_ = a.logger.Sync()
}
