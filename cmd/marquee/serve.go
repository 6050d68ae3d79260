package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jasonesanders/marquee/internal/api"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Scrape on an interval with a health and metrics endpoint",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			a, err := buildApp(ctx)
			if err != nil {
				return err
			}
			defer a.close()

			srv := api.NewServer(a.cfg.Admin.Port, a.registry, a.logger)
			go func() {
				if err := srv.Start(); err != nil {
					a.logger.Error("admin server stopped", zap.Error(err))
				}
			}()
			defer func() {
				shutCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				_ = srv.Shutdown(shutCtx)
			}()

			interval := a.cfg.ScrapeInterval()
			a.logger.Info("scheduler started",
				zap.Duration("interval", interval),
				zap.Int("venues", len(a.cfg.Venues)),
			)

			ticker := time.NewTicker(interval)
			defer ticker.Stop()

			for {
				if err := runPipeline(ctx, a, a.cfg.Venues); err != nil {
					a.logger.Error("scrape pass failed", zap.Error(err))
				}
				select {
				case <-ctx.Done():
					a.logger.Info("shutting down")
					return nil
				case <-ticker.C:
				}
			}
		},
	}
}
