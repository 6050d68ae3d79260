package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jasonesanders/marquee/internal/clock/system"
	"github.com/jasonesanders/marquee/internal/event"
	"github.com/jasonesanders/marquee/internal/fetch"
	"github.com/jasonesanders/marquee/internal/id/uuid"
	"github.com/jasonesanders/marquee/internal/scrape"
	"github.com/jasonesanders/marquee/internal/venues"
)

func newScrapeCmd() *cobra.Command {
	var venueSlug string

	cmd := &cobra.Command{
		Use:   "scrape",
		Short: "Run one scrape pass over the configured venues",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := buildApp(ctx)
			if err != nil {
				return err
			}
			defer a.close()

			targets := a.cfg.Venues
			if venueSlug != "" {
				targets = filterVenues(targets, venueSlug)
				if len(targets) == 0 {
					return fmt.Errorf("no configured venue with id %q", venueSlug)
				}
			}
			return runPipeline(ctx, a, targets)
		},
	}
	cmd.Flags().StringVar(&venueSlug, "venue", "", "scrape only the venue with this id")
	return cmd
}

func filterVenues(all []event.Venue, slug string) []event.Venue {
	var out []event.Venue
	for _, v := range all {
		if v.ID == slug {
			out = append(out, v)
		}
	}
	return out
}

// runPipeline performs a single end to end scrape over the given
// venues. A fresh fetch session is opened and closed per call so that
// browser and collector state never outlives one run.
func runPipeline(ctx context.Context, a *app, targets []event.Venue) error {
	session := fetch.NewSession(fetch.Config{
		UserAgent:     a.cfg.Scraper.UserAgent,
		RequestDelay:  a.cfg.RequestDelay(),
		NavTimeout:    a.cfg.NavTimeout(),
		StaticTimeout: a.cfg.StaticTimeout(),
	}, a.logger)
	if err := session.Init(ctx); err != nil {
		return fmt.Errorf("init fetch session: %w", err)
	}
	defer session.Close()

	clock := system.New()
	orch := scrape.New(scrape.Config{
		MaxAttempts: a.cfg.Scraper.MaxAttempts,
		BackoffBase: a.cfg.BackoffBase(),
	}, session, venues.All(), clock, a.logger, a.metrics)
	norm := scrape.NewNormalizer(uuid.New(), clock, a.logger, a.metrics)
	ing := scrape.NewIngestor(orch, norm, a.store, clock, a.logger)

	reports, err := ing.Run(ctx, targets)
	for _, r := range reports {
		a.logger.Info("venue scraped",
			zap.String("venue", r.Result.VenueID),
			zap.String("status", string(r.Result.Status)),
			zap.Int("found", r.EventsFound),
			zap.Int("inserted", r.EventsInserted),
			zap.Duration("duration", r.Result.Duration),
		)
	}
	if err != nil {
		return fmt.Errorf("scrape run: %w", err)
	}
	return nil
}
