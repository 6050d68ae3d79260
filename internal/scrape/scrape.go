// Package scrape drives venue plugins through the fetch session and turns
// their raw extractions into normalized, deduplicated event records.
package scrape

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/jasonesanders/marquee/internal/event"
	"github.com/jasonesanders/marquee/internal/fetch"
	"github.com/jasonesanders/marquee/internal/telemetry"
)

// Mode selects how a plugin's listing page is acquired.
type Mode int

// Fetch modes. Rendered venues get a live browser tab; static venues get
// server-rendered HTML over plain HTTP.
const (
	ModeStatic Mode = iota
	ModeRendered
)

func (m Mode) String() string {
	if m == ModeRendered {
		return "rendered"
	}
	return "static"
}

// Plugin is the per-venue extraction contract. Extract receives the listing
// page: for rendered venues a live page handle plus its markup, for static
// venues markup only (page is nil). A plugin that navigates the page away for
// detail enrichment must leave it in a consistent state before returning, and
// must discard rows with empty titles before emitting.
type Plugin interface {
	Slug() string
	Mode() Mode
	Extract(ctx context.Context, page *fetch.Page, html string) ([]event.RawEvent, error)
}

// Fetcher is the slice of the fetch session the orchestrator needs.
type Fetcher interface {
	FetchRendered(ctx context.Context, url string) (*fetch.Page, string, error)
	FetchStatic(ctx context.Context, url string) (string, error)
}

// Clock returns the current time (useful for testing).
type Clock interface {
	Now() time.Time
}

// IDGenerator produces event IDs (UUIDs).
type IDGenerator interface {
	NewID() (string, error)
}

// Config bounds the per-venue retry loop.
type Config struct {
	MaxAttempts int
	BackoffBase time.Duration
}

func (c Config) withDefaults() Config {
	if c.MaxAttempts <= 0 {
		c.MaxAttempts = 3
	}
	if c.BackoffBase <= 0 {
		c.BackoffBase = time.Second
	}
	return c
}

// Orchestrator runs venues strictly sequentially against one shared fetch
// session. One venue's failure never aborts the others; only session misuse
// (a programmer error) ends the run early.
type Orchestrator struct {
	cfg     Config
	fetcher Fetcher
	plugins map[string]Plugin
	clock   Clock
	logger  *zap.Logger
	metrics *telemetry.Metrics
	sleep   func(time.Duration)
}

// New builds an Orchestrator over the given plugins, keyed by venue slug.
func New(cfg Config, fetcher Fetcher, plugins []Plugin, clock Clock, logger *zap.Logger, metrics *telemetry.Metrics) *Orchestrator {
	bySlug := make(map[string]Plugin, len(plugins))
	for _, p := range plugins {
		bySlug[p.Slug()] = p
	}
	return &Orchestrator{
		cfg:     cfg.withDefaults(),
		fetcher: fetcher,
		plugins: bySlug,
		clock:   clock,
		logger:  logger,
		metrics: metrics,
		sleep:   time.Sleep,
	}
}

// RunVenue scrapes one venue to a terminal result. The returned error is
// non-nil only for session lifecycle violations, which abort the whole run.
func (o *Orchestrator) RunVenue(ctx context.Context, v event.Venue) (event.ScrapeResult, error) {
	if !v.Enabled {
		o.logger.Info("venue disabled, skipping", zap.String("venue", v.ID))
		return event.ScrapeResult{VenueID: v.ID, Status: event.StatusSkipped}, nil
	}
	plugin, ok := o.plugins[v.ID]
	if !ok {
		return event.ScrapeResult{
			VenueID:      v.ID,
			Status:       event.StatusError,
			ErrorMessage: fmt.Sprintf("no plugin registered for venue %q", v.ID),
		}, nil
	}

	start := o.clock.Now()
	var lastErr error
	for attempt := 1; attempt <= o.cfg.MaxAttempts; attempt++ {
		raws, err := o.attempt(ctx, v, plugin)
		if err == nil {
			dur := o.clock.Now().Sub(start)
			o.metrics.ObserveScrape(v.ID, string(event.StatusSuccess), dur)
			o.logger.Info("venue scraped",
				zap.String("venue", v.ID),
				zap.Int("listings", len(raws)),
				zap.Int("attempt", attempt),
				zap.Duration("duration", dur))
			return event.ScrapeResult{
				VenueID:  v.ID,
				Status:   event.StatusSuccess,
				Events:   raws,
				Duration: dur,
			}, nil
		}
		if fetch.IsSessionStateError(err) {
			return event.ScrapeResult{}, fmt.Errorf("venue %s: %w", v.ID, err)
		}
		lastErr = err
		o.logger.Warn("scrape attempt failed",
			zap.String("venue", v.ID),
			zap.Int("attempt", attempt),
			zap.Int("max_attempts", o.cfg.MaxAttempts),
			zap.Error(err))
		if attempt < o.cfg.MaxAttempts {
			o.metrics.Retries.Inc()
			o.sleep(o.cfg.BackoffBase * time.Duration(1<<uint(attempt-1)))
		}
	}

	dur := o.clock.Now().Sub(start)
	o.metrics.ObserveScrape(v.ID, string(event.StatusError), dur)
	return event.ScrapeResult{
		VenueID:      v.ID,
		Status:       event.StatusError,
		ErrorMessage: lastErr.Error(),
		Duration:     dur,
	}, nil
}

// attempt performs one fetch+extract. The page handle, if opened, is released
// before returning regardless of outcome, and a panicking plugin is contained
// to this attempt.
func (o *Orchestrator) attempt(ctx context.Context, v event.Venue, plugin Plugin) (raws []event.RawEvent, err error) {
	var page *fetch.Page
	defer func() {
		page.Close()
		if r := recover(); r != nil {
			raws, err = nil, fmt.Errorf("extraction panic: %v", r)
		}
	}()

	var html string
	mode := plugin.Mode()
	switch mode {
	case ModeRendered:
		page, html, err = o.fetcher.FetchRendered(ctx, v.URL)
	default:
		html, err = o.fetcher.FetchStatic(ctx, v.URL)
	}
	if err != nil {
		o.metrics.Fetches.WithLabelValues(mode.String(), "error").Inc()
		return nil, fmt.Errorf("fetch %s: %w", v.URL, err)
	}
	o.metrics.Fetches.WithLabelValues(mode.String(), "ok").Inc()

	raws, err = plugin.Extract(ctx, page, html)
	if err != nil {
		return nil, fmt.Errorf("extract %s: %w", v.ID, err)
	}
	return raws, nil
}

// RunAll folds the venue list into an immutable result slice, one terminal
// result per venue, in input order.
func (o *Orchestrator) RunAll(ctx context.Context, venues []event.Venue) ([]event.ScrapeResult, error) {
	results := make([]event.ScrapeResult, 0, len(venues))
	for _, v := range venues {
		res, err := o.RunVenue(ctx, v)
		if err != nil {
			return results, err
		}
		results = append(results, res)
	}
	return results, nil
}
