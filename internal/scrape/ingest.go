package scrape

import (
	"context"

	"go.uber.org/zap"

	"github.com/jasonesanders/marquee/internal/event"
	"github.com/jasonesanders/marquee/internal/storage"
)

// VenueReport summarizes one venue's pass through the full pipeline.
type VenueReport struct {
	Result         event.ScrapeResult
	EventsFound    int
	EventsInserted int
}

// Ingestor composes the orchestrator, the normalizer, and the store into the
// end-to-end "scrape, normalize, insert if hash absent" run.
type Ingestor struct {
	orch   *Orchestrator
	norm   *Normalizer
	store  storage.Store
	clock  Clock
	logger *zap.Logger
}

// NewIngestor wires the pipeline stages together.
func NewIngestor(orch *Orchestrator, norm *Normalizer, store storage.Store, clock Clock, logger *zap.Logger) *Ingestor {
	return &Ingestor{orch: orch, norm: norm, store: store, clock: clock, logger: logger}
}

// Run scrapes every venue, persists the events whose hash is not already
// stored, and writes one audit row per venue. Store failures are logged and
// confined to their venue; only a session lifecycle violation aborts the run.
func (i *Ingestor) Run(ctx context.Context, venues []event.Venue) ([]VenueReport, error) {
	results, runErr := i.orch.RunAll(ctx, venues)

	reports := make([]VenueReport, 0, len(results))
	for _, res := range results {
		report := VenueReport{Result: res}
		if res.Status == event.StatusSuccess {
			events := i.norm.Normalize(res.VenueID, res.Events)
			report.EventsFound = len(events)
			report.EventsInserted = i.persist(ctx, res.VenueID, events)
		}
		i.audit(ctx, report)
		reports = append(reports, report)
	}
	return reports, runErr
}

func (i *Ingestor) persist(ctx context.Context, venueID string, events []event.Event) int {
	fresh := make([]event.Event, 0, len(events))
	for _, e := range events {
		exists, err := i.store.HasEvent(ctx, venueID, e.Hash)
		if err != nil {
			i.logger.Warn("hash lookup failed, skipping event",
				zap.String("venue", venueID),
				zap.String("hash", e.Hash),
				zap.Error(err))
			continue
		}
		if !exists {
			fresh = append(fresh, e)
		}
	}
	if len(fresh) == 0 {
		return 0
	}
	if err := i.store.InsertEvents(ctx, fresh); err != nil {
		i.logger.Error("event insert failed",
			zap.String("venue", venueID),
			zap.Int("events", len(fresh)),
			zap.Error(err))
		return 0
	}
	return len(fresh)
}

func (i *Ingestor) audit(ctx context.Context, report VenueReport) {
	res := report.Result
	run := storage.ScrapeRun{
		VenueID:      res.VenueID,
		At:           i.clock.Now(),
		Status:       res.Status,
		ItemsFound:   report.EventsFound,
		ErrorMessage: res.ErrorMessage,
		Duration:     res.Duration,
	}
	if err := i.store.RecordRun(ctx, run); err != nil {
		i.logger.Warn("audit record failed",
			zap.String("venue", res.VenueID),
			zap.Error(err))
	}
}
