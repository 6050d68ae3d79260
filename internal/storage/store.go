// Package storage defines the persistence contract for normalized events.
// The pipeline only needs "does this hash exist for this venue", batch
// insert, and an append-only audit record per venue-run; implementations
// live in subpackages.
package storage

import (
	"context"
	"time"

	"github.com/jasonesanders/marquee/internal/event"
)

// ScrapeRun is the append-only audit record written once per venue per run.
type ScrapeRun struct {
	VenueID      string
	At           time.Time
	Status       event.Status
	ItemsFound   int
	ErrorMessage string
	Duration     time.Duration
}

// Store is the persistence collaborator. HasEvent is scoped to one venue so
// the caller can filter a batch before insert; InsertEvents must tolerate
// hashes that raced in since the filter (insert-if-absent semantics).
type Store interface {
	HasEvent(ctx context.Context, venueID, hash string) (bool, error)
	InsertEvents(ctx context.Context, events []event.Event) error
	RecordRun(ctx context.Context, run ScrapeRun) error
}
