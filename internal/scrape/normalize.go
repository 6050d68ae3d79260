package scrape

import (
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/jasonesanders/marquee/internal/event"
	"github.com/jasonesanders/marquee/internal/telemetry"
)

// Normalizer is the single normalization routine: raw listings in, typed
// deduplicated events out. Every caller of the pipeline goes through the same
// instance-independent logic; there is deliberately no second copy anywhere.
type Normalizer struct {
	ids     IDGenerator
	clock   Clock
	logger  *zap.Logger
	metrics *telemetry.Metrics
}

// NewNormalizer wires the normalization dependencies.
func NewNormalizer(ids IDGenerator, clock Clock, logger *zap.Logger, metrics *telemetry.Metrics) *Normalizer {
	return &Normalizer{ids: ids, clock: clock, logger: logger, metrics: metrics}
}

// Normalize runs each raw event through date parsing, classification, price
// parsing, and fingerprinting. A listing whose primary date cannot be parsed
// is dropped (logged, never fatal); an unparseable doors time is treated as
// absent. Listings that fingerprint identically within the batch collapse to
// the first occurrence.
func (n *Normalizer) Normalize(venueID string, raws []event.RawEvent) []event.Event {
	ref := n.clock.Now()
	seen := make(map[string]struct{}, len(raws))
	out := make([]event.Event, 0, len(raws))

	for _, raw := range raws {
		date, err := event.ParseDate(raw.DateRaw, ref)
		if err != nil {
			if errors.Is(err, event.ErrUnparseableDate) {
				n.logger.Info("dropping listing with unparseable date",
					zap.String("venue", venueID),
					zap.String("title", raw.Title),
					zap.String("date_raw", raw.DateRaw))
				n.metrics.EventsDropped.WithLabelValues("unparseable_date").Inc()
			}
			continue
		}

		// Doors text is parsed against the event's own date so a bare
		// "7pm" lands on show night. Blobs like "Doors 7pm / Show 8pm"
		// go through the token extractor instead.
		var doors *time.Time
		if raw.DoorsRaw != "" {
			if d, err := event.ParseDate(raw.DoorsRaw, date); err == nil {
				doors = &d
			} else if d, _ := event.ExtractDoorsAndShow(raw.DoorsRaw, date); d != nil {
				doors = d
			}
		}

		hash := event.Fingerprint(venueID, date, raw.Title)
		if _, dup := seen[hash]; dup {
			n.metrics.EventsDropped.WithLabelValues("duplicate").Inc()
			continue
		}
		seen[hash] = struct{}{}

		id, err := n.ids.NewID()
		if err != nil {
			n.logger.Error("id generation failed, dropping listing",
				zap.String("venue", venueID),
				zap.String("title", raw.Title),
				zap.Error(err))
			n.metrics.EventsDropped.WithLabelValues("id_generation").Inc()
			continue
		}

		cents, isFree := event.ParsePrice(raw.PriceRaw)
		out = append(out, event.Event{
			ID:         id,
			VenueID:    venueID,
			Title:      raw.Title,
			Date:       date,
			DoorsTime:  doors,
			URL:        raw.URL,
			PriceCents: cents,
			IsFree:     isFree,
			Type:       event.ClassifyType(raw.Title),
			Hash:       hash,
		})
	}

	n.metrics.EventsEmitted.WithLabelValues(venueID).Add(float64(len(out)))
	return out
}
