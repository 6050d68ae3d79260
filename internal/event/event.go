// Package event defines the core types of the scrape pipeline and the
// normalization operations (date parsing, classification, fingerprinting)
// every venue shares.
package event

import "time"

// EventType is the coarse category assigned to a listing by the classifier.
type EventType string

// Event type values persisted with each normalized event.
const (
	TypeMusic     EventType = "music"
	TypeComedy    EventType = "comedy"
	TypeTheatre   EventType = "theatre"
	TypeScreening EventType = "screening"
	TypeOther     EventType = "other"
)

// Status is the terminal outcome of scraping one venue.
type Status string

// Scrape status values recorded per venue per run.
const (
	StatusSuccess Status = "success"
	StatusError   Status = "error"
	StatusSkipped Status = "skipped"
)

// Venue identifies a scrape target. Loaded once from configuration at
// startup and immutable for the duration of a run.
type Venue struct {
	ID      string `json:"id" mapstructure:"id"`
	Name    string `json:"name" mapstructure:"name"`
	URL     string `json:"url" mapstructure:"url"`
	Enabled bool   `json:"enabled" mapstructure:"enabled"`
}

// RawEvent is one unvalidated listing straight out of a venue plugin.
// Plugins must discard rows with an empty title before emitting.
type RawEvent struct {
	Title    string
	DateRaw  string
	URL      string
	PriceRaw string
	DoorsRaw string
}

// Event is a validated, typed, deduplicated event record ready for storage.
// Immutable once built; PriceCents is nil when no price could be parsed and
// DoorsTime is nil when the listing carried no parseable doors time.
type Event struct {
	ID         string     `json:"id"`
	VenueID    string     `json:"venue_id"`
	Title      string     `json:"title"`
	Date       time.Time  `json:"date"`
	DoorsTime  *time.Time `json:"doors_time,omitempty"`
	URL        string     `json:"url,omitempty"`
	PriceCents *int       `json:"price_cents,omitempty"`
	IsFree     bool       `json:"is_free"`
	Type       EventType  `json:"event_type"`
	Hash       string     `json:"hash"`
}

// ScrapeResult is the terminal outcome of one venue in one run. Events holds
// the raw extraction output; normalization happens afterwards so a result can
// be audited independently of how many listings survived parsing.
type ScrapeResult struct {
	VenueID      string
	Status       Status
	Events       []RawEvent
	ErrorMessage string
	Duration     time.Duration
}
