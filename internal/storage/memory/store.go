// Package memory provides an in-memory Store for tests and DSN-less runs.
package memory

import (
	"context"
	"sync"

	"github.com/jasonesanders/marquee/internal/event"
	"github.com/jasonesanders/marquee/internal/storage"
)

// Store keeps events and audit rows in maps guarded by one mutex.
type Store struct {
	mu     sync.Mutex
	events map[string]map[string]event.Event // venueID -> hash -> event
	runs   []storage.ScrapeRun
}

// New creates an empty Store.
func New() *Store {
	return &Store{events: make(map[string]map[string]event.Event)}
}

// HasEvent reports whether a record with this hash exists for the venue.
func (s *Store) HasEvent(_ context.Context, venueID, hash string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.events[venueID][hash]
	return ok, nil
}

// InsertEvents stores events, skipping hashes already present.
func (s *Store) InsertEvents(_ context.Context, events []event.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, e := range events {
		byHash, ok := s.events[e.VenueID]
		if !ok {
			byHash = make(map[string]event.Event)
			s.events[e.VenueID] = byHash
		}
		if _, exists := byHash[e.Hash]; exists {
			continue
		}
		byHash[e.Hash] = e
	}
	return nil
}

// RecordRun appends one audit row.
func (s *Store) RecordRun(_ context.Context, run storage.ScrapeRun) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.runs = append(s.runs, run)
	return nil
}

// Events returns all stored events for a venue, in no particular order.
func (s *Store) Events(venueID string) []event.Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]event.Event, 0, len(s.events[venueID]))
	for _, e := range s.events[venueID] {
		out = append(out, e)
	}
	return out
}

// Runs returns a copy of the audit log.
func (s *Store) Runs() []storage.ScrapeRun {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]storage.ScrapeRun(nil), s.runs...)
}
