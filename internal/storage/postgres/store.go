// Package postgres provides the Postgres-backed event store.
package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jasonesanders/marquee/internal/event"
	"github.com/jasonesanders/marquee/internal/storage"
)

// Config controls the Postgres connection pool.
type Config struct {
	DSN             string
	MaxConns        int32
	MinConns        int32
	MaxConnLifetime time.Duration
}

type pool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Close()
}

// Store implements storage.Store on Postgres.
//
// Expected schema:
//
//	CREATE TABLE events (
//	    id          UUID PRIMARY KEY,
//	    venue_id    TEXT NOT NULL,
//	    title       TEXT NOT NULL,
//	    starts_at   TIMESTAMPTZ NOT NULL,
//	    doors_at    TIMESTAMPTZ,
//	    url         TEXT,
//	    price_cents INTEGER,
//	    is_free     BOOLEAN NOT NULL DEFAULT FALSE,
//	    event_type  TEXT NOT NULL,
//	    hash        TEXT NOT NULL,
//	    created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW(),
//	    UNIQUE (venue_id, hash)
//	);
//
//	CREATE TABLE scrape_runs (
//	    id            BIGSERIAL PRIMARY KEY,
//	    venue_id      TEXT NOT NULL,
//	    run_at        TIMESTAMPTZ NOT NULL,
//	    status        TEXT NOT NULL,
//	    items_found   INTEGER NOT NULL,
//	    error_message TEXT,
//	    duration_ms   BIGINT NOT NULL
//	);
type Store struct {
	pool pool
}

// New connects a pool and returns the store.
func New(ctx context.Context, cfg Config) (*Store, error) {
	if cfg.DSN == "" {
		return nil, fmt.Errorf("db.dsn is required")
	}
	poolCfg, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("parse postgres dsn: %w", err)
	}
	if cfg.MaxConns > 0 {
		poolCfg.MaxConns = cfg.MaxConns
	}
	if cfg.MinConns > 0 {
		poolCfg.MinConns = cfg.MinConns
	}
	if cfg.MaxConnLifetime > 0 {
		poolCfg.MaxConnLifetime = cfg.MaxConnLifetime
	}
	p, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	return &Store{pool: p}, nil
}

// NewWithPool constructs a store from an existing pool (primarily for testing).
func NewWithPool(p pool) (*Store, error) {
	if p == nil {
		return nil, fmt.Errorf("pool is required")
	}
	return &Store{pool: p}, nil
}

// Close releases the underlying pool resources.
func (s *Store) Close() {
	if s == nil || s.pool == nil {
		return
	}
	s.pool.Close()
}

// HasEvent reports whether a record with this hash already exists for the venue.
func (s *Store) HasEvent(ctx context.Context, venueID, hash string) (bool, error) {
	const query = `SELECT EXISTS (SELECT 1 FROM events WHERE venue_id = $1 AND hash = $2)`
	var exists bool
	if err := s.pool.QueryRow(ctx, query, venueID, hash).Scan(&exists); err != nil {
		return false, fmt.Errorf("query event hash: %w", err)
	}
	return exists, nil
}

// InsertEvents inserts a batch; rows whose (venue_id, hash) already exist are
// left untouched.
func (s *Store) InsertEvents(ctx context.Context, events []event.Event) error {
	const query = `
INSERT INTO events (
	id, venue_id, title, starts_at, doors_at, url, price_cents, is_free, event_type, hash
) VALUES (
	$1, $2, $3, $4, $5, $6, $7, $8, $9, $10
)
ON CONFLICT (venue_id, hash) DO NOTHING`
	for _, e := range events {
		args := []any{
			e.ID,
			e.VenueID,
			e.Title,
			e.Date,
			e.DoorsTime,
			e.URL,
			e.PriceCents,
			e.IsFree,
			string(e.Type),
			e.Hash,
		}
		if _, err := s.pool.Exec(ctx, query, args...); err != nil {
			return fmt.Errorf("insert event %s: %w", e.Hash, err)
		}
	}
	return nil
}

// RecordRun appends one audit row.
func (s *Store) RecordRun(ctx context.Context, run storage.ScrapeRun) error {
	const query = `
INSERT INTO scrape_runs (
	venue_id, run_at, status, items_found, error_message, duration_ms
) VALUES (
	$1, $2, $3, $4, $5, $6
)`
	args := []any{
		run.VenueID,
		run.At,
		string(run.Status),
		run.ItemsFound,
		run.ErrorMessage,
		run.Duration.Milliseconds(),
	}
	if _, err := s.pool.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("insert scrape run: %w", err)
	}
	return nil
}
