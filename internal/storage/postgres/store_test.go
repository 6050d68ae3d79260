package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jasonesanders/marquee/internal/event"
	"github.com/jasonesanders/marquee/internal/storage"
)

func TestHasEvent(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	store, err := NewWithPool(mock)
	require.NoError(t, err)

	mock.ExpectQuery("SELECT EXISTS").
		WithArgs("rickshaw", "abc123").
		WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(true))

	exists, err := store.HasEvent(context.Background(), "rickshaw", "abc123")
	require.NoError(t, err)
	assert.True(t, exists)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestInsertEvents(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	store, err := NewWithPool(mock)
	require.NoError(t, err)

	date := time.Date(2024, time.January, 12, 19, 30, 0, 0, time.UTC)
	price := 1500
	e := event.Event{
		ID:         "uuid-v7",
		VenueID:    "rickshaw",
		Title:      "The Sadies",
		Date:       date,
		URL:        "https://rickshawtheatre.com/events/the-sadies",
		PriceCents: &price,
		Type:       event.TypeMusic,
		Hash:       "abc123",
	}

	mock.ExpectExec("INSERT INTO events").
		WithArgs(
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
		).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	require.NoError(t, store.InsertEvents(context.Background(), []event.Event{e}))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestInsertEventsConflictIsNotAnError(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	store, err := NewWithPool(mock)
	require.NoError(t, err)

	e := event.Event{ID: "uuid-v7", VenueID: "rickshaw", Title: "The Sadies", Hash: "abc123"}

	// ON CONFLICT DO NOTHING reports zero rows affected.
	mock.ExpectExec("INSERT INTO events").
		WithArgs(e.ID, e.VenueID, e.Title, e.Date, e.DoorsTime, e.URL, e.PriceCents, e.IsFree, string(e.Type), e.Hash).
		WillReturnResult(pgxmock.NewResult("INSERT", 0))

	require.NoError(t, store.InsertEvents(context.Background(), []event.Event{e}))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRecordRun(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	store, err := NewWithPool(mock)
	require.NoError(t, err)

	run := storage.ScrapeRun{
		VenueID:      "rickshaw",
		At:           time.Unix(1700000000, 0).UTC(),
		Status:       event.StatusError,
		ItemsFound:   0,
		ErrorMessage: "navigate timeout",
		Duration:     4200 * time.Millisecond,
	}

	mock.ExpectExec("INSERT INTO scrape_runs").
		WithArgs(run.VenueID, run.At, string(run.Status), run.ItemsFound, run.ErrorMessage, int64(4200)).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	require.NoError(t, store.RecordRun(context.Background(), run))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestNewWithPoolRequiresPool(t *testing.T) {
	t.Parallel()

	_, err := NewWithPool(nil)
	assert.Error(t, err)
}
