package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jasonesanders/marquee/internal/event"
	"github.com/jasonesanders/marquee/internal/storage"
)

func TestInsertAndHasEvent(t *testing.T) {
	t.Parallel()

	s := New()
	ctx := context.Background()

	exists, err := s.HasEvent(ctx, "rickshaw", "abc")
	require.NoError(t, err)
	assert.False(t, exists)

	e := event.Event{ID: "1", VenueID: "rickshaw", Title: "The Sadies", Hash: "abc"}
	require.NoError(t, s.InsertEvents(ctx, []event.Event{e}))

	exists, err = s.HasEvent(ctx, "rickshaw", "abc")
	require.NoError(t, err)
	assert.True(t, exists)

	// Same hash under another venue is a different record.
	exists, err = s.HasEvent(ctx, "foxcabaret", "abc")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestInsertSkipsDuplicateHash(t *testing.T) {
	t.Parallel()

	s := New()
	ctx := context.Background()

	first := event.Event{ID: "1", VenueID: "rickshaw", Title: "The Sadies", Hash: "abc"}
	second := event.Event{ID: "2", VenueID: "rickshaw", Title: "The Sadies (re-listed)", Hash: "abc"}
	require.NoError(t, s.InsertEvents(ctx, []event.Event{first, second}))

	got := s.Events("rickshaw")
	require.Len(t, got, 1)
	assert.Equal(t, "1", got[0].ID)
}

func TestRecordRun(t *testing.T) {
	t.Parallel()

	s := New()
	ctx := context.Background()

	run := storage.ScrapeRun{
		VenueID:    "rickshaw",
		At:         time.Now(),
		Status:     event.StatusSuccess,
		ItemsFound: 4,
		Duration:   3 * time.Second,
	}
	require.NoError(t, s.RecordRun(ctx, run))
	require.NoError(t, s.RecordRun(ctx, run))

	assert.Len(t, s.Runs(), 2)
}
