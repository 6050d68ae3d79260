package venues

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jasonesanders/marquee/internal/scrape"
)

const pearlFixture = `
<html><body>
  <div class="show-listing">
    <a class="show-link" href="/shows/the-sadies"><span class="show-name">The Sadies</span></a>
    <span class="show-date">Friday, January 12, 2024</span>
    <span class="show-times">Doors 7:00 PM / Show 8:00 PM</span>
    <div class="show-tickets"><span class="price">$25</span></div>
  </div>
  <div class="show-listing">
    <span class="show-name">Comedy Night</span>
    <span class="show-date">Jan 14, 2024 7:00 PM</span>
    <div class="show-tickets"><span class="price">PWYC</span></div>
  </div>
  <div class="show-listing">
    <span class="show-name"></span>
    <span class="show-date">Jan 15, 2024</span>
  </div>
</body></html>`

func TestPearlExtract(t *testing.T) {
	t.Parallel()

	raws, err := Pearl{}.Extract(context.Background(), nil, pearlFixture)
	require.NoError(t, err)
	require.Len(t, raws, 2, "empty-title rows are discarded before emission")

	assert.Equal(t, "The Sadies", raws[0].Title)
	assert.Equal(t, "Friday, January 12, 2024", raws[0].DateRaw)
	assert.Equal(t, "Doors 7:00 PM / Show 8:00 PM", raws[0].DoorsRaw)
	assert.Equal(t, "$25", raws[0].PriceRaw)
	assert.Equal(t, "https://thepearlvancouver.com/shows/the-sadies", raws[0].URL)

	assert.Equal(t, "Comedy Night", raws[1].Title)
	assert.Equal(t, "PWYC", raws[1].PriceRaw)
	assert.Empty(t, raws[1].URL)
}

const rickshawFixture = `
<html><body>
  <div class="event-card">
    <a class="event-link" href="https://rickshawtheatre.com/event/the-sadies">
      <span class="event-title">The Sadies</span>
    </a>
    <span class="event-date">January 12th, 2024</span>
    <span class="event-price">$22.50</span>
    <div class="event-meta">Doors 7pm, show 8pm. 19+</div>
  </div>
</body></html>`

func TestRickshawExtract(t *testing.T) {
	t.Parallel()

	raws, err := Rickshaw{}.Extract(context.Background(), nil, rickshawFixture)
	require.NoError(t, err)
	require.Len(t, raws, 1)
	assert.Equal(t, "The Sadies", raws[0].Title)
	assert.Equal(t, "January 12th, 2024", raws[0].DateRaw)
	assert.Equal(t, "Doors 7pm, show 8pm. 19+", raws[0].DoorsRaw)
	assert.Equal(t, "https://rickshawtheatre.com/event/the-sadies", raws[0].URL)
}

const foxFixture = `
<html><body>
  <article class="calendar-item">
    <a href="/events/dance-party"><h3 class="item-title">Motown Dance Party</h3></a>
    <span class="item-date">Saturday, February 3</span>
    <span class="item-time">9:00 PM</span>
    <span class="item-price">$15</span>
  </article>
</body></html>`

func TestFoxCabaretExtract(t *testing.T) {
	t.Parallel()

	raws, err := FoxCabaret{}.Extract(context.Background(), nil, foxFixture)
	require.NoError(t, err)
	require.Len(t, raws, 1)
	assert.Equal(t, "Motown Dance Party", raws[0].Title)
	assert.Equal(t, "Saturday, February 3 9:00 PM", raws[0].DateRaw)
	assert.Equal(t, "https://foxcabaret.com/events/dance-party", raws[0].URL)
}

func TestRegistrySlugsUniqueAndModesSet(t *testing.T) {
	t.Parallel()

	seen := map[string]bool{}
	for _, p := range All() {
		require.NotEmpty(t, p.Slug())
		assert.False(t, seen[p.Slug()], "duplicate slug %s", p.Slug())
		seen[p.Slug()] = true
		assert.Contains(t, []scrape.Mode{scrape.ModeStatic, scrape.ModeRendered}, p.Mode())
	}
}
