// Package venues holds the per-venue extraction plugins. Selector logic is
// venue-specific by nature; everything downstream of extraction is shared
// pipeline code. New venues are added to the registry table below.
package venues

import "github.com/jasonesanders/marquee/internal/scrape"

// All returns the registered plugins. The table is explicit so the closed set
// of venues is visible in one place; there is no runtime discovery.
func All() []scrape.Plugin {
	return []scrape.Plugin{
		Rickshaw{},
		FoxCabaret{},
		Pearl{},
	}
}
