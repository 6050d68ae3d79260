package venues

import (
	"context"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/jasonesanders/marquee/internal/event"
	"github.com/jasonesanders/marquee/internal/fetch"
	"github.com/jasonesanders/marquee/internal/scrape"
)

// Pearl scrapes The Pearl's upcoming-shows page, which is server-rendered
// and works over plain HTTP.
type Pearl struct{}

// Slug implements scrape.Plugin.
func (Pearl) Slug() string { return "pearl" }

// Mode implements scrape.Plugin.
func (Pearl) Mode() scrape.Mode { return scrape.ModeStatic }

// Extract implements scrape.Plugin.
func (Pearl) Extract(_ context.Context, _ *fetch.Page, html string) ([]event.RawEvent, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("parse pearl listings: %w", err)
	}

	var raws []event.RawEvent
	doc.Find("div.show-listing").Each(func(_ int, show *goquery.Selection) {
		title := strings.TrimSpace(show.Find(".show-name").Text())
		if title == "" {
			return
		}
		raw := event.RawEvent{
			Title:    title,
			DateRaw:  strings.TrimSpace(show.Find(".show-date").Text()),
			PriceRaw: strings.TrimSpace(show.Find(".show-tickets .price").Text()),
			DoorsRaw: strings.TrimSpace(show.Find(".show-times").Text()),
		}
		if href, ok := show.Find("a.show-link").Attr("href"); ok {
			raw.URL = absoluteURL("https://thepearlvancouver.com", href)
		}
		raws = append(raws, raw)
	})
	return raws, nil
}
