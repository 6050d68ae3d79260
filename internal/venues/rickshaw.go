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

// Rickshaw scrapes the Rickshaw Theatre calendar. The calendar is
// JavaScript-hydrated, so it needs the rendered fetch mode.
type Rickshaw struct{}

// Slug implements scrape.Plugin.
func (Rickshaw) Slug() string { return "rickshaw" }

// Mode implements scrape.Plugin.
func (Rickshaw) Mode() scrape.Mode { return scrape.ModeRendered }

// Extract implements scrape.Plugin. Listings live in .event-card blocks; the
// doors/show line sits in a .event-meta footer under each card.
func (Rickshaw) Extract(_ context.Context, _ *fetch.Page, html string) ([]event.RawEvent, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("parse rickshaw calendar: %w", err)
	}

	var raws []event.RawEvent
	doc.Find(".event-card").Each(func(_ int, card *goquery.Selection) {
		title := strings.TrimSpace(card.Find(".event-title").Text())
		if title == "" {
			return
		}
		raw := event.RawEvent{
			Title:    title,
			DateRaw:  strings.TrimSpace(card.Find(".event-date").Text()),
			PriceRaw: strings.TrimSpace(card.Find(".event-price").Text()),
			DoorsRaw: strings.TrimSpace(card.Find(".event-meta").Text()),
		}
		if href, ok := card.Find("a.event-link").Attr("href"); ok {
			raw.URL = absoluteURL("https://rickshawtheatre.com", href)
		}
		raws = append(raws, raw)
	})
	return raws, nil
}

func absoluteURL(base, href string) string {
	if href == "" || strings.HasPrefix(href, "http://") || strings.HasPrefix(href, "https://") {
		return href
	}
	return base + "/" + strings.TrimPrefix(href, "/")
}
