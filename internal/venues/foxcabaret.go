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

// FoxCabaret scrapes the Fox Cabaret monthly calendar (JavaScript-hydrated).
type FoxCabaret struct{}

// Slug implements scrape.Plugin.
func (FoxCabaret) Slug() string { return "foxcabaret" }

// Mode implements scrape.Plugin.
func (FoxCabaret) Mode() scrape.Mode { return scrape.ModeRendered }

// Extract implements scrape.Plugin. Each listing is an article.calendar-item;
// the date and the show time are separate spans, joined here so the shared
// date parser sees one string.
func (FoxCabaret) Extract(_ context.Context, _ *fetch.Page, html string) ([]event.RawEvent, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("parse fox cabaret calendar: %w", err)
	}

	var raws []event.RawEvent
	doc.Find("article.calendar-item").Each(func(_ int, item *goquery.Selection) {
		title := strings.TrimSpace(item.Find("h3.item-title").Text())
		if title == "" {
			return
		}
		date := strings.TrimSpace(item.Find("span.item-date").Text())
		if showTime := strings.TrimSpace(item.Find("span.item-time").Text()); showTime != "" {
			date = date + " " + showTime
		}
		raw := event.RawEvent{
			Title:    title,
			DateRaw:  date,
			PriceRaw: strings.TrimSpace(item.Find("span.item-price").Text()),
		}
		if href, ok := item.Find("a").First().Attr("href"); ok {
			raw.URL = absoluteURL("https://foxcabaret.com", href)
		}
		raws = append(raws, raw)
	})
	return raws, nil
}
