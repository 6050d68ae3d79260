package fetch

import (
	"context"
	"fmt"
	"time"

	"github.com/chromedp/chromedp"
)

// Page is a live handle on one navigated browser tab. The caller that opened
// it must Close it; closing a page never tears down the shared browser.
type Page struct {
	ctx        context.Context
	cancel     context.CancelFunc
	navTimeout time.Duration
}

// Context exposes the underlying chromedp context so plugins can run further
// actions (clicks, detail navigation) against the tab.
func (p *Page) Context() context.Context {
	return p.ctx
}

// HTML re-extracts the tab's rendered markup, bounded by the navigation
// timeout. Useful after a plugin has driven the page past its initial state.
func (p *Page) HTML(ctx context.Context) (string, error) {
	runCtx, cancel := context.WithTimeout(p.ctx, p.navTimeout)
	defer cancel()
	if err := ctx.Err(); err != nil {
		return "", err
	}
	var html string
	if err := chromedp.Run(runCtx, chromedp.OuterHTML("html", &html, chromedp.ByQuery)); err != nil {
		return "", fmt.Errorf("extract html: %w", err)
	}
	return html, nil
}

// Close releases the tab. Safe on nil and safe to call more than once.
func (p *Page) Close() {
	if p == nil || p.cancel == nil {
		return
	}
	p.cancel()
}
