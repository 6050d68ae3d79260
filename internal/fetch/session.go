// Package fetch owns all outbound traffic to venue sites: a shared rendering
// session for JavaScript-hydrated calendars, a lightweight HTTP path for
// static pages, and the global rate gate both paths go through.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/chromedp/cdproto/emulation"
	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"
	"github.com/gocolly/colly/v2"
	"go.uber.org/zap"
)

// Session misuse is a programmer error, not a retryable fetch failure: the
// orchestrator aborts the whole run when it sees one of these.
var (
	ErrNotInitialized = errors.New("fetch session used before Init")
	ErrClosed         = errors.New("fetch session used after Close")
)

// IsSessionStateError reports whether err is a session lifecycle violation.
func IsSessionStateError(err error) bool {
	return errors.Is(err, ErrNotInitialized) || errors.Is(err, ErrClosed)
}

// Config controls session behavior. Every request carries UserAgent, which
// by policy identifies the scraper and how to reach its operator.
type Config struct {
	UserAgent     string
	RequestDelay  time.Duration
	NavTimeout    time.Duration
	StaticTimeout time.Duration
}

type sessionState int

const (
	stateNew sessionState = iota
	stateReady
	stateClosed
)

// Session is the process-scoped fetch state for one scrape run: one browser
// allocator, one colly collector, one rate watermark. Create with NewSession,
// arm with Init, and Close on every exit path; all fetches within a run share
// the session and run strictly through its gate.
type Session struct {
	cfg    Config
	gate   *Gate
	logger *zap.Logger

	mu            sync.Mutex
	state         sessionState
	allocCtx      context.Context
	allocCancel   context.CancelFunc
	browserCtx    context.Context
	browserCancel context.CancelFunc
	collector     *colly.Collector
}

// NewSession builds an unarmed session. Init must be called before fetching.
func NewSession(cfg Config, logger *zap.Logger) *Session {
	if cfg.NavTimeout <= 0 {
		cfg.NavTimeout = 30 * time.Second
	}
	if cfg.StaticTimeout <= 0 {
		cfg.StaticTimeout = 15 * time.Second
	}
	return &Session{
		cfg:    cfg,
		gate:   NewGate(cfg.RequestDelay),
		logger: logger,
	}
}

// Init arms the session: browser allocator and HTTP collector. The browser
// process itself launches lazily on the first rendered fetch, so an all-static
// run never pays for Chrome.
func (s *Session) Init(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch s.state {
	case stateReady:
		return fmt.Errorf("init: session already initialized")
	case stateClosed:
		return fmt.Errorf("init: %w", ErrClosed)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", "new"),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.UserAgent(s.cfg.UserAgent),
	)
	s.allocCtx, s.allocCancel = chromedp.NewExecAllocator(context.Background(), opts...)

	c := colly.NewCollector(colly.UserAgent(s.cfg.UserAgent))
	c.AllowURLRevisit = true
	c.SetRequestTimeout(s.cfg.StaticTimeout)
	s.collector = c

	s.state = stateReady
	return nil
}

// Close tears the session down: browser process, allocator, collector. Must
// run on every exit path; forgetting it leaks the Chrome process. Idempotent.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != stateReady {
		s.state = stateClosed
		return
	}
	if s.browserCancel != nil {
		s.browserCancel()
		s.browserCtx = nil
		s.browserCancel = nil
	}
	if s.allocCancel != nil {
		s.allocCancel()
		s.allocCtx = nil
		s.allocCancel = nil
	}
	s.collector = nil
	s.state = stateClosed
}

func (s *Session) checkReady(op string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch s.state {
	case stateNew:
		return fmt.Errorf("%s: %w", op, ErrNotInitialized)
	case stateClosed:
		return fmt.Errorf("%s: %w", op, ErrClosed)
	}
	return nil
}

// ensureBrowser starts the shared browser on first use. All rendered fetches
// in a run reuse this one process; pages are tabs within it.
func (s *Session) ensureBrowser() (context.Context, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch s.state {
	case stateNew:
		return nil, ErrNotInitialized
	case stateClosed:
		return nil, ErrClosed
	}
	if s.browserCtx != nil {
		return s.browserCtx, nil
	}
	browserCtx, cancel := chromedp.NewContext(s.allocCtx,
		chromedp.WithLogf(func(string, ...interface{}) {}))
	if err := chromedp.Run(browserCtx); err != nil {
		cancel()
		return nil, fmt.Errorf("start browser: %w", err)
	}
	s.browserCtx = browserCtx
	s.browserCancel = cancel
	s.logger.Debug("browser session started")
	return browserCtx, nil
}

// FetchRendered navigates a new tab to url and returns the live page handle
// together with the rendered markup. The caller owns the page and must Close
// it; the shared browser stays up for the rest of the run.
func (s *Session) FetchRendered(ctx context.Context, url string) (*Page, string, error) {
	if err := s.checkReady("fetch rendered"); err != nil {
		return nil, "", err
	}
	if err := s.gate.Wait(ctx); err != nil {
		return nil, "", err
	}
	browserCtx, err := s.ensureBrowser()
	if err != nil {
		return nil, "", fmt.Errorf("fetch rendered: %w", err)
	}

	pageCtx, pageCancel := chromedp.NewContext(browserCtx)
	navCtx, navCancel := context.WithTimeout(pageCtx, s.cfg.NavTimeout)
	defer navCancel()

	start := time.Now()
	var html string
	actions := []chromedp.Action{
		s.networkSetup(),
		chromedp.Navigate(url),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.Sleep(500 * time.Millisecond),
		chromedp.OuterHTML("html", &html, chromedp.ByQuery),
	}
	if err := chromedp.Run(navCtx, actions...); err != nil {
		pageCancel()
		return nil, "", fmt.Errorf("navigate %s: %w", url, err)
	}
	s.logger.Debug("rendered fetch complete",
		zap.String("url", url),
		zap.Duration("duration", time.Since(start)))

	return &Page{ctx: pageCtx, cancel: pageCancel, navTimeout: s.cfg.NavTimeout}, html, nil
}

func (s *Session) networkSetup() chromedp.Action {
	return chromedp.ActionFunc(func(ctx context.Context) error {
		if err := network.Enable().Do(ctx); err != nil {
			return fmt.Errorf("enable network domain: %w", err)
		}
		if s.cfg.UserAgent != "" {
			if err := emulation.SetUserAgentOverride(s.cfg.UserAgent).Do(ctx); err != nil {
				return fmt.Errorf("set user-agent: %w", err)
			}
		}
		return nil
	})
}

// FetchStatic retrieves url over plain HTTP and returns the body. For venues
// whose calendars are server-rendered; no page handle is involved.
func (s *Session) FetchStatic(ctx context.Context, url string) (string, error) {
	if err := s.checkReady("fetch static"); err != nil {
		return "", err
	}
	if err := s.gate.Wait(ctx); err != nil {
		return "", err
	}

	s.mu.Lock()
	base := s.collector
	s.mu.Unlock()
	if base == nil {
		return "", fmt.Errorf("fetch static: %w", ErrClosed)
	}

	collector := base.Clone()
	resultCh := make(chan staticResult, 1)
	var once sync.Once
	send := func(res staticResult) {
		once.Do(func() { resultCh <- res })
	}

	collector.OnResponse(func(r *colly.Response) {
		send(staticResult{body: string(r.Body)})
	})
	collector.OnError(func(_ *colly.Response, err error) {
		if err == nil {
			err = errors.New("unknown collector error")
		}
		send(staticResult{err: err})
	})

	start := time.Now()
	if err := collector.Visit(url); err != nil {
		return "", fmt.Errorf("visit %s: %w", url, err)
	}
	collector.Wait()

	select {
	case res := <-resultCh:
		if err := ctx.Err(); err != nil {
			return "", err
		}
		if res.err != nil {
			return "", fmt.Errorf("fetch %s: %w", url, res.err)
		}
		s.logger.Debug("static fetch complete",
			zap.String("url", url),
			zap.Duration("duration", time.Since(start)))
		return res.body, nil
	default:
		return "", fmt.Errorf("fetch %s: collector produced no result", url)
	}
}

type staticResult struct {
	body string
	err  error
}
