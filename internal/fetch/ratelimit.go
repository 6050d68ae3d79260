package fetch

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/time/rate"
)

// Gate serializes outbound requests behind a single shared watermark: every
// caller waits until at least the configured interval has elapsed since the
// previous request, across all venues. Burst 1 makes the token bucket
// equivalent to a last-request-time watermark.
type Gate struct {
	limiter *rate.Limiter
}

// NewGate builds a gate enforcing a minimum interval between requests.
// A non-positive interval disables the gate.
func NewGate(minInterval time.Duration) *Gate {
	if minInterval <= 0 {
		return &Gate{limiter: rate.NewLimiter(rate.Inf, 1)}
	}
	return &Gate{limiter: rate.NewLimiter(rate.Every(minInterval), 1)}
}

// Wait blocks until the next request may be issued, respecting the context.
func (g *Gate) Wait(ctx context.Context) error {
	if err := g.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate gate wait: %w", err)
	}
	return nil
}
