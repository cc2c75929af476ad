// Package ratelimit throttles how often a Flusher's Flush actually reaches
// its target, using golang.org/x/time/rate the way the teacher's archive
// and API rate-limiting code does for HTTP requests, repurposed here to cap
// flush frequency against a downstream sink that can't absorb an unbounded
// scheduler.
package ratelimit

import (
	"context"
	"fmt"

	"github.com/ClusterCockpit/cc-metrics/pkg/metrics"
	"golang.org/x/time/rate"
)

// Limited wraps a Flusher so that Flush calls exceeding the configured rate
// are dropped rather than forwarded, returning an error identifying the
// throttle rather than silently discarding the call.
type Limited struct {
	inner   metrics.Flusher
	limiter *rate.Limiter
}

// New wraps inner so that on average at most eventsPerSecond flushes per
// second reach it, with up to burst admitted at once. burst of 1 disables
// bursting.
func New(inner metrics.Flusher, eventsPerSecond float64, burst int) *Limited {
	if burst < 1 {
		burst = 1
	}
	return &Limited{inner: inner, limiter: rate.NewLimiter(rate.Limit(eventsPerSecond), burst)}
}

// Flush forwards to the wrapped Flusher only if the rate limiter currently
// allows it; otherwise it returns an error without calling Flush at all.
func (l *Limited) Flush() error {
	if !l.limiter.Allow() {
		return fmt.Errorf("metrics: flush rate-limited")
	}
	return l.inner.Flush()
}

// Wait blocks until the rate limiter admits a flush (or ctx is done), then
// forwards to the wrapped Flusher. Use this instead of Flush when dropping
// an over-rate flush is worse than delaying it.
func (l *Limited) Wait(ctx context.Context) error {
	if err := l.limiter.Wait(ctx); err != nil {
		return err
	}
	return l.inner.Flush()
}
