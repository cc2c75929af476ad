package metrics

import (
	"context"
	"sync"
	"time"
)

// pcg32 is a minimal PCG XSH-RR 32-bit generator, the family spec.md §4.3
// names for sampling draws. It is small enough to implement directly
// rather than pull in a dependency for one coin-flip per write.
type pcg32 struct {
	state uint64
	inc   uint64
}

const pcgMultiplier = 6364136223846793005

func newPCG32(seed, seq uint64) *pcg32 {
	g := &pcg32{}
	g.inc = (seq << 1) | 1
	g.state = 0
	g.next()
	g.state += seed
	g.next()
	return g
}

func (g *pcg32) next() uint32 {
	old := g.state
	g.state = old*pcgMultiplier + g.inc
	xorshifted := uint32(((old >> 18) ^ old) >> 27)
	rot := uint32(old >> 59)
	return (xorshifted >> rot) | (xorshifted << ((-rot) & 31))
}

// float64 returns a value in [0, 1).
func (g *pcg32) float64() float64 {
	return float64(g.next()) / (1 << 32)
}

// Sample gates writes through an InputScope with independent Bernoulli(rate)
// draws — each write is forwarded with probability rate and dropped
// otherwise. Compensation for the dropped writes happens downstream in the
// stats function (spec.md's Open Question #3), not here: Sample only scales
// when wrapping a RatedScope (today, *Bucket); over a plain InputScope there
// is no aggregator to rescale, so sampled writes simply pass through
// unscaled on the draws that succeed.
type Sample struct {
	Inner InputScope
	Rate  float64

	mu  sync.Mutex
	rng *pcg32
}

// NewSample wraps inner, forwarding writes with probability rate (0 < rate
// <= 1). rate <= 0 or >= 1 is clamped to 1 (always forward).
func NewSample(inner InputScope, rate float64) *Sample {
	if rate <= 0 || rate > 1 {
		rate = 1
	}
	return &Sample{
		Inner: inner,
		Rate:  rate,
		rng:   newPCG32(uint64(time.Now().UnixNano()), 0xda3e39cb94b95bdb),
	}
}

func (s *Sample) draw() bool {
	if s.Rate >= 1 {
		return true
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rng.float64() < s.Rate
}

func (s *Sample) NewMetric(name MetricName, kind Kind) InputMetric {
	if rated, ok := s.Inner.(RatedScope); ok && s.Rate < 1 {
		inner := rated.NewRatedMetric(name, kind, s.Rate)
		id := inner.ID()
		return newInputMetric(id, func(ctx context.Context, v Value, labels Labels) {
			if s.draw() {
				inner.Write(ctx, v, labels)
			}
		})
	}

	inner := s.Inner.NewMetric(name, kind)
	id := inner.ID()
	return newInputMetric(id, func(ctx context.Context, v Value, labels Labels) {
		if s.draw() {
			inner.Write(ctx, v, labels)
		}
	})
}

func (s *Sample) Flush() error { return s.Inner.Flush() }
