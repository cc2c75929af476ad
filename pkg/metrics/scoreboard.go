package metrics

import (
	"math"
	"sync/atomic"

	"github.com/jonboulle/clockwork"
)

// ScoreSnapshot is the raw state a Scoreboard hands back from a successful
// Snapshot: everything accumulated since the previous snapshot (or since
// construction), already reset to zero in the scoreboard itself.
type ScoreSnapshot struct {
	Kind        Kind
	PeriodStart uint64 // microseconds since epoch, start of the period just closed
	PeriodEnd   uint64 // microseconds since epoch, when this snapshot was taken
	Count       uint64
	Sum         uint64
	Max         uint64
	Min         uint64
}

// Scoreboard is a lock-free per-metric accumulator. update is wait-free for
// count/sum; min/max progress under a bounded CAS retry loop. snapshot is
// the only operation requiring single-caller discipline per scoreboard —
// Bucket enforces that with its write lock.
type Scoreboard struct {
	kind      Kind
	clock     clockwork.Clock
	resetTime atomic.Uint64
	count     atomic.Uint64
	sum       atomic.Uint64
	max       atomic.Uint64
	min       atomic.Uint64
}

// blankMax and blankMin are the sentinels a scoreboard resets its max/min
// slots to. Level's deltas are signed two's-complement values, so its
// sentinels are the signed extremes (MinInt64/MaxInt64) rather than the
// unsigned ones every other kind uses — otherwise an all-negative period
// would compare every delta against an unsigned 0 "max" and never move it.
func blankMax(kind Kind) uint64 {
	if kind == Level {
		return uint64(math.MinInt64)
	}
	return 0
}

func blankMin(kind Kind) uint64 {
	if kind == Level {
		return uint64(math.MaxInt64)
	}
	return math.MaxUint64
}

// NewScoreboard creates a blank scoreboard for kind, using clock for
// timestamps (pass clockwork.NewRealClock() outside of tests).
func NewScoreboard(kind Kind, clock clockwork.Clock) *Scoreboard {
	sb := &Scoreboard{kind: kind, clock: clock}
	sb.resetTime.Store(nowMicros(clock))
	sb.max.Store(blankMax(kind))
	sb.min.Store(blankMin(kind))
	return sb
}

// Kind returns the metric kind this scoreboard was created for.
func (s *Scoreboard) Kind() Kind { return s.kind }

// Update is the hot path: safe to call concurrently from any number of
// goroutines. It never blocks and never fails.
func (s *Scoreboard) Update(v Value) {
	s.count.Add(1)
	if s.kind == Marker {
		return
	}
	s.sum.Add(uint64(v))
	if s.kind == Level {
		casMaxSigned(&s.max, uint64(v))
		casMinSigned(&s.min, uint64(v))
		return
	}
	casMax(&s.max, uint64(v))
	casMin(&s.min, uint64(v))
}

func casMax(word *atomic.Uint64, v uint64) {
	for {
		cur := word.Load()
		if v <= cur {
			return
		}
		if word.CompareAndSwap(cur, v) {
			return
		}
	}
}

func casMin(word *atomic.Uint64, v uint64) {
	for {
		cur := word.Load()
		if v >= cur {
			return
		}
		if word.CompareAndSwap(cur, v) {
			return
		}
	}
}

// casMaxSigned/casMinSigned compare the same bit pattern as casMax/casMin
// but interpret it as a two's-complement int64, for Level's signed deltas.
func casMaxSigned(word *atomic.Uint64, v uint64) {
	for {
		cur := word.Load()
		if int64(v) <= int64(cur) {
			return
		}
		if word.CompareAndSwap(cur, v) {
			return
		}
	}
}

func casMinSigned(word *atomic.Uint64, v uint64) {
	for {
		cur := word.Load()
		if int64(v) >= int64(cur) {
			return
		}
		if word.CompareAndSwap(cur, v) {
			return
		}
	}
}

// Snapshot atomically swaps the accumulated state out and resets the
// scoreboard to blank. It reports false ("no data") when no Update landed
// since the previous successful Snapshot; in that branch min/max are left
// untouched (spec.md's Open Question #1 — the source does not reset them on
// an empty period, so a later non-empty period may report a stale
// min/max floor/ceiling carried over from before the gap).
func (s *Scoreboard) Snapshot() (ScoreSnapshot, bool) {
	now := nowMicros(s.clock)
	start := s.resetTime.Swap(now)
	count := s.count.Swap(0)
	sum := s.sum.Swap(0)
	if count == 0 {
		return ScoreSnapshot{}, false
	}
	max := s.max.Swap(blankMax(s.kind))
	min := s.min.Swap(blankMin(s.kind))
	return ScoreSnapshot{
		Kind:        s.kind,
		PeriodStart: start,
		PeriodEnd:   now,
		Count:       count,
		Sum:         sum,
		Max:         max,
		Min:         min,
	}, true
}
