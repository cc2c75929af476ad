package metrics

import (
	"context"
	"sync"

	cclog "github.com/ClusterCockpit/cc-lib/v2/ccLogger"
	"github.com/jonboulle/clockwork"
)

type bucketEntry struct {
	name       MetricName
	scoreboard *Scoreboard
	rate       float64
}

// Bucket maps metric names to owned Scoreboards and, on Flush, snapshots
// every one with data, runs the effective StatsFn and writes the result
// into the effective target OutputScope. Scoreboards live for the bucket's
// lifetime — the core performs no eviction (spec.md's Open Question #2).
type Bucket struct {
	mu    sync.RWMutex
	state bucketState

	// flushMu is held for the whole of Flush, from the snapshot through the
	// target's Flush, so two flushes of one bucket never overlap.
	flushMu sync.Mutex

	entries map[string]*bucketEntry
	clock   clockwork.Clock

	statsFn func(RawStat) []Stat
	target  OutputScope

	publishMetadata bool
}

type bucketState int

const (
	bucketLive bucketState = iota
	bucketPoisoned
)

// NewBucket creates an empty bucket using the real clock and the process
// defaults for stats function and output target (see SetDefaultStatsFn,
// SetDefaultOutput).
func NewBucket() *Bucket {
	return NewBucketWithClock(clockwork.NewRealClock())
}

// NewBucketWithClock creates an empty bucket using clock for timestamps —
// the seam spec.md §8's "advance the clock" scenarios drive in tests.
func NewBucketWithClock(clock clockwork.Clock) *Bucket {
	return &Bucket{entries: make(map[string]*bucketEntry), clock: clock}
}

// SetStatsFn overrides the stats function this bucket uses on Flush,
// resolved ahead of the process-global default (spec.md §4.2).
func (b *Bucket) SetStatsFn(fn StatsFn) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.statsFn = fn
}

// SetTarget overrides the OutputScope this bucket publishes derived metrics
// to on Flush, resolved ahead of the process-global default.
func (b *Bucket) SetTarget(target OutputScope) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.target = target
}

// SetPublishMetadata enables emitting a synthetic "_period_length" Timer
// (sum = period duration in milliseconds) alongside every flush.
func (b *Bucket) SetPublishMetadata(on bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.publishMetadata = on
}

// Len reports the number of distinct metrics the bucket currently tracks.
func (b *Bucket) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.entries)
}

// NewMetric implements InputScope: returns a handle writing to this
// metric's scoreboard, lazily creating it on first use. Labels passed to
// the returned handle's Write are discarded — aggregation is label-oblivious
// by design (spec.md §4.2 / §9).
func (b *Bucket) NewMetric(name MetricName, kind Kind) InputMetric {
	return b.NewRatedMetric(name, kind, 1)
}

// NewRatedMetric is the RatedScope entry point: it records the sampling
// rate in effect alongside the scoreboard so Flush can compensate for
// sampled-out writes in the stats function (spec.md's Open Question #3).
func (b *Bucket) NewRatedMetric(name MetricName, kind Kind, rate float64) InputMetric {
	entry := b.entryFor(name, kind, rate)
	id := MetricId{Kind: kind, Name: name, Rate: rate}
	return newInputMetric(id, func(_ context.Context, v Value, _ Labels) {
		entry.scoreboard.Update(v)
	})
}

func (b *Bucket) entryFor(name MetricName, kind Kind, rate float64) *bucketEntry {
	key := name.Key()

	b.mu.RLock()
	entry, ok := b.entries[key]
	b.mu.RUnlock()
	if ok {
		return entry
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if entry, ok := b.entries[key]; ok {
		return entry
	}
	entry = &bucketEntry{name: name.Clone(), scoreboard: NewScoreboard(kind, b.clock), rate: rate}
	b.entries[key] = entry
	return entry
}

type bucketSnap struct {
	raw RawStat
}

// Flush snapshots every scoreboard with data since the last flush, feeds
// each through the effective stats function and writes the results to the
// effective target's NewMetric/Write pair, then flushes that target. At
// most one Flush runs at a time per bucket (serialized by flushMu, held
// from the snapshot through the target's Flush); concurrent Update calls
// land in either the flushed period or the next, never lost and never
// double-counted.
func (b *Bucket) Flush() error {
	b.flushMu.Lock()
	defer b.flushMu.Unlock()

	b.mu.RLock()
	poisoned := b.state == bucketPoisoned
	b.mu.RUnlock()
	if poisoned {
		return ErrLockPoisoned
	}

	var (
		snaps           []bucketSnap
		statsFn         func(RawStat) []Stat
		target          OutputScope
		publishMetadata bool
	)
	if err := func() (err error) {
		b.mu.Lock()
		defer func() {
			if r := recover(); r != nil {
				b.state = bucketPoisoned
				b.mu.Unlock()
				cclog.Errorf("metrics: bucket flush panicked, lock poisoned: %v", r)
				err = ErrLockPoisoned
				return
			}
			b.mu.Unlock()
		}()

		statsFn = b.statsFn
		if statsFn == nil {
			statsFn = DefaultStatsFn()
		}
		target = b.target
		if target == nil {
			target = DefaultOutput()
		}
		publishMetadata = b.publishMetadata

		snaps = make([]bucketSnap, 0, len(b.entries))
		for _, entry := range b.entries {
			name := nameFromEntry(entry)
			score, ok := entry.scoreboard.Snapshot()
			if !ok {
				continue
			}
			snaps = append(snaps, bucketSnap{raw: RawStat{
				Kind:  score.Kind,
				Name:  name,
				Start: score.PeriodStart,
				End:   score.PeriodEnd,
				Count: score.Count,
				Sum:   score.Sum,
				Max:   score.Max,
				Min:   score.Min,
				Rate:  entry.rate,
			}})
		}
		return nil
	}(); err != nil {
		return err
	}

	if target == nil {
		return nil
	}

	var periodMs uint64
	for _, s := range snaps {
		if periodMs == 0 {
			periodMs = (s.raw.End - s.raw.Start) / 1000
		}
		for _, stat := range statsFn(s.raw) {
			if err := publish(target, stat); err != nil {
				cclog.Debugf("metrics: bucket flush publish failed for %s: %v", stat.Name.Join("."), err)
			}
		}
	}

	if publishMetadata {
		meta := NewMetricName("_period_length")
		if err := publish(target, Stat{Kind: Timer, Name: meta, Value: Value(periodMs)}); err != nil {
			cclog.Debugf("metrics: bucket flush metadata publish failed: %v", err)
		}
	}

	return target.Flush()
}

func publish(target OutputScope, stat Stat) error {
	return target.NewMetric(stat.Name, stat.Kind).Write(stat.Value, nil)
}

// nameFromEntry recovers the MetricName an entry was registered under. The
// bucket keys its map by MetricName.Key() (a one-way join), so the name is
// carried on the scoreboard's owning entry instead of being recomputed.
func nameFromEntry(entry *bucketEntry) MetricName {
	return entry.name
}
