package metrics

import "sync"

// Process-wide defaults for stats function and output target. Per spec.md
// §9, these are lazily-initialized singletons behind a reader-preferring
// lock; tests that need isolation should call SetDefaultStatsFn/
// SetDefaultOutput explicitly rather than relying on (or mutating) this
// global, or construct a Bucket with its own overrides via SetStatsFn/
// SetTarget, which always take priority.
var (
	defaultsMu      sync.RWMutex
	defaultStatsFn  func(RawStat) []Stat = AllStats
	defaultOutput   OutputScope
	defaultOutputOK sync.Once
)

// DefaultStatsFn returns the process-wide default stats function.
func DefaultStatsFn() func(RawStat) []Stat {
	defaultsMu.RLock()
	defer defaultsMu.RUnlock()
	return defaultStatsFn
}

// SetDefaultStatsFn replaces the process-wide default stats function.
func SetDefaultStatsFn(fn StatsFn) {
	defaultsMu.Lock()
	defer defaultsMu.Unlock()
	defaultStatsFn = fn
}

// DefaultOutput returns the process-wide default output target, lazily
// initialized to a discarding OutputScope the first time it is needed so a
// Bucket never flushes into a nil target.
func DefaultOutput() OutputScope {
	defaultOutputOK.Do(func() {
		defaultsMu.Lock()
		if defaultOutput == nil {
			defaultOutput = discardOutput{}
		}
		defaultsMu.Unlock()
	})
	defaultsMu.RLock()
	defer defaultsMu.RUnlock()
	return defaultOutput
}

// SetDefaultOutput replaces the process-wide default output target.
func SetDefaultOutput(out OutputScope) {
	defaultsMu.Lock()
	defer defaultsMu.Unlock()
	defaultOutput = out
}

// discardOutput is the zero-configuration default: metrics flushed with no
// explicit target go nowhere, cheaply.
type discardOutput struct{}

func (discardOutput) NewMetric(name MetricName, kind Kind) OutputMetric {
	return newOutputMetric(MetricId{Kind: kind, Name: name, Rate: 1}, func(Value, Labels) error { return nil })
}

func (discardOutput) Flush() error { return nil }
