// Package maps implements a metrics.OutputScope backed by a plain Go map,
// the in-memory sink the core test suite uses to assert on flushed values
// without standing up a real transport.
package maps

import (
	"sync"

	"github.com/ClusterCockpit/cc-metrics/pkg/metrics"
)

// Entry is one recorded write, captured with the labels it carried.
type Entry struct {
	Kind   metrics.Kind
	Value  metrics.Value
	Labels metrics.Labels
}

// Output records every write under its joined dotted name. It is safe for
// concurrent use; Values returns a copy so callers can inspect results
// after a Flush without racing further writes. Flush only counts calls (see
// FlushCount): Output records synchronously at write time, there is nothing
// to drain.
type Output struct {
	mu      sync.Mutex
	entries map[string][]Entry
	flushes int
}

// New creates an empty map-backed OutputScope.
func New() *Output {
	return &Output{entries: make(map[string][]Entry)}
}

func (o *Output) NewMetric(name metrics.MetricName, kind metrics.Kind) metrics.OutputMetric {
	key := name.Join(".")
	id := metrics.MetricId{Kind: kind, Name: name.Clone()}
	return metrics.NewOutputMetric(id, func(v metrics.Value, labels metrics.Labels) error {
		o.mu.Lock()
		defer o.mu.Unlock()
		o.entries[key] = append(o.entries[key], Entry{Kind: kind, Value: v, Labels: labels.Clone()})
		return nil
	})
}

// Flush counts the call for FlushCount and otherwise does nothing.
func (o *Output) Flush() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.flushes++
	return nil
}

// FlushCount reports how many times Flush has been called.
func (o *Output) FlushCount() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.flushes
}

// Values returns every recorded value for name, in write order.
func (o *Output) Values(name string) []Entry {
	o.mu.Lock()
	defer o.mu.Unlock()
	out := make([]Entry, len(o.entries[name]))
	copy(out, o.entries[name])
	return out
}

// Last returns the most recently recorded value for name, and whether any
// write was recorded at all.
func (o *Output) Last(name string) (Entry, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	es := o.entries[name]
	if len(es) == 0 {
		return Entry{}, false
	}
	return es[len(es)-1], true
}

// Names returns every metric name that received at least one write.
func (o *Output) Names() []string {
	o.mu.Lock()
	defer o.mu.Unlock()
	out := make([]string, 0, len(o.entries))
	for k := range o.entries {
		out = append(out, k)
	}
	return out
}

// Reset clears all recorded entries and the flush count.
func (o *Output) Reset() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.entries = make(map[string][]Entry)
	o.flushes = 0
}
