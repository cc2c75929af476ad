package metrics_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/ClusterCockpit/cc-metrics/pkg/metrics"
)

type countingInput struct {
	created int
}

func (c *countingInput) NewMetric(name metrics.MetricName, kind metrics.Kind) metrics.InputMetric {
	c.created++
	id := metrics.MetricId{Kind: kind, Name: name, Rate: 1}
	return metrics.NewInputMetric(id, func(context.Context, metrics.Value, metrics.Labels) {})
}

func (c *countingInput) Flush() error { return nil }

// TestCacheHit is scenario S4 from spec.md §8.
func TestCacheHit(t *testing.T) {
	inner := &countingInput{}
	cached := metrics.NewCachedInput(inner, 8)

	name := metrics.NewMetricName("x")
	h1 := cached.NewMetric(name, metrics.Counter)
	h2 := cached.NewMetric(name, metrics.Counter)
	if h1.ID().Key() != h2.ID().Key() {
		t.Errorf("expected identical MetricId from repeated lookups, got %+v and %+v", h1.ID(), h2.ID())
	}
	if inner.created != 1 {
		t.Errorf("inner.created = %d, want 1 (second lookup should hit cache)", inner.created)
	}

	for i := 0; i < 8; i++ {
		cached.NewMetric(metrics.NewMetricName(fmt.Sprintf("distinct-%d", i)), metrics.Counter)
	}
	// The loop's last name (the ninth distinct name overall) has already
	// evicted the LRU entry "x" without failing; "one-more" evicts another,
	// and recreating "x" afterwards must not panic or error.
	cached.NewMetric(metrics.NewMetricName("one-more"), metrics.Counter)
	h3 := cached.NewMetric(name, metrics.Counter)
	if h3.ID().Kind != metrics.Counter {
		t.Errorf("recreating an evicted entry should still succeed, got %+v", h3.ID())
	}
}

func TestCacheOutputHit(t *testing.T) {
	out := &countingOutput{}
	cached := metrics.NewCachedOutput(out, 4)
	name := metrics.NewMetricName("y")
	cached.NewMetric(name, metrics.Gauge)
	cached.NewMetric(name, metrics.Gauge)
	if out.created != 1 {
		t.Errorf("created = %d, want 1", out.created)
	}
}

type countingOutput struct {
	created int
}

func (c *countingOutput) NewMetric(name metrics.MetricName, kind metrics.Kind) metrics.OutputMetric {
	c.created++
	id := metrics.MetricId{Kind: kind, Name: name, Rate: 1}
	return metrics.NewOutputMetric(id, func(metrics.Value, metrics.Labels) error { return nil })
}

func (c *countingOutput) Flush() error { return nil }
