package metrics_test

import (
	"context"
	"errors"
	"testing"

	"github.com/ClusterCockpit/cc-metrics/pkg/metrics"
	"github.com/ClusterCockpit/cc-metrics/pkg/metrics/output/maps"
)

func TestProxyDropsWritesUntilTargetSet(t *testing.T) {
	p := metrics.NewProxy()
	counter := metrics.NewCounter(p, metrics.NewMetricName("k"))
	// No target yet: must not panic or block.
	counter.Add(context.Background(), 1, nil)

	out := maps.New()
	p.SetTarget(metrics.NewSyncInput(out))
	counter.Add(context.Background(), 1, nil)

	entry, ok := out.Last("k")
	if !ok || entry.Value != 1 {
		t.Errorf("got %+v, ok=%v, want exactly the write made after SetTarget", entry, ok)
	}
}

func TestProxyFlushErrorsWithNoTarget(t *testing.T) {
	p := metrics.NewProxy()
	if err := p.Flush(); !errors.Is(err, metrics.ErrNoTarget) {
		t.Errorf("Flush() = %v, want ErrNoTarget", err)
	}
}

func TestProxyChildInheritsParentTarget(t *testing.T) {
	parent := metrics.NewProxy()
	child := parent.NewChild()

	out := maps.New()
	parent.SetTarget(metrics.NewSyncInput(out))

	metrics.NewCounter(child, metrics.NewMetricName("inherited")).Add(context.Background(), 5, nil)
	if entry, ok := out.Last("inherited"); !ok || entry.Value != 5 {
		t.Errorf("child did not route through parent's target: %+v, ok=%v", entry, ok)
	}

	childOut := maps.New()
	child.SetTarget(metrics.NewSyncInput(childOut))
	metrics.NewCounter(child, metrics.NewMetricName("own")).Add(context.Background(), 9, nil)
	if entry, ok := childOut.Last("own"); !ok || entry.Value != 9 {
		t.Errorf("child's own target did not take priority: %+v, ok=%v", entry, ok)
	}
	if _, ok := out.Last("own"); ok {
		t.Error("write after child.SetTarget leaked to the parent's target")
	}
}
