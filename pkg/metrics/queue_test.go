package metrics_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/ClusterCockpit/cc-metrics/pkg/metrics"
)

// slowRecordingOutput records every write it receives, in arrival order, and
// sleeps delay before returning from each write — the sink S3 describes.
type slowRecordingOutput struct {
	delay time.Duration

	mu     sync.Mutex
	values []metrics.Value
}

func (s *slowRecordingOutput) NewMetric(name metrics.MetricName, kind metrics.Kind) metrics.OutputMetric {
	id := metrics.MetricId{Kind: kind, Name: name}
	return metrics.NewOutputMetric(id, func(v metrics.Value, _ metrics.Labels) error {
		time.Sleep(s.delay)
		s.mu.Lock()
		s.values = append(s.values, v)
		s.mu.Unlock()
		return nil
	})
}

func (s *slowRecordingOutput) Flush() error { return nil }

func (s *slowRecordingOutput) recorded() []metrics.Value {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]metrics.Value, len(s.values))
	copy(out, s.values)
	return out
}

// TestQueueBackPressure is scenario S3 from spec.md §8: a capacity-1 queue
// wrapping a sink whose writes sleep 10ms, fed 100 writes from one
// goroutine, exhibits back-pressure (wall time grows with sink latency) but
// delivers every write, in order.
func TestQueueBackPressure(t *testing.T) {
	sink := &slowRecordingOutput{delay: 10 * time.Millisecond}
	q := metrics.NewQueuedOutput(sink, 1)
	counter := metrics.NewCounter(q, metrics.NewMetricName("k"))

	start := time.Now()
	ctx := context.Background()
	for i := uint64(0); i < 100; i++ {
		counter.Add(ctx, i, nil)
	}
	q.Close()
	elapsed := time.Since(start)

	if elapsed < 900*time.Millisecond {
		t.Errorf("expected back-pressure to stretch wall time to roughly 1s, got %v", elapsed)
	}

	got := sink.recorded()
	if len(got) != 100 {
		t.Fatalf("sink observed %d writes, want 100", len(got))
	}
	for i, v := range got {
		if uint64(v) != uint64(i) {
			t.Fatalf("out-of-order delivery at index %d: got %d, want %d", i, v, i)
			break
		}
	}
}

// TestQueueFIFO is invariant 5 from spec.md §8, without the timing
// assertions of S3.
func TestQueueFIFO(t *testing.T) {
	sink := &slowRecordingOutput{}
	q := metrics.NewQueuedOutput(sink, 16)
	counter := metrics.NewCounter(q, metrics.NewMetricName("seq"))

	ctx := context.Background()
	for i := uint64(0); i < 500; i++ {
		counter.Add(ctx, i, nil)
	}
	q.Close()

	got := sink.recorded()
	if len(got) != 500 {
		t.Fatalf("delivered %d writes, want 500", len(got))
	}
	for i, v := range got {
		if uint64(v) != uint64(i) {
			t.Fatalf("delivery order broken at %d: got %d", i, v)
		}
	}
}

func TestQueueClosedDropsAndCountsFailure(t *testing.T) {
	sink := &slowRecordingOutput{}
	q := metrics.NewQueuedOutput(sink, 4)
	counter := metrics.NewCounter(q, metrics.NewMetricName("x"))
	q.Close()

	before := metrics.SendFailedCount()
	counter.Add(context.Background(), 1, nil)
	if metrics.SendFailedCount() <= before {
		t.Error("expected SendFailedCount to increment after writing to a closed queue")
	}
}

func TestQueueFlushDelegatesToInnerOnClose(t *testing.T) {
	var flushed int32
	out := metrics.OutputScope(flushCountingOutput{count: &flushed})
	q := metrics.NewQueuedOutput(out, 4)
	q.Close()
	if flushed == 0 {
		t.Error("expected inner Flush to be called at least once during Close")
	}
}

type flushCountingOutput struct {
	count *int32
}

func (f flushCountingOutput) NewMetric(name metrics.MetricName, kind metrics.Kind) metrics.OutputMetric {
	id := metrics.MetricId{Kind: kind, Name: name}
	return metrics.NewOutputMetric(id, func(metrics.Value, metrics.Labels) error { return nil })
}

func (f flushCountingOutput) Flush() error {
	*f.count++
	return nil
}
