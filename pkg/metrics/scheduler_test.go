package metrics_test

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/ClusterCockpit/cc-metrics/pkg/metrics"
	"github.com/ClusterCockpit/cc-metrics/pkg/metrics/output/maps"
)

// TestSchedulerBoundedDrift is scenario S6 from spec.md §8, scaled down by
// 10x (10ms period, 25ms overrunning task, observed over 1s) so the suite
// doesn't need a 10-second sleep to exercise the same ratio: a task that
// overruns its period must not trigger a catch-up burst once it finally
// keeps up, so the observed run count stays well below period-count.
func TestSchedulerBoundedDrift(t *testing.T) {
	sched, err := metrics.NewScheduler()
	if err != nil {
		t.Fatalf("NewScheduler: %v", err)
	}
	defer sched.Shutdown()

	var runs int32
	cancel, err := sched.Every(10*time.Millisecond, func() {
		atomic.AddInt32(&runs, 1)
		time.Sleep(25 * time.Millisecond)
	})
	if err != nil {
		t.Fatalf("Every: %v", err)
	}
	defer cancel()

	time.Sleep(1 * time.Second)
	cancel()

	got := atomic.LoadInt32(&runs)
	// 1s / 25ms task duration is an upper bound of ~40 runs; a naive
	// catch-up scheduler firing every 10ms regardless of overrun would
	// instead approach 100.
	if got < 10 || got > 60 {
		t.Errorf("runs = %d, want roughly bounded by task duration (10-60), not a catch-up burst toward ~100", got)
	}
}

func TestSchedulerFlushEveryCallsFlush(t *testing.T) {
	sched, err := metrics.NewScheduler()
	if err != nil {
		t.Fatalf("NewScheduler: %v", err)
	}
	defer sched.Shutdown()

	bucket := metrics.NewBucket()
	out := maps.New()
	bucket.SetTarget(out)
	cancel, err := sched.FlushEvery(20*time.Millisecond, bucket)
	if err != nil {
		t.Fatalf("FlushEvery: %v", err)
	}
	defer cancel()

	time.Sleep(100 * time.Millisecond)
	if out.FlushCount() == 0 {
		t.Error("expected FlushEvery to have flushed the bucket's target at least once")
	}
}

func TestDefaultSchedulerIsSingleton(t *testing.T) {
	a, err := metrics.DefaultScheduler()
	if err != nil {
		t.Fatalf("DefaultScheduler: %v", err)
	}
	b, err := metrics.DefaultScheduler()
	if err != nil {
		t.Fatalf("DefaultScheduler: %v", err)
	}
	if a != b {
		t.Error("DefaultScheduler should return the same instance across calls")
	}
}
