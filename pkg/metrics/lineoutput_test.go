package metrics_test

import (
	"bytes"
	"errors"
	"testing"

	"github.com/ClusterCockpit/cc-metrics/pkg/metrics"
)

type bufferSink struct {
	buf     bytes.Buffer
	flushed int
}

func (b *bufferSink) Write(p []byte) (int, error) {
	return b.buf.Write(p)
}

func (b *bufferSink) Flush() error {
	b.flushed++
	return nil
}

func TestDirectLineOutputWritesImmediately(t *testing.T) {
	sink := &bufferSink{}
	out := metrics.NewDirectLineOutput(sink, nil)
	h := out.NewMetric(metrics.NewMetricName("a"), metrics.Counter)
	if err := h.Write(1, nil); err != nil {
		t.Fatalf("write: %v", err)
	}
	if sink.buf.String() != "a 1\n" {
		t.Errorf("got %q, want immediate write of a 1", sink.buf.String())
	}
}

func TestBufferedLineOutputDefersUntilFlush(t *testing.T) {
	sink := &bufferSink{}
	out := metrics.NewBufferedLineOutput(sink, nil)
	h := out.NewMetric(metrics.NewMetricName("a"), metrics.Counter)
	if err := h.Write(1, nil); err != nil {
		t.Fatalf("write: %v", err)
	}
	if sink.buf.Len() != 0 {
		t.Errorf("expected nothing to reach the sink before Flush, got %q", sink.buf.String())
	}
	if err := out.Flush(); err != nil {
		t.Fatalf("flush: %v", err)
	}
	if sink.buf.String() != "a 1\n" {
		t.Errorf("got %q after flush, want a 1", sink.buf.String())
	}
	if sink.flushed != 1 {
		t.Errorf("sink.flushed = %d, want 1", sink.flushed)
	}
}

func TestWithFlushListenersRunsBeforeInnerFlush(t *testing.T) {
	sink := &bufferSink{}
	inner := metrics.NewBufferedLineOutput(sink, nil)

	var ran bool
	wrapped := metrics.WithFlushListeners(inner, func() error {
		ran = true
		return nil
	})

	h := wrapped.NewMetric(metrics.NewMetricName("a"), metrics.Counter)
	if err := h.Write(1, nil); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := wrapped.Flush(); err != nil {
		t.Fatalf("flush: %v", err)
	}
	if !ran {
		t.Error("flush listener did not run")
	}
	if sink.buf.String() != "a 1\n" {
		t.Errorf("got %q, want a 1", sink.buf.String())
	}
}

func TestWithFlushListenersSwallowsListenerError(t *testing.T) {
	sink := &bufferSink{}
	inner := metrics.NewBufferedLineOutput(sink, nil)
	wrapped := metrics.WithFlushListeners(inner, func() error {
		return errors.New("listener failed")
	})
	if err := wrapped.Flush(); err != nil {
		t.Errorf("Flush() = %v, want nil (listener failures are logged, not propagated)", err)
	}
}
