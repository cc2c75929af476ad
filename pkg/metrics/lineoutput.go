package metrics

import (
	"bytes"
	"sync"
)

// DirectLineOutput is an OutputScope that renders each write through a
// LineFormatter and writes it to a LineWriter immediately — the
// Buffered=false half of spec.md §4.3's Buffered attribute.
type DirectLineOutput struct {
	sink      LineWriter
	formatter LineFormatter
}

// NewDirectLineOutput creates an unbuffered text-line OutputScope. A nil
// formatter defaults to DefaultFormat.
func NewDirectLineOutput(sink LineWriter, formatter LineFormatter) *DirectLineOutput {
	if formatter == nil {
		formatter = DefaultFormat
	}
	return &DirectLineOutput{sink: sink, formatter: formatter}
}

func (d *DirectLineOutput) NewMetric(name MetricName, kind Kind) OutputMetric {
	id := newMetricId(kind, name)
	return newOutputMetric(id, func(v Value, labels Labels) error {
		var buf bytes.Buffer
		if err := d.formatter.Render(&buf, name, kind, v, labels); err != nil {
			return err
		}
		_, err := d.sink.Write(buf.Bytes())
		return err
	})
}

func (d *DirectLineOutput) Flush() error { return d.sink.Flush() }

// BufferedLineOutput is the Buffered=true half: writes accumulate formatted
// bytes in memory and reach the sink only on Flush (or Close).
type BufferedLineOutput struct {
	sink      LineWriter
	formatter LineFormatter

	mu  sync.Mutex
	buf bytes.Buffer
}

// NewBufferedLineOutput creates a buffered text-line OutputScope. A nil
// formatter defaults to DefaultFormat.
func NewBufferedLineOutput(sink LineWriter, formatter LineFormatter) *BufferedLineOutput {
	if formatter == nil {
		formatter = DefaultFormat
	}
	return &BufferedLineOutput{sink: sink, formatter: formatter}
}

func (b *BufferedLineOutput) NewMetric(name MetricName, kind Kind) OutputMetric {
	id := newMetricId(kind, name)
	return newOutputMetric(id, func(v Value, labels Labels) error {
		b.mu.Lock()
		defer b.mu.Unlock()
		return b.formatter.Render(&b.buf, name, kind, v, labels)
	})
}

// Flush writes the accumulated bytes to the sink and resets the buffer.
func (b *BufferedLineOutput) Flush() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.buf.Len() == 0 {
		return nil
	}
	if _, err := b.sink.Write(b.buf.Bytes()); err != nil {
		return err
	}
	b.buf.Reset()
	return b.sink.Flush()
}

// Close flushes any remaining bytes. Dropping the last handle to a buffered
// scope should trigger a final flush (spec.md §3's Ownership note); callers
// that construct a BufferedLineOutput directly call Close explicitly since
// Go has no destructors.
func (b *BufferedLineOutput) Close() error { return b.Flush() }

// WithFlushListeners wraps any OutputScope so its registered listeners run
// before the wrapped scope's own Flush; listener failures are logged, not
// propagated (spec.md §4.3).
func WithFlushListeners(inner OutputScope, listeners ...func() error) OutputScope {
	return flushListenersOutput{inner: inner, listeners: listeners}
}

type flushListenersOutput struct {
	inner     OutputScope
	listeners []func() error
}

func (f flushListenersOutput) NewMetric(name MetricName, kind Kind) OutputMetric {
	return f.inner.NewMetric(name, kind)
}

func (f flushListenersOutput) Flush() error {
	runFlushListeners(f.listeners)
	return f.inner.Flush()
}

// WithFlushListenersInput is WithFlushListeners' InputScope counterpart.
func WithFlushListenersInput(inner InputScope, listeners ...func() error) InputScope {
	return flushListenersInput{inner: inner, listeners: listeners}
}

type flushListenersInput struct {
	inner     InputScope
	listeners []func() error
}

func (f flushListenersInput) NewMetric(name MetricName, kind Kind) InputMetric {
	return f.inner.NewMetric(name, kind)
}

func (f flushListenersInput) Flush() error {
	runFlushListeners(f.listeners)
	return f.inner.Flush()
}
