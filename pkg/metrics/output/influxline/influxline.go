// Package influxline renders flushed metrics as InfluxDB line protocol
// using the encoder from github.com/influxdata/line-protocol/v2, the same
// wire format the teacher's internal/memorystore/checkpoint.go channel
// (avro.LineProtocolMessages) is named after, though the teacher itself
// never encodes that format — it only carries values shaped like it
// internally before converting them to Avro. This package does the actual
// encoding the teacher's naming implies but never performs.
package influxline

import (
	"fmt"
	"io"
	"sort"
	"sync"

	"github.com/ClusterCockpit/cc-metrics/pkg/metrics"
	"github.com/influxdata/line-protocol/v2/lineprotocol"
	"github.com/jonboulle/clockwork"
)

// Writer renders every write as one line-protocol line tagged with the
// metric's labels, with "kind" carried as an extra tag and the metric's
// dotted name as the measurement.
type Writer struct {
	measurementPrefix string
	clock             clockwork.Clock

	mu  sync.Mutex
	out io.Writer
	enc lineprotocol.Encoder
}

// New wraps out (a file, a TCP connection to an InfluxDB line-protocol
// listener, ...). prefix, if non-empty, is prepended to every measurement
// name with a '.' separator, mirroring the statsd sink's own prefix
// convention.
func New(out io.Writer, prefix string, clock clockwork.Clock) *Writer {
	w := &Writer{measurementPrefix: prefix, clock: clock, out: out}
	w.enc.SetPrecision(lineprotocol.Nanosecond)
	return w
}

// NewMetric implements metrics.OutputScope.
func (w *Writer) NewMetric(name metrics.MetricName, kind metrics.Kind) metrics.OutputMetric {
	id := metrics.MetricId{Kind: kind, Name: name.Clone()}
	measurement := name.Join(".")
	if w.measurementPrefix != "" {
		measurement = w.measurementPrefix + "." + measurement
	}
	kindStr := kind.String()
	return metrics.NewOutputMetric(id, func(v metrics.Value, labels metrics.Labels) error {
		return w.encode(measurement, kindStr, v, labels)
	})
}

func (w *Writer) encode(measurement, kind string, v metrics.Value, labels metrics.Labels) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.enc.StartLine(measurement)
	w.enc.AddTag([]byte("kind"), []byte(kind))
	for _, k := range sortedKeys(labels) {
		w.enc.AddTag([]byte(k), []byte(labels[k]))
	}
	w.enc.AddField([]byte("value"), lineprotocol.MustNewValue(float64(v)))
	w.enc.EndLine(w.clock.Now())
	if err := w.enc.Err(); err != nil {
		w.enc.Reset()
		return fmt.Errorf("influxline: encode %s: %w", measurement, err)
	}

	buf := w.enc.Bytes()
	_, err := w.out.Write(buf)
	w.enc.Reset()
	if err != nil {
		return fmt.Errorf("influxline: write: %w", err)
	}
	return nil
}

func sortedKeys(labels metrics.Labels) []string {
	keys := make([]string, 0, len(labels))
	for k := range labels {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Flush is a no-op: every write is already fully encoded and sent to out.
func (w *Writer) Flush() error { return nil }
