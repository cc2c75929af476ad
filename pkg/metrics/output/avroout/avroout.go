// Package avroout checkpoints flushed metrics to Avro Object Container
// Format (OCF) files, one per flush, the way the teacher's
// internal/memorystore/avroCheckpoint.go periodically dumps its in-memory
// tree to disk. Adapted from a fixed, code-generated checkpoint schema (one
// field per metric name, keyed by timestamp) to a generic per-record schema
// (name, kind, value, labels, timestamp) since this package has no
// equivalent of the teacher's static metric catalog to generate a schema
// from ahead of time.
package avroout

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/ClusterCockpit/cc-metrics/pkg/metrics"
	"github.com/jonboulle/clockwork"
	"github.com/linkedin/goavro/v2"
)

const recordSchema = `{
	"type": "record",
	"name": "MetricRecord",
	"fields": [
		{"name": "name", "type": "string"},
		{"name": "kind", "type": "string"},
		{"name": "value", "type": "double"},
		{"name": "timestamp", "type": "long"},
		{"name": "labels", "type": {"type": "map", "values": "string"}}
	]
}`

// Writer accumulates written metrics in memory and checkpoints them to a
// new timestamped .avro file under dir on every Flush, mirroring the
// teacher's one-file-per-checkpoint-interval layout.
type Writer struct {
	dir   string
	codec *goavro.Codec
	clock clockwork.Clock

	mu      sync.Mutex
	records []map[string]any
}

// New builds a Writer checkpointing into dir, which must already exist.
// clock supplies the timestamp written into both records and file names;
// pass clockwork.NewRealClock() in production and a fake clock in tests.
func New(dir string, clock clockwork.Clock) (*Writer, error) {
	codec, err := goavro.NewCodec(recordSchema)
	if err != nil {
		return nil, fmt.Errorf("avroout: build codec: %w", err)
	}
	return &Writer{dir: dir, codec: codec, clock: clock}, nil
}

// NewMetric implements metrics.OutputScope.
func (w *Writer) NewMetric(name metrics.MetricName, kind metrics.Kind) metrics.OutputMetric {
	id := metrics.MetricId{Kind: kind, Name: name.Clone()}
	dotted := name.Join(".")
	kindStr := kind.String()
	return metrics.NewOutputMetric(id, func(v metrics.Value, labels metrics.Labels) error {
		labelMap := make(map[string]any, len(labels))
		for k, val := range labels {
			labelMap[k] = val
		}
		w.mu.Lock()
		w.records = append(w.records, map[string]any{
			"name":      dotted,
			"kind":      kindStr,
			"value":     float64(v),
			"timestamp": w.clock.Now().Unix(),
			"labels":    labelMap,
		})
		w.mu.Unlock()
		return nil
	})
}

// Flush appends every record written since the last Flush to a new OCF
// file named after the current timestamp, then clears the in-memory
// buffer. An empty buffer is a no-op, same as the teacher's
// ErrNoNewArchiveData short-circuit.
func (w *Writer) Flush() error {
	w.mu.Lock()
	records := w.records
	w.records = nil
	w.mu.Unlock()

	if len(records) == 0 {
		return nil
	}

	path := filepath.Join(w.dir, fmt.Sprintf("checkpoint_%d.avro", w.clock.Now().Unix()))
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return fmt.Errorf("avroout: open %s: %w", path, err)
	}
	defer f.Close()

	bw := bufio.NewWriter(f)
	ocfWriter, err := goavro.NewOCFWriter(goavro.OCFConfig{
		W:               bw,
		Codec:           w.codec,
		CompressionName: goavro.CompressionDeflateLabel,
	})
	if err != nil {
		return fmt.Errorf("avroout: new OCF writer: %w", err)
	}
	if err := ocfWriter.Append(records); err != nil {
		return fmt.Errorf("avroout: append %d records: %w", len(records), err)
	}
	return bw.Flush()
}
