package influxline_test

import (
	"bytes"
	"testing"
	"time"

	"github.com/ClusterCockpit/cc-metrics/pkg/metrics"
	"github.com/ClusterCockpit/cc-metrics/pkg/metrics/output/influxline"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMetricEncodesLineProtocol(t *testing.T) {
	var buf bytes.Buffer
	clock := clockwork.NewFakeClockAt(time.Unix(1700000000, 0))
	w := influxline.New(&buf, "", clock)

	m := w.NewMetric(metrics.NewMetricName("app", "requests"), metrics.Counter)
	require.NoError(t, m.Write(42, metrics.Labels{"host": "node01"}))

	line := buf.String()
	assert.Contains(t, line, "app.requests")
	assert.Contains(t, line, "kind=counter")
	assert.Contains(t, line, "host=node01")
	assert.Contains(t, line, "value=42")
	assert.Contains(t, line, "1700000000000000000")
}

func TestNewMetricAppliesMeasurementPrefix(t *testing.T) {
	var buf bytes.Buffer
	w := influxline.New(&buf, "cluster1", clockwork.NewRealClock())

	m := w.NewMetric(metrics.NewMetricName("cpu_load"), metrics.Gauge)
	require.NoError(t, m.Write(1, nil))

	assert.Contains(t, buf.String(), "cluster1.cpu_load")
}

func TestFlushIsNoop(t *testing.T) {
	var buf bytes.Buffer
	w := influxline.New(&buf, "", clockwork.NewRealClock())
	assert.NoError(t, w.Flush())
}
