package statsd_test

import (
	"net"
	"testing"
	"time"

	"github.com/ClusterCockpit/cc-metrics/pkg/metrics"
	"github.com/ClusterCockpit/cc-metrics/pkg/metrics/output/statsd"
	"github.com/stretchr/testify/require"
)

func TestWriteSendsStatsdDatagram(t *testing.T) {
	pc, err := net.ListenPacket("udp", "127.0.0.1:0")
	require.NoError(t, err)
	defer pc.Close()

	out, sink, err := statsd.New(pc.LocalAddr().String(), "prefix")
	require.NoError(t, err)
	defer sink.Close()

	m := out.NewMetric(metrics.NewMetricName("counter_a"), metrics.Counter)
	require.NoError(t, m.Write(123, nil))

	buf := make([]byte, 512)
	pc.SetReadDeadline(time.Now().Add(2 * time.Second))
	n, _, err := pc.ReadFrom(buf)
	require.NoError(t, err)
	require.Equal(t, "prefix.counter_a:123|c", string(buf[:n]))
}

func TestFlushIsNoop(t *testing.T) {
	pc, err := net.ListenPacket("udp", "127.0.0.1:0")
	require.NoError(t, err)
	defer pc.Close()

	out, sink, err := statsd.New(pc.LocalAddr().String(), "")
	require.NoError(t, err)
	defer sink.Close()

	require.NoError(t, out.Flush())
}
