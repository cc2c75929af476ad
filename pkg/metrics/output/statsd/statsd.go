// Package statsd implements a metrics.OutputScope speaking the StatsD UDP
// wire protocol ("bucket:value|type"). Dial binds the UDP socket eagerly
// and the sink never reconnects: StatsD writes are fire-and-forget, so a
// failed write is logged at debug level and dropped (a dropped packet is an
// accepted cost of the protocol, not an error this package tries to
// recover).
package statsd

import (
	"bytes"
	"fmt"
	"net"
	"strconv"
	"sync"

	cclog "github.com/ClusterCockpit/cc-lib/v2/ccLogger"
	"github.com/ClusterCockpit/cc-metrics/pkg/metrics"
)

// Sink is a UDP socket to a StatsD daemon.
type Sink struct {
	mu   sync.Mutex
	conn net.Conn
}

// Dial opens a UDP "connection" (no handshake, just destination binding) to
// addr ("host:port").
func Dial(addr string) (*Sink, error) {
	conn, err := net.Dial("udp", addr)
	if err != nil {
		return nil, fmt.Errorf("statsd: dial %s: %w", addr, err)
	}
	return &Sink{conn: conn}, nil
}

func (s *Sink) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n, err := s.conn.Write(p)
	if err != nil {
		cclog.Debugf("statsd: write dropped: %v", err)
	}
	return n, nil
}

// Flush is a no-op: every Write is already one complete UDP datagram.
func (s *Sink) Flush() error { return nil }

// Close releases the socket.
func (s *Sink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conn.Close()
}

type wireFormat struct{ Prefix string }

func statsdType(kind metrics.Kind) string {
	switch kind {
	case metrics.Marker:
		return "c"
	case metrics.Counter:
		return "c"
	case metrics.Timer:
		return "ms"
	case metrics.Gauge, metrics.Level:
		return "g"
	default:
		return "g"
	}
}

func (f wireFormat) Render(buf *bytes.Buffer, name metrics.MetricName, kind metrics.Kind, value metrics.Value, labels metrics.Labels) error {
	if f.Prefix != "" {
		buf.WriteString(f.Prefix)
		buf.WriteByte('.')
	}
	buf.WriteString(name.Join("."))
	buf.WriteByte(':')
	buf.WriteString(strconv.FormatUint(uint64(value), 10))
	buf.WriteByte('|')
	buf.WriteString(statsdType(kind))
	return nil
}

// New returns a metrics.OutputScope that sends every write as one UDP
// datagram to addr, plus the underlying Sink for explicit Close. prefix, if
// non-empty, is prepended to every bucket name.
func New(addr, prefix string) (metrics.OutputScope, *Sink, error) {
	sink, err := Dial(addr)
	if err != nil {
		return nil, nil, err
	}
	return metrics.NewDirectLineOutput(sink, wireFormat{Prefix: prefix}), sink, nil
}
