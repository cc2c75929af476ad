// Package graphite implements a metrics.LineWriter over a TCP connection
// speaking Graphite's plaintext protocol ("path value timestamp\n"), the
// carbon-cache wire format. Grounded on the teacher's pkg/nats client for
// the single-writer/reconnect-on-error shape, adapted from a pub/sub
// connection to a plain streaming TCP sink.
package graphite

import (
	"bufio"
	"bytes"
	"fmt"
	"net"
	"strconv"
	"sync"
	"time"

	cclog "github.com/ClusterCockpit/cc-lib/v2/ccLogger"
	"github.com/ClusterCockpit/cc-metrics/pkg/metrics"
	"github.com/jonboulle/clockwork"
)

// Sink dials addr lazily on first Write and redials on any I/O error,
// matching the teacher's NATS client's reconnect-on-disconnect behavior
// (pkg/nats/client.go's DisconnectErrHandler/ReconnectHandler) adapted to a
// synchronous dial-on-demand model since carbon's plaintext protocol has no
// connection handshake to resume.
type Sink struct {
	addr string

	mu   sync.Mutex
	conn net.Conn
	w    *bufio.Writer
}

// Dial returns a Sink that lazily connects to addr ("host:port") on first
// write.
func Dial(addr string) *Sink {
	return &Sink{addr: addr}
}

func (s *Sink) ensureConn() error {
	if s.conn != nil {
		return nil
	}
	conn, err := net.DialTimeout("tcp", s.addr, 5*time.Second)
	if err != nil {
		return fmt.Errorf("graphite: dial %s: %w", s.addr, err)
	}
	s.conn = conn
	s.w = bufio.NewWriter(conn)
	cclog.Infof("graphite: connected to %s", s.addr)
	return nil
}

func (s *Sink) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ensureConn(); err != nil {
		return 0, err
	}
	n, err := s.w.Write(p)
	if err != nil {
		cclog.Warnf("graphite: write to %s failed, will redial: %v", s.addr, err)
		s.close()
	}
	return n, err
}

func (s *Sink) Flush() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.w == nil {
		return nil
	}
	if err := s.w.Flush(); err != nil {
		cclog.Warnf("graphite: flush to %s failed, will redial: %v", s.addr, err)
		s.close()
		return err
	}
	return nil
}

func (s *Sink) close() {
	if s.conn != nil {
		s.conn.Close()
	}
	s.conn, s.w = nil, nil
}

// Close disconnects. Safe to call even if never connected.
func (s *Sink) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.close()
}

// carbonFormat renders the carbon plaintext line directly rather than
// through metrics.Template, since the timestamp field needs a live clock
// rather than a per-write op the generic template model doesn't have.
type carbonFormat struct {
	clock clockwork.Clock
}

func (f carbonFormat) Render(buf *bytes.Buffer, name metrics.MetricName, kind metrics.Kind, value metrics.Value, labels metrics.Labels) error {
	buf.WriteString(name.Join("."))
	buf.WriteByte(' ')
	buf.WriteString(strconv.FormatUint(uint64(value), 10))
	buf.WriteByte(' ')
	buf.WriteString(strconv.FormatInt(f.clock.Now().Unix(), 10))
	buf.WriteByte('\n')
	return nil
}

// New returns a metrics.OutputScope publishing to a carbon-cache plaintext
// listener at addr, plus the underlying Sink for explicit Close. clock is
// optional (nil uses the real clock); tests can inject a
// clockwork.FakeClock for deterministic timestamps.
func New(addr string, clock clockwork.Clock) (metrics.OutputScope, *Sink) {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	sink := Dial(addr)
	return metrics.NewBufferedLineOutput(sink, carbonFormat{clock: clock}), sink
}
