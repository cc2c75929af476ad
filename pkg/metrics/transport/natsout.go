// Package transport adapts the teacher's pkg/nats client into a
// metrics.LineWriter, so a Bucket (or any OutputScope consumer) can publish
// rendered metric lines to a NATS subject instead of a byte stream. Grounded
// directly on pkg/nats/client.go: same connection-option wiring
// (UserInfo/credentials file, Disconnect/Reconnect/Error handlers), reused
// as a library rather than duplicated.
package transport

import (
	"bytes"
	"fmt"
	"sync"

	cclog "github.com/ClusterCockpit/cc-lib/v2/ccLogger"
	"github.com/ClusterCockpit/cc-metrics/pkg/metrics"
	natslib "github.com/ClusterCockpit/cc-metrics/pkg/nats"
)

// NatsSink publishes each rendered line as one NATS message on subject.
// Unlike the TCP/UDP sinks, NATS has no natural notion of "flush" beyond
// the client library's own internal buffer, which Flush drains.
type NatsSink struct {
	client  *natslib.Client
	subject string

	mu  sync.Mutex
	buf bytes.Buffer
}

// NewNatsSink wraps an already-connected *pkg/nats.Client for publishing
// rendered metric lines on subject.
func NewNatsSink(client *natslib.Client, subject string) *NatsSink {
	return &NatsSink{client: client, subject: subject}
}

// Write accumulates bytes and publishes once a full line (ending in '\n')
// has arrived, since metrics.BufferedLineOutput may coalesce several
// metrics into one Write call.
func (s *NatsSink) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.buf.Write(p)
	for {
		line, err := s.buf.ReadBytes('\n')
		if err != nil {
			// Incomplete line: push it back and wait for more.
			s.buf.Write(line)
			break
		}
		if pubErr := s.client.Publish(s.subject, line); pubErr != nil {
			cclog.Warnf("metrics: nats publish to %q failed: %v", s.subject, pubErr)
		}
	}
	return len(p), nil
}

// Flush publishes any partial trailing line and flushes the NATS
// connection's own send buffer.
func (s *NatsSink) Flush() error {
	s.mu.Lock()
	remaining := s.buf.Bytes()
	s.buf.Reset()
	s.mu.Unlock()

	if len(remaining) > 0 {
		if err := s.client.Publish(s.subject, remaining); err != nil {
			return fmt.Errorf("metrics: nats flush publish to %q: %w", s.subject, err)
		}
	}
	return s.client.Flush()
}

// New returns a metrics.OutputScope publishing rendered metric lines to
// subject over an already-connected NATS client. A nil formatter selects
// metrics.DefaultFormat.
func New(client *natslib.Client, subject string, formatter metrics.LineFormatter) metrics.OutputScope {
	return metrics.NewBufferedLineOutput(NewNatsSink(client, subject), formatter)
}
