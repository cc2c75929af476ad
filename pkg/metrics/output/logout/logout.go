// Package logout renders metric writes as one formatted line per call
// through the teacher's legacy severity-leveled logger (pkg/log), the way
// an operator might want metrics interleaved with application logs during
// local development rather than shipped to a real time-series backend.
package logout

import (
	"strings"

	"github.com/ClusterCockpit/cc-metrics/pkg/log"
	"github.com/ClusterCockpit/cc-metrics/pkg/metrics"
)

// Level selects which of pkg/log's severity writers receives rendered
// metric lines.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelNote
)

// sink adapts pkg/log's Infof/Debugf/Notef family to metrics.LineWriter:
// Write is called once per formatted line (trailing newline stripped, since
// pkg/log appends its own), Flush is a no-op since pkg/log holds no buffer.
type sink struct {
	level Level
}

func (s sink) Write(p []byte) (int, error) {
	line := strings.TrimRight(string(p), "\n")
	if line == "" {
		return len(p), nil
	}
	switch s.level {
	case LevelDebug:
		log.Debugf("%s", line)
	case LevelNote:
		log.Notef("%s", line)
	default:
		log.Infof("%s", line)
	}
	return len(p), nil
}

func (sink) Flush() error { return nil }

// New returns a metrics.OutputScope that renders every write as one line
// through pkg/log at the given severity, using formatter (nil selects
// metrics.DefaultFormat).
func New(level Level, formatter metrics.LineFormatter) metrics.OutputScope {
	return metrics.NewDirectLineOutput(sink{level: level}, formatter)
}
