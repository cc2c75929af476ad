package metrics

// Kind tags what a metric measures, which determines how its Scoreboard
// aggregates and which derived statistics the default stats function emits.
type Kind int

const (
	// Marker counts occurrences of an event; every write carries value 1.
	Marker Kind = iota
	// Counter is an additive metric (e.g. bytes transferred).
	Counter
	// Timer records durations, in microseconds.
	Timer
	// Gauge records sampled absolute values.
	Gauge
	// Level accumulates signed deltas; its running sum is the current level.
	Level
)

func (k Kind) String() string {
	switch k {
	case Marker:
		return "marker"
	case Counter:
		return "counter"
	case Timer:
		return "timer"
	case Gauge:
		return "gauge"
	case Level:
		return "level"
	default:
		return "unknown"
	}
}

// Value is an unsigned metric sample. Timers carry microseconds, counters
// carry arbitrary non-negative increments, gauges carry absolute samples and
// markers are always 1. Negative deltas are not representable; Level's
// signed accumulation is modeled by callers passing a two's-complement
// encoding (see LevelMetric.Add) that the scoreboard sums as unsigned.
type Value uint64

// MetricId deterministically identifies a metric: its Kind, its fully
// qualified MetricName and, when issued behind a Sample wrapper, the
// sampling rate in effect at creation (0 < Rate <= 1, 1 meaning unsampled).
// It is used as the cache key by CachedInput/CachedOutput and for
// structural-equality checks in tests.
type MetricId struct {
	Kind Kind
	Name MetricName
	Rate float64
}

func newMetricId(kind Kind, name MetricName) MetricId {
	return MetricId{Kind: kind, Name: name, Rate: 1}
}

// Key returns a string uniquely identifying (Kind, Name), ignoring Rate —
// two handles for the same metric at different sampling rates still name
// the same underlying scoreboard.
func (id MetricId) Key() string {
	var kindByte byte = byte('0' + id.Kind)
	return string(kindByte) + "\x1f" + id.Name.Key()
}
