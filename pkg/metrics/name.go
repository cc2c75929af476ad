package metrics

import "strings"

// MetricName is an ordered, non-empty sequence of path segments. Equality
// and hashing are segment-wise.
type MetricName []string

// NewMetricName builds a MetricName from already-split segments. Empty
// segments are dropped.
func NewMetricName(segments ...string) MetricName {
	n := make(MetricName, 0, len(segments))
	for _, s := range segments {
		if s != "" {
			n = append(n, s)
		}
	}
	return n
}

// ParseMetricName splits a user-supplied dotted name ("app.requests.count")
// into segments. Per spec, the result of parsing a non-empty user string is
// never an empty MetricName; a string that collapses to zero segments (only
// dots, or empty) falls back to a single "_" segment rather than producing
// an invalid, empty name.
func ParseMetricName(s string) MetricName {
	parts := strings.Split(s, ".")
	n := NewMetricName(parts...)
	if len(n) == 0 {
		return MetricName{"_"}
	}
	return n
}

// Append returns a new MetricName with seg (or more segments) appended.
func (n MetricName) Append(segs ...string) MetricName {
	out := make(MetricName, 0, len(n)+len(segs))
	out = append(out, n...)
	for _, s := range segs {
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}

// Prepend returns a new MetricName with seg (or more segments) prepended, in
// the order given.
func (n MetricName) Prepend(segs ...string) MetricName {
	out := make(MetricName, 0, len(n)+len(segs))
	for _, s := range segs {
		if s != "" {
			out = append(out, s)
		}
	}
	out = append(out, n...)
	return out
}

// Join concatenates the segments with sep.
func (n MetricName) Join(sep string) string {
	return strings.Join([]string(n), sep)
}

// Equal reports whether n and other have the same segments in the same order.
func (n MetricName) Equal(other MetricName) bool {
	if len(n) != len(other) {
		return false
	}
	for i := range n {
		if n[i] != other[i] {
			return false
		}
	}
	return true
}

// Key returns a string suitable for use as a map key, collision-free with
// respect to segment boundaries (joins on a control byte unlikely to appear
// in user-supplied names).
func (n MetricName) Key() string {
	return n.Join("\x1f")
}

// Clone returns an independent copy of n.
func (n MetricName) Clone() MetricName {
	out := make(MetricName, len(n))
	copy(out, n)
	return out
}
