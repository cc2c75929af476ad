package metrics

// Attributes bundles the uniformly-composable properties spec.md §4.3
// attaches to a scope wrapper: a name prefix, scope-local labels, a
// buffering hint, a sampling rate, an optional line formatter and a list of
// flush listeners. Attributes compose by concatenation for Prefix and
// override (most-recent-wins) for scalars; Labels merge with later values
// winning per key.
//
// Attributes itself is inert data — PrefixedInput/PrefixedOutput,
// LabeledInput/LabeledOutput, Sample, BufferedLineOutput and
// WithFlushListeners (each in its own file) are the sealed set of wrapper variants (per
// spec.md §9) that actually apply it to an InputScope/OutputScope.
type Attributes struct {
	Prefix         MetricName
	Labels         Labels
	Buffered       bool
	SampleRate     float64
	Formatter      LineFormatter
	FlushListeners []func() error
}

// DefaultAttributes returns a blank bundle: no prefix, no labels, unbuffered,
// unsampled (rate 1), default formatter, no listeners.
func DefaultAttributes() Attributes {
	return Attributes{SampleRate: 1, Formatter: DefaultFormat}
}

// runFlushListeners invokes every listener before a wrapper's own flush;
// failures are logged, not propagated, per spec.md §4.3.
func runFlushListeners(listeners []func() error) {
	for _, fn := range listeners {
		if fn == nil {
			continue
		}
		if err := fn(); err != nil {
			logFlushListenerError(err)
		}
	}
}
