package metrics

import "context"

// LabeledInput wraps an InputScope, attaching scope-local labels at
// priority tier (b) of spec.md §3's resolution order (below per-write,
// above context-local and global).
type LabeledInput struct {
	Inner  InputScope
	Labels Labels
}

// WithScopeLabels returns an InputScope attaching labels to every write.
func WithScopeLabels(inner InputScope, labels Labels) LabeledInput {
	return LabeledInput{Inner: inner, Labels: labels}
}

func (l LabeledInput) NewMetric(name MetricName, kind Kind) InputMetric {
	inner := l.Inner.NewMetric(name, kind)
	return newInputMetric(inner.ID(), func(ctx context.Context, v Value, perWrite Labels) {
		inner.Write(ctx, v, merge(l.Labels, perWrite))
	})
}

func (l LabeledInput) Flush() error { return l.Inner.Flush() }

// LabeledOutput is LabeledInput's OutputScope counterpart.
type LabeledOutput struct {
	Inner  OutputScope
	Labels Labels
}

// WithScopeLabelsOutput returns an OutputScope attaching labels to every
// write.
func WithScopeLabelsOutput(inner OutputScope, labels Labels) LabeledOutput {
	return LabeledOutput{Inner: inner, Labels: labels}
}

func (l LabeledOutput) NewMetric(name MetricName, kind Kind) OutputMetric {
	inner := l.Inner.NewMetric(name, kind)
	return newOutputMetric(inner.ID(), func(v Value, perWrite Labels) error {
		return inner.Write(v, merge(l.Labels, perWrite))
	})
}

func (l LabeledOutput) Flush() error { return l.Inner.Flush() }
