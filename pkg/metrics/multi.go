package metrics

import "context"

// MultiInput holds an ordered list of InputScopes. NewMetric eagerly
// creates a metric on every sub-scope and returns a handle invoking each in
// list order; Flush invokes every sub-scope's Flush and returns the first
// error encountered, having attempted all of them (spec.md §4.6).
type MultiInput struct {
	scopes []InputScope
}

// NewMultiInput fans out to every scope given, in order.
func NewMultiInput(scopes ...InputScope) *MultiInput {
	return &MultiInput{scopes: append([]InputScope(nil), scopes...)}
}

func (m *MultiInput) NewMetric(name MetricName, kind Kind) InputMetric {
	handles := make([]InputMetric, len(m.scopes))
	for i, s := range m.scopes {
		handles[i] = s.NewMetric(name, kind)
	}
	id := newMetricId(kind, name)
	return newInputMetric(id, func(ctx context.Context, v Value, labels Labels) {
		for _, h := range handles {
			h.Write(ctx, v, labels)
		}
	})
}

func (m *MultiInput) Flush() error {
	var first error
	for _, s := range m.scopes {
		if err := s.Flush(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// MultiOutput is MultiInput's OutputScope counterpart.
type MultiOutput struct {
	scopes []OutputScope
}

// NewMultiOutput fans out to every scope given, in order.
func NewMultiOutput(scopes ...OutputScope) *MultiOutput {
	return &MultiOutput{scopes: append([]OutputScope(nil), scopes...)}
}

func (m *MultiOutput) NewMetric(name MetricName, kind Kind) OutputMetric {
	handles := make([]OutputMetric, len(m.scopes))
	for i, s := range m.scopes {
		handles[i] = s.NewMetric(name, kind)
	}
	id := newMetricId(kind, name)
	return newOutputMetric(id, func(v Value, labels Labels) error {
		var first error
		for _, h := range handles {
			if err := h.Write(v, labels); err != nil && first == nil {
				first = err
			}
		}
		return first
	})
}

func (m *MultiOutput) Flush() error {
	var first error
	for _, s := range m.scopes {
		if err := s.Flush(); err != nil && first == nil {
			first = err
		}
	}
	return first
}
