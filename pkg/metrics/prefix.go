package metrics

// PrefixedInput wraps an InputScope, prepending Prefix to every metric name
// before delegating. Composition is by concatenation: wrapping a
// PrefixedInput{Prefix: "A"} in another PrefixedInput{Prefix: "B"} emits
// names "B.A.<user-name>" (spec.md §8's Prefix composition property).
type PrefixedInput struct {
	Inner  InputScope
	Prefix MetricName
}

// Prefix returns an InputScope that prepends prefix (dot-parsed) to every
// name NewMetric is called with.
func Prefix(inner InputScope, prefix string) PrefixedInput {
	return PrefixedInput{Inner: inner, Prefix: ParseMetricName(prefix)}
}

func (p PrefixedInput) NewMetric(name MetricName, kind Kind) InputMetric {
	// Directly nested PrefixedInputs are collapsed outermost-first, so the
	// outer wrapper's prefix leads the emitted name.
	full, inner := p.Prefix, p.Inner
	for {
		next, ok := inner.(PrefixedInput)
		if !ok {
			break
		}
		full, inner = full.Append(next.Prefix...), next.Inner
	}
	return inner.NewMetric(full.Append(name...), kind)
}

func (p PrefixedInput) Flush() error { return p.Inner.Flush() }

// PrefixedOutput is PrefixedInput's OutputScope counterpart.
type PrefixedOutput struct {
	Inner  OutputScope
	Prefix MetricName
}

// PrefixOutput returns an OutputScope that prepends prefix to every name.
func PrefixOutput(inner OutputScope, prefix string) PrefixedOutput {
	return PrefixedOutput{Inner: inner, Prefix: ParseMetricName(prefix)}
}

func (p PrefixedOutput) NewMetric(name MetricName, kind Kind) OutputMetric {
	// Directly nested PrefixedOutputs are collapsed outermost-first, so the
	// outer wrapper's prefix leads the emitted name.
	full, inner := p.Prefix, p.Inner
	for {
		next, ok := inner.(PrefixedOutput)
		if !ok {
			break
		}
		full, inner = full.Append(next.Prefix...), next.Inner
	}
	return inner.NewMetric(full.Append(name...), kind)
}

func (p PrefixedOutput) Flush() error { return p.Inner.Flush() }
