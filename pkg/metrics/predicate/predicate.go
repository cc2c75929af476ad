// Package predicate filters metric writes through an expr-lang expression,
// the same compile-once/run-per-record pattern the teacher's
// internal/tagger/classifyJob.go uses to classify jobs against
// user-supplied rules.
package predicate

import (
	"fmt"

	"github.com/ClusterCockpit/cc-metrics/pkg/metrics"
	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
)

// Env is the evaluation environment exposed to a predicate expression: the
// metric's dotted name, its Kind as a lowercase string, its Value and its
// Labels, e.g. `kind == "counter" && value > 100` or
// `labels["host"] == "node01"`.
type Env struct {
	Name   string            `expr:"name"`
	Kind   string            `expr:"kind"`
	Value  float64           `expr:"value"`
	Labels map[string]string `expr:"labels"`
}

// Predicate is a compiled boolean expression over Env.
type Predicate struct {
	program *vm.Program
}

// Compile parses and type-checks expr, requiring it evaluate to a bool.
func Compile(exprSrc string) (*Predicate, error) {
	program, err := expr.Compile(exprSrc, expr.Env(Env{}), expr.AsBool())
	if err != nil {
		return nil, fmt.Errorf("predicate: compile %q: %w", exprSrc, err)
	}
	return &Predicate{program: program}, nil
}

// Match evaluates the predicate against one write.
func (p *Predicate) Match(name metrics.MetricName, kind metrics.Kind, value metrics.Value, labels metrics.Labels) (bool, error) {
	out, err := expr.Run(p.program, Env{
		Name:   name.Join("."),
		Kind:   kind.String(),
		Value:  float64(value),
		Labels: labels,
	})
	if err != nil {
		return false, fmt.Errorf("predicate: run: %w", err)
	}
	match, _ := out.(bool)
	return match, nil
}

// FilteredOutput wraps an OutputScope so only writes matching Pred reach
// Inner; everything else is silently dropped, the same silent-drop-on-
// mismatch behavior spec.md applies to a Proxy with no target.
type FilteredOutput struct {
	Inner OutputScope
	Pred  *Predicate
}

// OutputScope is a local alias to avoid importing metrics twice in the
// field type above while keeping this file's exported surface readable.
type OutputScope = metrics.OutputScope

// Filter wraps inner so only writes matching pred are forwarded.
func Filter(inner OutputScope, pred *Predicate) FilteredOutput {
	return FilteredOutput{Inner: inner, Pred: pred}
}

func (f FilteredOutput) NewMetric(name metrics.MetricName, kind metrics.Kind) metrics.OutputMetric {
	inner := f.Inner.NewMetric(name, kind)
	id := inner.ID()
	return metrics.NewOutputMetric(id, func(v metrics.Value, labels metrics.Labels) error {
		ok, err := f.Pred.Match(name, kind, v, labels)
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}
		return inner.Write(v, labels)
	})
}

func (f FilteredOutput) Flush() error { return f.Inner.Flush() }
