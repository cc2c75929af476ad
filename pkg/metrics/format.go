package metrics

import (
	"bytes"
	"strconv"
)

// LineWriter is the transport boundary spec.md §6 names: "any blocking byte
// sink" writing already-formatted lines and flushing on demand. Concrete
// transports (TCP/UDP streams, NATS publish, stdout) live outside this
// package and need only satisfy this interface.
type LineWriter interface {
	Write(p []byte) (int, error)
	Flush() error
}

// LineFormatter renders one metric write as bytes appended to buf. A
// renderCtx carries the value being rendered and a label lookup closure;
// this is the text-line format model spec.md §6 describes (a sequence of
// ops compiled from (name, kind) to a template).
type LineFormatter interface {
	Render(buf *bytes.Buffer, name MetricName, kind Kind, value Value, labels Labels) error
}

type renderCtx struct {
	name          MetricName
	kind          Kind
	value         Value
	lookup        func(key string) (string, bool)
	curLabelKey   string
	curLabelValue string
}

// LineOp is one operation in a compiled Template.
type LineOp interface {
	apply(buf *bytes.Buffer, c *renderCtx)
}

// Literal emits fixed bytes.
type Literal []byte

func (o Literal) apply(buf *bytes.Buffer, _ *renderCtx) { buf.Write(o) }

// NameAsText emits the metric name, segments joined by Sep.
type NameAsText struct{ Sep string }

func (o NameAsText) apply(buf *bytes.Buffer, c *renderCtx) {
	sep := o.Sep
	if sep == "" {
		sep = "."
	}
	buf.WriteString(c.name.Join(sep))
}

// ValueAsText emits the metric value as a base-10 integer. Level values are
// signed deltas encoded two's-complement into Value (see LevelMetric.Add);
// every other kind is non-negative and printed unsigned.
type ValueAsText struct{}

func (ValueAsText) apply(buf *bytes.Buffer, c *renderCtx) {
	if c.kind == Level {
		buf.WriteString(strconv.FormatInt(levelSigned(uint64(c.value)), 10))
		return
	}
	buf.WriteString(strconv.FormatUint(uint64(c.value), 10))
}

// NewLine emits a single '\n'.
type NewLine struct{}

func (NewLine) apply(buf *bytes.Buffer, _ *renderCtx) { buf.WriteByte('\n') }

// LabelExists renders Sub only when Key is present in the write's labels; a
// missing key elides the whole sub-template, no output at all.
type LabelExists struct {
	Key string
	Sub []LineOp
}

func (o LabelExists) apply(buf *bytes.Buffer, c *renderCtx) {
	val, ok := c.lookup(o.Key)
	if !ok {
		return
	}
	sub := *c
	sub.curLabelKey = o.Key
	sub.curLabelValue = val
	for _, op := range o.Sub {
		op.apply(buf, &sub)
	}
}

// LabelKey emits the key of the LabelExists block currently rendering; only
// meaningful inside a LabelExists sub-template.
type LabelKey struct{}

func (LabelKey) apply(buf *bytes.Buffer, c *renderCtx) { buf.WriteString(c.curLabelKey) }

// LabelValue emits the value of the LabelExists block currently rendering.
type LabelValue struct{}

func (LabelValue) apply(buf *bytes.Buffer, c *renderCtx) { buf.WriteString(c.curLabelValue) }

// Template is a LineFormatter compiled from a fixed sequence of LineOp.
type Template struct {
	Ops []LineOp
}

func (t Template) Render(buf *bytes.Buffer, name MetricName, kind Kind, value Value, labels Labels) error {
	ctx := renderCtx{
		name:  name,
		kind:  kind,
		value: value,
		lookup: func(key string) (string, bool) {
			v, ok := labels[key]
			return v, ok
		},
	}
	for _, op := range t.Ops {
		op.apply(buf, &ctx)
	}
	return nil
}

// DefaultFormat is the simple "<joined-name> <value>\n" layout spec.md §6
// names as the default.
var DefaultFormat LineFormatter = Template{Ops: []LineOp{
	NameAsText{Sep: "."},
	Literal(" "),
	ValueAsText{},
	NewLine{},
}}
