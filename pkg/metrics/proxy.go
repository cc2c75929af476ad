package metrics

import (
	"context"
	"sync"
)

// Proxy is an InputScope that never records itself: it forwards to a target
// InputScope that may be set later via SetTarget, on the proxy itself or on
// an ancestor it was created from with NewChild. Handles issued before a
// target exists remain valid and begin routing the moment one is installed;
// writes made while no target is set anywhere in the chain are silently
// dropped — the proxy never blocks and never buffers.
type Proxy struct {
	mu     sync.RWMutex
	target InputScope
	parent *Proxy
}

// NewProxy creates a root proxy with no parent and no target.
func NewProxy() *Proxy {
	return &Proxy{}
}

// NewChild creates a proxy that inherits p's target (or p's own ancestor's)
// until it gets one of its own via SetTarget.
func (p *Proxy) NewChild() *Proxy {
	return &Proxy{parent: p}
}

// SetTarget installs (or replaces) the InputScope this proxy forwards to.
// Outstanding handles see the new target on their next write.
func (p *Proxy) SetTarget(target InputScope) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.target = target
}

// Target returns the InputScope currently in effect for p, resolving
// through ancestors, or nil if none has ever been set.
func (p *Proxy) Target() InputScope {
	p.mu.RLock()
	target, parent := p.target, p.parent
	p.mu.RUnlock()
	if target != nil {
		return target
	}
	if parent != nil {
		return parent.Target()
	}
	return nil
}

// NewMetric implements InputScope. The returned handle resolves the live
// target on every write, so it is valid to create handles before SetTarget
// is ever called.
func (p *Proxy) NewMetric(name MetricName, kind Kind) InputMetric {
	id := newMetricId(kind, name)
	return newInputMetric(id, func(ctx context.Context, v Value, labels Labels) {
		target := p.Target()
		if target == nil {
			return
		}
		target.NewMetric(name, kind).Write(ctx, v, labels)
	})
}

// Flush flushes the current target, if any. ErrNoTarget is returned when
// nothing has ever been installed in this proxy's chain — the only place
// spec.md §4.8 asks the "no target" state to be surfaced, since writes
// themselves drop silently.
func (p *Proxy) Flush() error {
	target := p.Target()
	if target == nil {
		return ErrNoTarget
	}
	return target.Flush()
}

var rootProxy = NewProxy()

// Root returns the process-wide root proxy: applications may record
// metrics against Root() before main ever configures a backend, and every
// handle begins routing once SetTarget is called.
func Root() *Proxy {
	return rootProxy
}
