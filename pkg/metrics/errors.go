package metrics

import "errors"

// Sentinel errors giving concrete shape to spec.md §7's error taxonomy.
// Hot-path writes never return these to callers (they are logged and
// counted instead, via incrSendFailed); Flush callers do see them.
var (
	// ErrQueueClosed is returned by a QueuedOutput's Flush once the queue
	// is closed (by Close, or after its worker panicked).
	ErrQueueClosed = errors.New("metrics: async queue closed")
	// ErrLockPoisoned marks a Bucket whose flush panicked while holding its
	// lock. Every subsequent Flush of that bucket returns this error; writes
	// and NewMetric calls are still accepted.
	ErrLockPoisoned = errors.New("metrics: internal lock poisoned")
	// ErrNoTarget is returned by Proxy.Flush when no target has ever been
	// set (writes are silently dropped in that state; only Flush surfaces
	// the condition, and only to callers who ask).
	ErrNoTarget = errors.New("metrics: proxy has no target")
	// ErrFormat marks a failure in rendering a line template, e.g. a label
	// value containing bytes the formatter disallows.
	ErrFormat = errors.New("metrics: format error")
)
