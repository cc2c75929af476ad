package metrics

import "context"

// SyncInput adapts an OutputScope into an InputScope on the caller's own
// goroutine: no queueing, no dedicated worker. It is the synchronous
// counterpart to QueuedOutput, useful when an OutputScope's sink is already
// cheap and thread-safe (e.g. the in-memory maps output used by tests).
//
// SyncInput is the boundary where context-local and process-global labels
// are folded into the plain Labels an OutputScope understands — the same
// resolution QueuedOutput performs at enqueue time, just without the
// channel hop.
type SyncInput struct {
	Inner OutputScope
}

// NewSyncInput wraps an OutputScope for direct, synchronous use as an
// InputScope.
func NewSyncInput(inner OutputScope) SyncInput {
	return SyncInput{Inner: inner}
}

func (s SyncInput) NewMetric(name MetricName, kind Kind) InputMetric {
	out := s.Inner.NewMetric(name, kind)
	return newInputMetric(out.ID(), func(ctx context.Context, v Value, perWrite Labels) {
		labels := resolveWriteLabels(ctx, nil, perWrite)
		if err := out.Write(v, labels); err != nil {
			incrSendFailed("sync output write: " + err.Error())
		}
	})
}

func (s SyncInput) Flush() error { return s.Inner.Flush() }
