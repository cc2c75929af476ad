package metrics

import (
	"context"
	"sync"

	cclog "github.com/ClusterCockpit/cc-lib/v2/ccLogger"
	"github.com/google/uuid"
)

// QueuedOutput wraps an OutputScope into an InputScope backed by a bounded
// channel and one dedicated worker goroutine, relocating formatting/I/O off
// the caller's goroutine while preserving per-metric write order (spec.md
// §4.4). The worker is the sole owner of the wrapped OutputScope — no other
// goroutine ever touches it, which is what makes it safe to carry a
// non-thread-safe sink across the channel (spec.md §9's "ownership
// transfer" re-architecture of the source's unsafe Send/Sync override).
type QueuedOutput struct {
	inner OutputScope
	ch    chan queueCmd
	done  chan struct{}

	closeOnce sync.Once
	mu        sync.RWMutex
	closed    bool

	// workerTag correlates log lines from this queue's worker goroutine,
	// the way a request ID correlates a trace.
	workerTag string
}

type queueCmdKind int

const (
	cmdWrite queueCmdKind = iota
	cmdFlush
)

type queueCmd struct {
	kind   queueCmdKind
	metric OutputMetric
	value  Value
	labels Labels
}

// NewQueuedOutput starts a worker goroutine draining a channel of capacity
// length and returns the InputScope fronting it. length == 0 selects a
// rendezvous channel: every write blocks until the worker consumes it.
func NewQueuedOutput(inner OutputScope, length int) *QueuedOutput {
	q := &QueuedOutput{
		inner:     inner,
		ch:        make(chan queueCmd, length),
		done:      make(chan struct{}),
		workerTag: uuid.NewString()[:8],
	}
	go q.worker()
	return q
}

// NewMetric implements InputScope. labels passed to the returned handle's
// Write are, together with context-local and process-global labels,
// snapshotted into the enqueued message at write time — not at delivery
// time — per spec.md §3's save_context.
func (q *QueuedOutput) NewMetric(name MetricName, kind Kind) InputMetric {
	out := q.inner.NewMetric(name, kind)
	return newInputMetric(out.ID(), func(ctx context.Context, v Value, perWrite Labels) {
		labels := resolveWriteLabels(ctx, nil, perWrite)
		q.enqueue(queueCmd{kind: cmdWrite, metric: out, value: v, labels: labels})
	})
}

// Flush enqueues a flush command and returns immediately; the worker runs
// the wrapped scope's Flush in enqueue order relative to prior writes.
// Close, not Flush, is how a caller waits for the queue to fully drain.
// Once the queue is closed (by Close or a worker panic) Flush returns
// ErrQueueClosed.
func (q *QueuedOutput) Flush() error {
	q.mu.RLock()
	closed := q.closed
	q.mu.RUnlock()
	if closed {
		return ErrQueueClosed
	}
	q.enqueue(queueCmd{kind: cmdFlush})
	return nil
}

// enqueue blocks when the channel is full — callers experience back-pressure
// rather than a silent drop, per spec.md §4.4's overflow policy. The read
// lock is held across the send itself so Close cannot close the channel
// underneath an in-flight sender (the RWMutex-guarded channel close idiom).
func (q *QueuedOutput) enqueue(cmd queueCmd) {
	q.mu.RLock()
	defer q.mu.RUnlock()
	if q.closed {
		incrSendFailed("queue closed")
		return
	}
	q.ch <- cmd
}

// Close drains remaining commands, flushes the wrapped scope once more and
// waits for the worker to exit. It is idempotent.
func (q *QueuedOutput) Close() {
	q.closeOnce.Do(func() {
		q.mu.Lock()
		q.closed = true
		close(q.ch)
		q.mu.Unlock()
	})
	<-q.done
}

func (q *QueuedOutput) worker() {
	defer close(q.done)
	defer func() {
		if r := recover(); r != nil {
			logWorkerPanic(r)
			q.mu.Lock()
			q.closed = true
			q.mu.Unlock()
		}
	}()

	for cmd := range q.ch {
		switch cmd.kind {
		case cmdWrite:
			if err := cmd.metric.Write(cmd.value, cmd.labels); err != nil {
				cclog.Debugf("metrics: queue[%s] delivery failed: %v", q.workerTag, err)
			}
		case cmdFlush:
			if err := q.inner.Flush(); err != nil {
				cclog.Warnf("metrics: queue[%s] flush failed: %v", q.workerTag, err)
			}
		}
	}
	if err := q.inner.Flush(); err != nil {
		cclog.Warnf("metrics: queue[%s] final flush failed: %v", q.workerTag, err)
	}
}
