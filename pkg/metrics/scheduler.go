package metrics

import (
	"sync"
	"time"

	cclog "github.com/ClusterCockpit/cc-lib/v2/ccLogger"
	"github.com/go-co-op/gocron/v2"
)

// CancelFunc removes a previously scheduled task. It is safe to call more
// than once.
type CancelFunc func()

// Scheduler is the single process-wide timer the teacher's taskmanager
// package (internal/taskmanager/taskManager.go) builds around
// go-co-op/gocron: one background thread running a cadence of recurring
// tasks — for cc-metrics, overwhelmingly Flush calls. gocron's singleton
// mode with LimitModeReschedule gives us spec.md §4.7's bounded-drift
// requirement for free: if a task is still running when its next run comes
// due, that run is skipped and rescheduled rather than queued, so an
// overrun never turns into a catch-up burst.
type Scheduler struct {
	mu    sync.Mutex
	sched gocron.Scheduler
}

// NewScheduler starts a new scheduler goroutine.
func NewScheduler() (*Scheduler, error) {
	sched, err := gocron.NewScheduler()
	if err != nil {
		return nil, err
	}
	sched.Start()
	return &Scheduler{sched: sched}, nil
}

// FlushEvery registers target.Flush to run every period, catching and
// logging any error (scheduler tasks never propagate errors or unwind the
// scheduler goroutine). The returned CancelFunc removes the task.
func (s *Scheduler) FlushEvery(period time.Duration, target Flusher) (CancelFunc, error) {
	return s.every(period, func() {
		if err := target.Flush(); err != nil {
			cclog.Warnf("metrics: scheduled flush failed: %v", err)
		}
	})
}

// Every registers an arbitrary task to run every period, with the same
// overrun/error semantics as FlushEvery.
func (s *Scheduler) Every(period time.Duration, task func()) (CancelFunc, error) {
	return s.every(period, task)
}

func (s *Scheduler) every(period time.Duration, task func()) (CancelFunc, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	job, err := s.sched.NewJob(
		gocron.DurationJob(period),
		gocron.NewTask(func() {
			defer func() {
				if r := recover(); r != nil {
					cclog.Errorf("metrics: scheduled task panic recovered: %v", r)
				}
			}()
			task()
		}),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		return nil, err
	}

	id := job.ID()
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		_ = s.sched.RemoveJob(id)
	}, nil
}

// Shutdown stops the scheduler goroutine and waits for it to exit.
func (s *Scheduler) Shutdown() error {
	return s.sched.Shutdown()
}

var (
	defaultSchedulerOnce sync.Once
	defaultScheduler     *Scheduler
	defaultSchedulerErr  error
)

// DefaultScheduler returns the lazily-initialized process-wide scheduler
// (call-once semantics per spec.md §9's treatment of global mutable state).
func DefaultScheduler() (*Scheduler, error) {
	defaultSchedulerOnce.Do(func() {
		defaultScheduler, defaultSchedulerErr = NewScheduler()
	})
	return defaultScheduler, defaultSchedulerErr
}

// FlushEvery registers target.Flush on the process-wide default scheduler.
func FlushEvery(period time.Duration, target Flusher) (CancelFunc, error) {
	s, err := DefaultScheduler()
	if err != nil {
		return nil, err
	}
	return s.FlushEvery(period, target)
}
