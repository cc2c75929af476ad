package metrics

import (
	"time"

	"github.com/jonboulle/clockwork"
)

// defaultClock is the process-wide real clock. Scoreboard and Bucket accept
// an explicit clockwork.Clock so tests can advance time deterministically
// (spec.md §8's "advance the clock 3 seconds" scenarios) without sleeping;
// see clockwork.NewFakeClock in the test suite.
var defaultClock clockwork.Clock = clockwork.NewRealClock()

// nowFunc is used by the small convenience wrappers (TimerMetric.Time) that
// have no scope-supplied clock to inject.
func nowFunc() time.Time { return defaultClock.Now() }

func nowMicros(clock clockwork.Clock) uint64 {
	return uint64(clock.Now().UnixMicro())
}
