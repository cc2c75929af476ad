package metrics

import (
	"context"
	"sync/atomic"

	cclog "github.com/ClusterCockpit/cc-lib/v2/ccLogger"
)

// sendFailedCount is the process-wide health counter spec.md §7 requires:
// hot-path send failures never surface to the caller, but they do increment
// this so pipeline health is itself observable.
var sendFailedCount atomic.Uint64

// SendFailedCount returns the number of hot-path send failures observed so
// far (writes to a closed QueuedOutput, and OutputScope write errors seen
// by SyncInput).
func SendFailedCount() uint64 { return sendFailedCount.Load() }

var sendFailedName = NewMetricName("_internal", "send_failed")

func incrSendFailed(reason string) {
	sendFailedCount.Add(1)
	cclog.Debugf("metrics: send failed: %s", reason)
	if root := Root(); root != nil {
		root.NewMetric(sendFailedName, Marker).Write(context.Background(), 1, nil)
	}
}

func logFlushListenerError(err error) {
	cclog.Warnf("metrics: flush listener failed: %v", err)
}

func logWorkerPanic(r any) {
	cclog.Errorf("metrics: async queue worker panic recovered: %v", r)
}
