package logout_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/ClusterCockpit/cc-metrics/pkg/metrics"
	"github.com/ClusterCockpit/cc-metrics/pkg/metrics/output/logout"
	cclog "github.com/ClusterCockpit/cc-metrics/pkg/log"
	"github.com/stretchr/testify/require"
)

func TestNewWritesThroughDebugLogger(t *testing.T) {
	var buf bytes.Buffer
	orig := cclog.DebugLog.Writer()
	cclog.DebugLog.SetOutput(&buf)
	defer cclog.DebugLog.SetOutput(orig)

	out := logout.New(logout.LevelDebug, metrics.DefaultFormat)
	m := out.NewMetric(metrics.NewMetricName("app", "requests"), metrics.Counter)
	require.NoError(t, m.Write(42, nil))

	require.True(t, strings.Contains(buf.String(), "app.requests 42"))
}

func TestNewWritesThroughNoticeLogger(t *testing.T) {
	var buf bytes.Buffer
	orig := cclog.NoteLog.Writer()
	cclog.NoteLog.SetOutput(&buf)
	defer cclog.NoteLog.SetOutput(orig)

	out := logout.New(logout.LevelNote, metrics.DefaultFormat)
	m := out.NewMetric(metrics.NewMetricName("app", "requests"), metrics.Counter)
	require.NoError(t, m.Write(1, nil))

	require.True(t, strings.Contains(buf.String(), "app.requests 1"))
}
