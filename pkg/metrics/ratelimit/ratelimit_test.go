package ratelimit_test

import (
	"context"
	"testing"
	"time"

	"github.com/ClusterCockpit/cc-metrics/pkg/metrics/ratelimit"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingFlusher struct{ n int }

func (c *countingFlusher) Flush() error {
	c.n++
	return nil
}

func TestFlushAllowsWithinBurst(t *testing.T) {
	inner := &countingFlusher{}
	l := ratelimit.New(inner, 1, 2)

	require.NoError(t, l.Flush())
	require.NoError(t, l.Flush())
	assert.Equal(t, 2, inner.n)
}

func TestFlushRejectsOverBurst(t *testing.T) {
	inner := &countingFlusher{}
	l := ratelimit.New(inner, 1, 1)

	require.NoError(t, l.Flush())
	err := l.Flush()
	assert.Error(t, err)
	assert.Equal(t, 1, inner.n)
}

func TestWaitBlocksUntilAdmitted(t *testing.T) {
	inner := &countingFlusher{}
	l := ratelimit.New(inner, 50, 1)

	require.NoError(t, l.Flush())

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, l.Wait(ctx))
	assert.Equal(t, 2, inner.n)
}

func TestWaitRespectsContextCancellation(t *testing.T) {
	inner := &countingFlusher{}
	l := ratelimit.New(inner, 1, 1)
	require.NoError(t, l.Flush())

	ctx, cancel := context.WithTimeout(context.Background(), time.Millisecond)
	defer cancel()
	err := l.Wait(ctx)
	assert.Error(t, err)
}
