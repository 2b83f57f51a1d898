package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestNewRejectsBadInput(t *testing.T) {
	job := func(context.Context) (int, error) { return 0, nil }

	_, err := New("sweep", "not a spec", job, 0, zap.NewNop())
	assert.Error(t, err)

	_, err = New("sweep", "0 0 3 * * *", nil, 0, zap.NewNop())
	assert.Error(t, err)

	s, err := New("sweep", "@every 1h", job, 0, zap.NewNop())
	require.NoError(t, err)
	assert.Equal(t, DefaultTimeout, s.timeout)
}

func TestRunOnceLogsOutcome(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	calls := 0
	s, err := New("sweep", "@every 1h", func(ctx context.Context) (int, error) {
		calls++
		_, hasDeadline := ctx.Deadline()
		assert.True(t, hasDeadline)
		if calls == 2 {
			return 1, errors.New("boom")
		}
		return 3, nil
	}, time.Second, zap.New(core))
	require.NoError(t, err)

	assert.True(t, s.RunOnce())
	assert.True(t, s.RunOnce())

	finished := logs.FilterMessage("job finished").All()
	require.Len(t, finished, 1)
	assert.Equal(t, int64(3), finished[0].ContextMap()["processed"])
	failed := logs.FilterMessage("job failed").All()
	require.Len(t, failed, 1)
	assert.Equal(t, "boom", failed[0].ContextMap()["error"])
}

func TestRunOnceSkipsOverlap(t *testing.T) {
	release := make(chan struct{})
	entered := make(chan struct{})
	s, err := New("sweep", "@every 1h", func(ctx context.Context) (int, error) {
		close(entered)
		<-release
		return 0, nil
	}, time.Second, zap.NewNop())
	require.NoError(t, err)

	done := make(chan bool)
	go func() { done <- s.RunOnce() }()
	<-entered
	assert.False(t, s.RunOnce())
	close(release)
	assert.True(t, <-done)
}

func TestScheduleFires(t *testing.T) {
	var runs atomic.Int32
	s, err := New("sweep", "* * * * * *", func(ctx context.Context) (int, error) {
		runs.Add(1)
		return 0, nil
	}, time.Second, zap.NewNop())
	require.NoError(t, err)

	s.Start()
	s.Start()
	assert.Eventually(t, func() bool { return runs.Load() > 0 }, 3*time.Second, 20*time.Millisecond)
	s.Stop()
	s.Stop()
}

func TestStopCancelsInFlightRun(t *testing.T) {
	entered := make(chan struct{})
	s, err := New("sweep", "@every 1h", func(ctx context.Context) (int, error) {
		close(entered)
		<-ctx.Done()
		return 0, ctx.Err()
	}, time.Minute, zap.NewNop())
	require.NoError(t, err)

	s.Start()
	done := make(chan struct{})
	go func() {
		s.RunOnce()
		close(done)
	}()
	<-entered
	s.Stop()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("run was not cancelled")
	}
}
