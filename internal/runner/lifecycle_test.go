package runner

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestLifecycle_RunsJobsToCompletion(t *testing.T) {
	lc := NewLifecycle(zaptest.NewLogger(t))

	var ran atomic.Int32
	for _, name := range []string{"a", "b", "c"} {
		lc.Add(name, JobFunc(func(ctx context.Context) error {
			ran.Add(1)
			return nil
		}))
	}

	require.NoError(t, lc.Run(context.Background()))
	assert.Equal(t, int32(3), ran.Load())
}

func TestLifecycle_FailureCancelsSiblings(t *testing.T) {
	lc := NewLifecycle(zaptest.NewLogger(t))
	boom := errors.New("boom")

	var cancelled atomic.Bool
	lc.Add("waiter", JobFunc(func(ctx context.Context) error {
		<-ctx.Done()
		cancelled.Store(true)
		return ctx.Err()
	}))
	lc.Add("failer", JobFunc(func(ctx context.Context) error {
		return boom
	}))

	err := lc.Run(context.Background())
	require.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "job failer")
	assert.True(t, cancelled.Load())
}

func TestLifecycle_ParentCancellationIsNotAnError(t *testing.T) {
	lc := NewLifecycle(zaptest.NewLogger(t))
	started := make(chan struct{})
	lc.Add("loop", JobFunc(func(ctx context.Context) error {
		close(started)
		<-ctx.Done()
		return ctx.Err()
	}))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- lc.Run(ctx) }()

	<-started
	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("lifecycle did not shut down in time")
	}
}

func TestLifecycle_CleanupsRunInReverseOrder(t *testing.T) {
	lc := NewLifecycle(zaptest.NewLogger(t))
	var (
		mu    sync.Mutex
		order []string
	)
	record := func(name string) func() {
		return func() {
			mu.Lock()
			defer mu.Unlock()
			order = append(order, name)
		}
	}
	lc.OnStop("db", record("db"))
	lc.OnStop("scripts", record("scripts"))
	lc.Add("noop", JobFunc(func(context.Context) error { return nil }))

	require.NoError(t, lc.Run(context.Background()))
	assert.Equal(t, []string{"scripts", "db"}, order)
}

func TestJobFunc(t *testing.T) {
	called := false
	job := JobFunc(func(ctx context.Context) error {
		called = true
		return nil
	})
	require.NoError(t, job.Run(context.Background()))
	assert.True(t, called)
}
