package worker

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPool_RunsJobs(t *testing.T) {
	pool := NewPool(context.Background(), Config{Workers: 3, QueueSize: 10})

	var n atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		require.NoError(t, pool.Submit(func(context.Context) {
			defer wg.Done()
			n.Add(1)
		}))
	}
	wg.Wait()

	require.NoError(t, pool.Shutdown(context.Background()))
	assert.Equal(t, int32(10), n.Load())
	assert.Equal(t, int64(10), pool.Stats().Completed)
}

func TestPool_SubmitDoesNotBlockWhenFull(t *testing.T) {
	pool := NewPool(context.Background(), Config{Workers: 1, QueueSize: 1})
	release := make(chan struct{})
	started := make(chan struct{})

	require.NoError(t, pool.Submit(func(context.Context) {
		close(started)
		<-release
	}))
	<-started
	require.NoError(t, pool.Submit(func(context.Context) {}))

	err := pool.Submit(func(context.Context) {})
	assert.True(t, errors.Is(err, ErrQueueFull))
	assert.Equal(t, int64(1), pool.Stats().Rejected)

	close(release)
	require.NoError(t, pool.Shutdown(context.Background()))
}

func TestPool_SubmitAfterShutdown(t *testing.T) {
	pool := NewPool(context.Background(), Config{Workers: 1})
	require.NoError(t, pool.Shutdown(context.Background()))

	assert.ErrorIs(t, pool.Submit(func(context.Context) {}), ErrStopped)
	assert.NoError(t, pool.Shutdown(context.Background()))
}

func TestPool_JobContextOutlivesBase(t *testing.T) {
	base, cancel := context.WithCancel(context.Background())
	pool := NewPool(base, Config{Workers: 1, QueueSize: 1})
	cancel()

	got := make(chan error, 1)
	require.NoError(t, pool.Submit(func(ctx context.Context) {
		got <- ctx.Err()
	}))

	assert.NoError(t, <-got)
	require.NoError(t, pool.Shutdown(context.Background()))
}

func TestPool_PanicDoesNotKillWorker(t *testing.T) {
	pool := NewPool(context.Background(), Config{Workers: 1, QueueSize: 2})
	done := make(chan struct{})

	require.NoError(t, pool.Submit(func(context.Context) { panic("boom") }))
	require.NoError(t, pool.Submit(func(context.Context) { close(done) }))

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("second job did not run")
	}
	require.NoError(t, pool.Shutdown(context.Background()))
}

func TestPool_ShutdownTimeoutCancelsJobs(t *testing.T) {
	pool := NewPool(context.Background(), Config{Workers: 1})
	started := make(chan struct{})
	cancelled := make(chan struct{})

	require.NoError(t, pool.Submit(func(ctx context.Context) {
		close(started)
		<-ctx.Done()
		close(cancelled)
	}))
	<-started

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, pool.Shutdown(ctx), context.DeadlineExceeded)

	select {
	case <-cancelled:
	case <-time.After(2 * time.Second):
		t.Fatal("job was not cancelled")
	}
}
