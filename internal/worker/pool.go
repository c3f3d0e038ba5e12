// Package worker runs report jobs on a fixed set of goroutines. Submitting
// never waits for the job: the submitter cannot observe its outcome.
package worker

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"crosstab/pkg/logger"
)

var (
	// ErrQueueFull is returned when the queue cannot accept more jobs.
	ErrQueueFull = errors.New("worker queue is full")

	// ErrStopped is returned after Shutdown.
	ErrStopped = errors.New("worker pool is stopped")
)

// Job is one unit of work. ctx belongs to the pool, not to the submitter.
type Job func(ctx context.Context)

// Config configures the pool.
type Config struct {
	Workers   int
	QueueSize int
}

// Pool is a fixed-size worker pool over a buffered queue.
type Pool struct {
	queue  chan Job
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu      sync.RWMutex
	stopped bool

	inFlight  atomic.Int64
	completed atomic.Int64
	rejected  atomic.Int64
}

// NewPool starts cfg.Workers goroutines. base carries the logger and is
// cancelled only when Shutdown gives up waiting.
func NewPool(base context.Context, cfg Config) *Pool {
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	if cfg.QueueSize < 0 {
		cfg.QueueSize = 0
	}
	ctx, cancel := context.WithCancel(context.WithoutCancel(base))
	p := &Pool{
		queue:  make(chan Job, cfg.QueueSize),
		ctx:    ctx,
		cancel: cancel,
	}
	p.wg.Add(cfg.Workers)
	for i := 0; i < cfg.Workers; i++ {
		go p.loop(i)
	}
	return p
}

// Submit enqueues job without blocking.
func (p *Pool) Submit(job Job) error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.stopped {
		return ErrStopped
	}

	select {
	case p.queue <- job:
		return nil
	default:
		p.rejected.Add(1)
		return fmt.Errorf("%w: %d jobs queued", ErrQueueFull, len(p.queue))
	}
}

// Shutdown stops accepting jobs and waits for queued and running ones. When
// ctx expires first, running jobs are cancelled and ctx's error returned.
func (p *Pool) Shutdown(ctx context.Context) error {
	p.mu.Lock()
	if !p.stopped {
		p.stopped = true
		close(p.queue)
	}
	p.mu.Unlock()

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		p.cancel()
		return nil
	case <-ctx.Done():
		p.cancel()
		return ctx.Err()
	}
}

// Stats is a snapshot of pool counters.
type Stats struct {
	Queued    int
	InFlight  int64
	Completed int64
	Rejected  int64
}

// Stats returns current counters.
func (p *Pool) Stats() Stats {
	return Stats{
		Queued:    len(p.queue),
		InFlight:  p.inFlight.Load(),
		Completed: p.completed.Load(),
		Rejected:  p.rejected.Load(),
	}
}

func (p *Pool) loop(n int) {
	defer p.wg.Done()
	for job := range p.queue {
		p.run(n, job)
	}
}

func (p *Pool) run(n int, job Job) {
	p.inFlight.Add(1)
	defer func() {
		p.inFlight.Add(-1)
		p.completed.Add(1)
		if r := recover(); r != nil {
			logger.Error(p.ctx, "worker job panicked", "worker", n, "panic", r)
		}
	}()
	job(p.ctx)
}
