// Package worker provides a bounded background job pool with a fixed-backoff
// retry helper. The relational store stays the single source of truth: jobs
// carry no state of their own, they only move rows between statuses.
package worker

import (
	"context"
	"errors"
	"log/slog"
	"sync"
)

// Job is one unit of background work. A returned error means the unit
// failed; retry policy is applied by the caller via Retry.
type Job func(ctx context.Context) error

// Queue is the job-submission interface handed to the dispatcher and the
// pipelines as an explicit dependency.
type Queue interface {
	Submit(name string, job Job) error
}

// ErrQueueFull is returned by Submit when the buffered queue cannot accept
// another job. The dispatcher treats it as transient and flips the claimed
// task back to failed so a later round re-claims it.
var ErrQueueFull = errors.New("job queue is full")

type namedJob struct {
	name string
	run  Job
}

// Pool executes submitted jobs on a fixed set of worker goroutines reading
// from a buffered queue.
type Pool struct {
	log     *slog.Logger
	jobs    chan namedJob
	workers int
	wg      sync.WaitGroup
}

// NewPool creates a pool with the given number of workers and queue capacity.
func NewPool(log *slog.Logger, workers, queueSize int) *Pool {
	return &Pool{
		log:     log,
		jobs:    make(chan namedJob, queueSize),
		workers: workers,
	}
}

// Start launches the worker goroutines. They drain the queue until ctx is
// canceled.
func (p *Pool) Start(ctx context.Context) {
	for i := 1; i <= p.workers; i++ {
		p.wg.Add(1)
		go p.worker(ctx, i)
	}
}

// Wait blocks until all workers have stopped.
func (p *Pool) Wait() {
	p.wg.Wait()
}

// Submit enqueues a job without blocking. It returns ErrQueueFull when the
// queue has no room, so a duplicate dispatch round cannot pile up work
// unboundedly.
func (p *Pool) Submit(name string, job Job) error {
	select {
	case p.jobs <- namedJob{name: name, run: job}:
		return nil
	default:
		return ErrQueueFull
	}
}

func (p *Pool) worker(ctx context.Context, idx int) {
	defer p.wg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		case job := <-p.jobs:
			p.log.DebugContext(ctx, "Worker picked up job", "worker", idx, "job", job.name)

			if err := job.run(ctx); err != nil {
				p.log.ErrorContext(ctx, "Job finished with error", "worker", idx, "job", job.name, "error", err)
				continue
			}

			p.log.DebugContext(ctx, "Worker finished job", "worker", idx, "job", job.name)
		}
	}
}
