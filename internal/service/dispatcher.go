package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/UnknownOlympus/meridian/internal/models"
	"github.com/UnknownOlympus/meridian/internal/worker"
)

// Dispatcher periodically claims pending and failed tasks and hands each one
// to its pipeline through the job queue. The claim is an atomic conditional
// update, so concurrent dispatch rounds cannot schedule the same task twice;
// running and completed tasks are never rescheduled.
type Dispatcher struct {
	log         *slog.Logger
	tasks       TaskRepository
	loader      PointLoader
	queue       worker.Queue
	pipelines   map[models.TaskType]Pipeline
	interval    time.Duration
	maxAttempts int
	retryDelay  time.Duration
}

// NewDispatcher creates a dispatcher driving the given pipelines.
func NewDispatcher(
	log *slog.Logger,
	tasks TaskRepository,
	loader PointLoader,
	queue worker.Queue,
	pipelines map[models.TaskType]Pipeline,
	interval time.Duration,
	maxAttempts int,
	retryDelay time.Duration,
) *Dispatcher {
	return &Dispatcher{
		log:         log,
		tasks:       tasks,
		loader:      loader,
		queue:       queue,
		pipelines:   pipelines,
		interval:    interval,
		maxAttempts: maxAttempts,
		retryDelay:  retryDelay,
	}
}

// Run dispatches once immediately, then on every tick until ctx is canceled.
func (d *Dispatcher) Run(ctx context.Context) {
	d.log.InfoContext(ctx, "Dispatcher started", "interval", d.interval)

	ticker := time.NewTicker(d.interval)
	defer ticker.Stop()

	for {
		err := worker.Retry(ctx, d.log, d.maxAttempts, d.retryDelay, "dispatch", d.Dispatch)
		if err != nil && ctx.Err() == nil {
			d.log.ErrorContext(ctx, "Dispatch round failed", "error", err)
		}

		select {
		case <-ctx.Done():
			d.log.InfoContext(ctx, "Dispatcher stopped")
			return
		case <-ticker.C:
		}
	}
}

// Dispatch claims every pending or failed task and submits one job per claim.
// A task that cannot be queued is flipped back to failed so the next round
// re-claims it instead of leaving it stuck in running.
func (d *Dispatcher) Dispatch(ctx context.Context) error {
	tasks, err := d.tasks.ClaimPendingTasks(ctx)
	if err != nil {
		return fmt.Errorf("failed to claim tasks: %w", err)
	}

	for _, task := range tasks {
		name := fmt.Sprintf("%s/%s", task.Type, task.UploadUUID)

		if err = d.queue.Submit(name, d.taskJob(task)); err != nil {
			d.log.WarnContext(ctx, "Failed to queue task, deferring to next round",
				"task", task.ID, "upload", task.UploadUUID, "type", task.Type, "error", err)
			d.release(ctx, task)
		}
	}

	if len(tasks) > 0 {
		d.log.InfoContext(ctx, "Dispatch round finished", "claimed", len(tasks))
	}

	return nil
}

// taskJob builds the unit of work for one claimed task: make sure the
// upload's points are loaded, then run the owning pipeline.
func (d *Dispatcher) taskJob(task models.Task) worker.Job {
	return func(ctx context.Context) error {
		pipeline, ok := d.pipelines[task.Type]
		if !ok {
			d.release(ctx, task)
			return fmt.Errorf("no pipeline registered for task type %q", task.Type)
		}

		err := worker.Retry(ctx, d.log, d.maxAttempts, d.retryDelay, "load points",
			func(ctx context.Context) error {
				return d.loader.LoadPoints(ctx, task.UploadUUID)
			})
		if err != nil {
			d.release(ctx, task)
			return fmt.Errorf("failed to load points for upload %s: %w", task.UploadUUID, err)
		}

		return pipeline.Run(ctx, task.UploadUUID)
	}
}

// release moves a claimed task back to failed so the dispatcher's normal
// pending/failed rescan picks it up again.
func (d *Dispatcher) release(ctx context.Context, task models.Task) {
	if err := d.tasks.FinishTask(ctx, task.UploadUUID, task.Type, models.StatusFailed); err != nil {
		d.log.ErrorContext(ctx, "Failed to release claimed task",
			"task", task.ID, "upload", task.UploadUUID, "type", task.Type, "error", err)
	}
}
