package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/UnknownOlympus/meridian/internal/geo"
	"github.com/UnknownOlympus/meridian/internal/metrics"
	"github.com/UnknownOlympus/meridian/internal/models"
	"github.com/UnknownOlympus/meridian/internal/repository"
	"github.com/UnknownOlympus/meridian/internal/worker"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// DistancePipeline fills in the haversine distance for every unordered pair
// of points in an upload. Pair rows are generated with one bulk statement,
// partitioned into fixed-size batches by id cursor and computed in parallel.
// The errgroup is the fan-in barrier: the task is finalized exactly once,
// after every batch has finished or exhausted its retry budget.
type DistancePipeline struct {
	log         *slog.Logger
	distances   DistanceRepository
	tasks       TaskRepository
	metrics     *metrics.Metrics
	batchSize   int
	parallelism int
	maxAttempts int
	retryDelay  time.Duration
}

// NewDistancePipeline creates a distance pipeline.
func NewDistancePipeline(
	log *slog.Logger,
	distances DistanceRepository,
	tasks TaskRepository,
	mtr *metrics.Metrics,
	batchSize, parallelism, maxAttempts int,
	retryDelay time.Duration,
) *DistancePipeline {
	return &DistancePipeline{
		log:         log,
		distances:   distances,
		tasks:       tasks,
		metrics:     mtr,
		batchSize:   batchSize,
		parallelism: parallelism,
		maxAttempts: maxAttempts,
		retryDelay:  retryDelay,
	}
}

// Run processes the upload's pair set and moves the distance task to a
// terminal status. A batch that exhausts its retries fails the whole task;
// already-computed sibling batches keep their results, so the re-run that
// follows only redoes the arithmetic.
func (p *DistancePipeline) Run(ctx context.Context, uploadID uuid.UUID) error {
	if err := p.process(ctx, uploadID); err != nil {
		p.finish(ctx, uploadID, models.StatusFailed)
		return fmt.Errorf("distance pipeline for upload %s: %w", uploadID, err)
	}

	p.finish(ctx, uploadID, models.StatusCompleted)
	p.log.InfoContext(ctx, "Distance pipeline completed", "upload", uploadID)

	return nil
}

func (p *DistancePipeline) process(ctx context.Context, uploadID uuid.UUID) error {
	err := worker.Retry(ctx, p.log, p.maxAttempts, p.retryDelay, "generate pairs",
		func(ctx context.Context) error {
			return p.distances.GeneratePairs(ctx, uploadID)
		})
	if err != nil {
		return fmt.Errorf("failed to generate pairs: %w", err)
	}

	batches, err := p.collectBatches(ctx, uploadID)
	if err != nil {
		return fmt.Errorf("failed to partition pairs: %w", err)
	}

	group, gctx := errgroup.WithContext(ctx)
	group.SetLimit(p.parallelism)

	for _, batch := range batches {
		group.Go(func() error {
			p.metrics.ActiveBatches.Inc()
			defer p.metrics.ActiveBatches.Dec()

			return worker.Retry(gctx, p.log, p.maxAttempts, p.retryDelay, "distance batch",
				func(ctx context.Context) error {
					return p.processBatch(ctx, batch)
				})
		})
	}

	if err = group.Wait(); err != nil {
		return fmt.Errorf("batch failed after %d attempts: %w", p.maxAttempts, err)
	}

	return nil
}

// collectBatches walks the upload's distance rows by id cursor and returns
// their ids grouped into batches of at most batchSize.
func (p *DistancePipeline) collectBatches(ctx context.Context, uploadID uuid.UUID) ([][]int64, error) {
	var batches [][]int64

	afterID := int64(0)
	for {
		var ids []int64

		err := worker.Retry(ctx, p.log, p.maxAttempts, p.retryDelay, "fetch distance ids",
			func(ctx context.Context) error {
				var errFetch error
				ids, errFetch = p.distances.FetchDistanceIDs(ctx, uploadID, afterID, p.batchSize)
				return errFetch
			})
		if err != nil {
			return nil, err
		}

		if len(ids) == 0 {
			return batches, nil
		}

		batches = append(batches, ids)
		afterID = ids[len(ids)-1]
	}
}

func (p *DistancePipeline) processBatch(ctx context.Context, ids []int64) error {
	distances, err := p.distances.FetchDistancesByIDs(ctx, ids)
	if err != nil {
		return fmt.Errorf("failed to load batch: %w", err)
	}

	updates := make([]repository.DistanceUpdate, 0, len(distances))
	for _, dist := range distances {
		updates = append(updates, repository.DistanceUpdate{
			DistanceID: dist.ID,
			Meters:     geo.Haversine(dist.PointA, dist.PointB),
		})
	}

	if err = p.distances.UpdateDistances(ctx, updates); err != nil {
		return fmt.Errorf("failed to write batch results: %w", err)
	}

	p.metrics.PairsGenerated.Add(float64(len(updates)))

	return nil
}

func (p *DistancePipeline) finish(ctx context.Context, uploadID uuid.UUID, status models.TaskStatus) {
	p.metrics.TasksFinished.WithLabelValues(string(models.TaskTypeDistance), string(status)).Inc()

	if err := p.tasks.FinishTask(ctx, uploadID, models.TaskTypeDistance, status); err != nil {
		p.log.ErrorContext(ctx, "Failed to finalize distance task",
			"upload", uploadID, "status", status, "error", err)
	}
}
