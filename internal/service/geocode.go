package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/UnknownOlympus/meridian/internal/geocoding"
	"github.com/UnknownOlympus/meridian/internal/metrics"
	"github.com/UnknownOlympus/meridian/internal/models"
	"github.com/UnknownOlympus/meridian/internal/repository"
	"github.com/UnknownOlympus/meridian/internal/worker"
	"github.com/google/uuid"
	"golang.org/x/time/rate"
)

// GeocodePipeline resolves the address of every point in an upload. The
// provider enforces a rate limit, so the scan is strictly sequential within
// an upload: one ordered unit of work, one request in flight at a time,
// paced by the limiter. Addresses are written back once per page.
type GeocodePipeline struct {
	log          *slog.Logger
	points       PointRepository
	tasks        TaskRepository
	provider     geocoding.Provider
	providerName string
	limiter      *rate.Limiter
	metrics      *metrics.Metrics
	batchSize    int
	maxAttempts  int
	retryDelay   time.Duration
}

// NewGeocodePipeline creates a reverse-geocode pipeline issuing at most
// requestsPerSecond provider calls.
func NewGeocodePipeline(
	log *slog.Logger,
	points PointRepository,
	tasks TaskRepository,
	provider geocoding.Provider,
	providerName string,
	mtr *metrics.Metrics,
	requestsPerSecond, batchSize, maxAttempts int,
	retryDelay time.Duration,
) *GeocodePipeline {
	return &GeocodePipeline{
		log:          log,
		points:       points,
		tasks:        tasks,
		provider:     provider,
		providerName: providerName,
		limiter:      rate.NewLimiter(rate.Limit(requestsPerSecond), 1),
		metrics:      mtr,
		batchSize:    batchSize,
		maxAttempts:  maxAttempts,
		retryDelay:   retryDelay,
	}
}

// Run scans the upload's points and moves the reverse task to a terminal
// status. A classified provider failure leaves that point's address
// unresolved and the scan continues; anything else aborts the scan and fails
// the task. The dispatcher's pending/failed rescan restarts the whole scan.
func (p *GeocodePipeline) Run(ctx context.Context, uploadID uuid.UUID) error {
	if err := p.process(ctx, uploadID); err != nil {
		p.finish(ctx, uploadID, models.StatusFailed)
		return fmt.Errorf("reverse-geocode pipeline for upload %s: %w", uploadID, err)
	}

	p.finish(ctx, uploadID, models.StatusCompleted)
	p.log.InfoContext(ctx, "Reverse-geocode pipeline completed", "upload", uploadID)

	return nil
}

func (p *GeocodePipeline) process(ctx context.Context, uploadID uuid.UUID) error {
	afterID := int64(0)
	for {
		var page []models.Point

		err := worker.Retry(ctx, p.log, p.maxAttempts, p.retryDelay, "fetch points page",
			func(ctx context.Context) error {
				var errFetch error
				page, errFetch = p.points.FetchPointsPage(ctx, uploadID, afterID, p.batchSize)
				return errFetch
			})
		if err != nil {
			return fmt.Errorf("failed to fetch points page: %w", err)
		}

		if len(page) == 0 {
			return nil
		}

		updates, err := p.resolvePage(ctx, page)
		if err != nil {
			return err
		}

		err = worker.Retry(ctx, p.log, p.maxAttempts, p.retryDelay, "update addresses",
			func(ctx context.Context) error {
				return p.points.UpdateAddresses(ctx, updates)
			})
		if err != nil {
			return fmt.Errorf("failed to write back addresses: %w", err)
		}

		afterID = page[len(page)-1].ID
	}
}

func (p *GeocodePipeline) resolvePage(ctx context.Context, page []models.Point) ([]repository.AddressUpdate, error) {
	updates := make([]repository.AddressUpdate, 0, len(page))

	for _, point := range page {
		if err := p.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limiter interrupted: %w", err)
		}

		start := time.Now()
		address, err := p.provider.ReverseGeocode(ctx, point.Coords)
		p.metrics.ProviderSeconds.WithLabelValues(p.providerName).Observe(time.Since(start).Seconds())

		if err != nil {
			if geocoding.IsUnresolved(err) {
				p.metrics.GeocodeErrors.Inc()
				p.log.WarnContext(ctx, "Address unresolved, continuing",
					"point", point.ID, "name", point.Name, "error", err)
				continue
			}

			return nil, fmt.Errorf("failed to geocode point %d: %w", point.ID, err)
		}

		updates = append(updates, repository.AddressUpdate{PointID: point.ID, Address: address})
	}

	return updates, nil
}

func (p *GeocodePipeline) finish(ctx context.Context, uploadID uuid.UUID, status models.TaskStatus) {
	p.metrics.TasksFinished.WithLabelValues(string(models.TaskTypeReverse), string(status)).Inc()

	if err := p.tasks.FinishTask(ctx, uploadID, models.TaskTypeReverse, status); err != nil {
		p.log.ErrorContext(ctx, "Failed to finalize reverse task",
			"upload", uploadID, "status", status, "error", err)
	}
}
