// Package service contains the background processing core: the task
// dispatcher, the two per-upload pipelines and the read-side status
// aggregation. All coordination happens through task rows in the relational
// store; the pipelines hold no state of their own.
package service

import (
	"context"

	"github.com/UnknownOlympus/meridian/internal/models"
	"github.com/UnknownOlympus/meridian/internal/repository"
	"github.com/google/uuid"
)

// TaskRepository covers the task status transitions the dispatcher and the
// pipelines perform.
type TaskRepository interface {
	ClaimPendingTasks(ctx context.Context) ([]models.Task, error)
	FinishTask(ctx context.Context, uploadID uuid.UUID, taskType models.TaskType, status models.TaskStatus) error
}

// PointRepository covers the point reads and address write-backs of the
// reverse-geocode pipeline.
type PointRepository interface {
	FetchPointsPage(ctx context.Context, uploadID uuid.UUID, afterID int64, limit int) ([]models.Point, error)
	UpdateAddresses(ctx context.Context, updates []repository.AddressUpdate) error
}

// DistanceRepository covers the pair generation, batching and distance
// write-backs of the distance pipeline.
type DistanceRepository interface {
	GeneratePairs(ctx context.Context, uploadID uuid.UUID) error
	FetchDistanceIDs(ctx context.Context, uploadID uuid.UUID, afterID int64, limit int) ([]int64, error)
	FetchDistancesByIDs(ctx context.Context, ids []int64) ([]models.Distance, error)
	UpdateDistances(ctx context.Context, updates []repository.DistanceUpdate) error
}

// ResultRepository covers the read path of the result query.
type ResultRepository interface {
	GetUpload(ctx context.Context, id uuid.UUID) (models.Upload, error)
	ListTasks(ctx context.Context, uploadID uuid.UUID) ([]models.Task, error)
	ListPointResults(ctx context.Context, uploadID uuid.UUID) ([]models.Point, error)
	ListLinks(ctx context.Context, uploadID uuid.UUID) ([]models.Distance, error)
}

// PointLoader materializes the stored CSV of an upload into point rows. The
// load must be idempotent: the dispatcher calls it before every pipeline run.
type PointLoader interface {
	LoadPoints(ctx context.Context, uploadID uuid.UUID) error
}

// Pipeline is one background pipeline run for a single upload. Run owns the
// claimed task: it must leave the task in a terminal status.
type Pipeline interface {
	Run(ctx context.Context, uploadID uuid.UUID) error
}
