// Package mocks holds testify mocks for the interfaces consumed across the
// service, ingest and controller packages.
package mocks

import (
	"context"

	"github.com/UnknownOlympus/meridian/internal/models"
	"github.com/UnknownOlympus/meridian/internal/repository"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// TaskRepository is a mock of service.TaskRepository.
type TaskRepository struct {
	mock.Mock
}

func (m *TaskRepository) ClaimPendingTasks(ctx context.Context) ([]models.Task, error) {
	args := m.Called(ctx)
	if tasks, ok := args.Get(0).([]models.Task); ok {
		return tasks, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *TaskRepository) FinishTask(
	ctx context.Context,
	uploadID uuid.UUID,
	taskType models.TaskType,
	status models.TaskStatus,
) error {
	args := m.Called(ctx, uploadID, taskType, status)
	return args.Error(0)
}

// PointRepository is a mock of service.PointRepository.
type PointRepository struct {
	mock.Mock
}

func (m *PointRepository) FetchPointsPage(
	ctx context.Context,
	uploadID uuid.UUID,
	afterID int64,
	limit int,
) ([]models.Point, error) {
	args := m.Called(ctx, uploadID, afterID, limit)
	if points, ok := args.Get(0).([]models.Point); ok {
		return points, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *PointRepository) UpdateAddresses(ctx context.Context, updates []repository.AddressUpdate) error {
	args := m.Called(ctx, updates)
	return args.Error(0)
}

// DistanceRepository is a mock of service.DistanceRepository.
type DistanceRepository struct {
	mock.Mock
}

func (m *DistanceRepository) GeneratePairs(ctx context.Context, uploadID uuid.UUID) error {
	args := m.Called(ctx, uploadID)
	return args.Error(0)
}

func (m *DistanceRepository) FetchDistanceIDs(
	ctx context.Context,
	uploadID uuid.UUID,
	afterID int64,
	limit int,
) ([]int64, error) {
	args := m.Called(ctx, uploadID, afterID, limit)
	if ids, ok := args.Get(0).([]int64); ok {
		return ids, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *DistanceRepository) FetchDistancesByIDs(ctx context.Context, ids []int64) ([]models.Distance, error) {
	args := m.Called(ctx, ids)
	if distances, ok := args.Get(0).([]models.Distance); ok {
		return distances, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *DistanceRepository) UpdateDistances(ctx context.Context, updates []repository.DistanceUpdate) error {
	args := m.Called(ctx, updates)
	return args.Error(0)
}

// ResultRepository is a mock of service.ResultRepository.
type ResultRepository struct {
	mock.Mock
}

func (m *ResultRepository) GetUpload(ctx context.Context, id uuid.UUID) (models.Upload, error) {
	args := m.Called(ctx, id)
	if upload, ok := args.Get(0).(models.Upload); ok {
		return upload, args.Error(1)
	}
	return models.Upload{}, args.Error(1)
}

func (m *ResultRepository) ListTasks(ctx context.Context, uploadID uuid.UUID) ([]models.Task, error) {
	args := m.Called(ctx, uploadID)
	if tasks, ok := args.Get(0).([]models.Task); ok {
		return tasks, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *ResultRepository) ListPointResults(ctx context.Context, uploadID uuid.UUID) ([]models.Point, error) {
	args := m.Called(ctx, uploadID)
	if points, ok := args.Get(0).([]models.Point); ok {
		return points, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *ResultRepository) ListLinks(ctx context.Context, uploadID uuid.UUID) ([]models.Distance, error) {
	args := m.Called(ctx, uploadID)
	if links, ok := args.Get(0).([]models.Distance); ok {
		return links, args.Error(1)
	}
	return nil, args.Error(1)
}

// UploadCreator is a mock of ingest.UploadCreator.
type UploadCreator struct {
	mock.Mock
}

func (m *UploadCreator) CreateUpload(ctx context.Context, upload models.Upload) error {
	args := m.Called(ctx, upload)
	return args.Error(0)
}

// PointsSaver is a mock of ingest.PointsSaver.
type PointsSaver struct {
	mock.Mock
}

func (m *PointsSaver) BulkInsertPoints(ctx context.Context, uploadID uuid.UUID, points []models.Point) error {
	args := m.Called(ctx, uploadID, points)
	return args.Error(0)
}

func (m *PointsSaver) CountPoints(ctx context.Context, uploadID uuid.UUID) (int64, error) {
	args := m.Called(ctx, uploadID)
	count, _ := args.Get(0).(int64)
	return count, args.Error(1)
}
