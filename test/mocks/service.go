package mocks

import (
	"context"
	"io"

	"github.com/UnknownOlympus/meridian/internal/models"
	"github.com/UnknownOlympus/meridian/internal/service"
	"github.com/UnknownOlympus/meridian/internal/worker"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// Provider is a mock of geocoding.Provider.
type Provider struct {
	mock.Mock
}

func (m *Provider) ReverseGeocode(ctx context.Context, coords models.Coordinates) (string, error) {
	args := m.Called(ctx, coords)
	return args.String(0), args.Error(1)
}

// Queue is a mock of worker.Queue.
type Queue struct {
	mock.Mock
}

func (m *Queue) Submit(name string, job worker.Job) error {
	args := m.Called(name, job)
	return args.Error(0)
}

// PointLoader is a mock of service.PointLoader.
type PointLoader struct {
	mock.Mock
}

func (m *PointLoader) LoadPoints(ctx context.Context, uploadID uuid.UUID) error {
	args := m.Called(ctx, uploadID)
	return args.Error(0)
}

// Pipeline is a mock of service.Pipeline.
type Pipeline struct {
	mock.Mock
}

func (m *Pipeline) Run(ctx context.Context, uploadID uuid.UUID) error {
	args := m.Called(ctx, uploadID)
	return args.Error(0)
}

// Uploader is a mock of the controller's upload dependency.
type Uploader struct {
	mock.Mock
}

func (m *Uploader) SaveUpload(ctx context.Context, filename string, file io.Reader) (uuid.UUID, error) {
	args := m.Called(ctx, filename, file)
	id, _ := args.Get(0).(uuid.UUID)
	return id, args.Error(1)
}

// ResultProvider is a mock of the controller's result dependency.
type ResultProvider struct {
	mock.Mock
}

func (m *ResultProvider) GetResult(ctx context.Context, uploadID uuid.UUID) (service.Result, error) {
	args := m.Called(ctx, uploadID)
	if result, ok := args.Get(0).(service.Result); ok {
		return result, args.Error(1)
	}
	return service.Result{}, args.Error(1)
}
