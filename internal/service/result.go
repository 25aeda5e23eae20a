package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/UnknownOlympus/meridian/internal/models"
	"github.com/google/uuid"
)

// Result is the poll response for one upload. Addresses and distances stay
// null until their pipeline fills them in.
type Result struct {
	TaskID   uuid.UUID         `json:"task_id"`
	Status   models.TaskStatus `json:"status"`
	Data     ResultData        `json:"data"`
	Statuses Statuses          `json:"statuses"`
}

// ResultData holds the per-point and per-pair payload of a result.
type ResultData struct {
	Points []PointResult `json:"points"`
	Links  []LinkResult  `json:"links"`
}

// PointResult is one named point with its resolved address, if any.
type PointResult struct {
	Name    string  `json:"name"`
	Address *string `json:"address"`
}

// LinkResult is one unordered pair, named by concatenating the endpoint
// names, with its computed distance in meters, if any.
type LinkResult struct {
	Name     string   `json:"name"`
	Distance *float64 `json:"distance"`
}

// Statuses is the per-pipeline status breakdown of a result.
type Statuses struct {
	DistanceTask   models.TaskStatus `json:"distance_task"`
	ReverseGeocode models.TaskStatus `json:"reverse_geocode"`
}

// ResultService assembles poll responses from stored state. It is a pure
// read path, independent of the pipelines.
type ResultService struct {
	log  *slog.Logger
	repo ResultRepository
}

// NewResultService creates a ResultService.
func NewResultService(log *slog.Logger, repo ResultRepository) *ResultService {
	return &ResultService{log: log, repo: repo}
}

// GetResult returns the current state of the upload: overall status, the
// per-pipeline statuses and whatever points and links exist so far.
func (s *ResultService) GetResult(ctx context.Context, uploadID uuid.UUID) (Result, error) {
	upload, err := s.repo.GetUpload(ctx, uploadID)
	if err != nil {
		return Result{}, fmt.Errorf("failed to get upload: %w", err)
	}

	tasks, err := s.repo.ListTasks(ctx, uploadID)
	if err != nil {
		return Result{}, fmt.Errorf("failed to list tasks: %w", err)
	}

	points, err := s.repo.ListPointResults(ctx, uploadID)
	if err != nil {
		return Result{}, fmt.Errorf("failed to list points: %w", err)
	}

	links, err := s.repo.ListLinks(ctx, uploadID)
	if err != nil {
		return Result{}, fmt.Errorf("failed to list links: %w", err)
	}

	result := Result{
		TaskID: upload.UUID,
		Status: AggregateStatus(tasks),
		Data: ResultData{
			Points: make([]PointResult, 0, len(points)),
			Links:  make([]LinkResult, 0, len(links)),
		},
		Statuses: Statuses{
			DistanceTask:   models.StatusPending,
			ReverseGeocode: models.StatusPending,
		},
	}

	for _, task := range tasks {
		switch task.Type {
		case models.TaskTypeDistance:
			result.Statuses.DistanceTask = task.Status
		case models.TaskTypeReverse:
			result.Statuses.ReverseGeocode = task.Status
		}
	}

	for _, point := range points {
		result.Data.Points = append(result.Data.Points, PointResult{
			Name:    point.Name,
			Address: point.Address,
		})
	}

	for _, link := range links {
		result.Data.Links = append(result.Data.Links, LinkResult{
			Name:     link.NameA + link.NameB,
			Distance: link.Meters,
		})
	}

	return result, nil
}
