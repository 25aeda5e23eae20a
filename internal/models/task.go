package models

import "github.com/google/uuid"

// TaskStatus represents the lifecycle state of a pipeline task.
// The lifecycle is pending -> running -> {completed | failed}.
type TaskStatus string

const (
	StatusPending   TaskStatus = "pending"
	StatusRunning   TaskStatus = "running"
	StatusCompleted TaskStatus = "completed"
	StatusFailed    TaskStatus = "failed"
)

// TaskType identifies which pipeline a task belongs to.
type TaskType string

const (
	// TaskTypeReverse is the reverse-geocoding pipeline.
	TaskTypeReverse TaskType = "reverse"
	// TaskTypeDistance is the pairwise-distance pipeline.
	TaskTypeDistance TaskType = "distance"
)

// Task represents one pipeline run for an upload. Every upload owns exactly
// two tasks, one per type.
type Task struct {
	ID         int64      // ID is the unique identifier for the task.
	UploadUUID uuid.UUID  // UploadUUID is the owning upload.
	Type       TaskType   // Type is the pipeline this task tracks.
	Status     TaskStatus // Status is the current lifecycle state.
}
