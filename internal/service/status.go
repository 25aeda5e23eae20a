package service

import "github.com/UnknownOlympus/meridian/internal/models"

// taskCount is the number of task rows every upload owns, one per pipeline.
const taskCount = 2

// AggregateStatus reduces the upload's task rows into one overall status.
// Precedence: failed if any task failed; completed only if both tasks exist
// and both completed; running otherwise, including the zero-task case (an
// upload is never vacuously completed).
func AggregateStatus(tasks []models.Task) models.TaskStatus {
	completed := 0

	for _, task := range tasks {
		switch task.Status {
		case models.StatusFailed:
			return models.StatusFailed
		case models.StatusCompleted:
			completed++
		case models.StatusPending, models.StatusRunning:
		}
	}

	if len(tasks) == taskCount && completed == taskCount {
		return models.StatusCompleted
	}

	return models.StatusRunning
}
