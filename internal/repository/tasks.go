package repository

import (
	"context"
	"fmt"

	"github.com/UnknownOlympus/meridian/internal/models"
	"github.com/google/uuid"
)

// ClaimPendingTasks atomically transitions every pending or failed task to
// running and returns the claimed rows. The conditional UPDATE ... RETURNING
// guarantees that concurrent dispatch rounds cannot both claim the same
// task: the second round observes no pending/failed rows.
func (r *Repository) ClaimPendingTasks(ctx context.Context) ([]models.Task, error) {
	query := `
		UPDATE tasks
		SET status = $1
		WHERE status IN ($2, $3)
		RETURNING id, upload_uuid, task_type, status;
	`

	rows, err := r.db.Query(ctx, query, models.StatusRunning, models.StatusPending, models.StatusFailed)
	if err != nil {
		return nil, fmt.Errorf("failed to claim pending tasks: %w", err)
	}
	defer rows.Close()

	var tasks []models.Task
	for rows.Next() {
		var task models.Task
		if errScan := rows.Scan(&task.ID, &task.UploadUUID, &task.Type, &task.Status); errScan != nil {
			return nil, fmt.Errorf("failed to scan claimed task: %w", errScan)
		}
		r.log.DebugContext(ctx, "Task claimed for processing",
			"task", task.ID, "upload", task.UploadUUID, "type", task.Type)
		tasks = append(tasks, task)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read row: %w", err)
	}

	return tasks, nil
}

// FinishTask moves the upload's task of the given type from running to the
// terminal status. The status guard makes the transition idempotent: a task
// already finalized by another worker is left untouched.
func (r *Repository) FinishTask(
	ctx context.Context,
	uploadID uuid.UUID,
	taskType models.TaskType,
	status models.TaskStatus,
) error {
	query := `
		UPDATE tasks
		SET status = $1
		WHERE upload_uuid = $2 AND task_type = $3 AND status = $4;
	`

	_, err := r.db.Exec(ctx, query, status, uploadID, taskType, models.StatusRunning)
	if err != nil {
		return fmt.Errorf("failed to finish %s task: %w", taskType, err)
	}

	return nil
}

// ListTasks returns the (up to two) task rows owned by the upload.
func (r *Repository) ListTasks(ctx context.Context, uploadID uuid.UUID) ([]models.Task, error) {
	query := `
		SELECT id, upload_uuid, task_type, status
		FROM tasks
		WHERE upload_uuid = $1
		ORDER BY id;
	`

	rows, err := r.db.Query(ctx, query, uploadID)
	if err != nil {
		return nil, fmt.Errorf("failed to query tasks: %w", err)
	}
	defer rows.Close()

	var tasks []models.Task
	for rows.Next() {
		var task models.Task
		if errScan := rows.Scan(&task.ID, &task.UploadUUID, &task.Type, &task.Status); errScan != nil {
			return nil, fmt.Errorf("failed to scan task: %w", errScan)
		}
		tasks = append(tasks, task)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read row: %w", err)
	}

	return tasks, nil
}
