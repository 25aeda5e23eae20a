package repository_test

import (
	"log/slog"
	"regexp"
	"testing"

	"github.com/UnknownOlympus/meridian/internal/models"
	"github.com/UnknownOlympus/meridian/internal/repository"
	"github.com/google/uuid"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const claimTasksQuery = `
		UPDATE tasks
		SET status = $1
		WHERE status IN ($2, $3)
		RETURNING id, upload_uuid, task_type, status;
	`

func TestClaimPendingTasks(t *testing.T) {
	t.Parallel()
	logger := slog.Default()
	ctx := t.Context()

	t.Run("success - claims pending and failed tasks", func(t *testing.T) {
		t.Parallel()
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		repo := repository.NewRepository(mock, logger)
		uploadID := uuid.New()

		mock.ExpectQuery(regexp.QuoteMeta(claimTasksQuery)).
			WithArgs(models.StatusRunning, models.StatusPending, models.StatusFailed).
			WillReturnRows(
				pgxmock.NewRows([]string{"id", "upload_uuid", "task_type", "status"}).
					AddRow(int64(1), uploadID, models.TaskTypeReverse, models.StatusRunning).
					AddRow(int64(2), uploadID, models.TaskTypeDistance, models.StatusRunning),
			)

		tasks, err := repo.ClaimPendingTasks(ctx)

		require.NoError(t, err)
		require.Len(t, tasks, 2)
		assert.Equal(t, models.TaskTypeReverse, tasks[0].Type)
		assert.Equal(t, models.StatusRunning, tasks[0].Status)
		assert.Equal(t, uploadID, tasks[1].UploadUUID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("success - nothing to claim", func(t *testing.T) {
		t.Parallel()
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		repo := repository.NewRepository(mock, logger)

		mock.ExpectQuery(regexp.QuoteMeta(claimTasksQuery)).
			WithArgs(models.StatusRunning, models.StatusPending, models.StatusFailed).
			WillReturnRows(pgxmock.NewRows([]string{"id", "upload_uuid", "task_type", "status"}))

		tasks, err := repo.ClaimPendingTasks(ctx)

		require.NoError(t, err)
		assert.Empty(t, tasks)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("error - claim query fails", func(t *testing.T) {
		t.Parallel()
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		repo := repository.NewRepository(mock, logger)

		mock.ExpectQuery(regexp.QuoteMeta(claimTasksQuery)).
			WithArgs(models.StatusRunning, models.StatusPending, models.StatusFailed).
			WillReturnError(assert.AnError)

		tasks, err := repo.ClaimPendingTasks(ctx)

		require.Nil(t, tasks)
		require.Error(t, err)
		require.ErrorContains(t, err, "failed to claim pending tasks")
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestFinishTask(t *testing.T) {
	t.Parallel()
	logger := slog.Default()
	ctx := t.Context()
	uploadID := uuid.New()

	finishQuery := `
		UPDATE tasks
		SET status = $1
		WHERE upload_uuid = $2 AND task_type = $3 AND status = $4;
	`

	t.Run("success - marks running task completed", func(t *testing.T) {
		t.Parallel()
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		repo := repository.NewRepository(mock, logger)

		mock.ExpectExec(regexp.QuoteMeta(finishQuery)).
			WithArgs(models.StatusCompleted, uploadID, models.TaskTypeDistance, models.StatusRunning).
			WillReturnResult(pgxmock.NewResult("UPDATE", 1))

		err = repo.FinishTask(ctx, uploadID, models.TaskTypeDistance, models.StatusCompleted)

		require.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("error - update fails", func(t *testing.T) {
		t.Parallel()
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		repo := repository.NewRepository(mock, logger)

		mock.ExpectExec(regexp.QuoteMeta(finishQuery)).
			WithArgs(models.StatusFailed, uploadID, models.TaskTypeReverse, models.StatusRunning).
			WillReturnError(assert.AnError)

		err = repo.FinishTask(ctx, uploadID, models.TaskTypeReverse, models.StatusFailed)

		require.Error(t, err)
		require.ErrorContains(t, err, "failed to finish reverse task")
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestListTasks(t *testing.T) {
	t.Parallel()
	logger := slog.Default()
	ctx := t.Context()
	uploadID := uuid.New()

	t.Run("success - returns both tasks", func(t *testing.T) {
		t.Parallel()
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		repo := repository.NewRepository(mock, logger)

		mock.ExpectQuery(`SELECT id, upload_uuid, task_type, status`).
			WithArgs(uploadID).
			WillReturnRows(
				pgxmock.NewRows([]string{"id", "upload_uuid", "task_type", "status"}).
					AddRow(int64(1), uploadID, models.TaskTypeReverse, models.StatusCompleted).
					AddRow(int64(2), uploadID, models.TaskTypeDistance, models.StatusRunning),
			)

		tasks, err := repo.ListTasks(ctx, uploadID)

		require.NoError(t, err)
		require.Len(t, tasks, 2)
		assert.Equal(t, models.StatusCompleted, tasks[0].Status)
		assert.Equal(t, models.TaskTypeDistance, tasks[1].Type)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("error - scan fails", func(t *testing.T) {
		t.Parallel()
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		repo := repository.NewRepository(mock, logger)

		mock.ExpectQuery(`SELECT id, upload_uuid, task_type, status`).
			WithArgs(uploadID).
			WillReturnRows(
				pgxmock.NewRows([]string{"id", "upload_uuid", "task_type", "status"}).
					AddRow("invalid", uploadID, models.TaskTypeReverse, models.StatusPending),
			)

		tasks, err := repo.ListTasks(ctx, uploadID)

		require.Nil(t, tasks)
		require.Error(t, err)
		require.ErrorContains(t, err, "failed to scan task")
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
