package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/UnknownOlympus/meridian/internal/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// ErrUploadNotFound is returned when the requested upload does not exist.
var ErrUploadNotFound = errors.New("upload not found")

// CreateUpload inserts the upload row together with its two pending tasks
// (one per pipeline type) in a single transaction. Ingestion is the only
// writer of these rows; they are never mutated afterwards.
func (r *Repository) CreateUpload(ctx context.Context, upload models.Upload) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	_, err = tx.Exec(ctx,
		`INSERT INTO uploads (uuid, filename) VALUES ($1, $2);`,
		upload.UUID, upload.Filename)
	if err != nil {
		return fmt.Errorf("failed to insert upload: %w", err)
	}

	for _, taskType := range []models.TaskType{models.TaskTypeReverse, models.TaskTypeDistance} {
		_, err = tx.Exec(ctx,
			`INSERT INTO tasks (upload_uuid, task_type, status) VALUES ($1, $2, $3);`,
			upload.UUID, taskType, models.StatusPending)
		if err != nil {
			return fmt.Errorf("failed to insert %s task: %w", taskType, err)
		}
	}

	if err = tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	r.log.DebugContext(ctx, "Upload registered", "upload", upload.UUID, "filename", upload.Filename)

	return nil
}

// GetUpload returns the upload identified by id, or ErrUploadNotFound.
func (r *Repository) GetUpload(ctx context.Context, id uuid.UUID) (models.Upload, error) {
	var upload models.Upload

	row := r.db.QueryRow(ctx, `SELECT uuid, filename FROM uploads WHERE uuid = $1;`, id)
	if err := row.Scan(&upload.UUID, &upload.Filename); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Upload{}, ErrUploadNotFound
		}
		return models.Upload{}, fmt.Errorf("failed to scan upload: %w", err)
	}

	return upload, nil
}
