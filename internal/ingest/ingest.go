package ingest

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/UnknownOlympus/meridian/internal/metrics"
	"github.com/UnknownOlympus/meridian/internal/models"
	"github.com/google/uuid"
)

// ErrInvalidFile is returned when the uploaded file is missing or is not a
// CSV file.
var ErrInvalidFile = errors.New("invalid upload file")

// UploadCreator persists a new upload together with its two pending tasks.
type UploadCreator interface {
	CreateUpload(ctx context.Context, upload models.Upload) error
}

// PointsSaver bulk-inserts a batch of points for an upload.
type PointsSaver interface {
	BulkInsertPoints(ctx context.Context, uploadID uuid.UUID, points []models.Point) error
	CountPoints(ctx context.Context, uploadID uuid.UUID) (int64, error)
}

// Ingestor accepts uploaded CSV files and loads their points into storage.
// Accepting a file is synchronous and cheap; point loading runs later as a
// background unit of work.
type Ingestor struct {
	log       *slog.Logger
	uploads   UploadCreator
	points    PointsSaver
	metrics   *metrics.Metrics
	uploadDir string
	batchSize int
}

// NewIngestor creates an Ingestor storing raw uploads under uploadDir.
func NewIngestor(
	log *slog.Logger,
	uploads UploadCreator,
	points PointsSaver,
	mtr *metrics.Metrics,
	uploadDir string,
	batchSize int,
) *Ingestor {
	return &Ingestor{
		log:       log,
		uploads:   uploads,
		points:    points,
		metrics:   mtr,
		uploadDir: uploadDir,
		batchSize: batchSize,
	}
}

// SaveUpload stores the raw CSV stream under "<uploadDir>/<uuid>.csv" and
// registers the upload with its two pending tasks. The returned identifier
// is what callers later poll results with.
func (ing *Ingestor) SaveUpload(ctx context.Context, filename string, file io.Reader) (uuid.UUID, error) {
	if filename == "" || !strings.EqualFold(filepath.Ext(filename), ".csv") {
		return uuid.Nil, ErrInvalidFile
	}

	uploadID := uuid.New()

	if err := os.MkdirAll(ing.uploadDir, 0o750); err != nil {
		return uuid.Nil, fmt.Errorf("failed to create upload directory: %w", err)
	}

	dst, err := os.Create(ing.filePath(uploadID))
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to create upload file: %w", err)
	}

	if _, err = io.Copy(dst, file); err != nil {
		_ = dst.Close()
		return uuid.Nil, fmt.Errorf("failed to store upload file: %w", err)
	}

	if err = dst.Close(); err != nil {
		return uuid.Nil, fmt.Errorf("failed to close upload file: %w", err)
	}

	upload := models.Upload{UUID: uploadID, Filename: filename}
	if err = ing.uploads.CreateUpload(ctx, upload); err != nil {
		return uuid.Nil, fmt.Errorf("failed to register upload: %w", err)
	}

	ing.log.InfoContext(ctx, "Upload accepted", "upload", uploadID, "filename", filename)

	return uploadID, nil
}

// LoadPoints reads the stored CSV of the upload and bulk-inserts its points
// in batches. The load is idempotent: an upload that already has points is
// skipped, and re-inserted batches are deduplicated by constraint, so a
// retried run never duplicates work.
func (ing *Ingestor) LoadPoints(ctx context.Context, uploadID uuid.UUID) error {
	count, err := ing.points.CountPoints(ctx, uploadID)
	if err != nil {
		return fmt.Errorf("failed to check existing points: %w", err)
	}
	if count > 0 {
		ing.log.DebugContext(ctx, "Points already loaded, skipping", "upload", uploadID, "count", count)
		return nil
	}

	file, err := os.Open(ing.filePath(uploadID))
	if err != nil {
		return fmt.Errorf("failed to open upload file: %w", err)
	}
	defer file.Close()

	points, err := ParsePoints(file)
	if err != nil {
		return fmt.Errorf("failed to parse upload %s: %w", uploadID, err)
	}

	for start := 0; start < len(points); start += ing.batchSize {
		end := min(start+ing.batchSize, len(points))
		if err = ing.points.BulkInsertPoints(ctx, uploadID, points[start:end]); err != nil {
			return fmt.Errorf("failed to insert points batch: %w", err)
		}
	}

	ing.metrics.PointsLoaded.Add(float64(len(points)))
	ing.log.InfoContext(ctx, "Points loaded", "upload", uploadID, "count", len(points))

	return nil
}

func (ing *Ingestor) filePath(uploadID uuid.UUID) string {
	return filepath.Join(ing.uploadDir, uploadID.String()+".csv")
}
