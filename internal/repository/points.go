package repository

import (
	"context"
	"fmt"

	"github.com/UnknownOlympus/meridian/internal/models"
	"github.com/google/uuid"
)

// AddressUpdate carries one resolved address for a bulk write-back.
type AddressUpdate struct {
	PointID int64
	Address string
}

// BulkInsertPoints inserts a batch of points for one upload. Conflicting
// rows (same upload and name) are skipped, so re-running an interrupted
// load never duplicates points.
func (r *Repository) BulkInsertPoints(ctx context.Context, uploadID uuid.UUID, points []models.Point) error {
	if len(points) == 0 {
		return nil
	}

	builder := r.qb.
		Insert("points").
		Columns("upload_uuid", "name", "latitude", "longitude")
	for _, point := range points {
		builder = builder.Values(uploadID, point.Name, point.Coords.Latitude, point.Coords.Longitude)
	}

	query, args, err := builder.
		Suffix("ON CONFLICT (upload_uuid, name) DO NOTHING").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build insert query: %w", err)
	}

	if _, err = r.db.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to bulk insert points: %w", err)
	}

	r.log.DebugContext(ctx, "Points inserted", "upload", uploadID, "count", len(points))

	return nil
}

// CountPoints returns the number of points stored for the upload.
func (r *Repository) CountPoints(ctx context.Context, uploadID uuid.UUID) (int64, error) {
	var count int64

	row := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM points WHERE upload_uuid = $1;`, uploadID)
	if err := row.Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count points: %w", err)
	}

	return count, nil
}

// FetchPointsPage returns up to limit points of the upload with id greater
// than afterID, ordered by id. The id cursor guarantees an exhaustive,
// non-overlapping scan even under concurrent inserts.
func (r *Repository) FetchPointsPage(
	ctx context.Context,
	uploadID uuid.UUID,
	afterID int64,
	limit int,
) ([]models.Point, error) {
	query, args, err := r.qb.
		Select("id", "name", "latitude", "longitude").
		From("points").
		Where("upload_uuid = ? AND id > ?", uploadID, afterID).
		OrderBy("id ASC").
		Limit(uint64(limit)). //nolint:gosec // limit is a small positive constant
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build points page query: %w", err)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query points page: %w", err)
	}
	defer rows.Close()

	var points []models.Point
	for rows.Next() {
		point := models.Point{UploadUUID: uploadID}
		if errScan := rows.Scan(&point.ID, &point.Name,
			&point.Coords.Latitude, &point.Coords.Longitude); errScan != nil {
			return nil, fmt.Errorf("failed to scan point: %w", errScan)
		}
		points = append(points, point)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read row: %w", err)
	}

	return points, nil
}

// UpdateAddresses writes back a batch of resolved addresses in one statement.
func (r *Repository) UpdateAddresses(ctx context.Context, updates []AddressUpdate) error {
	if len(updates) == 0 {
		return nil
	}

	ids := make([]int64, len(updates))
	addresses := make([]string, len(updates))
	for i, update := range updates {
		ids[i] = update.PointID
		addresses[i] = update.Address
	}

	query := `
		UPDATE points
		SET address = data.address
		FROM (SELECT unnest($1::bigint[]) AS id, unnest($2::text[]) AS address) AS data
		WHERE points.id = data.id;
	`

	if _, err := r.db.Exec(ctx, query, ids, addresses); err != nil {
		return fmt.Errorf("failed to bulk update addresses: %w", err)
	}

	return nil
}

// ListPointResults returns the name and resolved address of every point in
// the upload, for the result query.
func (r *Repository) ListPointResults(ctx context.Context, uploadID uuid.UUID) ([]models.Point, error) {
	query, args, err := r.qb.
		Select("id", "name", "address").
		From("points").
		Where("upload_uuid = ?", uploadID).
		OrderBy("id ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build point results query: %w", err)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query point results: %w", err)
	}
	defer rows.Close()

	var points []models.Point
	for rows.Next() {
		point := models.Point{UploadUUID: uploadID}
		if errScan := rows.Scan(&point.ID, &point.Name, &point.Address); errScan != nil {
			return nil, fmt.Errorf("failed to scan point result: %w", errScan)
		}
		points = append(points, point)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read row: %w", err)
	}

	return points, nil
}
