package repository

import (
	"context"
	"fmt"

	"github.com/UnknownOlympus/meridian/internal/models"
	"github.com/google/uuid"
)

// DistanceUpdate carries one computed distance for a bulk write-back.
type DistanceUpdate struct {
	DistanceID int64
	Meters     float64
}

// GeneratePairs emits one distance row per unordered pair of points in the
// upload with a single bulk statement. The self-join on a.id < b.id is the
// canonical ordering rule: pair (a, b) is stored once, never (b, a), and
// never (a, a). Endpoint coordinates are snapshotted into the distance row.
// Conflicting rows are skipped so a retried generation never duplicates pairs.
func (r *Repository) GeneratePairs(ctx context.Context, uploadID uuid.UUID) error {
	query := `
		INSERT INTO distances (upload_uuid, name_a, name_b, lat_a, lon_a, lat_b, lon_b)
		SELECT
			a.upload_uuid,
			a.name,
			b.name,
			a.latitude,
			a.longitude,
			b.latitude,
			b.longitude
		FROM points a
		JOIN points b ON a.upload_uuid = b.upload_uuid AND a.id < b.id
		WHERE a.upload_uuid = $1
		ON CONFLICT (upload_uuid, name_a, name_b) DO NOTHING;
	`

	if _, err := r.db.Exec(ctx, query, uploadID); err != nil {
		return fmt.Errorf("failed to generate distance pairs: %w", err)
	}

	r.log.DebugContext(ctx, "Distance pairs generated", "upload", uploadID)

	return nil
}

// FetchDistanceIDs returns up to limit distance row ids of the upload with
// id greater than afterID, ordered by id. Used to partition the pair set
// into batches with a stable cursor.
func (r *Repository) FetchDistanceIDs(
	ctx context.Context,
	uploadID uuid.UUID,
	afterID int64,
	limit int,
) ([]int64, error) {
	query, args, err := r.qb.
		Select("id").
		From("distances").
		Where("upload_uuid = ? AND id > ?", uploadID, afterID).
		OrderBy("id ASC").
		Limit(uint64(limit)). //nolint:gosec // limit is a small positive constant
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build distance ids query: %w", err)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query distance ids: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if errScan := rows.Scan(&id); errScan != nil {
			return nil, fmt.Errorf("failed to scan distance id: %w", errScan)
		}
		ids = append(ids, id)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read row: %w", err)
	}

	return ids, nil
}

// FetchDistancesByIDs loads the distance rows of one batch with their
// coordinate snapshots.
func (r *Repository) FetchDistancesByIDs(ctx context.Context, ids []int64) ([]models.Distance, error) {
	query := `
		SELECT id, upload_uuid, name_a, name_b, lat_a, lon_a, lat_b, lon_b
		FROM distances
		WHERE id = ANY($1)
		ORDER BY id;
	`

	rows, err := r.db.Query(ctx, query, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to query distances: %w", err)
	}
	defer rows.Close()

	var distances []models.Distance
	for rows.Next() {
		var dist models.Distance
		if errScan := rows.Scan(&dist.ID, &dist.UploadUUID, &dist.NameA, &dist.NameB,
			&dist.PointA.Latitude, &dist.PointA.Longitude,
			&dist.PointB.Latitude, &dist.PointB.Longitude); errScan != nil {
			return nil, fmt.Errorf("failed to scan distance: %w", errScan)
		}
		distances = append(distances, dist)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read row: %w", err)
	}

	return distances, nil
}

// UpdateDistances writes back a batch of computed distances in one statement.
func (r *Repository) UpdateDistances(ctx context.Context, updates []DistanceUpdate) error {
	if len(updates) == 0 {
		return nil
	}

	ids := make([]int64, len(updates))
	meters := make([]float64, len(updates))
	for i, update := range updates {
		ids[i] = update.DistanceID
		meters[i] = update.Meters
	}

	query := `
		UPDATE distances
		SET distance = data.meters
		FROM (SELECT unnest($1::bigint[]) AS id, unnest($2::float8[]) AS meters) AS data
		WHERE distances.id = data.id;
	`

	if _, err := r.db.Exec(ctx, query, ids, meters); err != nil {
		return fmt.Errorf("failed to bulk update distances: %w", err)
	}

	return nil
}

// ListLinks returns every distance row of the upload for the result query.
func (r *Repository) ListLinks(ctx context.Context, uploadID uuid.UUID) ([]models.Distance, error) {
	query, args, err := r.qb.
		Select("id", "name_a", "name_b", "distance").
		From("distances").
		Where("upload_uuid = ?", uploadID).
		OrderBy("id ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build links query: %w", err)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query links: %w", err)
	}
	defer rows.Close()

	var links []models.Distance
	for rows.Next() {
		dist := models.Distance{UploadUUID: uploadID}
		if errScan := rows.Scan(&dist.ID, &dist.NameA, &dist.NameB, &dist.Meters); errScan != nil {
			return nil, fmt.Errorf("failed to scan link: %w", errScan)
		}
		links = append(links, dist)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read row: %w", err)
	}

	return links, nil
}
