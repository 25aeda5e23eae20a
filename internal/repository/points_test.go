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

func TestBulkInsertPoints(t *testing.T) {
	t.Parallel()
	logger := slog.Default()
	ctx := t.Context()
	uploadID := uuid.New()

	t.Run("success - inserts batch with conflict skip", func(t *testing.T) {
		t.Parallel()
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		repo := repository.NewRepository(mock, logger)
		points := []models.Point{
			{Name: "A", Coords: models.Coordinates{Latitude: 50.448069, Longitude: 30.5194453}},
			{Name: "B", Coords: models.Coordinates{Latitude: 50.448616, Longitude: 30.5116673}},
		}

		mock.ExpectExec(`INSERT INTO points .+ ON CONFLICT \(upload_uuid, name\) DO NOTHING`).
			WithArgs(
				uploadID, "A", 50.448069, 30.5194453,
				uploadID, "B", 50.448616, 30.5116673,
			).
			WillReturnResult(pgxmock.NewResult("INSERT", 2))

		err = repo.BulkInsertPoints(ctx, uploadID, points)

		require.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("success - empty batch is a no-op", func(t *testing.T) {
		t.Parallel()
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		repo := repository.NewRepository(mock, logger)

		err = repo.BulkInsertPoints(ctx, uploadID, nil)

		require.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("error - insert fails", func(t *testing.T) {
		t.Parallel()
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		repo := repository.NewRepository(mock, logger)

		mock.ExpectExec(`INSERT INTO points`).
			WillReturnError(assert.AnError)

		err = repo.BulkInsertPoints(ctx, uploadID, []models.Point{{Name: "A"}})

		require.Error(t, err)
		require.ErrorContains(t, err, "failed to bulk insert points")
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestFetchPointsPage(t *testing.T) {
	t.Parallel()
	logger := slog.Default()
	ctx := t.Context()
	uploadID := uuid.New()

	t.Run("success - returns page after cursor", func(t *testing.T) {
		t.Parallel()
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		repo := repository.NewRepository(mock, logger)

		mock.ExpectQuery(`SELECT id, name, latitude, longitude FROM points`).
			WithArgs(uploadID, int64(10)).
			WillReturnRows(
				pgxmock.NewRows([]string{"id", "name", "latitude", "longitude"}).
					AddRow(int64(11), "A", 50.1, 30.1).
					AddRow(int64(12), "B", 50.2, 30.2),
			)

		points, err := repo.FetchPointsPage(ctx, uploadID, 10, 1000)

		require.NoError(t, err)
		require.Len(t, points, 2)
		assert.Equal(t, int64(11), points[0].ID)
		assert.InEpsilon(t, 50.2, points[1].Coords.Latitude, 0.0001)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("success - empty page past the end", func(t *testing.T) {
		t.Parallel()
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		repo := repository.NewRepository(mock, logger)

		mock.ExpectQuery(`SELECT id, name, latitude, longitude FROM points`).
			WithArgs(uploadID, int64(12)).
			WillReturnRows(pgxmock.NewRows([]string{"id", "name", "latitude", "longitude"}))

		points, err := repo.FetchPointsPage(ctx, uploadID, 12, 1000)

		require.NoError(t, err)
		assert.Empty(t, points)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("error - query fails", func(t *testing.T) {
		t.Parallel()
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		repo := repository.NewRepository(mock, logger)

		mock.ExpectQuery(`SELECT id, name, latitude, longitude FROM points`).
			WithArgs(uploadID, int64(0)).
			WillReturnError(assert.AnError)

		points, err := repo.FetchPointsPage(ctx, uploadID, 0, 1000)

		require.Nil(t, points)
		require.Error(t, err)
		require.ErrorContains(t, err, "failed to query points page")
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestUpdateAddresses(t *testing.T) {
	t.Parallel()
	logger := slog.Default()
	ctx := t.Context()

	updateQuery := `
		UPDATE points
		SET address = data.address
		FROM (SELECT unnest($1::bigint[]) AS id, unnest($2::text[]) AS address) AS data
		WHERE points.id = data.id;
	`

	t.Run("success - bulk update", func(t *testing.T) {
		t.Parallel()
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		repo := repository.NewRepository(mock, logger)

		mock.ExpectExec(regexp.QuoteMeta(updateQuery)).
			WithArgs([]int64{1, 2}, []string{"Khreshchatyk St, Kyiv", "Prorizna St, Kyiv"}).
			WillReturnResult(pgxmock.NewResult("UPDATE", 2))

		err = repo.UpdateAddresses(ctx, []repository.AddressUpdate{
			{PointID: 1, Address: "Khreshchatyk St, Kyiv"},
			{PointID: 2, Address: "Prorizna St, Kyiv"},
		})

		require.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("success - empty update is a no-op", func(t *testing.T) {
		t.Parallel()
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		repo := repository.NewRepository(mock, logger)

		require.NoError(t, repo.UpdateAddresses(ctx, nil))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("error - update fails", func(t *testing.T) {
		t.Parallel()
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		repo := repository.NewRepository(mock, logger)

		mock.ExpectExec(regexp.QuoteMeta(updateQuery)).
			WithArgs([]int64{1}, []string{"addr"}).
			WillReturnError(assert.AnError)

		err = repo.UpdateAddresses(ctx, []repository.AddressUpdate{{PointID: 1, Address: "addr"}})

		require.Error(t, err)
		require.ErrorContains(t, err, "failed to bulk update addresses")
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestCountPoints(t *testing.T) {
	t.Parallel()
	logger := slog.Default()
	ctx := t.Context()
	uploadID := uuid.New()

	t.Run("success", func(t *testing.T) {
		t.Parallel()
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		repo := repository.NewRepository(mock, logger)

		mock.ExpectQuery(regexp.QuoteMeta(`SELECT COUNT(*) FROM points WHERE upload_uuid = $1;`)).
			WithArgs(uploadID).
			WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(int64(42)))

		count, err := repo.CountPoints(ctx, uploadID)

		require.NoError(t, err)
		assert.Equal(t, int64(42), count)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("error - query fails", func(t *testing.T) {
		t.Parallel()
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		repo := repository.NewRepository(mock, logger)

		mock.ExpectQuery(regexp.QuoteMeta(`SELECT COUNT(*) FROM points WHERE upload_uuid = $1;`)).
			WithArgs(uploadID).
			WillReturnError(assert.AnError)

		_, err = repo.CountPoints(ctx, uploadID)

		require.Error(t, err)
		require.ErrorContains(t, err, "failed to count points")
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestListPointResults(t *testing.T) {
	t.Parallel()
	logger := slog.Default()
	ctx := t.Context()
	uploadID := uuid.New()

	t.Run("success - resolved and unresolved addresses", func(t *testing.T) {
		t.Parallel()
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		repo := repository.NewRepository(mock, logger)
		address := "Khreshchatyk St, Kyiv"

		mock.ExpectQuery(`SELECT id, name, address FROM points`).
			WithArgs(uploadID).
			WillReturnRows(
				pgxmock.NewRows([]string{"id", "name", "address"}).
					AddRow(int64(1), "A", &address).
					AddRow(int64(2), "B", (*string)(nil)),
			)

		points, err := repo.ListPointResults(ctx, uploadID)

		require.NoError(t, err)
		require.Len(t, points, 2)
		require.NotNil(t, points[0].Address)
		assert.Equal(t, address, *points[0].Address)
		assert.Nil(t, points[1].Address)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
