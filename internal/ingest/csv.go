// Package ingest handles upload registration and CSV point loading.
package ingest

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"

	"github.com/UnknownOlympus/meridian/internal/models"
	"github.com/jszwec/csvutil"
)

// pointRecord mirrors one row of the uploaded file. The header is fixed:
// Point,Latitude,Longitude.
type pointRecord struct {
	Name      string  `csv:"Point"`
	Latitude  float64 `csv:"Latitude"`
	Longitude float64 `csv:"Longitude"`
}

func (r pointRecord) validate() error {
	if r.Name == "" {
		return errors.New("point name is required")
	}

	if r.Latitude < -90 || r.Latitude > 90 {
		return fmt.Errorf("latitude %f is out of range [-90, 90]", r.Latitude)
	}

	if r.Longitude < -180 || r.Longitude > 180 {
		return fmt.Errorf("longitude %f is out of range [-180, 180]", r.Longitude)
	}

	return nil
}

// ParsePoints decodes the whole CSV stream into points. Any malformed row,
// including a non-numeric coordinate, aborts the parse: input errors are
// rejected synchronously and never enter the pipelines.
func ParsePoints(r io.Reader) ([]models.Point, error) {
	dec, err := csvutil.NewDecoder(csv.NewReader(r))
	if err != nil {
		return nil, fmt.Errorf("failed to create decoder: %w", err)
	}

	var points []models.Point
	for {
		var record pointRecord

		err = dec.Decode(&record)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to decode point record #%d: %w", len(points)+1, err)
		}

		if err = record.validate(); err != nil {
			return nil, fmt.Errorf("invalid point record #%d: %w", len(points)+1, err)
		}

		points = append(points, models.Point{
			Name: record.Name,
			Coords: models.Coordinates{
				Latitude:  record.Latitude,
				Longitude: record.Longitude,
			},
		})
	}

	return points, nil
}
