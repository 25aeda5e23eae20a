package ingest_test

import (
	"strings"
	"testing"

	"github.com/UnknownOlympus/meridian/internal/ingest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePoints(t *testing.T) {
	t.Parallel()

	t.Run("parses a valid file", func(t *testing.T) {
		t.Parallel()

		input := "Point,Latitude,Longitude\n" +
			"A,50.448069,30.5194453\n" +
			"B,50.448616,30.5116673\n"

		points, err := ingest.ParsePoints(strings.NewReader(input))
		require.NoError(t, err)

		require.Len(t, points, 2)
		assert.Equal(t, "A", points[0].Name)
		assert.InDelta(t, 50.448069, points[0].Coords.Latitude, 1e-9)
		assert.InDelta(t, 30.5194453, points[0].Coords.Longitude, 1e-9)
		assert.Equal(t, "B", points[1].Name)
	})

	t.Run("header only yields no points", func(t *testing.T) {
		t.Parallel()

		points, err := ingest.ParsePoints(strings.NewReader("Point,Latitude,Longitude\n"))
		require.NoError(t, err)
		assert.Empty(t, points)
	})

	t.Run("non-numeric coordinate aborts the parse", func(t *testing.T) {
		t.Parallel()

		input := "Point,Latitude,Longitude\nA,fifty,30.5\n"

		_, err := ingest.ParsePoints(strings.NewReader(input))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "record #1")
	})

	t.Run("missing name is rejected", func(t *testing.T) {
		t.Parallel()

		input := "Point,Latitude,Longitude\n,50.4,30.5\n"

		_, err := ingest.ParsePoints(strings.NewReader(input))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "name is required")
	})

	t.Run("out-of-range coordinates are rejected", func(t *testing.T) {
		t.Parallel()

		input := "Point,Latitude,Longitude\nA,91.0,30.5\n"

		_, err := ingest.ParsePoints(strings.NewReader(input))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "out of range")
	})
}
