package geocoding

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/UnknownOlympus/meridian/internal/models"
	"googlemaps.github.io/maps"
)

// GoogleProvider is a struct that holds the client for Google Maps API
// and a logger for logging purposes. It is used to interact with the
// Google Maps reverse-geocoding services.
type GoogleProvider struct {
	client   GoogleAPIClient // client is the Google Maps API client
	language string          // language requested for returned addresses
	log      *slog.Logger    // log is the logger for logging operations
}

type GoogleAPIClient interface {
	ReverseGeocode(ctx context.Context, r *maps.GeocodingRequest) ([]maps.GeocodingResult, error)
}

// NewGoogleProvider initializes a new GoogleProvider with the given API
// client, language and logger.
func NewGoogleProvider(client GoogleAPIClient, language string, log *slog.Logger) *GoogleProvider {
	return &GoogleProvider{client: client, language: language, log: log}
}

// ReverseGeocode takes a context and a coordinate pair as input, and returns
// the formatted address of the location using the Google Maps Geocoding API.
// If the coordinates cannot be resolved or the response is empty, it returns
// a classified error.
func (gp *GoogleProvider) ReverseGeocode(ctx context.Context, coords models.Coordinates) (string, error) {
	gp.log.DebugContext(ctx, "Reverse geocoding using Google Maps",
		"lat", coords.Latitude, "lon", coords.Longitude)

	req := maps.GeocodingRequest{
		LatLng:   &maps.LatLng{Lat: coords.Latitude, Lng: coords.Longitude},
		Language: gp.language,
	}
	results, err := gp.client.ReverseGeocode(ctx, &req)
	if err != nil {
		if isTimeout(err) {
			return "", fmt.Errorf("%w: %w", ErrTimeout, err)
		}
		return "", fmt.Errorf("%w: %w", ErrServiceError, err)
	}

	if len(results) == 0 {
		return "", ErrNoAddress
	}

	return results[0].FormattedAddress, nil
}
