package geocoding

import (
	"context"
	"errors"

	"github.com/UnknownOlympus/meridian/internal/models"
)

// Provider is an interface that defines a method for reverse geocoding.
// The ReverseGeocode method takes a context and a coordinate pair as input,
// and returns the resolved human-readable address or an error.
//
// Providers perform no retries: transient failures are classified and
// surfaced to the caller, which decides whether the point stays unresolved.
type Provider interface {
	ReverseGeocode(ctx context.Context, coords models.Coordinates) (string, error)
}

// Classified provider failures. The reverse-geocode pipeline treats these as
// "address unresolved" for the affected point, not as pipeline-fatal errors.
var (
	// ErrTimeout is returned when the provider request timed out.
	ErrTimeout = errors.New("geocoding request timed out")
	// ErrServiceError is returned when the provider responded with a
	// non-success status or a malformed payload.
	ErrServiceError = errors.New("geocoding service error")
	// ErrNoAddress is returned when the provider could not resolve the
	// coordinates to any address.
	ErrNoAddress = errors.New("address not found")
)

// IsUnresolved reports whether err is a classified provider failure that
// leaves the point's address unresolved without aborting the scan.
func IsUnresolved(err error) bool {
	return errors.Is(err, ErrTimeout) || errors.Is(err, ErrServiceError) || errors.Is(err, ErrNoAddress)
}
