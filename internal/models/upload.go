package models

import "github.com/google/uuid"

// Upload represents one submitted point dataset. It is created once at
// ingestion and never mutated.
type Upload struct {
	UUID     uuid.UUID // UUID is the opaque upload identifier.
	Filename string    // Filename is the original name of the uploaded file.
}

// Point belongs to exactly one upload. The name is unique within the upload.
// Address is nil until the reverse-geocode pipeline resolves it.
type Point struct {
	ID         int64       // ID is a monotonic row key, used as a pagination cursor.
	UploadUUID uuid.UUID   // UploadUUID is the owning upload.
	Name       string      // Name is the display name of the point.
	Coords     Coordinates // Coords is the geographic coordinate of the point.
	Address    *string     // Address is the resolved human-readable address, if any.
}

// Distance represents one unordered pair of points belonging to the same
// upload. The endpoint coordinates are a snapshot captured at pair-generation
// time, not a live reference to the point rows. Meters is nil until the
// distance pipeline fills it.
type Distance struct {
	ID         int64       // ID is a monotonic row key, used as a pagination cursor.
	UploadUUID uuid.UUID   // UploadUUID is the owning upload.
	NameA      string      // NameA is the name of the first endpoint.
	NameB      string      // NameB is the name of the second endpoint.
	PointA     Coordinates // PointA is the snapshot of the first endpoint.
	PointB     Coordinates // PointB is the snapshot of the second endpoint.
	Meters     *float64    // Meters is the computed great-circle distance.
}
