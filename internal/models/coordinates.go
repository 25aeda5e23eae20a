package models

// Coordinates represents a geographical point defined by its latitude and longitude,
// expressed in decimal degrees.
type Coordinates struct {
	Latitude  float64 // Latitude of the geographical point.
	Longitude float64 // Longitude of the geographical point.
}
