package domain

import "time"

// Coordinate is a WGS84 position in decimal degrees.
type Coordinate struct {
	Latitude  float64 `json:"lat"`
	Longitude float64 `json:"lng"`
}

// GeofenceZone is a circular area gating shift start and triggering
// automatic shift end. Immutable per organization/session.
type GeofenceZone struct {
	Center       Coordinate `json:"center"`
	RadiusMeters float64    `json:"radiusMeters"`
}

// GeoSample is a raw position report from the geolocation source.
// Transient; never persisted.
type GeoSample struct {
	Position  Coordinate `json:"position"`
	Accuracy  float64    `json:"accuracy"`
	SampledAt time.Time  `json:"sampledAt"`
}

// GeoReading is a GeoSample classified against a zone. It drives shift
// transitions and operator display only.
type GeoReading struct {
	Distance  float64   `json:"distance"`
	Inside    bool      `json:"inside"`
	Accuracy  float64   `json:"accuracy"`
	SampledAt time.Time `json:"sampledAt"`
}
