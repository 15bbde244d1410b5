// Package geofence classifies positions against a configured circular
// zone. All functions are pure; malformed coordinates propagate NaN and
// validation stays with the caller.
package geofence

import (
	"math"

	"github.com/pontovivo/ponto_vivo_app/internal/core/domain"
)

// earthRadiusMeters is the spherical-earth approximation radius.
const earthRadiusMeters = 6371000.0

func toRadians(deg float64) float64 { return deg * math.Pi / 180 }

// DistanceMeters computes the great-circle distance between two
// coordinates using the haversine formula.
func DistanceMeters(a, b domain.Coordinate) float64 {
	deltaLat := toRadians(b.Latitude - a.Latitude)
	deltaLng := toRadians(b.Longitude - a.Longitude)

	h := math.Sin(deltaLat/2)*math.Sin(deltaLat/2) +
		math.Cos(toRadians(a.Latitude))*math.Cos(toRadians(b.Latitude))*
			math.Sin(deltaLng/2)*math.Sin(deltaLng/2)
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
	return earthRadiusMeters * c
}

// IsInside reports whether the position lies within the zone, boundary
// included.
func IsInside(position domain.Coordinate, zone domain.GeofenceZone) bool {
	return DistanceMeters(position, zone.Center) <= zone.RadiusMeters
}

// Evaluate classifies a raw sample against the zone.
func Evaluate(sample domain.GeoSample, zone domain.GeofenceZone) domain.GeoReading {
	distance := DistanceMeters(sample.Position, zone.Center)
	return domain.GeoReading{
		Distance:  distance,
		Inside:    distance <= zone.RadiusMeters,
		Accuracy:  sample.Accuracy,
		SampledAt: sample.SampledAt,
	}
}
