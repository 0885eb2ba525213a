package geo

import "math"

// Earth radius used by every distance computation in this module. All call
// sites must go through this package so the constant cannot drift.
const (
	EarthRadiusKm     = 6371.0
	EarthRadiusMeters = 6371000.0
)

// HaversineKm returns the great-circle distance in kilometres between two
// WGS-84 coordinates.
func HaversineKm(lat1, lng1, lat2, lng2 float64) float64 {
	dLat := toRadians(lat2 - lat1)
	dLng := toRadians(lng2 - lng1)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRadians(lat1))*math.Cos(toRadians(lat2))*
			math.Sin(dLng/2)*math.Sin(dLng/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return EarthRadiusKm * c
}

// HaversineMeters returns the great-circle distance in metres.
func HaversineMeters(lat1, lng1, lat2, lng2 float64) float64 {
	return HaversineKm(lat1, lng1, lat2, lng2) * 1000
}

// EtaMinutesFromKm converts a distance into a display ETA using the fixed
// 2-minutes-per-kilometre heuristic. Distinct from provider-returned trip
// durations; which one a screen prefers is a config decision.
func EtaMinutesFromKm(km float64) int {
	if km <= 0 {
		return 0
	}
	return int(math.Ceil(km * 2))
}

// ValidLatLng reports whether a coordinate pair is inside WGS-84 ranges.
func ValidLatLng(lat, lng float64) bool {
	return lat >= -90 && lat <= 90 && lng >= -180 && lng <= 180
}

func toRadians(deg float64) float64 {
	return deg * math.Pi / 180
}
