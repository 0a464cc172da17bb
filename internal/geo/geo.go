// Package geo computes great-circle distances between event locations.
package geo

import "math"

// EarthRadiusKm is the mean Earth radius.
const EarthRadiusKm = 6371.0088

// DistanceKm returns the haversine distance in kilometres between two points
// given in degrees.
func DistanceKm(lat1, lon1, lat2, lon2 float64) float64 {
	φ1 := radians(lat1)
	φ2 := radians(lat2)
	dφ := radians(lat2 - lat1)
	dλ := radians(lon2 - lon1)

	a := math.Sin(dφ/2)*math.Sin(dφ/2) + math.Cos(φ1)*math.Cos(φ2)*math.Sin(dλ/2)*math.Sin(dλ/2)
	return 2 * EarthRadiusKm * math.Asin(math.Min(1, math.Sqrt(a)))
}

func radians(deg float64) float64 {
	return deg * math.Pi / 180
}
