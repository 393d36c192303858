// Package geo holds great-circle distance helpers used by the proximity filters.
package geo

import "math"

// EarthRadiusKm is the mean Earth radius used by Haversine
const EarthRadiusKm = 6371.0

// Haversine returns the great-circle distance in kilometers between two
// points given in degrees.
func Haversine(lat1, lon1, lat2, lon2 float64) float64 {
	dLat := radians(lat2 - lat1)
	dLon := radians(lon2 - lon1)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(radians(lat1))*math.Cos(radians(lat2))*math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return EarthRadiusKm * c
}

// Round2 rounds a distance to two decimal places
func Round2(km float64) float64 {
	return math.Round(km*100) / 100
}

func radians(deg float64) float64 {
	return deg * math.Pi / 180
}
