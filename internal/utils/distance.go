package utils

import "math"

func toRadians(deg float64) float64 {
	return deg * math.Pi / 180
}

// CalculateDistance returns the great-circle distance in kilometers between
// two coordinates, using the haversine formula over a spherical earth.
func CalculateDistance(lat1, lon1, lat2, lon2 float64) float64 {
	la1, la2 := toRadians(lat1), toRadians(lat2)
	dLat := toRadians(lat2 - lat1)
	dLon := toRadians(lon2 - lon1)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(la1)*math.Cos(la2)*math.Sin(dLon/2)*math.Sin(dLon/2)

	return EarthRadiusKM * 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
}

func IsWithinRadius(centerLat, centerLon, pointLat, pointLon, radiusKM float64) bool {
	return CalculateDistance(centerLat, centerLon, pointLat, pointLon) <= radiusKM
}

// CalculateBearing returns the initial heading in degrees [0, 360) from the
// first coordinate toward the second.
func CalculateBearing(lat1, lon1, lat2, lon2 float64) float64 {
	la1, la2 := toRadians(lat1), toRadians(lat2)
	dLon := toRadians(lon2 - lon1)

	y := math.Sin(dLon) * math.Cos(la2)
	x := math.Cos(la1)*math.Sin(la2) - math.Sin(la1)*math.Cos(la2)*math.Cos(dLon)

	return math.Mod(math.Atan2(y, x)*180/math.Pi+360, 360)
}

// EstimateETAMinutes converts a distance into whole travel minutes, rounding
// up. Non-positive speeds fall back to the city average.
func EstimateETAMinutes(distanceKM, averageSpeedKMH float64) int {
	if averageSpeedKMH <= 0 {
		averageSpeedKMH = DefaultCitySpeedKMH
	}
	return int(math.Ceil(distanceKM / averageSpeedKMH * 60))
}
