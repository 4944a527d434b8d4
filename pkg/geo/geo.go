package geo

import "math"

// Constants
const (
	EarthRadiusKm = 6371.0    // Mean Earth radius (km)
	KmPerNm       = 0.539957  // Conversion factor from kilometers to nautical miles
	DegToRad      = math.Pi / 180.0
)

// DistanceKm returns the great-circle distance in kilometers between two
// points given in decimal degrees, using the haversine formula.
func DistanceKm(lat1, lon1, lat2, lon2 float64) float64 {
	dLat := (lat2 - lat1) * DegToRad
	dLon := (lon2 - lon1) * DegToRad

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1*DegToRad)*math.Cos(lat2*DegToRad)*
			math.Sin(dLon/2)*math.Sin(dLon/2)

	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return EarthRadiusKm * c
}

// DistanceNm returns the great-circle distance in nautical miles
func DistanceNm(lat1, lon1, lat2, lon2 float64) float64 {
	return KmToNm(DistanceKm(lat1, lon1, lat2, lon2))
}

// KmToNm converts kilometers to nautical miles
func KmToNm(km float64) float64 {
	return km * KmPerNm
}
