// Package geo holds the small amount of spherical geometry the dashboard
// needs for map-click resolution.
package geo

import "math"

// Earth radius in kilometers, spherical approximation.
const earthRadiusKm = 6371.0

// Haversine returns the great-circle distance in meters between two
// WGS84 coordinates.
func Haversine(lat1, lon1, lat2, lon2 float64) float64 {
	lat1r := lat1 * math.Pi / 180
	lat2r := lat2 * math.Pi / 180
	dLat := (lat2 - lat1) * math.Pi / 180
	dLon := (lon2 - lon1) * math.Pi / 180

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1r)*math.Cos(lat2r)*math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Asin(math.Sqrt(a))
	return earthRadiusKm * c * 1000
}

// Point is a WGS84 position.
type Point struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Nearest returns the index of the point closest to (lat, lon), provided
// it lies strictly within maxMeters. Returns -1 when points is empty or
// every point is out of range. Ties keep the earlier index.
func Nearest(points []Point, lat, lon, maxMeters float64) int {
	best := -1
	bestDist := math.Inf(1)
	for i, p := range points {
		d := Haversine(lat, lon, p.Lat, p.Lon)
		if d < bestDist {
			best = i
			bestDist = d
		}
	}
	if best < 0 || bestDist >= maxMeters {
		return -1
	}
	return best
}
