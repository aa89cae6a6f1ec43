package busroute

import (
	"math"

	"github.com/ulleunglab/transport-dashboard/internal/geo"
)

// Position is a simulated vehicle location on a route polyline.
type Position struct {
	RouteID   string  `json:"route_id"`
	RouteName string  `json:"route_name"`
	Lat       float64 `json:"lat"`
	Lon       float64 `json:"lon"`
	Index     int     `json:"index"`
}

// Positions spaces perRoute simulated vehicles evenly along each route,
// phase-shifted by a small per-route jitter so vehicles on overlapping
// routes do not stack on the map. The result is deterministic for a
// given set of routes.
func Positions(routes []Route, perRoute int) []Position {
	var out []Position
	for _, route := range routes {
		if len(route.Points) < 2 {
			continue
		}
		total, segments := polyline(route.Points)
		if total <= 0 {
			continue
		}

		jitter := float64(byteSum(route.ID)%7) * 0.01
		for i := 0; i < perRoute; i++ {
			frac := math.Mod(float64(i+1)/float64(perRoute+1)+jitter, 1.0)
			p := pointAt(segments, total*frac)
			out = append(out, Position{
				RouteID:   route.ID,
				RouteName: route.Name,
				Lat:       p.Lat,
				Lon:       p.Lon,
				Index:     i + 1,
			})
		}
	}
	return out
}

type segment struct {
	length float64
	from   geo.Point
	to     geo.Point
}

// polyline measures planar segment lengths. Degree-space distances are
// fine here; the points only feed interpolation ratios.
func polyline(points []geo.Point) (float64, []segment) {
	segments := make([]segment, 0, len(points)-1)
	total := 0.0
	for i := 1; i < len(points); i++ {
		from, to := points[i-1], points[i]
		length := math.Hypot(to.Lat-from.Lat, to.Lon-from.Lon)
		segments = append(segments, segment{length: length, from: from, to: to})
		total += length
	}
	return total, segments
}

func pointAt(segments []segment, distance float64) geo.Point {
	remaining := distance
	for _, seg := range segments {
		if seg.length <= 0 {
			continue
		}
		if remaining <= seg.length {
			t := remaining / seg.length
			return geo.Point{
				Lat: seg.from.Lat + (seg.to.Lat-seg.from.Lat)*t,
				Lon: seg.from.Lon + (seg.to.Lon-seg.from.Lon)*t,
			}
		}
		remaining -= seg.length
	}
	return segments[len(segments)-1].to
}

func byteSum(s string) int {
	sum := 0
	for _, b := range []byte(s) {
		sum += int(b)
	}
	return sum
}
