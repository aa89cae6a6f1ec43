// Package busroute turns the fixed Ulleung bus route catalog and the bus
// stop table into drawable polylines and a stop-to-routes mapping.
//
// The seven routes are transcribed from the county's route summary PDF
// and embedded as YAML. Route stop names rarely match the official stop
// register verbatim, so stops are resolved through the containment
// cascade (exact key, then substring in either direction).
package busroute

import (
	_ "embed"
	"fmt"
	"math"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/ulleunglab/transport-dashboard/internal/geo"
	"github.com/ulleunglab/transport-dashboard/internal/textmatch"
)

//go:embed catalog.yaml
var catalogYAML []byte

// Definition is one catalog entry. Loop routes circle the island and are
// drawn through every known stop; the others connect their listed stops
// in order.
type Definition struct {
	ID    string   `yaml:"id" json:"id"`
	Name  string   `yaml:"name" json:"name"`
	Color string   `yaml:"color" json:"color"`
	Loop  bool     `yaml:"loop" json:"loop"`
	Stops []string `yaml:"stops" json:"stops"`
}

// Catalog returns the embedded route definitions in display order.
func Catalog() []Definition {
	var doc struct {
		Routes []Definition `yaml:"routes"`
	}
	if err := yaml.Unmarshal(catalogYAML, &doc); err != nil {
		panic(fmt.Sprintf("busroute: embedded catalog: %v", err))
	}
	return doc.Routes
}

// Stop is a bus stop from the official register.
type Stop struct {
	Name string  `json:"name"`
	Lat  float64 `json:"lat"`
	Lon  float64 `json:"lon"`
}

// StopInfo is a stop annotated with the routes that serve it. Route stop
// names that only resolve by containment keep their catalog spelling as
// an extra entry, pointing at the matched coordinates.
type StopInfo struct {
	Name   string   `json:"name"`
	Lat    float64  `json:"lat"`
	Lon    float64  `json:"lon"`
	Routes []string `json:"routes"`
}

// Route is a definition resolved to map coordinates.
type Route struct {
	ID     string      `json:"id"`
	Name   string      `json:"name"`
	Color  string      `json:"color"`
	Points []geo.Point `json:"points"`
}

// Build resolves defs against the stop register.
//
// Loop routes order every stop by its angle around the register's
// centroid and rotate the ring so the stop nearest the route's first
// catalog stop (by Manhattan distance) leads; every stop is marked as
// served. Non-loop routes connect their catalog stops in order, skipping
// the ones that do not resolve.
func Build(defs []Definition, stops []Stop) ([]Route, []StopInfo) {
	infos := make([]*StopInfo, 0, len(stops))
	byKey := make(map[textmatch.Key]*StopInfo, len(stops))
	index := textmatch.NewIndex[int]()

	for i, s := range stops {
		key := textmatch.Normalize(s.Name)
		index.Insert(key, i)
		if _, dup := byKey[key]; dup {
			continue
		}
		info := &StopInfo{Name: s.Name, Lat: s.Lat, Lon: s.Lon}
		infos = append(infos, info)
		byKey[key] = info
	}

	routes := make([]Route, 0, len(defs))
	for _, def := range defs {
		route := Route{ID: def.ID, Name: def.Name, Color: def.Color}

		switch {
		case def.Loop && len(stops) > 0:
			route.Points = loopPoints(def, stops, index)
			for _, info := range infos {
				addRoute(info, def.Name)
			}
		default:
			for _, stopName := range def.Stops {
				i, ok := index.ResolveContainment(stopName)
				if !ok {
					continue
				}
				matched := stops[i]
				route.Points = append(route.Points, geo.Point{Lat: matched.Lat, Lon: matched.Lon})

				key := textmatch.Normalize(stopName)
				info, ok := byKey[key]
				if !ok {
					info = &StopInfo{Name: stopName, Lat: matched.Lat, Lon: matched.Lon}
					infos = append(infos, info)
					byKey[key] = info
				}
				addRoute(info, def.Name)
			}
		}
		routes = append(routes, route)
	}

	out := make([]StopInfo, len(infos))
	for i, info := range infos {
		out[i] = *info
	}
	return routes, out
}

// loopPoints orders all stops by angle around the centroid, starting at
// the stop nearest the route's anchor.
func loopPoints(def Definition, stops []Stop, index *textmatch.Index[int]) []geo.Point {
	var cLat, cLon float64
	for _, s := range stops {
		cLat += s.Lat
		cLon += s.Lon
	}
	cLat /= float64(len(stops))
	cLon /= float64(len(stops))

	order := make([]int, len(stops))
	angles := make([]float64, len(stops))
	for i, s := range stops {
		order[i] = i
		angles[i] = math.Atan2(s.Lat-cLat, s.Lon-cLon)
	}
	sort.SliceStable(order, func(a, b int) bool {
		return angles[order[a]] < angles[order[b]]
	})

	start := 0
	if len(def.Stops) > 0 {
		if i, ok := index.ResolveContainment(def.Stops[0]); ok {
			anchor := stops[i]
			best := math.Inf(1)
			for pos, idx := range order {
				d := math.Abs(stops[idx].Lat-anchor.Lat) + math.Abs(stops[idx].Lon-anchor.Lon)
				if d < best {
					best = d
					start = pos
				}
			}
		}
	}

	points := make([]geo.Point, 0, len(order))
	for pos := range order {
		idx := order[(start+pos)%len(order)]
		points = append(points, geo.Point{Lat: stops[idx].Lat, Lon: stops[idx].Lon})
	}
	return points
}

func addRoute(info *StopInfo, name string) {
	for _, r := range info.Routes {
		if r == name {
			return
		}
	}
	info.Routes = append(info.Routes, name)
}
