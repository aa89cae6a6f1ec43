package dataset

import (
	"github.com/ulleunglab/transport-dashboard/internal/busroute"
)

// LoadBusStops reads the official stop register. All three of the name
// and coordinate columns must be present; rows with unparseable
// coordinates are dropped.
func (l *Loader) LoadBusStops(path string) []busroute.Stop {
	tbl, err := readTable(path)
	if err != nil {
		l.log.Warn("bus stop file unreadable", "file", path, "error", err)
		return nil
	}

	latIdx := tbl.col("위도", "latitude", "Latitude")
	lonIdx := tbl.col("경도", "longitude", "Longitude")
	nameIdx := tbl.col("정류장명", "name", "정류장")
	if latIdx < 0 || lonIdx < 0 || nameIdx < 0 {
		return nil
	}

	var out []busroute.Stop
	dropped := 0
	for _, row := range tbl.rows {
		lat, okLat := parseFloat(get(row, latIdx))
		lon, okLon := parseFloat(get(row, lonIdx))
		if !okLat || !okLon {
			dropped++
			continue
		}
		out = append(out, busroute.Stop{Name: get(row, nameIdx), Lat: lat, Lon: lon})
	}

	l.log.Debug("bus stops loaded", "file", path, "rows", len(out), "dropped", dropped)
	return out
}
