package dataset

import (
	"github.com/ulleunglab/transport-dashboard/internal/textmatch"
)

// Rockfall is one rockfall incident with resolved coordinates and, when
// the photo archive has a matching shot, the path to it.
type Rockfall struct {
	Lat float64 `json:"lat" msgpack:"lat"`
	Lon float64 `json:"lon" msgpack:"lon"`

	Address string `json:"address" msgpack:"address"`
	Label   string `json:"label" msgpack:"label"`
	Photo   string `json:"photo,omitempty" msgpack:"photo"`
	Date    string `json:"date,omitempty" msgpack:"date"`
	Damage  string `json:"damage,omitempty" msgpack:"damage"`
}

const rockfallFallbackLabel = "위치 미상"

// LoadRockfalls reads the rockfall coordinates file. Photos resolve
// against the provided index by recorded address first, then by the
// original filename column. A nil index skips photo resolution.
func (l *Loader) LoadRockfalls(path string, photos *textmatch.Index[string]) []Rockfall {
	tbl, err := readTable(path)
	if err != nil {
		l.log.Warn("rockfall file unreadable", "file", path, "error", err)
		return nil
	}

	latIdx := tbl.col("latitude", "Latitude", "lat", "위도")
	lonIdx := tbl.col("longitude", "Longitude", "lon", "경도")
	if latIdx < 0 || lonIdx < 0 {
		return nil
	}

	addrIdxs := make([]int, 0, 5)
	for _, name := range []string{"실제 주소", "address", "주소", "장소", "filename"} {
		if i := tbl.col(name); i >= 0 {
			addrIdxs = append(addrIdxs, i)
		}
	}
	fileIdx := tbl.col("filename")
	dateIdx := tbl.col("사고일자")
	damageIdx := tbl.col("피해여부")

	var out []Rockfall
	dropped := 0
	for _, row := range tbl.rows {
		lat, okLat := parseFloat(get(row, latIdx))
		lon, okLon := parseFloat(get(row, lonIdx))
		if !okLat || !okLon {
			dropped++
			continue
		}

		address := ""
		for _, i := range addrIdxs {
			if v := get(row, i); v != "" {
				address = v
				break
			}
		}
		label := address
		if label == "" {
			label = rockfallFallbackLabel
		}

		out = append(out, Rockfall{
			Lat:     lat,
			Lon:     lon,
			Address: address,
			Label:   "낙석 발생 위치 : " + label,
			Photo:   l.rockfallPhoto(photos, address, get(row, fileIdx)),
			Date:    get(row, dateIdx),
			Damage:  get(row, damageIdx),
		})
	}

	l.log.Debug("rockfalls loaded", "file", path, "rows", len(out), "dropped", dropped)
	return out
}

// rockfallPhoto resolves a photo by address, falling back to the
// filename recorded with the incident.
func (l *Loader) rockfallPhoto(photos *textmatch.Index[string], address, filename string) string {
	if photos == nil || photos.Len() == 0 {
		return ""
	}
	if address != "" {
		if path, tier, ok := photos.ResolveTier(address, nil); ok {
			l.metrics.PhotoLookups.WithLabelValues("rockfall", string(tier)).Inc()
			return path
		}
	}
	if filename != "" {
		if path, tier, ok := photos.ResolveTier(filename, nil); ok {
			l.metrics.PhotoLookups.WithLabelValues("rockfall", string(tier)).Inc()
			return path
		}
	}
	l.metrics.PhotoLookups.WithLabelValues("rockfall", string(textmatch.TierNone)).Inc()
	return ""
}
