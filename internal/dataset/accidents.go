package dataset

import (
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/ulleunglab/transport-dashboard/internal/textmatch"
)

// Accident is one accident record with resolved coordinates. Raw carries
// the address text exactly as recorded; Normalized is the pre-normalized
// key when the source file provides one.
type Accident struct {
	Raw        string  `json:"raw" msgpack:"raw"`
	Detail     string  `json:"detail" msgpack:"detail"`
	Normalized string  `json:"normalized,omitempty" msgpack:"normalized"`
	Type       string  `json:"type,omitempty" msgpack:"type"`
	Year       int     `json:"year" msgpack:"year"`
	Lat        float64 `json:"lat" msgpack:"lat"`
	Lon        float64 `json:"lon" msgpack:"lon"`
}

var (
	accidentCoordsFile = regexp.MustCompile(`ulleung_accidents_with_coords_20\d{2}\.csv`)
	accidentCoordsYear = regexp.MustCompile(`ulleung_accidents_with_coords_(20\d{2})\.csv`)
	accidentYearName   = regexp.MustCompile(`(20\d{2})년도`)
)

const accidentFallbackFile = "ulleung_accidents_with_coords.csv"

// IsAccidentFile reports whether name belongs to the accident source
// set. The fingerprint uses the same predicate, so refresh detection and
// loading always cover the same files.
func IsAccidentFile(name string) bool {
	if !strings.HasSuffix(name, ".csv") {
		return false
	}
	if strings.Contains(name, "교통계") && strings.Contains(name, "교통사고") && strings.Contains(name, "년도") {
		return true
	}
	return accidentCoordsFile.MatchString(name) || name == accidentFallbackFile
}

// LoadAccidents merges the per-year accident files under dir. Files with
// pre-geocoded coordinates are preferred; the combined coordinates file
// is the fallback when no per-year file could be processed, and its rows
// are attributed to 2025.
func (l *Loader) LoadAccidents(dir string) []Accident {
	dirents, err := os.ReadDir(dir)
	if err != nil {
		if !os.IsNotExist(err) {
			l.log.Warn("accident directory unreadable", "dir", dir, "error", err)
		}
		return nil
	}

	var yearFiles, coordFiles []string
	for _, de := range dirents {
		if !de.Type().IsRegular() {
			continue
		}
		name := norm.NFC.String(de.Name())
		if !strings.HasSuffix(name, ".csv") {
			continue
		}
		if strings.Contains(name, "교통계") && strings.Contains(name, "교통사고") && strings.Contains(name, "년도") {
			yearFiles = append(yearFiles, de.Name())
			if strings.HasSuffix(name, "_with_coords.csv") {
				coordFiles = append(coordFiles, de.Name())
			}
			continue
		}
		if accidentCoordsFile.MatchString(name) {
			coordFiles = append(coordFiles, de.Name())
		}
	}

	targets := coordFiles
	if len(targets) == 0 {
		targets = yearFiles
	}
	sort.Strings(targets)

	var out []Accident
	processed := false
	for _, fname := range targets {
		name := norm.NFC.String(fname)
		year, ok := accidentYear(name)
		if !ok {
			continue
		}

		tbl, err := readTable(filepath.Join(dir, fname))
		if err != nil {
			l.log.Warn("accident file unreadable", "file", name, "error", err)
			continue
		}
		rows, hadCols, dropped := accidentRows(tbl, year)
		if !hadCols {
			l.log.Warn("accident file missing coordinate columns", "file", name)
			continue
		}
		processed = true
		out = append(out, rows...)
		l.log.Debug("accident file loaded", "file", name, "rows", len(rows), "dropped", dropped)
	}

	if processed {
		return out
	}
	return l.loadAccidentFallback(filepath.Join(dir, accidentFallbackFile))
}

func accidentYear(name string) (int, bool) {
	m := accidentYearName.FindStringSubmatch(name)
	if m == nil {
		m = accidentCoordsYear.FindStringSubmatch(name)
	}
	if m == nil {
		return 0, false
	}
	y, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, false
	}
	return y, true
}

func accidentRows(tbl *table, year int) (rows []Accident, hadCols bool, dropped int) {
	latIdx := tbl.col("latitude", "Latitude", "lat", "위도")
	lonIdx := tbl.col("longitude", "Longitude", "lon", "경도")
	if latIdx < 0 || lonIdx < 0 {
		return nil, false, 0
	}
	addrIdx := tbl.colContaining("사고", "장소")
	typeIdx := accidentTypeCol(tbl)
	normIdx := tbl.col("clean_normalized")

	for _, row := range tbl.rows {
		lat, okLat := parseFloat(get(row, latIdx))
		lon, okLon := parseFloat(get(row, lonIdx))
		if !okLat || !okLon {
			dropped++
			continue
		}
		a := Accident{Year: year, Lat: lat, Lon: lon}
		if addrIdx >= 0 {
			a.Raw = get(row, addrIdx)
			a.Detail = a.Raw
		}
		if typeIdx >= 0 {
			a.Type = get(row, typeIdx)
		}
		if normIdx >= 0 {
			a.Normalized = get(row, normIdx)
		}
		rows = append(rows, a)
	}
	return rows, true, dropped
}

func accidentTypeCol(tbl *table) int {
	for i, h := range tbl.header {
		if strings.Contains(h, "종별") {
			return i
		}
		switch h {
		case "type", "accident_type", "사고유형", "사고_type":
			return i
		}
	}
	return -1
}

func (l *Loader) loadAccidentFallback(path string) []Accident {
	tbl, err := readTable(path)
	if err != nil {
		l.log.Warn("accident fallback unreadable", "file", path, "error", err)
		return nil
	}
	latIdx := tbl.col("latitude")
	lonIdx := tbl.col("longitude")
	if latIdx < 0 || lonIdx < 0 {
		return nil
	}
	rawIdx := tbl.col("raw")
	detailIdx := tbl.col("detail")
	normIdx := tbl.col("clean_normalized")
	typeIdx := tbl.col("type")

	var out []Accident
	for _, row := range tbl.rows {
		lat, okLat := parseFloat(get(row, latIdx))
		lon, okLon := parseFloat(get(row, lonIdx))
		if !okLat || !okLon {
			continue
		}
		out = append(out, Accident{
			Raw:        get(row, rawIdx),
			Detail:     get(row, detailIdx),
			Normalized: get(row, normIdx),
			Type:       get(row, typeIdx),
			Year:       2025,
			Lat:        lat,
			Lon:        lon,
		})
	}
	if len(out) > 0 {
		l.log.Debug("accident fallback loaded", "file", path, "rows", len(out))
	}
	return out
}

// IndexAccidents builds the address index over accident rows. Keys come
// from the pre-normalized column when present, otherwise from the raw
// address; the first row wins on duplicates.
func IndexAccidents(accidents []Accident) *textmatch.Index[int] {
	idx := textmatch.NewIndex[int]()
	for i, a := range accidents {
		key := textmatch.Normalize(a.Normalized)
		if key == "" {
			key = textmatch.Normalize(a.Raw)
		}
		idx.Insert(key, i)
	}
	return idx
}
