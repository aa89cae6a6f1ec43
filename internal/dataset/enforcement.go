package dataset

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"
)

// Enforcement is one traffic enforcement record. Month is zero when the
// violation timestamp could not be parsed; Year then falls back to the
// year the file covers.
type Enforcement struct {
	When  time.Time `json:"when,omitempty" msgpack:"when"`
	Year  int       `json:"year" msgpack:"year"`
	Month int       `json:"month,omitempty" msgpack:"month"`
}

// Enforcement files cover these years, one per file ("19년 교통단속.csv").
const (
	enforcementFirstYear = 2019
	enforcementLastYear  = 2025
)

// EnforcementFileName returns the conventional file name for a year.
func EnforcementFileName(year int) string {
	return fmt.Sprintf("%02d년 교통단속.csv", year%100)
}

// LoadEnforcement reads the per-year enforcement exports under dir.
func (l *Loader) LoadEnforcement(dir string) []Enforcement {
	var out []Enforcement
	for year := enforcementFirstYear; year <= enforcementLastYear; year++ {
		path := filepath.Join(dir, EnforcementFileName(year))
		tbl, err := readTable(path)
		if err != nil {
			l.log.Warn("enforcement file unreadable", "file", path, "error", err)
			continue
		}
		if tbl.empty() {
			continue
		}
		// These exports wrap header cells across lines.
		tbl.squashHeader()

		whenIdx := tbl.col("위반일시")
		kept := 0
		for _, row := range tbl.rows {
			rec := Enforcement{Year: year}
			if ts, ok := parseViolationTime(get(row, whenIdx)); ok {
				rec.When = ts
				rec.Year = ts.Year()
				rec.Month = int(ts.Month())
			}
			out = append(out, rec)
			kept++
		}
		l.log.Debug("enforcement file loaded", "file", path, "rows", kept)
	}
	return out
}

// parseViolationTime reads the compact 위반일시 format (YYYYMMDDHHMM,
// sometimes exported with a float tail) with a generic date fallback.
func parseViolationTime(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	s = strings.TrimSuffix(s, ".0")
	if ts, err := time.Parse("200601021504", s); err == nil {
		return ts, true
	}
	return parseDate(s)
}

// EnforcementMonthlyCounts aggregates records for one year into monthly
// counts (index 0 is January). Records without a parsed month are left
// out, matching how the yearly chart treats them.
func EnforcementMonthlyCounts(records []Enforcement, year int) [12]int {
	var counts [12]int
	for _, r := range records {
		if r.Year != year || r.Month < 1 || r.Month > 12 {
			continue
		}
		counts[r.Month-1]++
	}
	return counts
}

// EnforcementYearlyCounts aggregates records for one month across years.
func EnforcementYearlyCounts(records []Enforcement, month int) map[int]int {
	counts := make(map[int]int)
	for _, r := range records {
		if r.Month != month {
			continue
		}
		counts[r.Year]++
	}
	return counts
}
