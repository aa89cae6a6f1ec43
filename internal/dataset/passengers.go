package dataset

import (
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"golang.org/x/text/unicode/norm"
)

// Direction names used in the passenger manifests.
const (
	DirectionArrive = "입항"
	DirectionDepart = "출항"
)

// PassengerDay is one sailing day of ferry traffic. Vehicles is nil
// when no vehicle manifest accompanies the passenger file.
type PassengerDay struct {
	Date       time.Time `json:"date" msgpack:"date"`
	Passengers int       `json:"passengers" msgpack:"passengers"`
	Vehicles   *int      `json:"vehicles,omitempty" msgpack:"vehicles,omitempty"`
}

// LoadPassengerDaily reads the daily passenger manifest for the given
// direction, 입항 or 출항. A vehicle manifest in the same directory,
// recognized by 차량 plus the direction in its file name, contributes
// per-day vehicle counts; days it does not cover count zero vehicles.
func (l *Loader) LoadPassengerDaily(dir, kind string) []PassengerDay {
	path := filepath.Join(dir, "일별 여객 "+kind+".csv")
	tbl, err := readTable(path)
	if err != nil {
		l.log.Warn("passenger file unreadable", "file", path, "error", err)
		return nil
	}
	dateIdx := tbl.col("출항일")
	totalIdx := tbl.col("합계")
	if dateIdx < 0 || totalIdx < 0 {
		return nil
	}

	vehicles := l.vehicleCounts(dir, kind)

	var out []PassengerDay
	for _, row := range tbl.rows {
		ts, ok := parseDate(get(row, dateIdx))
		if !ok {
			continue
		}
		count, ok := parseCount(get(row, totalIdx))
		if !ok {
			count = 0
		}
		rec := PassengerDay{Date: day(ts), Passengers: count}
		if vehicles != nil {
			n := vehicles[rec.Date]
			rec.Vehicles = &n
		}
		out = append(out, rec)
	}
	return out
}

// vehicleCounts loads the per-day vehicle totals for a direction, or
// nil when no matching manifest exists.
func (l *Loader) vehicleCounts(dir, kind string) map[time.Time]int {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil
	}
	var path string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := norm.NFC.String(e.Name())
		if !strings.HasSuffix(name, ".csv") {
			continue
		}
		if strings.Contains(name, "차량") && strings.Contains(name, kind) {
			path = filepath.Join(dir, e.Name())
			break
		}
	}
	if path == "" {
		return nil
	}

	tbl, err := readTable(path)
	if err != nil {
		l.log.Warn("vehicle file unreadable", "file", path, "error", err)
		return nil
	}
	dateIdx := tbl.col("출항일")
	countIdx := tbl.col("건수")
	if dateIdx < 0 || countIdx < 0 {
		return nil
	}
	out := make(map[time.Time]int, len(tbl.rows))
	for _, row := range tbl.rows {
		ts, ok := parseDate(get(row, dateIdx))
		if !ok {
			continue
		}
		n, ok := parseCount(get(row, countIdx))
		if !ok {
			n = 0
		}
		out[day(ts)] += n
	}
	return out
}

// RecentStats summarizes the most recent sailings of one direction.
type RecentStats struct {
	Latest        *PassengerDay `json:"latest,omitempty"`
	AvgPassengers int           `json:"avg_passengers"`
	AvgVehicles   *int          `json:"avg_vehicles,omitempty"`
}

// RecentPassengerStats reports the latest sailing plus the mean of the
// three most recent, rounded to the nearest whole count.
func RecentPassengerStats(days []PassengerDay) RecentStats {
	if len(days) == 0 {
		return RecentStats{}
	}
	sorted := make([]PassengerDay, len(days))
	copy(sorted, days)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Date.After(sorted[j].Date) })

	latest := sorted[0]
	stats := RecentStats{Latest: &latest}

	recent := sorted
	if len(recent) > 3 {
		recent = recent[:3]
	}
	var pax, veh float64
	vehN := 0
	for _, d := range recent {
		pax += float64(d.Passengers)
		if d.Vehicles != nil {
			veh += float64(*d.Vehicles)
			vehN++
		}
	}
	stats.AvgPassengers = int(math.Round(pax / float64(len(recent))))
	if vehN > 0 {
		n := int(math.Round(veh / float64(vehN)))
		stats.AvgVehicles = &n
	}
	return stats
}

// WindowStats totals a trailing window of sailing days.
type WindowStats struct {
	Start      time.Time `json:"start"`
	End        time.Time `json:"end"`
	Passengers int       `json:"passengers"`
	Vehicles   *int      `json:"vehicles,omitempty"`
}

// WindowPassengerStats sums passengers and vehicles over the windowDays
// days ending at end, inclusive. Vehicles stays nil when the series
// carries no vehicle counts at all.
func WindowPassengerStats(days []PassengerDay, end time.Time, windowDays int) WindowStats {
	if end.IsZero() || windowDays <= 0 {
		return WindowStats{}
	}
	start := end.AddDate(0, 0, -(windowDays - 1))
	out := WindowStats{Start: start, End: end}

	haveVehicles := false
	var veh int
	for _, d := range days {
		if d.Vehicles != nil {
			haveVehicles = true
		}
		if d.Date.Before(start) || d.Date.After(end) {
			continue
		}
		out.Passengers += d.Passengers
		if d.Vehicles != nil {
			veh += *d.Vehicles
		}
	}
	if haveVehicles {
		out.Vehicles = &veh
	}
	return out
}

// LatestSailingDate returns the most recent date across the given
// series, so arrival and departure windows share one anchor.
func LatestSailingDate(series ...[]PassengerDay) (time.Time, bool) {
	var max time.Time
	found := false
	for _, days := range series {
		for _, d := range days {
			if !found || d.Date.After(max) {
				max = d.Date
				found = true
			}
		}
	}
	return max, found
}

// DailyAverage is the mean passengers per sailing day within a year,
// rounded to the nearest whole count. Multiple rows on one day sum
// before averaging.
func DailyAverage(days []PassengerDay, year int) int {
	perDay := make(map[time.Time]int)
	for _, d := range days {
		if d.Date.Year() != year {
			continue
		}
		perDay[d.Date] += d.Passengers
	}
	if len(perDay) == 0 {
		return 0
	}
	var total float64
	for _, n := range perDay {
		total += float64(n)
	}
	return int(math.Round(total / float64(len(perDay))))
}
