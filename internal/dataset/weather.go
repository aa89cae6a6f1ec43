package dataset

import (
	"sort"
	"time"
)

// WeatherPassengerMonth is one month of rainfall joined with ferry
// passenger totals. Month is the first day of the month, UTC.
type WeatherPassengerMonth struct {
	Month      time.Time `json:"month" msgpack:"month"`
	RainMM     float64   `json:"rain_mm" msgpack:"rain_mm"`
	Arrivals   int       `json:"arrivals" msgpack:"arrivals"`
	Departures int       `json:"departures" msgpack:"departures"`
}

// LoadWeatherPassengerMonthly joins the daily rainfall series with the
// daily in/out passenger totals and aggregates to calendar months. The
// month range follows the passenger data; rainfall on days without
// sailings is not counted. All three files must be present.
func (l *Loader) LoadWeatherPassengerMonthly(rainPath, inPath, outPath string) []WeatherPassengerMonth {
	rain := l.dailyRain(rainPath)
	arrivals := l.dailyTotals(inPath)
	departures := l.dailyTotals(outPath)
	if rain == nil || arrivals == nil || departures == nil {
		return nil
	}

	// Base dates come from the passenger series only.
	dateSet := make(map[time.Time]struct{}, len(arrivals)+len(departures))
	for d := range arrivals {
		dateSet[d] = struct{}{}
	}
	for d := range departures {
		dateSet[d] = struct{}{}
	}
	if len(dateSet) == 0 {
		return nil
	}

	var min, max time.Time
	for d := range dateSet {
		if min.IsZero() || d.Before(min) {
			min = d
		}
		if max.IsZero() || d.After(max) {
			max = d
		}
	}

	type monthAgg struct {
		rain   float64
		arrive int
		depart int
	}
	byMonth := make(map[time.Time]*monthAgg)
	for d := range dateSet {
		m := monthStart(d)
		agg := byMonth[m]
		if agg == nil {
			agg = &monthAgg{}
			byMonth[m] = agg
		}
		agg.rain += rain[d]
		agg.arrive += arrivals[d]
		agg.depart += departures[d]
	}

	// Contiguous months over the covered range; gaps stay at zero.
	var out []WeatherPassengerMonth
	for m := monthStart(min); !m.After(monthStart(max)); m = m.AddDate(0, 1, 0) {
		row := WeatherPassengerMonth{Month: m}
		if agg, ok := byMonth[m]; ok {
			row.RainMM = agg.rain
			row.Arrivals = agg.arrive
			row.Departures = agg.depart
		}
		out = append(out, row)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Month.Before(out[j].Month) })
	return out
}

// dailyRain reads the rainfall export: one row per day, negatives
// clipped to zero.
func (l *Loader) dailyRain(path string) map[time.Time]float64 {
	tbl, err := readTable(path)
	if err != nil {
		l.log.Warn("rain file unreadable", "file", path, "error", err)
		return nil
	}
	dateIdx := tbl.col("날짜")
	rainIdx := tbl.col("강수량(mm)")
	if dateIdx < 0 || rainIdx < 0 {
		return nil
	}

	out := make(map[time.Time]float64, len(tbl.rows))
	for _, row := range tbl.rows {
		ts, ok := parseDate(get(row, dateIdx))
		if !ok {
			continue
		}
		mm, ok := parseFloat(get(row, rainIdx))
		if !ok || mm < 0 {
			mm = 0
		}
		out[day(ts)] += mm
	}
	return out
}

// dailyTotals sums the 합계 column per sailing day.
func (l *Loader) dailyTotals(path string) map[time.Time]int {
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

	out := make(map[time.Time]int, len(tbl.rows))
	for _, row := range tbl.rows {
		ts, ok := parseDate(get(row, dateIdx))
		if !ok {
			continue
		}
		count, ok := parseCount(get(row, totalIdx))
		if !ok {
			count = 0
		}
		out[day(ts)] += count
	}
	return out
}

func monthStart(d time.Time) time.Time {
	return time.Date(d.Year(), d.Month(), 1, 0, 0, 0, 0, time.UTC)
}
