// Command validate runs integrity checks across a dashboard data
// directory: source coverage, marker coordinates, photo resolution, the
// notice feed, and cross-source series consistency. It loads everything
// through the real dataset loaders, so a passing run means the service
// would serve exactly these rows.
//
// Usage:
//
//	go run ./cmd/validate -data-dir ./data
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/agnivade/levenshtein"

	"github.com/ulleunglab/transport-dashboard/internal/dataset"
	"github.com/ulleunglab/transport-dashboard/internal/notice"
	"github.com/ulleunglab/transport-dashboard/internal/observability"
	"github.com/ulleunglab/transport-dashboard/internal/textmatch"
)

// Every marker the dashboard renders must sit on or just off Ulleung
// island. Coordinates outside this box are geocoding mistakes.
const (
	boundLatMin = 37.3
	boundLatMax = 37.7
	boundLonMin = 130.7
	boundLonMax = 131.1
)

// sourceSpec names a conventional source file and the snapshot rows it
// feeds, mirroring the layout the loaders expect.
type sourceSpec struct {
	name string
	file string // relative to the data directory
	rows func(*dataset.Snapshot) int
}

var sourceSpecs = []sourceSpec{
	{name: "chargers", file: "울릉군 전기차 충전소 2020-07-13.csv", rows: func(s *dataset.Snapshot) int { return len(s.Chargers) }},
	{name: "rockfalls", file: "rockfall_coords_final.csv", rows: func(s *dataset.Snapshot) int { return len(s.Rockfalls) }},
	{name: "bus stops", file: "ullengdo_bus_stops.csv", rows: func(s *dataset.Snapshot) int { return len(s.Stops) }},
	{name: "sms notices", file: "울릉알리미_텍스트.csv", rows: func(s *dataset.Snapshot) int { return len(s.Notices) }},
	{name: "rainfall", file: filepath.Join("weather_pax", "2018.01.01-2025.10.31 강수량.csv"), rows: func(s *dataset.Snapshot) int { return len(s.Weather) }},
	{name: "arrivals", file: filepath.Join("weather_pax", "일별 여객 입항.csv"), rows: func(s *dataset.Snapshot) int { return len(s.Arrivals) }},
	{name: "departures", file: filepath.Join("weather_pax", "일별 여객 출항.csv"), rows: func(s *dataset.Snapshot) int { return len(s.Departures) }},
}

// phase tracks pass/fail for a validation phase.
type phase struct {
	name   string
	errors []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

func main() {
	dataDir := flag.String("data-dir", "", "directory containing the dashboard CSV sources")
	accPhotos := flag.String("accident-photos", "", "accident photo directory (default <data-dir>/acc_pic)")
	rockPhotos := flag.String("rockfall-photos", "", "rockfall photo directory (default <data-dir>/rockfall)")
	flag.Parse()

	if *dataDir == "" {
		flag.Usage()
		os.Exit(1)
	}
	if *accPhotos == "" {
		*accPhotos = filepath.Join(*dataDir, "acc_pic")
	}
	if *rockPhotos == "" {
		*rockPhotos = filepath.Join(*dataDir, "rockfall")
	}

	if code := run(*dataDir, *accPhotos, *rockPhotos); code != 0 {
		os.Exit(code)
	}
}

func run(dataDir, accPhotoDir, rockPhotoDir string) int {
	fmt.Println("=== Ulleung Dashboard Data Validation ===")
	fmt.Println()

	logger := observability.NewLogger("warn", "text")
	metrics := observability.NewMetrics()
	loader := dataset.NewLoader(logger, metrics)
	store := dataset.NewStore(dataset.Sources{
		DataDir:          dataDir,
		AccidentPhotoDir: accPhotoDir,
		RockfallPhotoDir: rockPhotoDir,
	}, loader, logger, metrics, nil, 0)

	if err := store.Refresh(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: load sources: %v\n", err)
		return 1
	}
	snap := store.Snapshot()

	phases := []*phase{
		validateSourceCoverage(dataDir, snap),
		validateCoordinateBounds(snap),
		validatePhotoResolution(snap),
		validateNoticeFeed(snap),
		validateSeriesConsistency(snap),
	}

	fmt.Println()
	allPassed := true
	for _, p := range phases {
		status := "\033[32mPASS\033[0m"
		if !p.passed() {
			status = fmt.Sprintf("\033[31mFAIL (%d errors)\033[0m", len(p.errors))
			allPassed = false
		}
		fmt.Printf("  %-42s %s\n", p.name, status)
	}

	fmt.Println()
	fmt.Printf("Rows: %d accidents, %d chargers, %d rockfalls, %d stops, %d notices\n",
		len(snap.Accidents), len(snap.Chargers), len(snap.Rockfalls), len(snap.StopInfos), len(snap.Notices))

	for _, p := range phases {
		if p.passed() {
			continue
		}
		fmt.Printf("\n--- %s ---\n", p.name)
		for i, e := range p.errors {
			fmt.Printf("  [%d] %s\n", i+1, e)
		}
	}

	if allPassed {
		fmt.Println("\nAll validations passed.")
		return 0
	}
	fmt.Println("\nValidation FAILED.")
	return 1
}

// ── Phase 1: Source Coverage ──
// Every conventional source file must exist and load at least one row.

func validateSourceCoverage(dataDir string, snap *dataset.Snapshot) *phase {
	p := &phase{name: "Phase 1: Source Coverage"}

	if len(snap.Accidents) == 0 {
		p.errorf("accidents: no rows loaded from %s (coord files, year files, or fallback)", dataDir)
	}

	for _, s := range sourceSpecs {
		path := filepath.Join(dataDir, s.file)
		if _, err := os.Stat(path); err != nil {
			p.errorf("%s: missing %s", s.name, s.file)
			continue
		}
		if s.rows(snap) == 0 {
			p.errorf("%s: %s present but loaded 0 rows", s.name, s.file)
		}
	}
	return p
}

// ── Phase 2: Coordinate Bounds ──

func validateCoordinateBounds(snap *dataset.Snapshot) *phase {
	p := &phase{name: "Phase 2: Coordinate Bounds"}

	check := func(source string, i int, label string, lat, lon float64) {
		if lat < boundLatMin || lat > boundLatMax || lon < boundLonMin || lon > boundLonMax {
			p.errorf("%s[%d] %q: (%.5f, %.5f) outside the island box", source, i, label, lat, lon)
		}
	}

	for i, a := range snap.Accidents {
		check("accidents", i, a.Raw, a.Lat, a.Lon)
	}
	for i, r := range snap.Rockfalls {
		check("rockfalls", i, r.Address, r.Lat, r.Lon)
	}
	for i, c := range snap.Chargers {
		check("chargers", i, c.Name, c.Lat, c.Lon)
	}
	for i, st := range snap.StopInfos {
		check("stops", i, st.Name, st.Lat, st.Lon)
	}
	return p
}

// ── Phase 3: Photo Resolution ──
// Unmatched addresses are reported with a nearest-key suggestion but do
// not fail the phase; photo coverage is expected to be partial.

func validatePhotoResolution(snap *dataset.Snapshot) *phase {
	p := &phase{name: "Phase 3: Photo Resolution"}

	var unmatched []string
	for i, a := range snap.Accidents {
		if a.Normalized == "" {
			p.errorf("accidents[%d]: no usable address (raw %q)", i, a.Raw)
			continue
		}
		if snap.AccidentPhotos.Len() == 0 {
			continue
		}
		if _, ok := snap.AccidentPhotos.Resolve(a.Normalized, textmatch.RegionVariants); !ok {
			unmatched = append(unmatched, a.Normalized)
		}
	}
	printUnmatched("accident", unmatched, snap.AccidentPhotos)

	unmatched = unmatched[:0]
	for _, r := range snap.Rockfalls {
		if r.Photo == "" && r.Address != "" {
			unmatched = append(unmatched, r.Address)
		}
	}
	printUnmatched("rockfall", unmatched, snap.RockfallPhotos)

	return p
}

// printUnmatched lists addresses that resolve to no photo, each with the
// closest indexed key by edit distance as a renaming hint.
func printUnmatched(kind string, addrs []string, idx *textmatch.Index[string]) {
	if len(addrs) == 0 {
		return
	}
	fmt.Printf("  Note: %d %s address(es) resolve to no photo\n", len(addrs), kind)

	const maxShown = 10
	for i, addr := range addrs {
		if i == maxShown {
			fmt.Printf("    ... and %d more\n", len(addrs)-maxShown)
			break
		}
		if key, dist, ok := nearestKey(addr, idx); ok {
			fmt.Printf("    %q (closest photo key %q, edit distance %d)\n", addr, key, dist)
		} else {
			fmt.Printf("    %q\n", addr)
		}
	}
}

// nearestKey finds the indexed key with the smallest edit distance to the
// normalized address.
func nearestKey(addr string, idx *textmatch.Index[string]) (string, int, bool) {
	target := string(textmatch.Normalize(addr))
	if target == "" || idx.Len() == 0 {
		return "", 0, false
	}

	best := ""
	bestDist := -1
	for _, key := range idx.Keys() {
		d := levenshtein.ComputeDistance(target, string(key))
		if bestDist < 0 || d < bestDist {
			best, bestDist = string(key), d
		}
	}
	return best, bestDist, true
}

// ── Phase 4: Notice Feed ──

func validateNoticeFeed(snap *dataset.Snapshot) *phase {
	p := &phase{name: "Phase 4: Notice Feed"}

	if len(snap.Notices) == 0 {
		p.errorf("no messages loaded")
		return p
	}

	var classified, shuttle, dated int
	byCategory := map[notice.Category]int{}
	for _, m := range snap.Notices {
		if !m.ReceivedAt.IsZero() {
			dated++
		}
		text := strings.TrimSpace(m.Text)
		if text == "" {
			continue
		}
		if notice.IsShuttle(text) {
			shuttle++
			continue
		}
		if cat, ok := notice.Classify(text); ok {
			classified++
			byCategory[cat]++
		}
	}

	fmt.Printf("  Note: %d/%d messages classified (%d 셔틀 excluded): 결항=%d 운항통제=%d 시간변경=%d 입항=%d 출항=%d\n",
		classified, len(snap.Notices), shuttle,
		byCategory[notice.CategoryCancel], byCategory[notice.CategoryControl],
		byCategory[notice.CategoryTimeChange], byCategory[notice.CategoryArrival],
		byCategory[notice.CategoryDeparture])

	if classified == 0 {
		p.errorf("no message matched any classification rule")
	}
	if dated == 0 {
		p.errorf("no message carries a parsable receive date; summaries would be empty")
	}
	return p
}

// ── Phase 5: Series Consistency ──
// The monthly weather join is derived from the same daily passenger
// series the snapshot carries, so the sums must agree exactly.

func validateSeriesConsistency(snap *dataset.Snapshot) *phase {
	p := &phase{name: "Phase 5: Series Consistency"}

	for i := 1; i < len(snap.Weather); i++ {
		prev, cur := snap.Weather[i-1].Month, snap.Weather[i].Month
		if !cur.Equal(prev.AddDate(0, 1, 0)) {
			p.errorf("weather: month gap between %s and %s", prev.Format("2006-01"), cur.Format("2006-01"))
		}
	}

	arriveByMonth := sumByMonth(snap.Arrivals)
	departByMonth := sumByMonth(snap.Departures)
	for _, m := range snap.Weather {
		if got := arriveByMonth[m.Month]; got != m.Arrivals {
			p.errorf("weather %s: arrivals %d but daily series sums to %d", m.Month.Format("2006-01"), m.Arrivals, got)
		}
		if got := departByMonth[m.Month]; got != m.Departures {
			p.errorf("weather %s: departures %d but daily series sums to %d", m.Month.Format("2006-01"), m.Departures, got)
		}
	}

	for i, d := range snap.Arrivals {
		if d.Date.IsZero() {
			p.errorf("arrivals[%d]: zero date survived loading", i)
		}
	}
	for i, d := range snap.Departures {
		if d.Date.IsZero() {
			p.errorf("departures[%d]: zero date survived loading", i)
		}
	}

	for i, e := range snap.Enforcement {
		if e.Month < 0 || e.Month > 12 {
			p.errorf("enforcement[%d]: month %d out of range", i, e.Month)
		}
		if !e.When.IsZero() && e.When.Year() != e.Year {
			p.errorf("enforcement[%d]: timestamp year %d disagrees with record year %d", i, e.When.Year(), e.Year)
		}
	}
	return p
}

func sumByMonth(days []dataset.PassengerDay) map[time.Time]int {
	out := make(map[time.Time]int)
	for _, d := range days {
		m := time.Date(d.Date.Year(), d.Date.Month(), 1, 0, 0, 0, 0, time.UTC)
		out[m] += d.Passengers
	}
	return out
}
