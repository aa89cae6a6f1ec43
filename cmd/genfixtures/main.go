// Command genfixtures loads a production data directory through the real
// dataset loaders and writes every row the dashboard would serve as one
// JSON fixture. The printed stats come from the same code paths the
// service runs, so they are safe to paste into test assertions.
//
// Usage:
//
//	go run ./cmd/genfixtures \
//	  -data-dir ./data \
//	  -out fixtures/dashboard_rows.json
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/ulleunglab/transport-dashboard/internal/busroute"
	"github.com/ulleunglab/transport-dashboard/internal/dataset"
	"github.com/ulleunglab/transport-dashboard/internal/notice"
	"github.com/ulleunglab/transport-dashboard/internal/observability"
	"github.com/ulleunglab/transport-dashboard/internal/textmatch"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	dataDir := flag.String("data-dir", "", "directory containing the dashboard CSV sources")
	accPhotos := flag.String("accident-photos", "", "accident photo directory (default <data-dir>/acc_pic)")
	rockPhotos := flag.String("rockfall-photos", "", "rockfall photo directory (default <data-dir>/rockfall)")
	out := flag.String("out", "", "output path for the JSON fixture")
	flag.Parse()

	if *dataDir == "" || *out == "" {
		flag.Usage()
		return fmt.Errorf("missing required flags: -data-dir, -out")
	}
	if *accPhotos == "" {
		*accPhotos = filepath.Join(*dataDir, "acc_pic")
	}
	if *rockPhotos == "" {
		*rockPhotos = filepath.Join(*dataDir, "rockfall")
	}

	logger := observability.NewLogger("warn", "text")
	metrics := observability.NewMetrics()
	loader := dataset.NewLoader(logger, metrics)
	store := dataset.NewStore(dataset.Sources{
		DataDir:          *dataDir,
		AccidentPhotoDir: *accPhotos,
		RockfallPhotoDir: *rockPhotos,
	}, loader, logger, metrics, nil, 0)

	if err := store.Refresh(context.Background()); err != nil {
		return fmt.Errorf("loading sources: %w", err)
	}
	snap := store.Snapshot()

	// Volatile snapshot identity (id, refresh time, fingerprint) stays
	// out of the fixture so reruns over the same sources byte-match.
	doc := struct {
		Accidents   []dataset.Accident              `json:"accidents"`
		Chargers    []dataset.Charger               `json:"chargers"`
		Rockfalls   []dataset.Rockfall              `json:"rockfalls"`
		Stops       []busroute.StopInfo             `json:"stops"`
		Routes      []busroute.Route                `json:"routes"`
		Enforcement []dataset.Enforcement           `json:"enforcement"`
		Weather     []dataset.WeatherPassengerMonth `json:"weather"`
		Arrivals    []dataset.PassengerDay          `json:"arrivals"`
		Departures  []dataset.PassengerDay          `json:"departures"`
		Notices     []notice.Message                `json:"notices"`
	}{
		Accidents:   snap.Accidents,
		Chargers:    snap.Chargers,
		Rockfalls:   snap.Rockfalls,
		Stops:       snap.StopInfos,
		Routes:      snap.Routes,
		Enforcement: snap.Enforcement,
		Weather:     snap.Weather,
		Arrivals:    snap.Arrivals,
		Departures:  snap.Departures,
		Notices:     snap.Notices,
	}

	if err := writeJSON(*out, doc); err != nil {
		return fmt.Errorf("writing fixture: %w", err)
	}
	log.Printf("wrote fixture: %s", *out)

	printStats(snap)
	return nil
}

func writeJSON(path string, v any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')
	return os.WriteFile(path, data, 0o600)
}

func printStats(snap *dataset.Snapshot) {
	fmt.Println("\n=== Stats for updating test assertions ===")
	fmt.Printf("Rows: accidents=%d chargers=%d rockfalls=%d stops=%d enforcement=%d\n",
		len(snap.Accidents), len(snap.Chargers), len(snap.Rockfalls), len(snap.StopInfos), len(snap.Enforcement))
	fmt.Printf("Series: weather_months=%d arrival_days=%d departure_days=%d notices=%d\n",
		len(snap.Weather), len(snap.Arrivals), len(snap.Departures), len(snap.Notices))

	printAccidentStats(snap)
	printNoticeStats(snap.Notices)
	printPhotoStats(snap)
	printSeriesStats(snap)
}

func printAccidentStats(snap *dataset.Snapshot) {
	byYear := map[int]int{}
	for _, a := range snap.Accidents {
		byYear[a.Year]++
	}
	years := make([]int, 0, len(byYear))
	for y := range byYear {
		years = append(years, y)
	}
	sort.Ints(years)

	fmt.Print("Accidents by year:")
	for _, y := range years {
		fmt.Printf(" %d=%d", y, byYear[y])
	}
	fmt.Println()
}

func printNoticeStats(msgs []notice.Message) {
	var shuttle, unclassified int
	byCategory := map[notice.Category]int{}
	var samples []string

	for _, m := range msgs {
		text := strings.TrimSpace(m.Text)
		if text == "" {
			continue
		}
		if notice.IsShuttle(text) {
			shuttle++
			continue
		}
		cat, ok := notice.Classify(text)
		if !ok {
			unclassified++
			if len(samples) < 3 {
				samples = append(samples, truncate(text, 40))
			}
			continue
		}
		byCategory[cat]++
	}

	fmt.Printf("\nNotice classification (raw, before per-day dedup):\n")
	for _, cat := range []notice.Category{
		notice.CategoryCancel, notice.CategoryControl, notice.CategoryTimeChange,
		notice.CategoryArrival, notice.CategoryDeparture,
	} {
		fmt.Printf("  %s: %d\n", cat, byCategory[cat])
	}
	fmt.Printf("  셔틀 (excluded): %d\n", shuttle)
	fmt.Printf("  unclassified: %d\n", unclassified)
	for _, s := range samples {
		fmt.Printf("    e.g. %s\n", s)
	}

	year := latestNoticeYear(msgs)
	if year == 0 {
		return
	}
	sum := notice.SummarizeYear(msgs, year)
	fmt.Printf("\nSummary %d (per-day deduplicated):\n", year)
	fmt.Printf("  cancelled=%d controlled=%d time_changed=%d\n", sum.Cancelled, sum.Controlled, sum.TimeChanged)
	fmt.Printf("  arrivals: vessel=%d passenger=%d\n", sum.Arrivals.Vessel, sum.Arrivals.Passenger)
	fmt.Printf("  departures: vessel=%d passenger=%d\n", sum.Departures.Vessel, sum.Departures.Passenger)
	fmt.Printf("  total=%d\n", sum.Total())

	if latest, ok := notice.Latest(msgs, year); ok {
		fmt.Printf("  latest: [%s] %s\n", latest.Category, latest.Summary)
	}
}

func printPhotoStats(snap *dataset.Snapshot) {
	var matched int
	for _, a := range snap.Accidents {
		if _, ok := snap.AccidentPhotos.Resolve(a.Normalized, textmatch.RegionVariants); ok {
			matched++
		}
	}
	fmt.Printf("\nAccident photos: %d indexed, %d/%d addresses resolve\n",
		snap.AccidentPhotos.Len(), matched, len(snap.Accidents))

	var withPhoto int
	for _, r := range snap.Rockfalls {
		if r.Photo != "" {
			withPhoto++
		}
	}
	fmt.Printf("Rockfall photos: %d indexed, %d/%d rows matched\n",
		snap.RockfallPhotos.Len(), withPhoto, len(snap.Rockfalls))
}

func printSeriesStats(snap *dataset.Snapshot) {
	if len(snap.Weather) > 0 {
		first := snap.Weather[0].Month
		last := snap.Weather[len(snap.Weather)-1].Month
		fmt.Printf("\nWeather months: %s .. %s\n", first.Format("2006-01"), last.Format("2006-01"))
	}
	if end, ok := dataset.LatestSailingDate(snap.Arrivals, snap.Departures); ok {
		fmt.Printf("Latest sailing: %s\n", end.Format("2006-01-02"))
		year := end.Year()
		fmt.Printf("Daily averages %d: arrivals=%d departures=%d\n",
			year, dataset.DailyAverage(snap.Arrivals, year), dataset.DailyAverage(snap.Departures, year))
	}
}

func latestNoticeYear(msgs []notice.Message) int {
	year := 0
	for _, m := range msgs {
		if !m.ReceivedAt.IsZero() && m.ReceivedAt.Year() > year {
			year = m.ReceivedAt.Year()
		}
	}
	return year
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n]) + "…"
}
