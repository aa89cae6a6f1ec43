package httpapi

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jonboulle/clockwork"

	"github.com/ulleunglab/transport-dashboard/internal/busroute"
	"github.com/ulleunglab/transport-dashboard/internal/dataset"
	"github.com/ulleunglab/transport-dashboard/internal/geo"
	"github.com/ulleunglab/transport-dashboard/internal/notice"
	"github.com/ulleunglab/transport-dashboard/internal/observability"
	"github.com/ulleunglab/transport-dashboard/internal/textmatch"
)

const (
	defaultNearestRadius = 100.0
	defaultWindowDays    = 30
	maxPositionsPerRoute = 20
)

// SnapshotSource serves the current dataset snapshot.
type SnapshotSource interface {
	Snapshot() *dataset.Snapshot
	CheckReadiness(ctx context.Context) error
}

// API holds the dashboard endpoint handlers.
type API struct {
	store   SnapshotSource
	logger  *slog.Logger
	metrics *observability.Metrics
	clock   clockwork.Clock
}

// NewAPI creates the handler set backed by the given snapshot source.
func NewAPI(store SnapshotSource, logger *slog.Logger, metrics *observability.Metrics) *API {
	return NewAPIWithClock(store, logger, metrics, clockwork.NewRealClock())
}

// NewAPIWithClock is NewAPI with an injected clock for tests.
func NewAPIWithClock(store SnapshotSource, logger *slog.Logger, metrics *observability.Metrics, clock clockwork.Clock) *API {
	return &API{store: store, logger: logger, metrics: metrics, clock: clock}
}

func (api *API) register(r chi.Router) {
	r.Get("/snapshot", api.handleSnapshot)
	r.Get("/accidents", api.handleAccidents)
	r.Get("/accidents/photo", api.handleAccidentPhoto)
	r.Get("/accidents/resolve", api.handleAccidentResolve)
	r.Get("/rockfalls", api.handleRockfalls)
	r.Get("/chargers", api.handleChargers)
	r.Get("/stops", api.handleStops)
	r.Get("/bus/routes", api.handleBusRoutes)
	r.Get("/bus/positions", api.handleBusPositions)
	r.Get("/notices/summary", api.handleNoticeSummary)
	r.Get("/notices/latest", api.handleNoticeLatest)
	r.Get("/enforcement", api.handleEnforcement)
	r.Get("/passengers/recent", api.handlePassengersRecent)
	r.Get("/weather/monthly", api.handleWeatherMonthly)
	r.Get("/nearest", api.handleNearest)
}

// snapshot fetches the current snapshot or answers 503 when none has
// been published yet.
func (api *API) snapshot(w http.ResponseWriter) (*dataset.Snapshot, bool) {
	snap := api.store.Snapshot()
	if snap == nil {
		writeError(w, http.StatusServiceUnavailable, "no snapshot loaded yet")
		return nil, false
	}
	return snap, true
}

func (api *API) handleSnapshot(w http.ResponseWriter, _ *http.Request) {
	snap, ok := api.snapshot(w)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, struct {
		ID          string         `json:"id"`
		RefreshedAt time.Time      `json:"refreshed_at"`
		Fingerprint string         `json:"fingerprint"`
		Rows        map[string]int `json:"rows"`
	}{
		ID:          snap.ID,
		RefreshedAt: snap.RefreshedAt,
		Fingerprint: snap.Fingerprint,
		Rows: map[string]int{
			"accidents":      len(snap.Accidents),
			"chargers":       len(snap.Chargers),
			"rockfalls":      len(snap.Rockfalls),
			"stops":          len(snap.Stops),
			"enforcement":    len(snap.Enforcement),
			"weather_months": len(snap.Weather),
			"arrival_days":   len(snap.Arrivals),
			"departure_days": len(snap.Departures),
			"notices":        len(snap.Notices),
		},
	})
}

func (api *API) handleAccidents(w http.ResponseWriter, r *http.Request) {
	snap, ok := api.snapshot(w)
	if !ok {
		return
	}

	rows := snap.Accidents
	year, given, err := intParam(r, "year")
	if err != nil {
		badRequest(w, "year must be an integer")
		return
	}
	if given {
		filtered := make([]dataset.Accident, 0, len(rows))
		for _, a := range rows {
			if a.Year == year {
				filtered = append(filtered, a)
			}
		}
		rows = filtered
	}

	writeJSON(w, http.StatusOK, struct {
		Count     int                `json:"count"`
		Years     []int              `json:"years"`
		Accidents []dataset.Accident `json:"accidents"`
	}{
		Count:     len(rows),
		Years:     accidentYears(snap.Accidents),
		Accidents: rows,
	})
}

func accidentYears(accidents []dataset.Accident) []int {
	seen := make(map[int]struct{})
	for _, a := range accidents {
		seen[a.Year] = struct{}{}
	}
	years := make([]int, 0, len(seen))
	for y := range seen {
		years = append(years, y)
	}
	sort.Ints(years)
	return years
}

func (api *API) handleAccidentPhoto(w http.ResponseWriter, r *http.Request) {
	snap, ok := api.snapshot(w)
	if !ok {
		return
	}
	address := strings.TrimSpace(r.URL.Query().Get("address"))
	if address == "" {
		badRequest(w, "address is required")
		return
	}

	path, tier, found := snap.AccidentPhotos.ResolveTier(address, textmatch.RegionVariants)
	if !found {
		api.metrics.PhotoLookups.WithLabelValues("accident", string(textmatch.TierNone)).Inc()
		notFound(w, "no photo matched the address")
		return
	}
	api.metrics.PhotoLookups.WithLabelValues("accident", string(tier)).Inc()

	writeJSON(w, http.StatusOK, struct {
		Address string `json:"address"`
		Photo   string `json:"photo"`
		Tier    string `json:"tier"`
	}{Address: address, Photo: path, Tier: string(tier)})
}

func (api *API) handleAccidentResolve(w http.ResponseWriter, r *http.Request) {
	snap, ok := api.snapshot(w)
	if !ok {
		return
	}
	address := strings.TrimSpace(r.URL.Query().Get("address"))
	if address == "" {
		badRequest(w, "address is required")
		return
	}

	idx, tier, found := snap.AccidentIndex.ResolveTier(address, textmatch.RegionVariants)
	if !found {
		notFound(w, "no accident matched the address")
		return
	}

	writeJSON(w, http.StatusOK, struct {
		Index    int              `json:"index"`
		Tier     string           `json:"tier"`
		Accident dataset.Accident `json:"accident"`
	}{Index: idx, Tier: string(tier), Accident: snap.Accidents[idx]})
}

func (api *API) handleRockfalls(w http.ResponseWriter, _ *http.Request) {
	snap, ok := api.snapshot(w)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, struct {
		Count     int                `json:"count"`
		Rockfalls []dataset.Rockfall `json:"rockfalls"`
	}{Count: len(snap.Rockfalls), Rockfalls: snap.Rockfalls})
}

func (api *API) handleChargers(w http.ResponseWriter, _ *http.Request) {
	snap, ok := api.snapshot(w)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, struct {
		Count    int               `json:"count"`
		Chargers []dataset.Charger `json:"chargers"`
	}{Count: len(snap.Chargers), Chargers: snap.Chargers})
}

func (api *API) handleStops(w http.ResponseWriter, _ *http.Request) {
	snap, ok := api.snapshot(w)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, struct {
		Count int                 `json:"count"`
		Stops []busroute.StopInfo `json:"stops"`
	}{Count: len(snap.StopInfos), Stops: snap.StopInfos})
}

func (api *API) handleBusRoutes(w http.ResponseWriter, _ *http.Request) {
	snap, ok := api.snapshot(w)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, struct {
		Count  int              `json:"count"`
		Routes []busroute.Route `json:"routes"`
	}{Count: len(snap.Routes), Routes: snap.Routes})
}

func (api *API) handleBusPositions(w http.ResponseWriter, r *http.Request) {
	snap, ok := api.snapshot(w)
	if !ok {
		return
	}
	perRoute, given, err := intParam(r, "per_route")
	if err != nil || (given && (perRoute < 1 || perRoute > maxPositionsPerRoute)) {
		badRequest(w, "per_route must be an integer between 1 and 20")
		return
	}
	if !given {
		perRoute = 1
	}

	positions := busroute.Positions(snap.Routes, perRoute)
	writeJSON(w, http.StatusOK, struct {
		Count     int                 `json:"count"`
		Positions []busroute.Position `json:"positions"`
	}{Count: len(positions), Positions: positions})
}

func (api *API) handleNoticeSummary(w http.ResponseWriter, r *http.Request) {
	snap, ok := api.snapshot(w)
	if !ok {
		return
	}
	year, hasYear, yearErr := intParam(r, "year")
	days, hasDays, daysErr := intParam(r, "days")
	switch {
	case yearErr != nil || daysErr != nil:
		badRequest(w, "year and days must be integers")
		return
	case hasYear && hasDays:
		badRequest(w, "year and days are mutually exclusive")
		return
	case hasDays && days < 1:
		badRequest(w, "days must be positive")
		return
	}

	var sum notice.Summary
	scope := map[string]int{}
	if hasDays {
		sum = notice.SummarizeDays(snap.Notices, days)
		scope["days"] = days
	} else {
		if !hasYear {
			year = api.clock.Now().Year()
		}
		sum = notice.SummarizeYear(snap.Notices, year)
		scope["year"] = year
	}

	writeJSON(w, http.StatusOK, struct {
		Scope   map[string]int `json:"scope"`
		Summary notice.Summary `json:"summary"`
		Total   int            `json:"total"`
	}{Scope: scope, Summary: sum, Total: sum.Total()})
}

func (api *API) handleNoticeLatest(w http.ResponseWriter, r *http.Request) {
	snap, ok := api.snapshot(w)
	if !ok {
		return
	}
	year, given, err := intParam(r, "year")
	if err != nil {
		badRequest(w, "year must be an integer")
		return
	}
	if !given {
		year = api.clock.Now().Year()
	}

	resp := struct {
		Year      int                  `json:"year"`
		Latest    *notice.LatestNotice `json:"latest,omitempty"`
		Arrival   *notice.Event        `json:"arrival,omitempty"`
		Departure *notice.Event        `json:"departure,omitempty"`
	}{Year: year}

	if latest, found := notice.Latest(snap.Notices, year); found {
		resp.Latest = &latest
	}
	if ev, found := notice.LatestEvent(snap.Notices, year, notice.CategoryArrival); found {
		resp.Arrival = &ev
	}
	if ev, found := notice.LatestEvent(snap.Notices, year, notice.CategoryDeparture); found {
		resp.Departure = &ev
	}
	writeJSON(w, http.StatusOK, resp)
}

func (api *API) handleEnforcement(w http.ResponseWriter, r *http.Request) {
	snap, ok := api.snapshot(w)
	if !ok {
		return
	}
	year, hasYear, yearErr := intParam(r, "year")
	month, hasMonth, monthErr := intParam(r, "month")
	switch {
	case yearErr != nil || monthErr != nil:
		badRequest(w, "year and month must be integers")
		return
	case hasYear && hasMonth:
		badRequest(w, "year and month are mutually exclusive")
		return
	case hasMonth && (month < 1 || month > 12):
		badRequest(w, "month must be between 1 and 12")
		return
	}

	if hasMonth {
		writeJSON(w, http.StatusOK, struct {
			Month  int         `json:"month"`
			Yearly map[int]int `json:"yearly"`
		}{Month: month, Yearly: dataset.EnforcementYearlyCounts(snap.Enforcement, month)})
		return
	}

	if !hasYear {
		year = api.clock.Now().Year()
	}
	counts := dataset.EnforcementMonthlyCounts(snap.Enforcement, year)
	total := 0
	for _, n := range counts {
		total += n
	}
	writeJSON(w, http.StatusOK, struct {
		Year    int     `json:"year"`
		Monthly [12]int `json:"monthly"`
		Total   int     `json:"total"`
	}{Year: year, Monthly: counts, Total: total})
}

func (api *API) handlePassengersRecent(w http.ResponseWriter, r *http.Request) {
	snap, ok := api.snapshot(w)
	if !ok {
		return
	}
	days, given, err := intParam(r, "days")
	if err != nil || (given && days < 1) {
		badRequest(w, "days must be a positive integer")
		return
	}
	if !given {
		days = defaultWindowDays
	}

	var arriveWin, departWin dataset.WindowStats
	if end, found := dataset.LatestSailingDate(snap.Arrivals, snap.Departures); found {
		arriveWin = dataset.WindowPassengerStats(snap.Arrivals, end, days)
		departWin = dataset.WindowPassengerStats(snap.Departures, end, days)
	}

	writeJSON(w, http.StatusOK, struct {
		Arrive       dataset.RecentStats `json:"arrive"`
		Depart       dataset.RecentStats `json:"depart"`
		WindowDays   int                 `json:"window_days"`
		ArriveWindow dataset.WindowStats `json:"arrive_window"`
		DepartWindow dataset.WindowStats `json:"depart_window"`
	}{
		Arrive:       dataset.RecentPassengerStats(snap.Arrivals),
		Depart:       dataset.RecentPassengerStats(snap.Departures),
		WindowDays:   days,
		ArriveWindow: arriveWin,
		DepartWindow: departWin,
	})
}

func (api *API) handleWeatherMonthly(w http.ResponseWriter, _ *http.Request) {
	snap, ok := api.snapshot(w)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, struct {
		Count  int                             `json:"count"`
		Months []dataset.WeatherPassengerMonth `json:"months"`
	}{Count: len(snap.Weather), Months: snap.Weather})
}

func (api *API) handleNearest(w http.ResponseWriter, r *http.Request) {
	snap, ok := api.snapshot(w)
	if !ok {
		return
	}
	lat, latErr := floatParam(r, "lat")
	lon, lonErr := floatParam(r, "lon")
	if latErr != nil || lonErr != nil {
		badRequest(w, "lat and lon are required numbers")
		return
	}
	radius := defaultNearestRadius
	if s := r.URL.Query().Get("radius"); s != "" {
		v, err := strconv.ParseFloat(s, 64)
		if err != nil || v <= 0 {
			badRequest(w, "radius must be a positive number")
			return
		}
		radius = v
	}

	kind := r.URL.Query().Get("kind")
	if kind == "" {
		kind = "accidents"
	}

	var (
		points []geo.Point
		item   func(i int) any
	)
	switch kind {
	case "accidents":
		points = make([]geo.Point, len(snap.Accidents))
		for i, a := range snap.Accidents {
			points[i] = geo.Point{Lat: a.Lat, Lon: a.Lon}
		}
		item = func(i int) any { return snap.Accidents[i] }
	case "rockfalls":
		points = make([]geo.Point, len(snap.Rockfalls))
		for i, rf := range snap.Rockfalls {
			points[i] = geo.Point{Lat: rf.Lat, Lon: rf.Lon}
		}
		item = func(i int) any { return snap.Rockfalls[i] }
	case "chargers":
		points = make([]geo.Point, len(snap.Chargers))
		for i, c := range snap.Chargers {
			points[i] = geo.Point{Lat: c.Lat, Lon: c.Lon}
		}
		item = func(i int) any { return snap.Chargers[i] }
	case "stops":
		points = make([]geo.Point, len(snap.StopInfos))
		for i, st := range snap.StopInfos {
			points[i] = geo.Point{Lat: st.Lat, Lon: st.Lon}
		}
		item = func(i int) any { return snap.StopInfos[i] }
	default:
		badRequest(w, "kind must be one of accidents, rockfalls, chargers, stops")
		return
	}

	idx := geo.Nearest(points, lat, lon, radius)
	if idx < 0 {
		notFound(w, "no marker within radius")
		return
	}

	writeJSON(w, http.StatusOK, struct {
		Kind      string  `json:"kind"`
		Index     int     `json:"index"`
		DistanceM float64 `json:"distance_m"`
		Item      any     `json:"item"`
	}{
		Kind:      kind,
		Index:     idx,
		DistanceM: geo.Haversine(points[idx].Lat, points[idx].Lon, lat, lon),
		Item:      item(idx),
	})
}

// intParam reads an optional integer query parameter.
func intParam(r *http.Request, name string) (int, bool, error) {
	s := r.URL.Query().Get(name)
	if s == "" {
		return 0, false, nil
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, false, err
	}
	return v, true, nil
}

// floatParam reads a required float query parameter.
func floatParam(r *http.Request, name string) (float64, error) {
	s := r.URL.Query().Get(name)
	if s == "" {
		return 0, fmt.Errorf("%s is required", name)
	}
	return strconv.ParseFloat(s, 64)
}
