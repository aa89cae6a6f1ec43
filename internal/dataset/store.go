package dataset

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"golang.org/x/sync/errgroup"

	"github.com/ulleunglab/transport-dashboard/internal/busroute"
	"github.com/ulleunglab/transport-dashboard/internal/cache"
	"github.com/ulleunglab/transport-dashboard/internal/fingerprint"
	"github.com/ulleunglab/transport-dashboard/internal/notice"
	"github.com/ulleunglab/transport-dashboard/internal/observability"
	"github.com/ulleunglab/transport-dashboard/internal/photoindex"
	"github.com/ulleunglab/transport-dashboard/internal/textmatch"
)

// File names of the municipal exports inside the data directory.
const (
	chargerFile  = "울릉군 전기차 충전소 2020-07-13.csv"
	rockfallFile = "rockfall_coords_final.csv"
	stopsFile    = "ullengdo_bus_stops.csv"
	smsFile      = "울릉알리미_텍스트.csv"
	weatherDir   = "weather_pax"
	rainFile     = "2018.01.01-2025.10.31 강수량.csv"
)

// Snapshot is one immutable, fully derived view of every data source.
// Handlers read whichever snapshot pointer they observe; a refresh swaps
// the pointer atomically and never mutates a published snapshot.
type Snapshot struct {
	ID          string
	RefreshedAt time.Time
	Fingerprint string

	Accidents   []Accident
	Chargers    []Charger
	Rockfalls   []Rockfall
	Stops       []busroute.Stop
	StopInfos   []busroute.StopInfo
	Routes      []busroute.Route
	Enforcement []Enforcement
	Weather     []WeatherPassengerMonth
	Arrivals    []PassengerDay
	Departures  []PassengerDay
	Notices     []notice.Message

	AccidentIndex  *textmatch.Index[int]
	AccidentPhotos *textmatch.Index[string]
	RockfallPhotos *textmatch.Index[string]
}

// payload is the serializable part of a snapshot, cached across process
// restarts keyed by the source fingerprint. Indexes and routes are
// rebuilt from it on load.
type payload struct {
	Accidents   []Accident              `msgpack:"accidents"`
	Chargers    []Charger               `msgpack:"chargers"`
	Rockfalls   []Rockfall              `msgpack:"rockfalls"`
	Stops       []busroute.Stop         `msgpack:"stops"`
	Enforcement []Enforcement           `msgpack:"enforcement"`
	Weather     []WeatherPassengerMonth `msgpack:"weather"`
	Arrivals    []PassengerDay          `msgpack:"arrivals"`
	Departures  []PassengerDay          `msgpack:"departures"`
	Notices     []notice.Message        `msgpack:"notices"`
}

// Sources names the directories the store reads from.
type Sources struct {
	DataDir          string
	AccidentPhotoDir string
	RockfallPhotoDir string
}

// Store loads the data sources into snapshots and serves the current
// one. Refreshes are fingerprint-gated: when no source file changed,
// the running snapshot stays.
type Store struct {
	sources  Sources
	loader   *Loader
	logger   *slog.Logger
	metrics  *observability.Metrics
	cache    cache.Store
	cacheTTL time.Duration
	clock    clockwork.Clock

	snap  atomic.Pointer[Snapshot]
	ready atomic.Bool
}

// NewStore creates a Store. cacheStore may be nil to disable snapshot
// caching.
func NewStore(sources Sources, loader *Loader, logger *slog.Logger, metrics *observability.Metrics, cacheStore cache.Store, cacheTTL time.Duration) *Store {
	return NewStoreWithClock(sources, loader, logger, metrics, cacheStore, cacheTTL, clockwork.NewRealClock())
}

// NewStoreWithClock is NewStore with an injected clock for tests.
func NewStoreWithClock(sources Sources, loader *Loader, logger *slog.Logger, metrics *observability.Metrics, cacheStore cache.Store, cacheTTL time.Duration, clock clockwork.Clock) *Store {
	return &Store{
		sources:  sources,
		loader:   loader,
		logger:   logger,
		metrics:  metrics,
		cache:    cacheStore,
		cacheTTL: cacheTTL,
		clock:    clock,
	}
}

// Snapshot returns the current snapshot, or nil before the first
// successful refresh.
func (s *Store) Snapshot() *Snapshot {
	return s.snap.Load()
}

// CheckReadiness returns nil once a snapshot has been published, or an
// error describing why the service is not yet ready.
func (s *Store) CheckReadiness(_ context.Context) error {
	if !s.ready.Load() {
		return errors.New("no dataset snapshot loaded yet")
	}
	return nil
}

// Refresh fingerprints the sources and, when anything changed, loads a
// new snapshot and publishes it.
func (s *Store) Refresh(ctx context.Context) error {
	start := s.clock.Now()

	fp, err := s.fingerprintSources()
	if err != nil {
		s.metrics.RefreshFailures.Inc()
		return fmt.Errorf("fingerprint sources: %w", err)
	}

	if cur := s.snap.Load(); cur != nil && cur.Fingerprint == fp {
		s.metrics.RefreshSkips.Inc()
		s.logger.Debug("sources unchanged, keeping snapshot", "snapshot_id", cur.ID)
		return nil
	}

	snap, err := s.build(ctx, fp)
	if err != nil {
		s.metrics.RefreshFailures.Inc()
		return err
	}

	s.snap.Store(snap)
	s.ready.Store(true)
	s.observe(snap, s.clock.Since(start))
	s.logger.Info("snapshot published",
		"snapshot_id", snap.ID,
		"accidents", len(snap.Accidents),
		"chargers", len(snap.Chargers),
		"rockfalls", len(snap.Rockfalls),
		"stops", len(snap.Stops),
		"notices", len(snap.Notices),
	)
	return nil
}

// Run refreshes on a fixed interval until the context is cancelled. A
// non-positive interval disables periodic refresh.
func (s *Store) Run(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		s.logger.Info("periodic refresh disabled")
		return nil
	}
	s.logger.Info("refresh loop started", "interval", interval)

	ticker := s.clock.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("refresh loop stopping", "reason", ctx.Err())
			return nil
		case <-ticker.Chan():
			if err := s.Refresh(ctx); err != nil {
				s.logger.Error("snapshot refresh failed", "error", err)
			}
		}
	}
}

func isCSVFile(name string) bool {
	return strings.HasSuffix(strings.ToLower(name), ".csv")
}

// fingerprintSources digests file names, sizes and mtimes of every
// source directory. Loading only happens when this digest moves.
func (s *Store) fingerprintSources() (string, error) {
	dataFP, err := fingerprint.Dir(s.sources.DataDir, isCSVFile)
	if err != nil {
		return "", err
	}
	weatherFP, err := fingerprint.Dir(filepath.Join(s.sources.DataDir, weatherDir), isCSVFile)
	if err != nil {
		return "", err
	}
	accFP, err := fingerprint.Dir(s.sources.AccidentPhotoDir, photoindex.IsImage)
	if err != nil {
		return "", err
	}
	rockFP, err := fingerprint.Dir(s.sources.RockfallPhotoDir, photoindex.IsImage)
	if err != nil {
		return "", err
	}
	return fingerprint.Combine(dataFP, weatherFP, accFP, rockFP), nil
}

// build produces a snapshot for the given fingerprint, from the cache
// when a prior process already loaded these exact sources, otherwise
// from the source files.
func (s *Store) build(ctx context.Context, fp string) (*Snapshot, error) {
	if p, ok := s.cachedPayload(ctx, fp); ok {
		return s.assemble(fp, p)
	}

	p, err := s.loadPayload()
	if err != nil {
		return nil, err
	}

	snap, err := s.assemble(fp, p)
	if err != nil {
		return nil, err
	}
	s.offerPayload(ctx, fp, p)
	return snap, nil
}

func (s *Store) cachedPayload(ctx context.Context, fp string) (payload, bool) {
	if s.cache == nil {
		return payload{}, false
	}
	data, ok, err := s.cache.Get(ctx, fp)
	if err != nil {
		s.metrics.CacheResults.WithLabelValues("error").Inc()
		s.logger.Warn("snapshot cache read failed", "error", err)
		return payload{}, false
	}
	if !ok {
		s.metrics.CacheResults.WithLabelValues("miss").Inc()
		return payload{}, false
	}
	var p payload
	if err := cache.Decode(data, &p); err != nil {
		s.metrics.CacheResults.WithLabelValues("error").Inc()
		s.logger.Warn("snapshot cache entry undecodable", "error", err)
		return payload{}, false
	}
	s.metrics.CacheResults.WithLabelValues("hit").Inc()
	return p, true
}

func (s *Store) offerPayload(ctx context.Context, fp string, p payload) {
	if s.cache == nil {
		return
	}
	data, err := cache.Encode(p)
	if err != nil {
		s.metrics.CacheResults.WithLabelValues("store_error").Inc()
		s.logger.Warn("snapshot cache encode failed", "error", err)
		return
	}
	if err := s.cache.Set(ctx, fp, data, s.cacheTTL); err != nil {
		s.metrics.CacheResults.WithLabelValues("store_error").Inc()
		s.logger.Warn("snapshot cache write failed", "error", err)
	}
}

// loadPayload reads every source concurrently. Individual loaders
// tolerate missing or malformed files; only unreadable photo
// directories abort the load.
func (s *Store) loadPayload() (payload, error) {
	var p payload

	dataDir := s.sources.DataDir
	paxDir := filepath.Join(dataDir, weatherDir)

	var g errgroup.Group
	g.Go(func() error {
		p.Accidents = s.loader.LoadAccidents(dataDir)
		return nil
	})
	g.Go(func() error {
		rockPhotos, err := photoindex.Scan(s.sources.RockfallPhotoDir)
		if err != nil {
			return fmt.Errorf("scan rockfall photos: %w", err)
		}
		p.Rockfalls = s.loader.LoadRockfalls(filepath.Join(dataDir, rockfallFile), rockPhotos)
		return nil
	})
	g.Go(func() error {
		p.Chargers = s.loader.LoadChargers(filepath.Join(dataDir, chargerFile))
		return nil
	})
	g.Go(func() error {
		p.Stops = s.loader.LoadBusStops(filepath.Join(dataDir, stopsFile))
		return nil
	})
	g.Go(func() error {
		p.Enforcement = s.loader.LoadEnforcement(dataDir)
		return nil
	})
	g.Go(func() error {
		p.Weather = s.loader.LoadWeatherPassengerMonthly(
			filepath.Join(paxDir, rainFile),
			filepath.Join(paxDir, "일별 여객 "+DirectionArrive+".csv"),
			filepath.Join(paxDir, "일별 여객 "+DirectionDepart+".csv"),
		)
		return nil
	})
	g.Go(func() error {
		p.Arrivals = s.loader.LoadPassengerDaily(paxDir, DirectionArrive)
		return nil
	})
	g.Go(func() error {
		p.Departures = s.loader.LoadPassengerDaily(paxDir, DirectionDepart)
		return nil
	})
	g.Go(func() error {
		p.Notices = s.loader.LoadSMS(filepath.Join(dataDir, smsFile))
		return nil
	})
	if err := g.Wait(); err != nil {
		return payload{}, err
	}
	return p, nil
}

// assemble derives the indexes and routes a snapshot serves from.
func (s *Store) assemble(fp string, p payload) (*Snapshot, error) {
	accPhotos, err := photoindex.Scan(s.sources.AccidentPhotoDir)
	if err != nil {
		return nil, fmt.Errorf("scan accident photos: %w", err)
	}
	rockPhotos, err := photoindex.Scan(s.sources.RockfallPhotoDir)
	if err != nil {
		return nil, fmt.Errorf("scan rockfall photos: %w", err)
	}
	routes, stopInfos := busroute.Build(busroute.Catalog(), p.Stops)

	return &Snapshot{
		ID:          uuid.NewString(),
		RefreshedAt: s.clock.Now(),
		Fingerprint: fp,

		Accidents:   p.Accidents,
		Chargers:    p.Chargers,
		Rockfalls:   p.Rockfalls,
		Stops:       p.Stops,
		StopInfos:   stopInfos,
		Routes:      routes,
		Enforcement: p.Enforcement,
		Weather:     p.Weather,
		Arrivals:    p.Arrivals,
		Departures:  p.Departures,
		Notices:     p.Notices,

		AccidentIndex:  IndexAccidents(p.Accidents),
		AccidentPhotos: accPhotos,
		RockfallPhotos: rockPhotos,
	}, nil
}

func (s *Store) observe(snap *Snapshot, took time.Duration) {
	s.metrics.SnapshotRefreshes.Inc()
	s.metrics.RefreshDuration.Observe(took.Seconds())
	s.metrics.SnapshotReady.Set(1)

	s.metrics.SnapshotRows.WithLabelValues("accidents").Set(float64(len(snap.Accidents)))
	s.metrics.SnapshotRows.WithLabelValues("chargers").Set(float64(len(snap.Chargers)))
	s.metrics.SnapshotRows.WithLabelValues("rockfalls").Set(float64(len(snap.Rockfalls)))
	s.metrics.SnapshotRows.WithLabelValues("stops").Set(float64(len(snap.Stops)))
	s.metrics.SnapshotRows.WithLabelValues("enforcement").Set(float64(len(snap.Enforcement)))
	s.metrics.SnapshotRows.WithLabelValues("weather_months").Set(float64(len(snap.Weather)))
	s.metrics.SnapshotRows.WithLabelValues("arrival_days").Set(float64(len(snap.Arrivals)))
	s.metrics.SnapshotRows.WithLabelValues("departure_days").Set(float64(len(snap.Departures)))
	s.metrics.SnapshotRows.WithLabelValues("notices").Set(float64(len(snap.Notices)))

	sum := notice.SummarizeYear(snap.Notices, s.clock.Now().Year())
	s.metrics.NoticeEvents.WithLabelValues("cancelled").Set(float64(sum.Cancelled))
	s.metrics.NoticeEvents.WithLabelValues("controlled").Set(float64(sum.Controlled))
	s.metrics.NoticeEvents.WithLabelValues("time_changed").Set(float64(sum.TimeChanged))
	s.metrics.NoticeEvents.WithLabelValues("arrivals").Set(float64(sum.Arrivals.Total()))
	s.metrics.NoticeEvents.WithLabelValues("departures").Set(float64(sum.Departures.Total()))
}
