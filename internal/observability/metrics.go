package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the
// dashboard service.
type Metrics struct {
	SnapshotRefreshes prometheus.Counter
	RefreshFailures   prometheus.Counter
	RefreshSkips      prometheus.Counter
	RefreshDuration   prometheus.Histogram
	SnapshotReady     prometheus.Gauge

	SnapshotRows *prometheus.GaugeVec   // label: source={accidents,chargers,...}
	CacheResults *prometheus.CounterVec // label: result={hit,miss,error,store_error}

	// Text-matching metrics.
	PhotoLookups *prometheus.CounterVec // labels: kind={accident,rockfall}, tier={exact,substring,token,none}

	// Classifier metrics, refreshed with each snapshot.
	NoticeEvents *prometheus.GaugeVec // label: category

	// HTTP metrics, labelled by chi route pattern.
	HTTPRequests *prometheus.CounterVec   // labels: route, code
	HTTPDuration *prometheus.HistogramVec // label: route
}

// NewMetrics creates and registers all service metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		SnapshotRefreshes: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "ulleung_dash",
			Name:      "snapshot_refreshes_total",
			Help:      "Completed snapshot refreshes.",
		}),
		RefreshFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "ulleung_dash",
			Name:      "snapshot_refresh_failures_total",
			Help:      "Snapshot refreshes that returned an error.",
		}),
		RefreshSkips: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "ulleung_dash",
			Name:      "snapshot_refresh_skips_total",
			Help:      "Refreshes skipped because the source fingerprint was unchanged.",
		}),
		RefreshDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "ulleung_dash",
			Name:      "snapshot_refresh_duration_seconds",
			Help:      "Duration of a complete snapshot rebuild.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10},
		}),
		SnapshotReady: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "ulleung_dash",
			Name:      "snapshot_ready",
			Help:      "1 once the first snapshot has been built.",
		}),
		SnapshotRows: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "ulleung_dash",
			Name:      "snapshot_rows",
			Help:      "Rows loaded per source in the current snapshot.",
		}, []string{"source"}),
		CacheResults: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "ulleung_dash",
			Name:      "snapshot_cache_total",
			Help:      "Snapshot cache lookups and stores by result.",
		}, []string{"result"}),
		PhotoLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "ulleung_dash",
			Name:      "photo_lookups_total",
			Help:      "Photo index resolutions by kind and match tier.",
		}, []string{"kind", "tier"}),
		NoticeEvents: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "ulleung_dash",
			Name:      "notice_events",
			Help:      "Deduplicated ferry notice events for the current year, by category.",
		}, []string{"category"}),
		HTTPRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "ulleung_dash",
			Name:      "http_requests_total",
			Help:      "HTTP requests by route pattern and status code.",
		}, []string{"route", "code"}),
		HTTPDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "ulleung_dash",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration by route pattern.",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 2.5},
		}, []string{"route"}),
	}

	prometheus.MustRegister(
		m.SnapshotRefreshes,
		m.RefreshFailures,
		m.RefreshSkips,
		m.RefreshDuration,
		m.SnapshotReady,
		m.SnapshotRows,
		m.CacheResults,
		m.PhotoLookups,
		m.NoticeEvents,
		m.HTTPRequests,
		m.HTTPDuration,
	)

	return m
}

// NewMetricsForTesting creates Metrics with a fresh registry to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return &Metrics{
		SnapshotRefreshes: prometheus.NewCounter(prometheus.CounterOpts{Namespace: "ulleung_dash", Name: "snapshot_refreshes_total"}),
		RefreshFailures:   prometheus.NewCounter(prometheus.CounterOpts{Namespace: "ulleung_dash", Name: "snapshot_refresh_failures_total"}),
		RefreshSkips:      prometheus.NewCounter(prometheus.CounterOpts{Namespace: "ulleung_dash", Name: "snapshot_refresh_skips_total"}),
		RefreshDuration:   prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: "ulleung_dash", Name: "snapshot_refresh_duration_seconds"}),
		SnapshotReady:     prometheus.NewGauge(prometheus.GaugeOpts{Namespace: "ulleung_dash", Name: "snapshot_ready"}),
		SnapshotRows:      prometheus.NewGaugeVec(prometheus.GaugeOpts{Namespace: "ulleung_dash", Name: "snapshot_rows"}, []string{"source"}),
		CacheResults:      prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "ulleung_dash", Name: "snapshot_cache_total"}, []string{"result"}),
		PhotoLookups:      prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "ulleung_dash", Name: "photo_lookups_total"}, []string{"kind", "tier"}),
		NoticeEvents:      prometheus.NewGaugeVec(prometheus.GaugeOpts{Namespace: "ulleung_dash", Name: "notice_events"}, []string{"category"}),
		HTTPRequests:      prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "ulleung_dash", Name: "http_requests_total"}, []string{"route", "code"}),
		HTTPDuration:      prometheus.NewHistogramVec(prometheus.HistogramOpts{Namespace: "ulleung_dash", Name: "http_request_duration_seconds"}, []string{"route"}),
	}
}
