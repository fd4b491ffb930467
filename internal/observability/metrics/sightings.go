package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Legacy mirror outcome label values, matching the tagged mirror result.
const (
	MirrorOutcomeOK       = "ok"
	MirrorOutcomeError    = "error"
	MirrorOutcomeDisabled = "disabled"
)

// SightingMetrics contains Prometheus metrics for sighting ingestion and retrieval.
type SightingMetrics struct {
	registry *prometheus.Registry

	createdTotal        prometheus.Counter
	createFailuresTotal *prometheus.CounterVec
	mirrorTotal         *prometheus.CounterVec
	mirrorDuration      prometheus.Histogram
	queriesTotal        *prometheus.CounterVec

	collectors []prometheus.Collector
}

// NewSightingMetrics creates and registers sighting metrics.
func NewSightingMetrics(registry *prometheus.Registry) (*SightingMetrics, error) {
	m := &SightingMetrics{registry: registry}
	m.initMetrics()
	if err := registry.Register(m); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *SightingMetrics) initMetrics() {
	m.createdTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "sightings_created_total",
		Help: "Total number of sightings persisted",
	})

	m.createFailuresTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sightings_create_failures_total",
			Help: "Total number of rejected or failed sighting creations",
		},
		[]string{"reason"}, // reason: validation, species_not_found, location_write, database
	)

	m.mirrorTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sightings_legacy_mirror_total",
			Help: "Total number of legacy mirror attempts by outcome",
		},
		[]string{"outcome"},
	)

	m.mirrorDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "sightings_legacy_mirror_duration_seconds",
		Help:    "Time taken for legacy mirror writes",
		Buckets: prometheus.ExponentialBuckets(BucketStart10ms, BucketFactor2, BucketCount12), // 10ms to ~20s
	})

	m.queriesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sightings_queries_total",
			Help: "Total number of sighting list queries by kind",
		},
		[]string{"kind"}, // kind: all, radius
	)

	m.collectors = []prometheus.Collector{
		m.createdTotal,
		m.createFailuresTotal,
		m.mirrorTotal,
		m.mirrorDuration,
		m.queriesTotal,
	}
}

// Describe implements the Collector interface
func (m *SightingMetrics) Describe(ch chan<- *prometheus.Desc) {
	for _, collector := range m.collectors {
		collector.Describe(ch)
	}
}

// Collect implements the Collector interface
func (m *SightingMetrics) Collect(ch chan<- prometheus.Metric) {
	for _, collector := range m.collectors {
		collector.Collect(ch)
	}
}

// RecordCreated counts a persisted sighting.
func (m *SightingMetrics) RecordCreated() {
	m.createdTotal.Inc()
}

// RecordCreateFailure counts a creation that did not persist.
func (m *SightingMetrics) RecordCreateFailure(reason string) {
	m.createFailuresTotal.WithLabelValues(reason).Inc()
}

// RecordMirror counts a legacy mirror outcome. Duration is only observed for
// attempts that actually reached the network.
func (m *SightingMetrics) RecordMirror(outcome string, seconds float64) {
	m.mirrorTotal.WithLabelValues(outcome).Inc()
	if outcome != MirrorOutcomeDisabled {
		m.mirrorDuration.Observe(seconds)
	}
}

// RecordQuery counts a list query by kind.
func (m *SightingMetrics) RecordQuery(kind string) {
	m.queriesTotal.WithLabelValues(kind).Inc()
}
