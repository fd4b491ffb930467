package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wildwatch/sightings/internal/errors"
)

// findMetric gathers the registry and returns the sample whose labels match.
func findMetric(t *testing.T, registry *prometheus.Registry, name string, labels map[string]string) *dto.Metric {
	t.Helper()

	families, err := registry.Gather()
	require.NoError(t, err)

	for _, mf := range families {
		if mf.GetName() != name {
			continue
		}
		for _, m := range mf.GetMetric() {
			if labelsMatch(m, labels) {
				return m
			}
		}
	}
	return nil
}

func labelsMatch(m *dto.Metric, labels map[string]string) bool {
	if len(m.GetLabel()) != len(labels) {
		return false
	}
	for _, lp := range m.GetLabel() {
		if labels[lp.GetName()] != lp.GetValue() {
			return false
		}
	}
	return true
}

func counterValue(t *testing.T, registry *prometheus.Registry, name string, labels map[string]string) float64 {
	t.Helper()
	m := findMetric(t, registry, name, labels)
	require.NotNil(t, m, "metric %s%v not found", name, labels)
	return m.GetCounter().GetValue()
}

func TestDatastoreMetrics_Recorder(t *testing.T) {
	t.Parallel()

	registry := prometheus.NewRegistry()
	m, err := NewDatastoreMetrics(registry)
	require.NoError(t, err)

	var recorder Recorder = m
	recorder.RecordOperation(OpSightingCreate, StatusSuccess)
	recorder.RecordOperation(OpSightingCreate, StatusSuccess)
	recorder.RecordOperation(OpSpeciesGet, StatusError)
	recorder.RecordError(OpSpeciesGet, "not_found")
	recorder.RecordDuration(OpSightingRadius, 0.004)

	assert.InDelta(t, 2, counterValue(t, registry, "datastore_db_operations_total",
		map[string]string{"operation": OpSightingCreate, "status": StatusSuccess}), 0)
	assert.InDelta(t, 1, counterValue(t, registry, "datastore_db_operation_errors_total",
		map[string]string{"operation": OpSpeciesGet, "error_type": "not_found"}), 0)

	h := findMetric(t, registry, "datastore_db_operation_duration_seconds",
		map[string]string{"operation": OpSightingRadius})
	require.NotNil(t, h)
	assert.Equal(t, uint64(1), h.GetHistogram().GetSampleCount())
}

func TestDatastoreMetrics_ConnectionGauges(t *testing.T) {
	t.Parallel()

	registry := prometheus.NewRegistry()
	m, err := NewDatastoreMetrics(registry)
	require.NoError(t, err)

	m.UpdateConnectionMetrics(4, 3, 10)

	g := findMetric(t, registry, "datastore_db_connections_max", map[string]string{})
	require.NotNil(t, g)
	assert.InDelta(t, 10, g.GetGauge().GetValue(), 0)

	g = findMetric(t, registry, "datastore_db_connections_idle", map[string]string{})
	require.NotNil(t, g)
	assert.InDelta(t, 3, g.GetGauge().GetValue(), 0)
}

func TestDatastoreMetrics_DoubleRegistrationFails(t *testing.T) {
	t.Parallel()

	registry := prometheus.NewRegistry()
	_, err := NewDatastoreMetrics(registry)
	require.NoError(t, err)

	_, err = NewDatastoreMetrics(registry)
	assert.Error(t, err)
}

func TestSightingMetrics(t *testing.T) {
	t.Parallel()

	registry := prometheus.NewRegistry()
	m, err := NewSightingMetrics(registry)
	require.NoError(t, err)

	m.RecordCreated()
	m.RecordCreateFailure("species_not_found")
	m.RecordMirror(MirrorOutcomeOK, 0.05)
	m.RecordMirror(MirrorOutcomeError, 0.2)
	m.RecordMirror(MirrorOutcomeDisabled, 0)
	m.RecordQuery(LabelRadius)

	assert.InDelta(t, 1, counterValue(t, registry, "sightings_created_total", map[string]string{}), 0)
	assert.InDelta(t, 1, counterValue(t, registry, "sightings_create_failures_total",
		map[string]string{"reason": "species_not_found"}), 0)
	assert.InDelta(t, 1, counterValue(t, registry, "sightings_legacy_mirror_total",
		map[string]string{"outcome": MirrorOutcomeDisabled}), 0)
	assert.InDelta(t, 1, counterValue(t, registry, "sightings_queries_total",
		map[string]string{"kind": LabelRadius}), 0)

	// disabled mirrors are counted but not timed
	h := findMetric(t, registry, "sightings_legacy_mirror_duration_seconds", map[string]string{})
	require.NotNil(t, h)
	assert.Equal(t, uint64(2), h.GetHistogram().GetSampleCount())
}

func TestHTTPMetrics(t *testing.T) {
	t.Parallel()

	registry := prometheus.NewRegistry()
	m, err := NewHTTPMetrics(registry)
	require.NoError(t, err)

	m.RecordHTTPRequest("POST", "/api/v1/sightings", 201, 0.01)
	m.RecordHTTPRequestError("GET", "/api/v1/sightings", "validation")
	m.RecordUpstreamRequest("legacy.example", "POST", "201")
	m.RecordUpstreamRequest("legacy.example", "POST", "error")
	m.RecordUpstreamRequest("legacy.example", "POST", "201")

	assert.InDelta(t, 1, counterValue(t, registry, "http_requests_total",
		map[string]string{"method": "POST", "path": "/api/v1/sightings", "status_code": "201"}), 0)
	assert.InDelta(t, 1, counterValue(t, registry, "http_request_errors_total",
		map[string]string{"method": "GET", "path": "/api/v1/sightings", "error_type": "validation"}), 0)
	assert.InDelta(t, 2, counterValue(t, registry, "http_upstream_requests_total",
		map[string]string{"host": "legacy.example", "method": "POST", "status": "201"}), 0)
	assert.InDelta(t, 1, counterValue(t, registry, "http_upstream_requests_total",
		map[string]string{"host": "legacy.example", "method": "POST", "status": "error"}), 0)
}

func TestErrorMetrics_Hook(t *testing.T) {
	registry := prometheus.NewRegistry()
	m, err := NewErrorMetrics(registry)
	require.NoError(t, err)

	errors.AddErrorHook(m.Hook())
	t.Cleanup(errors.ClearErrorHooks)

	_ = errors.Newf("species lookup failed").
		Component("species").
		Category(errors.CategoryNotFound).
		Build()

	assert.InDelta(t, 1, counterValue(t, registry, "errors_total",
		map[string]string{"category": string(errors.CategoryNotFound), "component": "species"}), 0)
}

func TestTestRecorder(t *testing.T) {
	t.Parallel()

	r := NewTestRecorder()
	assert.False(t, r.HasRecordedMetrics())

	r.RecordOperation(OpSpeciesList, StatusSuccess)
	r.RecordDuration(OpSpeciesList, 0.5)
	r.RecordError(OpSpeciesList, "query")
	r.RecordQueryResultSize(OpSightingRadius, 3)

	assert.Equal(t, 1, r.GetOperationCount(OpSpeciesList, StatusSuccess))
	assert.Equal(t, []float64{0.5}, r.GetDurations(OpSpeciesList))
	assert.Equal(t, 1, r.GetErrorCount(OpSpeciesList, "query"))
	assert.Equal(t, 0, r.GetErrorCount(OpSightingCreate, "query"))
	assert.Equal(t, []int{3}, r.GetResultSizes(OpSightingRadius))
	assert.Nil(t, r.GetResultSizes(OpSightingList))
	assert.True(t, r.HasRecordedMetrics())
}
