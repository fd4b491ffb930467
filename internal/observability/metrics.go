// Package observability provides metrics and monitoring capabilities for the sightings service.
package observability

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/wildwatch/sightings/internal/httpclient"
	"github.com/wildwatch/sightings/internal/logger"
	"github.com/wildwatch/sightings/internal/observability/metrics"
)

// Metrics holds all the metric collectors for the application.
type Metrics struct {
	registry  *prometheus.Registry
	Datastore *metrics.DatastoreMetrics
	Sightings *metrics.SightingMetrics
	HTTP      *metrics.HTTPMetrics
	Errors    *metrics.ErrorMetrics
}

// NewMetrics creates a new instance of Metrics, initializing all metric collectors
// on a private registry together with the Go runtime and process collectors.
func NewMetrics() (*Metrics, error) {
	registry := prometheus.NewRegistry()

	if err := registry.Register(collectors.NewGoCollector()); err != nil {
		return nil, fmt.Errorf("failed to register Go collector: %w", err)
	}
	if err := registry.Register(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{})); err != nil {
		return nil, fmt.Errorf("failed to register process collector: %w", err)
	}

	datastoreMetrics, err := metrics.NewDatastoreMetrics(registry)
	if err != nil {
		return nil, fmt.Errorf("failed to create Datastore metrics: %w", err)
	}

	sightingMetrics, err := metrics.NewSightingMetrics(registry)
	if err != nil {
		return nil, fmt.Errorf("failed to create Sighting metrics: %w", err)
	}

	httpMetrics, err := metrics.NewHTTPMetrics(registry)
	if err != nil {
		return nil, fmt.Errorf("failed to create HTTP metrics: %w", err)
	}

	errorMetrics, err := metrics.NewErrorMetrics(registry)
	if err != nil {
		return nil, fmt.Errorf("failed to create Error metrics: %w", err)
	}

	return &Metrics{
		registry:  registry,
		Datastore: datastoreMetrics,
		Sightings: sightingMetrics,
		HTTP:      httpMetrics,
		Errors:    errorMetrics,
	}, nil
}

// Registry returns the registry all collectors are registered on.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler returns the HTTP handler for the metrics endpoint.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{
		ErrorLog:      log.New(os.Stderr, "metrics handler: ", log.LstdFlags),
		ErrorHandling: promhttp.HTTPErrorOnError,
	})
}

// PoolStatsFunc reports total, idle and maximum database connections.
type PoolStatsFunc func() (total, idle, maxConns int)

// CollectPoolStats samples pool usage into the datastore gauges every interval
// until ctx is done.
func (m *Metrics) CollectPoolStats(ctx context.Context, interval time.Duration, stats PoolStatsFunc) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		m.Datastore.UpdateConnectionMetrics(stats())
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

// InstrumentClient counts every request hc sends and logs it at debug level.
func (m *Metrics) InstrumentClient(hc *httpclient.Client, log logger.Logger) {
	log = log.Module("upstream")
	hc.SetBeforeRequestHook(func(req *http.Request) {
		log.Debug("sending upstream request",
			logger.String("method", req.Method),
			logger.String("host", req.URL.Host))
	})
	hc.SetAfterResponseHook(func(req *http.Request, resp *http.Response, err error) {
		status := "error"
		if err == nil && resp != nil {
			status = strconv.Itoa(resp.StatusCode)
		}
		m.HTTP.RecordUpstreamRequest(req.URL.Host, req.Method, status)
	})
}
