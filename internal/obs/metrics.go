// Package obs holds the Prometheus metrics of the query engine and preset store.
package obs

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all metrics on a private registry
type Metrics struct {
	Queries       prometheus.Counter
	QueryLatency  prometheus.Histogram
	StageLatency  *prometheus.HistogramVec
	ItemsIn       prometheus.Counter
	ItemsOut      prometheus.Counter
	PresetSaves   prometheus.Counter
	PresetDeletes prometheus.Counter
	RefusedDelete prometheus.Counter
	LoadFailures  prometheus.Counter
	PersistErrors prometheus.Counter
	registry      *prometheus.Registry
}

// NewMetrics creates a metrics instance with its own registry
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)

	return &Metrics{
		Queries: factory.NewCounter(prometheus.CounterOpts{
			Name: "lazyfacet_queries_total",
			Help: "Total pipeline runs",
		}),
		QueryLatency: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "lazyfacet_query_latency_seconds",
			Help:    "Pipeline latency",
			Buckets: prometheus.DefBuckets,
		}),
		StageLatency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "lazyfacet_stage_latency_seconds",
			Help:    "Latency of each pipeline stage",
			Buckets: prometheus.ExponentialBuckets(0.00001, 4, 10),
		}, []string{"stage"}),
		ItemsIn: factory.NewCounter(prometheus.CounterOpts{
			Name: "lazyfacet_items_in_total",
			Help: "Records handed to the pipeline",
		}),
		ItemsOut: factory.NewCounter(prometheus.CounterOpts{
			Name: "lazyfacet_items_out_total",
			Help: "Records left after filter and search",
		}),
		PresetSaves: factory.NewCounter(prometheus.CounterOpts{
			Name: "lazyfacet_preset_saves_total",
			Help: "Presets saved",
		}),
		PresetDeletes: factory.NewCounter(prometheus.CounterOpts{
			Name: "lazyfacet_preset_deletes_total",
			Help: "Presets deleted",
		}),
		RefusedDelete: factory.NewCounter(prometheus.CounterOpts{
			Name: "lazyfacet_preset_refused_deletes_total",
			Help: "Deletes refused because the preset is a system preset",
		}),
		LoadFailures: factory.NewCounter(prometheus.CounterOpts{
			Name: "lazyfacet_preset_load_failures_total",
			Help: "Persisted preset blobs that could not be read or decoded",
		}),
		PersistErrors: factory.NewCounter(prometheus.CounterOpts{
			Name: "lazyfacet_preset_persist_errors_total",
			Help: "Failed writes of the preset blob",
		}),
		registry: registry,
	}
}

// Registry returns the private registry
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
