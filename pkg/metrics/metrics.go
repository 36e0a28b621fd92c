// Package metrics exposes prometheus instruments for extraction runs.
package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Registry holds all orgsignal metrics
type Registry struct {
	ExtractionsTotal       *prometheus.CounterVec
	ExtractionDuration     prometheus.Histogram
	EntitiesExtractedTotal *prometheus.CounterVec
	RelationshipsTotal     *prometheus.CounterVec
	CategorizationsTotal   *prometheus.CounterVec
	AnnotatorFailuresTotal *prometheus.CounterVec
	OverridesRegistered    prometheus.Gauge
	HTTPRequestsTotal      *prometheus.CounterVec
	HTTPRequestDuration    *prometheus.HistogramVec

	registry *prometheus.Registry
}

var (
	defaultRegistry *Registry
	once            sync.Once
)

// DefaultRegistry returns the process-wide registry
func DefaultRegistry() *Registry {
	once.Do(func() {
		defaultRegistry = NewRegistry()
	})
	return defaultRegistry
}

// NewRegistry creates a new metrics registry with all metrics initialized
func NewRegistry() *Registry {
	r := &Registry{registry: prometheus.NewRegistry()}
	factory := promauto.With(r.registry)

	r.ExtractionsTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "orgsignal_extractions_total",
			Help: "Total number of extraction calls",
		},
		[]string{"status"}, // ok, empty, error
	)

	r.ExtractionDuration = factory.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "orgsignal_extraction_duration_seconds",
			Help:    "Duration of extraction calls in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
		},
	)

	r.EntitiesExtractedTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "orgsignal_entities_extracted_total",
			Help: "Total number of entities extracted",
		},
		[]string{"type"}, // organization, location, person
	)

	r.RelationshipsTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "orgsignal_relationships_extracted_total",
			Help: "Total number of relationships extracted",
		},
		[]string{"method"}, // dependency, pattern, proximity
	)

	r.CategorizationsTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "orgsignal_categorizations_total",
			Help: "Total number of organization categorizations",
		},
		[]string{"method", "category"},
	)

	r.AnnotatorFailuresTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "orgsignal_annotator_failures_total",
			Help: "Total number of failed annotation calls",
		},
		[]string{"backend"},
	)

	r.OverridesRegistered = factory.NewGauge(
		prometheus.GaugeOpts{
			Name: "orgsignal_manual_overrides",
			Help: "Number of manual categorization overrides registered",
		},
	)

	r.HTTPRequestsTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "orgsignal_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	r.HTTPRequestDuration = factory.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "orgsignal_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	return r
}

// GetPrometheusRegistry returns the underlying Prometheus registry
func (r *Registry) GetPrometheusRegistry() *prometheus.Registry {
	return r.registry
}

// RecordExtraction records one extraction call and the entities it produced
func (r *Registry) RecordExtraction(status string, duration time.Duration, orgs, locs, persons int) {
	r.ExtractionsTotal.WithLabelValues(status).Inc()
	r.ExtractionDuration.Observe(duration.Seconds())
	r.EntitiesExtractedTotal.WithLabelValues("organization").Add(float64(orgs))
	r.EntitiesExtractedTotal.WithLabelValues("location").Add(float64(locs))
	r.EntitiesExtractedTotal.WithLabelValues("person").Add(float64(persons))
}

// RecordRelationship records a relationship found by method
func (r *Registry) RecordRelationship(method string) {
	r.RelationshipsTotal.WithLabelValues(method).Inc()
}

// RecordCategorization records one categorization decision
func (r *Registry) RecordCategorization(method, category string) {
	r.CategorizationsTotal.WithLabelValues(method, category).Inc()
}

// RecordAnnotatorFailure records a failed annotation call
func (r *Registry) RecordAnnotatorFailure(backend string) {
	r.AnnotatorFailuresTotal.WithLabelValues(backend).Inc()
}

// SetOverrides sets the current override count
func (r *Registry) SetOverrides(n int) {
	r.OverridesRegistered.Set(float64(n))
}

// RecordHTTPRequest records an HTTP request with its duration
func (r *Registry) RecordHTTPRequest(method, path, status string, duration time.Duration) {
	r.HTTPRequestsTotal.WithLabelValues(method, path, status).Inc()
	r.HTTPRequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}
