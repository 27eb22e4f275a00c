// Package metrics provides fire-and-forget counters and timers for processing
// outcomes. Recording never fails and never blocks the caller; no operation
// in the service depends on the metrics backend being reachable.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// System records service-level counters and processing durations.
type System interface {
	RecordUpload()
	RecordProcessingSuccess()
	RecordProcessingFailure()
	RecordCacheHit()
	RecordCacheMiss()
	ObserveProcessingDuration(d time.Duration)

	// Handler returns the HTTP handler exposing the metrics endpoint.
	Handler() http.Handler
}

type registry struct {
	reg                *prometheus.Registry
	uploads            prometheus.Counter
	processedSuccess   prometheus.Counter
	processedFailure   prometheus.Counter
	cacheHits          prometheus.Counter
	cacheMisses        prometheus.Counter
	processingDuration prometheus.Histogram
}

// New creates a metrics system with a dedicated Prometheus registry.
func New() System {
	r := &registry{
		reg: prometheus.NewRegistry(),
		uploads: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "prism_images_uploaded_total",
			Help: "Total images uploaded.",
		}),
		processedSuccess: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "prism_images_processed_success_total",
			Help: "Successfully processed images.",
		}),
		processedFailure: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "prism_images_processed_failed_total",
			Help: "Failed image processing attempts, including malformed result messages.",
		}),
		cacheHits: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "prism_cache_hits_total",
			Help: "Result cache hits.",
		}),
		cacheMisses: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "prism_cache_misses_total",
			Help: "Result cache misses.",
		}),
		processingDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "prism_image_processing_duration_seconds",
			Help:    "End-to-end time from upload to terminal classification result.",
			Buckets: prometheus.DefBuckets,
		}),
	}

	r.reg.MustRegister(
		r.uploads,
		r.processedSuccess,
		r.processedFailure,
		r.cacheHits,
		r.cacheMisses,
		r.processingDuration,
		collectors.NewGoCollector(),
	)

	return r
}

func (r *registry) RecordUpload()            { r.uploads.Inc() }
func (r *registry) RecordProcessingSuccess() { r.processedSuccess.Inc() }
func (r *registry) RecordProcessingFailure() { r.processedFailure.Inc() }
func (r *registry) RecordCacheHit()          { r.cacheHits.Inc() }
func (r *registry) RecordCacheMiss()         { r.cacheMisses.Inc() }

func (r *registry) ObserveProcessingDuration(d time.Duration) {
	r.processingDuration.Observe(d.Seconds())
}

func (r *registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{})
}
