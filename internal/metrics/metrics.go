// Package metrics exposes Prometheus instrumentation for the dataset
// pipeline and the HTTP surface. The Collector owns its own registry so
// tests and embedders never fight over the global one.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Collector struct {
	reg *prometheus.Registry

	DatasetLoads    *prometheus.CounterVec // path label
	DatasetFeatures *prometheus.GaugeVec   // path label
	LoadDuration    prometheus.Histogram
	CacheHits       prometheus.Counter
	CacheMisses     prometheus.Counter
	DatasetErrors   *prometheus.CounterVec // dataset label

	BundleBuilds   prometheus.Counter
	BundleLayers   prometheus.Histogram
	BundleDuration prometheus.Histogram

	HTTPRequests *prometheus.CounterVec   // method, path, status
	HTTPDuration *prometheus.HistogramVec // method, path
}

func NewCollector() *Collector {
	reg := prometheus.NewRegistry()

	c := &Collector{
		reg: reg,
		DatasetLoads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "curbmap_dataset_loads_total",
			Help: "Total dataset files parsed from disk.",
		}, []string{"path"}),
		DatasetFeatures: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "curbmap_dataset_features",
			Help: "Feature count of the last successful load per dataset file.",
		}, []string{"path"}),
		LoadDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "curbmap_dataset_load_duration_seconds",
			Help:    "Duration of dataset parse and normalization.",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 15),
		}),
		CacheHits: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "curbmap_dataset_cache_hits_total",
			Help: "Dataset loads served from the in-memory cache.",
		}),
		CacheMisses: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "curbmap_dataset_cache_misses_total",
			Help: "Dataset loads that had to read from disk.",
		}),
		DatasetErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "curbmap_dataset_errors_total",
			Help: "Dataset loads that failed and degraded the map.",
		}, []string{"dataset"}),
		BundleBuilds: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "curbmap_bundle_builds_total",
			Help: "Total map bundles assembled.",
		}),
		BundleLayers: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "curbmap_bundle_layers",
			Help:    "Layer count per assembled bundle.",
			Buckets: prometheus.LinearBuckets(1, 1, 10),
		}),
		BundleDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "curbmap_bundle_build_duration_seconds",
			Help:    "Duration of bundle assembly including styling.",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 15),
		}),
		HTTPRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "curbmap_http_requests_total",
			Help: "HTTP requests by method, route and status.",
		}, []string{"method", "path", "status"}),
		HTTPDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "curbmap_http_request_duration_seconds",
			Help:    "HTTP request latency by method and route.",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 15),
		}, []string{"method", "path"}),
	}

	reg.MustRegister(
		c.DatasetLoads, c.DatasetFeatures, c.LoadDuration,
		c.CacheHits, c.CacheMisses, c.DatasetErrors,
		c.BundleBuilds, c.BundleLayers, c.BundleDuration,
		c.HTTPRequests, c.HTTPDuration,
	)

	return c
}

func (c *Collector) Handler() http.Handler { return promhttp.HandlerFor(c.reg, promhttp.HandlerOpts{}) }

// DatasetLoaded records one successful disk load.
func (c *Collector) DatasetLoaded(path string, features int, elapsed time.Duration) {
	c.DatasetLoads.WithLabelValues(path).Inc()
	c.DatasetFeatures.WithLabelValues(path).Set(float64(features))
	c.LoadDuration.Observe(elapsed.Seconds())
}

// CacheHit records a load served from memory.
func (c *Collector) CacheHit() { c.CacheHits.Inc() }

// CacheMiss records a load that went to disk.
func (c *Collector) CacheMiss() { c.CacheMisses.Inc() }

// BundleBuilt records one assembled map bundle.
func (c *Collector) BundleBuilt(layers int, elapsed time.Duration) {
	c.BundleBuilds.Inc()
	c.BundleLayers.Observe(float64(layers))
	c.BundleDuration.Observe(elapsed.Seconds())
}

// DatasetError records a dataset that failed to load during assembly.
func (c *Collector) DatasetError(dataset string) {
	c.DatasetErrors.WithLabelValues(dataset).Inc()
}

// Instrument wraps next, recording request counts and latencies. The
// path label uses the matched route pattern where the mux provides one,
// keeping label cardinality bounded.
func (c *Collector) Instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(ww, r)

		path := r.Pattern
		if path == "" {
			path = r.URL.Path
		}
		c.HTTPRequests.WithLabelValues(r.Method, path, strconv.Itoa(ww.status)).Inc()
		c.HTTPDuration.WithLabelValues(r.Method, path).Observe(time.Since(start).Seconds())
	})
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

// Flush keeps SSE streaming working through the wrapper.
func (w *statusWriter) Flush() {
	if f, ok := w.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func (w *statusWriter) Unwrap() http.ResponseWriter { return w.ResponseWriter }
