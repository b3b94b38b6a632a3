package metrics

import (
	"regexp"
	"strconv"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	// RequestDuration tracks HTTP request duration in seconds by method, path, status.
	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	// RequestTotal counts HTTP requests by method, path, status.
	RequestTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	// FormationsPublished counts formations flipped from scheduled to published.
	FormationsPublished = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "formations_published_total",
			Help: "Total number of formations published by the sweep",
		},
	)

	// SweepRuns counts publish sweep invocations by outcome (ok, error).
	SweepRuns = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "publish_sweeps_total",
			Help: "Total number of publish sweep runs by outcome",
		},
		[]string{"outcome"},
	)
)

var (
	numericPathSegment = regexp.MustCompile(`/[0-9]+(/|$)`)
	initOnce           sync.Once
)

func init() {
	initOnce.Do(func() {
		prometheus.MustRegister(RequestDuration, RequestTotal, FormationsPublished, SweepRuns)
	})
}

// NormalizePath reduces cardinality by replacing numeric path segments with {id}.
// E.g. /formations/123 -> /formations/{id}.
func NormalizePath(path string) string {
	return numericPathSegment.ReplaceAllString(path, "/{id}$1")
}

// RecordRequest records duration and count for an HTTP request.
func RecordRequest(method, path string, statusCode int, durationSeconds float64) {
	path = NormalizePath(path)
	status := strconv.Itoa(statusCode)
	RequestDuration.WithLabelValues(method, path, status).Observe(durationSeconds)
	RequestTotal.WithLabelValues(method, path, status).Inc()
}

// IncPublished increments the published-formations counter.
func IncPublished() {
	FormationsPublished.Inc()
}

// IncSweep increments the sweep-runs counter for the given outcome (ok, error).
func IncSweep(outcome string) {
	SweepRuns.WithLabelValues(outcome).Inc()
}
