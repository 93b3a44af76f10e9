// Package metrics holds the Prometheus collectors of the recipe browser.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "recipe_browser"

var (
	// UpstreamRequestsTotal counts recipe API calls by operation and status class.
	UpstreamRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "upstream_requests_total",
			Help:      "Total number of recipe API requests",
		},
		[]string{"operation", "status"},
	)

	UpstreamDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "upstream_request_duration_seconds",
			Help:      "Duration of recipe API requests in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"operation"},
	)

	// TogglesTotal counts favorite toggles by outcome (added, removed, error, skipped).
	TogglesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "favorite_toggles_total",
			Help:      "Total number of favorite toggles",
		},
		[]string{"outcome"},
	)

	// StaleResultsTotal counts async results dropped because the view was re-activated.
	StaleResultsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stale_results_total",
			Help:      "Total number of async results discarded for an older generation",
		},
		[]string{"event"},
	)

	ActivationsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "activations_total",
			Help:      "Total number of browser view activations",
		},
	)

	ThumbnailsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "thumbnails_total",
			Help:      "Total number of thumbnail requests by source",
		},
		[]string{"source"},
	)
)

// RecordUpstream records one recipe API call.
func RecordUpstream(operation, status string, seconds float64) {
	UpstreamRequestsTotal.WithLabelValues(operation, status).Inc()
	UpstreamDuration.WithLabelValues(operation).Observe(seconds)
}

func RecordToggle(outcome string) {
	TogglesTotal.WithLabelValues(outcome).Inc()
}

func RecordStale(event string) {
	StaleResultsTotal.WithLabelValues(event).Inc()
}

func RecordThumbnail(source string) {
	ThumbnailsTotal.WithLabelValues(source).Inc()
}
