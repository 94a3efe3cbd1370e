// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ComparisonsCompleted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "screener_comparisons_completed_total",
			Help: "Total number of similarity comparisons completed per method",
		},
		[]string{"method"},
	)

	ComparisonsFailed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "screener_comparisons_failed_total",
			Help: "Total number of comparisons that produced a zero-score diagnostic",
		},
		[]string{"method", "error_code"},
	)

	ComparisonDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "screener_comparison_duration_seconds",
			Help: "Duration of a single similarity comparison in seconds",
		},
		[]string{"method"},
	)

	BatchItemsProcessed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "screener_batch_items_processed_total",
			Help: "Total number of batch items processed by final status",
		},
		[]string{"status"},
	)

	BatchesActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "screener_batches_active",
			Help: "Number of batch ranking runs currently in flight",
		},
	)

	CacheRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "screener_cache_requests_total",
			Help: "Result cache lookups by outcome (hit, miss, error)",
		},
		[]string{"outcome"},
	)
)
