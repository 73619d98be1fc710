// Package stats provides a unified interface for collecting metrics.
package stats

// Metric names used throughout the library.
const (
	// Engine metrics.
	MetricEvaluations   = "gamereview_evaluations_total"
	MetricEvalTimeouts  = "gamereview_evaluation_timeouts_total"
	MetricEvalCancelled = "gamereview_evaluations_cancelled_total"
	MetricEvalSeconds   = "gamereview_evaluation_seconds"

	// Cache metrics.
	MetricCacheHits   = "gamereview_cache_hits_total"
	MetricCacheMisses = "gamereview_cache_misses_total"

	// Pipeline metrics.
	MetricMovesClassified  = "gamereview_moves_classified_total"
	MetricAnalysisProgress = "gamereview_analysis_progress"
)

// Collector defines the interface for collecting metrics.
type Collector interface {
	// IncCounter increments a counter metric by delta.
	IncCounter(name string, delta int64)

	// SetGauge sets a gauge metric to value.
	SetGauge(name string, value int64)

	// ObserveHistogram records a value in a histogram metric.
	ObserveHistogram(name string, value float64)
}
