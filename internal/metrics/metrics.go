// Package metrics provides Prometheus metrics collection for the AI text detector.
// It defines the analysis, feature extraction, oracle and model lifecycle metrics
// that are exposed via the Prometheus metrics endpoint.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the detector.
type Metrics struct {
	// Analysis metrics
	AnalyzeTotal   *prometheus.CounterVec // Analyses served, by result source
	AnalyzeLatency prometheus.Histogram   // End-to-end Analyze latency
	InvalidInputs  prometheus.Counter     // Rejected empty or whitespace-only inputs
	MLFallbackUse  prometheus.Counter     // Analyses answered by the heuristic scorer

	// Classifier metrics
	MLPredictions      prometheus.Counter   // Classifier predictions made
	MLFailures         prometheus.Counter   // Classifier predictions with failed feature groups
	MLLatency          prometheus.Histogram // Classifier prediction latency
	MLPredictionScores prometheus.Histogram // Distribution of classifier AI probabilities
	ModelAge           prometheus.Gauge     // Age of the active model artifact
	ModelTrainings     prometheus.Counter   // Completed training runs

	// Feature extraction metrics
	FeatureErrors   *prometheus.CounterVec // Failed feature groups, by group
	OracleLatency   prometheus.Histogram   // Language model oracle latency
	OracleTimeouts  prometheus.Counter     // Oracle calls cut off by the timeout
	OracleCacheHits prometheus.Counter     // Oracle calls served from cache

	// System metrics
	ErrorsTotal prometheus.Counter

	gatherer prometheus.Gatherer
}

// New creates and registers all Prometheus metrics using the default registry.
func New() *Metrics {
	return NewWithRegistry(prometheus.DefaultRegisterer)
}

// NewWithRegistry creates metrics with a custom registry (useful for testing).
func NewWithRegistry(registerer prometheus.Registerer) *Metrics {
	factory := promauto.With(registerer)
	m := &Metrics{
		AnalyzeTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "analyze_total",
			Help: "Total number of analyses, by result source",
		}, []string{"source"}),
		AnalyzeLatency: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "analyze_latency_seconds",
			Help:    "Analyze latency in seconds (end-to-end)",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0},
		}),
		InvalidInputs: factory.NewCounter(prometheus.CounterOpts{
			Name: "invalid_inputs_total",
			Help: "Total number of rejected empty or whitespace-only inputs",
		}),
		MLFallbackUse: factory.NewCounter(prometheus.CounterOpts{
			Name: "ml_fallback_use_total",
			Help: "Total number of times the heuristic fallback was used",
		}),
		MLPredictions: factory.NewCounter(prometheus.CounterOpts{
			Name: "ml_predictions_total",
			Help: "Total number of classifier predictions made",
		}),
		MLFailures: factory.NewCounter(prometheus.CounterOpts{
			Name: "ml_failures_total",
			Help: "Total number of classifier predictions made on an incomplete feature vector",
		}),
		MLLatency: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "ml_latency_seconds",
			Help:    "Classifier prediction latency in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0},
		}),
		MLPredictionScores: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "ml_prediction_scores",
			Help:    "Distribution of classifier AI probabilities",
			Buckets: prometheus.LinearBuckets(0, 0.1, 11),
		}),
		ModelAge: factory.NewGauge(prometheus.GaugeOpts{
			Name: "model_age_seconds",
			Help: "Age of the active model artifact in seconds",
		}),
		ModelTrainings: factory.NewCounter(prometheus.CounterOpts{
			Name: "model_trainings_total",
			Help: "Total number of completed training runs",
		}),
		FeatureErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "feature_errors_total",
			Help: "Total number of feature group failures, by group",
		}, []string{"group"}),
		OracleLatency: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "oracle_latency_seconds",
			Help:    "Language model oracle latency in seconds",
			Buckets: prometheus.ExponentialBuckets(0.005, 2, 12),
		}),
		OracleTimeouts: factory.NewCounter(prometheus.CounterOpts{
			Name: "oracle_timeouts_total",
			Help: "Total number of oracle calls that hit the timeout",
		}),
		OracleCacheHits: factory.NewCounter(prometheus.CounterOpts{
			Name: "oracle_cache_hits_total",
			Help: "Total number of oracle calls served from the cache",
		}),
		ErrorsTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "errors_total",
			Help: "Total number of errors encountered",
		}),
	}
	if g, ok := registerer.(prometheus.Gatherer); ok {
		m.gatherer = g
	}
	return m
}

// GetErrorRate returns errors_total divided by the number of analyses served,
// or 0 if nothing has been analyzed or the registry cannot be gathered.
func (m *Metrics) GetErrorRate() float64 {
	if m.gatherer == nil {
		return 0
	}
	metricFamilies, err := m.gatherer.Gather()
	if err != nil {
		return 0
	}

	var totalOps, totalErrors float64
	for _, mf := range metricFamilies {
		switch mf.GetName() {
		case "analyze_total":
			for _, metric := range mf.GetMetric() {
				totalOps += metric.GetCounter().GetValue()
			}
		case "errors_total":
			for _, metric := range mf.GetMetric() {
				totalErrors += metric.GetCounter().GetValue()
			}
		}
	}

	if totalOps == 0 {
		return 0
	}
	return totalErrors / totalOps
}
