package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ai-detector/internal/features"
	"ai-detector/internal/lm"
	"ai-detector/internal/ml"
)

var (
	_ features.MetricsTracker = (*MetricsWrapper)(nil)
	_ lm.CacheMetrics         = (*MetricsWrapper)(nil)
	_ ml.MetricsInterface     = (*MetricsWrapper)(nil)
)

func newTestWrapper(t *testing.T) (*MetricsWrapper, *Metrics, *prometheus.Registry) {
	t.Helper()
	registry := prometheus.NewRegistry()
	m := NewWithRegistry(registry)
	return NewWrapper(m), m, registry
}

func TestNewWrapper(t *testing.T) {
	wrapper, m, _ := newTestWrapper(t)
	require.NotNil(t, wrapper)
	assert.Same(t, m, wrapper.Metrics())
}

func TestMetricsWrapper_AnalyzeCounters(t *testing.T) {
	wrapper, m, _ := newTestWrapper(t)

	assert.Equal(t, 0.0, testutil.ToFloat64(m.AnalyzeTotal.WithLabelValues("heuristic")))

	wrapper.AnalyzeInc("heuristic")
	wrapper.AnalyzeInc("heuristic")
	wrapper.AnalyzeInc("classifier")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.AnalyzeTotal.WithLabelValues("heuristic")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.AnalyzeTotal.WithLabelValues("classifier")))

	wrapper.InvalidInputsInc()
	wrapper.MLFallbackUseInc()
	wrapper.ModelTrainingsInc()
	wrapper.ErrorsInc()

	assert.Equal(t, 1.0, testutil.ToFloat64(m.InvalidInputs))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.MLFallbackUse))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ModelTrainings))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ErrorsTotal))
}

func TestMetricsWrapper_FeatureErrorsByGroup(t *testing.T) {
	wrapper, m, _ := newTestWrapper(t)

	wrapper.FeatureErrorsInc("perplexity")
	wrapper.FeatureErrorsInc("perplexity")
	wrapper.FeatureErrorsInc("stylometry")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.FeatureErrors.WithLabelValues("perplexity")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.FeatureErrors.WithLabelValues("stylometry")))
	assert.Equal(t, 2, testutil.CollectAndCount(m.FeatureErrors))
}

func TestMetricsWrapper_MLMethods(t *testing.T) {
	wrapper, m, _ := newTestWrapper(t)

	numIncrements := 10
	for i := 0; i < numIncrements; i++ {
		wrapper.MLPredictionsInc()
	}
	assert.Equal(t, float64(numIncrements), testutil.ToFloat64(m.MLPredictions))

	wrapper.MLFailuresInc()
	assert.Equal(t, 1.0, testutil.ToFloat64(m.MLFailures))

	wrapper.MLModelAgeSet(3600.0)
	assert.Equal(t, 3600.0, testutil.ToFloat64(m.ModelAge))

	wrapper.MLLatencyObserve(0.25)
	wrapper.MLPredictionScoresObserve(0.75)
	assert.Equal(t, 1, testutil.CollectAndCount(m.MLLatency))
	assert.Equal(t, 1, testutil.CollectAndCount(m.MLPredictionScores))
}

func TestMetricsWrapper_OracleMethods(t *testing.T) {
	wrapper, m, _ := newTestWrapper(t)

	wrapper.OracleTimeoutsInc()
	wrapper.OracleCacheHitsInc()
	wrapper.OracleCacheHitsInc()
	wrapper.OracleLatencyObserve(0.12)
	wrapper.AnalyzeLatencyObserve(0.02)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.OracleTimeouts))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.OracleCacheHits))
	assert.Equal(t, 1, testutil.CollectAndCount(m.OracleLatency))
	assert.Equal(t, 1, testutil.CollectAndCount(m.AnalyzeLatency))
}

func TestMetrics_RegisteredNames(t *testing.T) {
	wrapper, _, registry := newTestWrapper(t)

	// Vectors only appear once a child exists.
	wrapper.AnalyzeInc("heuristic")
	wrapper.FeatureErrorsInc("zipf")

	families, err := registry.Gather()
	require.NoError(t, err)

	names := map[string]bool{}
	for _, mf := range families {
		names[mf.GetName()] = true
	}
	for _, want := range []string{
		"analyze_total",
		"analyze_latency_seconds",
		"invalid_inputs_total",
		"ml_fallback_use_total",
		"ml_prediction_scores",
		"feature_errors_total",
		"oracle_latency_seconds",
		"oracle_timeouts_total",
		"oracle_cache_hits_total",
		"model_trainings_total",
		"model_age_seconds",
		"errors_total",
	} {
		assert.True(t, names[want], "metric %s not registered", want)
	}
}

func TestMetrics_GetErrorRate(t *testing.T) {
	wrapper, m, _ := newTestWrapper(t)

	assert.Equal(t, 0.0, m.GetErrorRate())

	for i := 0; i < 4; i++ {
		wrapper.AnalyzeInc("heuristic")
	}
	wrapper.ErrorsInc()

	assert.InDelta(t, 0.25, m.GetErrorRate(), 1e-12)
}

func TestMetrics_GetErrorRateWithoutGatherer(t *testing.T) {
	m := NewWithRegistry(registererOnly{prometheus.NewRegistry()})
	m.ErrorsTotal.Inc()
	assert.Equal(t, 0.0, m.GetErrorRate())
}

type registererOnly struct {
	r *prometheus.Registry
}

func (r registererOnly) Register(c prometheus.Collector) error { return r.r.Register(c) }
func (r registererOnly) MustRegister(cs ...prometheus.Collector) { r.r.MustRegister(cs...) }
func (r registererOnly) Unregister(c prometheus.Collector) bool { return r.r.Unregister(c) }
