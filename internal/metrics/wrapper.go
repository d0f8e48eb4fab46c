package metrics

// MetricsWrapper adapts Metrics to the narrow tracker interfaces declared by
// the features, lm, ml and detector packages.
type MetricsWrapper struct {
	m *Metrics
}

func NewWrapper(m *Metrics) *MetricsWrapper {
	return &MetricsWrapper{m: m}
}

// Metrics returns the wrapped metric set.
func (w *MetricsWrapper) Metrics() *Metrics {
	return w.m
}

// Analysis

func (w *MetricsWrapper) AnalyzeInc(source string) {
	w.m.AnalyzeTotal.WithLabelValues(source).Inc()
}

func (w *MetricsWrapper) AnalyzeLatencyObserve(seconds float64) {
	w.m.AnalyzeLatency.Observe(seconds)
}

func (w *MetricsWrapper) InvalidInputsInc() {
	w.m.InvalidInputs.Inc()
}

func (w *MetricsWrapper) MLFallbackUseInc() {
	w.m.MLFallbackUse.Inc()
}

func (w *MetricsWrapper) ModelTrainingsInc() {
	w.m.ModelTrainings.Inc()
}

func (w *MetricsWrapper) ErrorsInc() {
	w.m.ErrorsTotal.Inc()
}

// Classifier

func (w *MetricsWrapper) MLPredictionsInc() {
	w.m.MLPredictions.Inc()
}

func (w *MetricsWrapper) MLFailuresInc() {
	w.m.MLFailures.Inc()
}

func (w *MetricsWrapper) MLLatencyObserve(seconds float64) {
	w.m.MLLatency.Observe(seconds)
}

func (w *MetricsWrapper) MLModelAgeSet(seconds float64) {
	w.m.ModelAge.Set(seconds)
}

func (w *MetricsWrapper) MLPredictionScoresObserve(score float64) {
	w.m.MLPredictionScores.Observe(score)
}

// Feature extraction and oracle

func (w *MetricsWrapper) FeatureErrorsInc(group string) {
	w.m.FeatureErrors.WithLabelValues(group).Inc()
}

func (w *MetricsWrapper) OracleLatencyObserve(seconds float64) {
	w.m.OracleLatency.Observe(seconds)
}

func (w *MetricsWrapper) OracleTimeoutsInc() {
	w.m.OracleTimeouts.Inc()
}

func (w *MetricsWrapper) OracleCacheHitsInc() {
	w.m.OracleCacheHits.Inc()
}
