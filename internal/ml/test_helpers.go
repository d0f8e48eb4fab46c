package ml

import (
	"context"
	"strings"
	"sync"

	"ai-detector/internal/features"
)

// MockMetrics implements MetricsInterface for testing
type MockMetrics struct {
	mu               sync.Mutex
	predictions      int
	failures         int
	latencySum       float64
	modelAge         float64
	predictionScores []float64
}

func (m *MockMetrics) MLPredictionsInc() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.predictions++
}

func (m *MockMetrics) MLFailuresInc() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failures++
}

func (m *MockMetrics) MLLatencyObserve(v float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.latencySum += v
}

func (m *MockMetrics) MLModelAgeSet(v float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.modelAge = v
}

func (m *MockMetrics) MLPredictionScoresObserve(v float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.predictionScores = append(m.predictionScores, v)
}

// KeywordExtractor is a deterministic Extractor for tests. Each keyword
// becomes a feature counting its occurrences, plus a length feature.
type KeywordExtractor struct {
	Keywords []string
}

func (k KeywordExtractor) Extract(_ context.Context, text string) features.Extraction {
	lower := strings.ToLower(text)
	v := features.Vector{"test.length": float64(len(strings.Fields(text)))}
	for _, kw := range k.Keywords {
		v["test."+kw] = float64(strings.Count(lower, kw))
	}
	return features.Extraction{Vector: v}
}
