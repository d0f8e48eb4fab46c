// Package ml trains and serves the logistic-regression classifier that
// separates human-written from machine-generated text. It owns feature
// alignment, standardization, evaluation and the persisted model artifact.
//
// The package never decides between the classifier and the heuristic
// baseline; callers hold the active model and choose.
package ml

import (
	"context"

	"ai-detector/internal/features"
)

// Extractor produces feature vectors for training and prediction.
type Extractor interface {
	Extract(ctx context.Context, text string) features.Extraction
}

// MetricsInterface defines metrics methods needed by the predictor
type MetricsInterface interface {
	MLPredictionsInc()
	MLFailuresInc()
	MLLatencyObserve(float64)
	MLModelAgeSet(float64)
	MLPredictionScoresObserve(float64)
}
