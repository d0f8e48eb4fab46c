package ml

import (
	"context"
	"os"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog/log"

	"ai-detector/internal/features"
)

// Active is a loaded model and where it came from.
type Active struct {
	Model    *Model
	Path     string
	LoadedAt time.Time
}

// Predictor holds the active model behind an atomic pointer. Readers never
// block; a new model is published with a single store.
type Predictor struct {
	extractor Extractor
	active    atomic.Pointer[Active]
	metrics   MetricsInterface
	topK      int
}

func NewPredictor(extractor Extractor, metrics MetricsInterface, topK int) *Predictor {
	return &Predictor{
		extractor: extractor,
		metrics:   metrics,
		topK:      topK,
	}
}

// Active returns the current model, or nil when none is loaded.
func (p *Predictor) Active() *Active {
	if p == nil {
		return nil
	}
	return p.active.Load()
}

// Ready reports whether a model is loaded.
func (p *Predictor) Ready() bool {
	return p.Active() != nil
}

// Swap publishes m and returns the previously active model.
func (p *Predictor) Swap(m *Model, path string) *Active {
	next := &Active{Model: m, Path: path, LoadedAt: time.Now()}
	prev := p.active.Swap(next)

	if p.metrics != nil {
		p.metrics.MLModelAgeSet(modelAge(path))
	}
	log.Info().Str("version", m.Version).Str("model_path", path).Int("features", len(m.FeatureNames)).Msg("Model activated")
	return prev
}

// LoadFile reads the artifact at path and activates it.
func (p *Predictor) LoadFile(path string) (*Model, error) {
	m, err := Load(path)
	if err != nil {
		return nil, err
	}
	p.Swap(m, path)
	return m, nil
}

// Predict extracts features from text and classifies them with the active
// model. It fails with ErrModelNotReady when no model is loaded.
func (p *Predictor) Predict(ctx context.Context, text string) (Prediction, features.Extraction, error) {
	a := p.Active()
	if a == nil {
		return Prediction{}, features.Extraction{}, ErrModelNotReady
	}
	pred, x := p.PredictWith(ctx, a, text)
	return pred, x, nil
}

// PredictWith classifies text with a specific model snapshot. Contributions
// are cut to the configured top-K.
func (p *Predictor) PredictWith(ctx context.Context, a *Active, text string) (Prediction, features.Extraction) {
	start := time.Now()

	x := p.extractor.Extract(ctx, text)
	pred := a.Model.Predict(x.Vector)
	pred.Contributions = pred.TopContributions(p.topK)

	if p.metrics != nil {
		p.metrics.MLPredictionsInc()
		if len(x.Failures) > 0 {
			p.metrics.MLFailuresInc()
		}
		p.metrics.MLPredictionScoresObserve(pred.AIProbability)
		p.metrics.MLLatencyObserve(time.Since(start).Seconds())
	}
	return pred, x
}

func modelAge(path string) float64 {
	if path == "" {
		return 0
	}
	info, err := os.Stat(path)
	if err != nil {
		return 0
	}
	return time.Since(info.ModTime()).Seconds()
}
