// Package detector is the single entry point for scoring text. It answers
// with the trained classifier when one is active and with the heuristic
// scorer otherwise, normalizing both into one Result shape.
package detector

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"ai-detector/internal/common"
	"ai-detector/internal/features"
	"ai-detector/internal/heuristic"
	"ai-detector/internal/ml"
	"ai-detector/internal/textutil"
)

// MetricsTracker receives analysis and model lifecycle telemetry.
type MetricsTracker interface {
	ml.MetricsInterface
	AnalyzeInc(source string)
	AnalyzeLatencyObserve(seconds float64)
	InvalidInputsInc()
	MLFallbackUseInc()
	ModelTrainingsInc()
	ErrorsInc()
}

// Result is the normalized answer of Analyze. Factors is set on the
// heuristic path, TopFeatures on the classifier path.
type Result struct {
	Prediction       int               `json:"prediction"`
	AIProbability    float64           `json:"ai_probability"`
	HumanProbability float64           `json:"human_probability"`
	Confidence       float64           `json:"confidence"`
	FeatureVector    features.Vector   `json:"feature_vector"`
	Factors          heuristic.Factors `json:"factors,omitempty"`
	TopFeatures      []ml.Contribution `json:"top_features,omitempty"`
	Source           string            `json:"source"`
	Level            string            `json:"confidence_level"`
	Verdict          string            `json:"verdict"`
	WordCount        int               `json:"word_count"`
	ModelVersion     string            `json:"model_version,omitempty"`
	FailedGroups     []string          `json:"failed_feature_groups,omitempty"`
}

type Service struct {
	scorer    *heuristic.Scorer
	extractor ml.Extractor
	predictor *ml.Predictor
	registry  Registry
	metrics   MetricsTracker
	modelPath string
	admin     sync.Mutex
}

// New builds a Service in the untrained state. extractor may be nil, in
// which case heuristic results carry no feature vector and training is
// unavailable.
func New(scorer *heuristic.Scorer, extractor ml.Extractor, m MetricsTracker, topK int, modelPath string) *Service {
	return &Service{
		scorer:    scorer,
		extractor: extractor,
		predictor: ml.NewPredictor(extractor, m, topK),
		metrics:   m,
		modelPath: modelPath,
	}
}

// SetRegistry attaches the model version registry.
func (s *Service) SetRegistry(r Registry) {
	s.admin.Lock()
	defer s.admin.Unlock()
	s.registry = r
}

// Trained reports whether a classifier is active.
func (s *Service) Trained() bool {
	return s.predictor.Ready()
}

// Analyze scores text. Empty or whitespace-only input fails with
// *InvalidInputError before any work is done.
func (s *Service) Analyze(ctx context.Context, text string) (*Result, error) {
	if strings.TrimSpace(text) == "" {
		if s.metrics != nil {
			s.metrics.InvalidInputsInc()
		}
		return nil, &InvalidInputError{Reason: "text is empty"}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	start := time.Now()

	var res *Result
	if a := s.predictor.Active(); a != nil && s.extractor != nil {
		res = s.classify(ctx, a, text)
	} else {
		res = s.fallback(ctx, text)
	}
	res.WordCount = len(textutil.Words(text))
	res.Level = heuristic.Level(res.Confidence)
	res.Verdict = heuristic.Verdict(res.AIProbability)

	if s.metrics != nil {
		s.metrics.AnalyzeInc(res.Source)
		s.metrics.AnalyzeLatencyObserve(time.Since(start).Seconds())
	}

	log.Debug().
		Str("source", res.Source).
		Float64("ai_probability", res.AIProbability).
		Int("words", res.WordCount).
		Dur("elapsed", time.Since(start)).
		Msg("Text analyzed")

	return res, nil
}

func (s *Service) classify(ctx context.Context, a *ml.Active, text string) *Result {
	pred, x := s.predictor.PredictWith(ctx, a, text)
	return &Result{
		Prediction:       pred.Label,
		AIProbability:    pred.AIProbability,
		HumanProbability: pred.HumanProbability,
		Confidence:       pred.Confidence,
		FeatureVector:    x.Vector,
		TopFeatures:      pred.Contributions,
		Source:           common.SourceClassifier,
		ModelVersion:     a.Model.Version,
		FailedGroups:     failedGroups(x),
	}
}

func (s *Service) fallback(ctx context.Context, text string) *Result {
	if s.metrics != nil {
		s.metrics.MLFallbackUseInc()
	}

	p, factors := s.scorer.Score(text)
	label := 0
	if p >= 0.5 {
		label = 1
	}

	res := &Result{
		Prediction:       label,
		AIProbability:    p,
		HumanProbability: 1 - p,
		Confidence:       heuristic.Confidence(p),
		FeatureVector:    features.Vector{},
		Factors:          factors,
		Source:           common.SourceHeuristic,
	}

	// Best effort: the vector is informational only on this path.
	if s.extractor != nil {
		x := s.extractor.Extract(ctx, text)
		if x.Vector != nil {
			res.FeatureVector = x.Vector
		}
		res.FailedGroups = failedGroups(x)
	}
	return res
}

func failedGroups(x features.Extraction) []string {
	if len(x.Failures) == 0 {
		return nil
	}
	groups := make([]string, len(x.Failures))
	for i, f := range x.Failures {
		groups[i] = f.Group
	}
	return groups
}
