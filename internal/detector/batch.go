package detector

import (
	"context"

	"golang.org/x/sync/errgroup"

	"ai-detector/internal/common"
	"ai-detector/internal/features"
	"ai-detector/internal/ml"
)

// BatchItem is the outcome for one input of AnalyzeBatch.
type BatchItem struct {
	Index  int     `json:"index"`
	Result *Result `json:"result,omitempty"`
	Err    error   `json:"-"`
	Error  string  `json:"error,omitempty"`
}

// AnalyzeBatch runs Analyze over texts with at most parallelism concurrent
// calls. Failures are reported per item; items keep the input order.
func (s *Service) AnalyzeBatch(ctx context.Context, texts []string, parallelism int) []BatchItem {
	if parallelism <= 0 {
		parallelism = 1
	}

	items := make([]BatchItem, len(texts))
	var g errgroup.Group
	g.SetLimit(parallelism)

	for i, text := range texts {
		i, text := i, text
		g.Go(func() error {
			item := BatchItem{Index: i}
			if err := ctx.Err(); err != nil {
				item.Err = err
			} else {
				item.Result, item.Err = s.Analyze(ctx, text)
			}
			if item.Err != nil {
				item.Error = item.Err.Error()
			}
			items[i] = item
			return nil
		})
	}
	_ = g.Wait()

	return items
}

// Drift compares the feature vectors of successful classifier results with
// the active model's training distribution. It returns nil when no
// classifier is active.
func (s *Service) Drift(items []BatchItem, threshold float64) []ml.DriftAlert {
	a := s.predictor.Active()
	if a == nil {
		return nil
	}
	vectors := make([]features.Vector, 0, len(items))
	for _, item := range items {
		if item.Result != nil && item.Result.Source == common.SourceClassifier {
			vectors = append(vectors, item.Result.FeatureVector)
		}
	}
	return a.Model.Drift(vectors, threshold)
}
