package features

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"ai-detector/internal/common"
	"ai-detector/internal/textutil"
)

func (e *Extractor) perplexity(ctx context.Context, text string) (Vector, error) {
	if e.scorer == nil {
		return nil, nil
	}

	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	start := time.Now()
	scores, err := e.scorer.LogProbs(ctx, text)
	if e.metrics != nil {
		e.metrics.OracleLatencyObserve(time.Since(start).Seconds())
	}
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) && e.metrics != nil {
			e.metrics.OracleTimeoutsInc()
		}
		return nil, fmt.Errorf("oracle: %w", err)
	}

	return perplexityFromScores(scores)
}

// perplexityFromScores returns nil when fewer than two tokens were scored.
func perplexityFromScores(s TokenScores) (Vector, error) {
	if s.Tokens < 2 || len(s.LogProbs) == 0 {
		return nil, nil
	}

	mean := textutil.Mean(s.LogProbs)
	ppl := math.Exp(-mean)
	if math.IsNaN(ppl) || math.IsInf(ppl, 0) {
		return nil, fmt.Errorf("non-finite perplexity from mean log-prob %f", mean)
	}
	lo, hi := textutil.MinMax(s.LogProbs)

	v := make(Vector, 6)
	v.set(common.GroupPerplexity, "value", ppl)
	v.set(common.GroupPerplexity, "mean", mean)
	v.set(common.GroupPerplexity, "std", textutil.PopStd(s.LogProbs))
	v.set(common.GroupPerplexity, "max", hi)
	v.set(common.GroupPerplexity, "min", lo)
	v.set(common.GroupPerplexity, "tokens", float64(s.Tokens))
	return v, nil
}
