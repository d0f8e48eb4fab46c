// Package features turns raw text into a named feature vector across four
// groups: perplexity, burstiness, stylometry and zipf. Groups are computed
// independently; a failing group is reported and the others still populate
// the vector.
package features

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/rs/zerolog/log"

	"ai-detector/internal/common"
	"ai-detector/internal/pos"
)

// Vector maps a namespaced feature name (group.name) to its value.
type Vector map[string]float64

// Keys returns the feature names in sorted order.
func (v Vector) Keys() []string {
	keys := make([]string, 0, len(v))
	for k := range v {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Clone returns a copy of v.
func (v Vector) Clone() Vector {
	out := make(Vector, len(v))
	for k, val := range v {
		out[k] = val
	}
	return out
}

func (v Vector) set(group, name string, val float64) {
	v[group+"."+name] = val
}

// TokenScores holds the oracle output for one text: the token count and the
// log-probability of every token after the first given its prefix.
type TokenScores struct {
	Tokens   int
	LogProbs []float64
}

// Oracle is an autoregressive language model exposed as tokenize + score.
// Score returns one log-probability per token after the first.
type Oracle interface {
	Tokenize(ctx context.Context, text string) ([]int, error)
	Score(ctx context.Context, ids []int) ([]float64, error)
}

// LogProbScorer scores text in a single call.
type LogProbScorer interface {
	LogProbs(ctx context.Context, text string) (TokenScores, error)
}

// Tagger assigns part-of-speech tags.
type Tagger interface {
	Tag(tokens []string) ([]pos.Tagged, error)
}

// MetricsTracker receives extraction telemetry.
type MetricsTracker interface {
	FeatureErrorsInc(group string)
	OracleLatencyObserve(seconds float64)
	OracleTimeoutsInc()
}

// PartialFailureError reports a feature group that could not be computed.
type PartialFailureError struct {
	Group string
	Err   error
}

func (e *PartialFailureError) Error() string {
	return fmt.Sprintf("feature group %s failed: %v", e.Group, e.Err)
}

func (e *PartialFailureError) Unwrap() error {
	return e.Err
}

// Extraction is the result of Extract: the union of successful groups plus
// one error per failed group.
type Extraction struct {
	Vector   Vector
	Failures []*PartialFailureError
}

// Err joins the group failures, or returns nil when every group succeeded.
func (x Extraction) Err() error {
	if len(x.Failures) == 0 {
		return nil
	}
	errs := make([]error, len(x.Failures))
	for i, f := range x.Failures {
		errs[i] = f
	}
	return errors.Join(errs...)
}

// Extractor computes feature vectors. It holds no per-call state and is safe
// for concurrent use.
type Extractor struct {
	scorer  LogProbScorer
	tagger  Tagger
	metrics MetricsTracker
	timeout time.Duration
}

// NewExtractor builds an extractor. A nil scorer omits the perplexity group,
// a nil tagger omits the POS-based stylometry features, and a non-positive
// timeout falls back to 10s.
func NewExtractor(scorer LogProbScorer, tagger Tagger, metrics MetricsTracker, timeout time.Duration) *Extractor {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Extractor{
		scorer:  scorer,
		tagger:  tagger,
		metrics: metrics,
		timeout: timeout,
	}
}

// HasOracle reports whether perplexity features can be produced.
func (e *Extractor) HasOracle() bool {
	return e != nil && e.scorer != nil
}

type groupFunc func(ctx context.Context, text string) (Vector, error)

// Extract computes every group for text.
func (e *Extractor) Extract(ctx context.Context, text string) Extraction {
	x := Extraction{Vector: make(Vector, 32)}

	groups := []struct {
		name string
		fn   groupFunc
	}{
		{common.GroupPerplexity, e.perplexity},
		{common.GroupBurstiness, burstiness},
		{common.GroupStylometry, e.stylometry},
		{common.GroupZipf, zipf},
	}

	for _, g := range groups {
		vec, err := e.runGroup(ctx, g.name, g.fn, text)
		if err != nil {
			pf := &PartialFailureError{Group: g.name, Err: err}
			x.Failures = append(x.Failures, pf)
			log.Warn().Err(err).Str("group", g.name).Msg("Feature group extraction failed")
			if e.metrics != nil {
				e.metrics.FeatureErrorsInc(g.name)
			}
			continue
		}
		for k, v := range vec {
			x.Vector[k] = v
		}
	}

	return x
}

func (e *Extractor) runGroup(ctx context.Context, name string, fn groupFunc, text string) (vec Vector, err error) {
	defer func() {
		if r := recover(); r != nil {
			vec = nil
			err = fmt.Errorf("panic in %s: %v", name, r)
		}
	}()
	return fn(ctx, text)
}
