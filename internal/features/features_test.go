package features

import (
	"context"
	"errors"
	"math"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ai-detector/internal/pos"
	"ai-detector/internal/textutil"
)

// MockMetricsTracker records extraction telemetry.
type MockMetricsTracker struct {
	mu             sync.Mutex
	FeatureErrors  map[string]int
	OracleLatency  int
	OracleTimeouts int
}

func (m *MockMetricsTracker) FeatureErrorsInc(group string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FeatureErrors == nil {
		m.FeatureErrors = make(map[string]int)
	}
	m.FeatureErrors[group]++
}

func (m *MockMetricsTracker) OracleLatencyObserve(float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.OracleLatency++
}

func (m *MockMetricsTracker) OracleTimeoutsInc() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.OracleTimeouts++
}

// fakeOracle assigns one id per whitespace token and a constant log-prob.
type fakeOracle struct {
	logProb  float64
	shortBy  int
	scoreErr error
}

func (o fakeOracle) Tokenize(_ context.Context, text string) ([]int, error) {
	fields := strings.Fields(text)
	ids := make([]int, len(fields))
	for i := range fields {
		ids[i] = i + 100
	}
	return ids, nil
}

func (o fakeOracle) Score(_ context.Context, ids []int) ([]float64, error) {
	if o.scoreErr != nil {
		return nil, o.scoreErr
	}
	out := make([]float64, len(ids)-1-o.shortBy)
	for i := range out {
		out[i] = o.logProb
	}
	return out, nil
}

type scorerFunc func(ctx context.Context, text string) (TokenScores, error)

func (f scorerFunc) LogProbs(ctx context.Context, text string) (TokenScores, error) {
	return f(ctx, text)
}

// fakeTagger tags known nouns NN, known pronouns PRP, punctuation "." and
// everything else XX.
type fakeTagger struct {
	err   error
	panic bool
}

func (t fakeTagger) Tag(tokens []string) ([]pos.Tagged, error) {
	if t.panic {
		panic("tagger exploded")
	}
	if t.err != nil {
		return nil, t.err
	}
	out := make([]pos.Tagged, len(tokens))
	for i, tok := range tokens {
		tag := "XX"
		switch strings.ToLower(tok) {
		case "cat", "dog":
			tag = "NN"
		case "i", "she", "they":
			tag = "PRP"
		default:
			if !textutil.IsWord(tok) {
				tag = "."
			}
		}
		out[i] = pos.Tagged{Text: tok, Tag: tag}
	}
	return out, nil
}

func keysWithPrefix(v Vector, prefix string) []string {
	var out []string
	for _, k := range v.Keys() {
		if strings.HasPrefix(k, prefix) {
			out = append(out, k)
		}
	}
	return out
}

const sampleText = "The cat saw the dog! The dog ran... She laughed at both of them. They slept."

func TestExtract_AllGroups(t *testing.T) {
	metrics := &MockMetricsTracker{}
	e := NewExtractor(FromOracle(fakeOracle{logProb: -2}), fakeTagger{}, metrics, time.Second)

	x := e.Extract(context.Background(), sampleText)
	require.Empty(t, x.Failures)
	require.NoError(t, x.Err())

	assert.InDelta(t, math.Exp(2), x.Vector["perplexity.value"], 1e-9)
	assert.InDelta(t, -2.0, x.Vector["perplexity.mean"], 1e-12)
	assert.InDelta(t, 0.0, x.Vector["perplexity.std"], 1e-12)
	assert.Equal(t, float64(len(strings.Fields(sampleText))), x.Vector["perplexity.tokens"])

	assert.Len(t, keysWithPrefix(x.Vector, "perplexity."), 6)
	assert.Len(t, keysWithPrefix(x.Vector, "burstiness."), 6)
	assert.Len(t, keysWithPrefix(x.Vector, "stylometry."), 10)
	assert.Len(t, keysWithPrefix(x.Vector, "zipf."), 3)

	assert.Equal(t, 1, metrics.OracleLatency)
	assert.Empty(t, metrics.FeatureErrors)
}

func TestExtract_NoOracleOmitsPerplexity(t *testing.T) {
	e := NewExtractor(nil, nil, nil, 0)
	assert.False(t, e.HasOracle())

	x := e.Extract(context.Background(), sampleText)
	assert.Empty(t, x.Failures)
	assert.Empty(t, keysWithPrefix(x.Vector, "perplexity."))
	assert.NotContains(t, x.Vector, "stylometry.pronoun_ratio")
	assert.Contains(t, x.Vector, "stylometry.ttr")
	assert.Contains(t, x.Vector, "zipf.tail_ratio")
}

func TestExtract_OracleFailureIsPartial(t *testing.T) {
	metrics := &MockMetricsTracker{}
	down := errors.New("scoring service down")
	e := NewExtractor(FromOracle(fakeOracle{scoreErr: down}), nil, metrics, time.Second)

	x := e.Extract(context.Background(), sampleText)
	require.Len(t, x.Failures, 1)
	assert.Equal(t, "perplexity", x.Failures[0].Group)
	assert.ErrorIs(t, x.Err(), down)

	var pf *PartialFailureError
	require.True(t, errors.As(x.Err(), &pf))
	assert.Equal(t, "perplexity", pf.Group)

	assert.Empty(t, keysWithPrefix(x.Vector, "perplexity."))
	assert.NotEmpty(t, keysWithPrefix(x.Vector, "burstiness."))
	assert.NotEmpty(t, keysWithPrefix(x.Vector, "stylometry."))
	assert.NotEmpty(t, keysWithPrefix(x.Vector, "zipf."))
	assert.Equal(t, 1, metrics.FeatureErrors["perplexity"])
}

func TestExtract_OracleTimeout(t *testing.T) {
	metrics := &MockMetricsTracker{}
	blocking := scorerFunc(func(ctx context.Context, _ string) (TokenScores, error) {
		<-ctx.Done()
		return TokenScores{}, ctx.Err()
	})
	e := NewExtractor(blocking, nil, metrics, 20*time.Millisecond)

	start := time.Now()
	x := e.Extract(context.Background(), sampleText)
	assert.Less(t, time.Since(start), 5*time.Second)

	require.Len(t, x.Failures, 1)
	assert.ErrorIs(t, x.Failures[0], context.DeadlineExceeded)
	assert.Equal(t, 1, metrics.OracleTimeouts)
	assert.NotEmpty(t, keysWithPrefix(x.Vector, "zipf."))
}

func TestExtract_TaggerFailures(t *testing.T) {
	testCases := []struct {
		name    string
		tagger  fakeTagger
		message string
	}{
		{"tagger error", fakeTagger{err: errors.New("model missing")}, "model missing"},
		{"tagger panic", fakeTagger{panic: true}, "panic"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			metrics := &MockMetricsTracker{}
			e := NewExtractor(nil, tc.tagger, metrics, time.Second)

			var x Extraction
			require.NotPanics(t, func() { x = e.Extract(context.Background(), sampleText) })
			require.Len(t, x.Failures, 1)
			assert.Equal(t, "stylometry", x.Failures[0].Group)
			assert.Contains(t, x.Failures[0].Error(), tc.message)
			assert.Empty(t, keysWithPrefix(x.Vector, "stylometry."))
			assert.NotEmpty(t, keysWithPrefix(x.Vector, "burstiness."))
			assert.Equal(t, 1, metrics.FeatureErrors["stylometry"])
		})
	}
}

func TestPerplexity_TooFewTokensOmitted(t *testing.T) {
	e := NewExtractor(FromOracle(fakeOracle{logProb: -1}), nil, nil, time.Second)
	x := e.Extract(context.Background(), "hello")
	assert.Empty(t, x.Failures)
	assert.Empty(t, keysWithPrefix(x.Vector, "perplexity."))
}

func TestPerplexityFromScores(t *testing.T) {
	v, err := perplexityFromScores(TokenScores{Tokens: 4, LogProbs: []float64{-1, -2, -3}})
	require.NoError(t, err)
	assert.InDelta(t, math.Exp(2), v["perplexity.value"], 1e-9)
	assert.InDelta(t, -2.0, v["perplexity.mean"], 1e-12)
	assert.InDelta(t, math.Sqrt(2.0/3.0), v["perplexity.std"], 1e-12)
	assert.Equal(t, -1.0, v["perplexity.max"])
	assert.Equal(t, -3.0, v["perplexity.min"])
	assert.Equal(t, 4.0, v["perplexity.tokens"])

	v, err = perplexityFromScores(TokenScores{Tokens: 1})
	assert.NoError(t, err)
	assert.Nil(t, v)

	_, err = perplexityFromScores(TokenScores{Tokens: 2, LogProbs: []float64{-1e6}})
	assert.Error(t, err)
}

func TestFromOracle_LengthMismatch(t *testing.T) {
	p := FromOracle(fakeOracle{logProb: -1, shortBy: 1})
	_, err := p.LogProbs(context.Background(), "one two three")
	assert.Error(t, err)

	assert.Nil(t, FromOracle(nil))
}

func TestBurstiness(t *testing.T) {
	v, err := burstiness(context.Background(), "One two three. One two three four five six.")
	require.NoError(t, err)
	assert.Equal(t, 2.0, v["burstiness.sentences"])
	assert.InDelta(t, 4.5, v["burstiness.mean"], 1e-12)
	assert.InDelta(t, 1.5, v["burstiness.std"], 1e-12)
	assert.InDelta(t, 1.0/3.0, v["burstiness.value"], 1e-12)
	assert.Equal(t, 3.0, v["burstiness.min"])
	assert.Equal(t, 6.0, v["burstiness.max"])

	v, err = burstiness(context.Background(), "今天很好。你呢？")
	require.NoError(t, err)
	assert.Equal(t, 2.0, v["burstiness.sentences"])

	v, err = burstiness(context.Background(), "Only one sentence here.")
	require.NoError(t, err)
	assert.Equal(t, 1.0, v["burstiness.sentences"])
	for _, name := range []string{"value", "mean", "std", "min", "max"} {
		assert.Contains(t, v, "burstiness."+name)
		assert.Zero(t, v["burstiness."+name])
	}
}

func TestStylometry(t *testing.T) {
	e := NewExtractor(nil, fakeTagger{}, nil, time.Second)
	text := "The cat saw the dog! The dog ran..."

	v, err := e.stylometry(context.Background(), text)
	require.NoError(t, err)

	assert.InDelta(t, 5.0/8.0, v["stylometry.ttr"], 1e-12)
	assert.InDelta(t, 3.0/12.0, v["stylometry.function_word_ratio"], 1e-12)
	assert.InDelta(t, 3.0/5.0, v["stylometry.rare_word_ratio"], 1e-12)
	assert.InDelta(t, 3.0, v["stylometry.avg_word_length"], 1e-12)
	assert.InDelta(t, 0.0, v["stylometry.pronoun_ratio"], 1e-12)
	assert.InDelta(t, 3.0/12.0, v["stylometry.noun_ratio"], 1e-12)
	assert.Equal(t, 3.0, v["stylometry.pos_tag_variety"])
	assert.InDelta(t, 0.5, v["stylometry.exclamation_ratio"], 1e-12)
	assert.InDelta(t, 0.5, v["stylometry.ellipsis_ratio"], 1e-12)
	assert.InDelta(t, 2.0/35.0, v["stylometry.uppercase_ratio"], 1e-12)
}

func TestZipf(t *testing.T) {
	v, err := zipf(context.Background(), "a a a a a b b c d e")
	require.NoError(t, err)
	assert.Equal(t, 5.0, v["zipf.vocab_size"])
	assert.InDelta(t, 0.4, v["zipf.tail_ratio"], 1e-12)
	assert.InDelta(t, 0.5, v["zipf.richness"], 1e-12)

	v, err = zipf(context.Background(), "too short to count")
	require.NoError(t, err)
	assert.Equal(t, 4.0, v["zipf.vocab_size"])
	assert.Zero(t, v["zipf.tail_ratio"])
	assert.Zero(t, v["zipf.richness"])
}

func TestExtract_DegenerateTexts(t *testing.T) {
	e := NewExtractor(FromOracle(fakeOracle{logProb: -1}), fakeTagger{}, nil, time.Second)

	for _, text := range []string{"", "   ", "!!!", "字", "a"} {
		t.Run(text, func(t *testing.T) {
			var x Extraction
			require.NotPanics(t, func() { x = e.Extract(context.Background(), text) })
			assert.Empty(t, x.Failures)
			for k, val := range x.Vector {
				assert.False(t, math.IsNaN(val) || math.IsInf(val, 0), "%s is not finite", k)
			}
		})
	}
}

func TestVector(t *testing.T) {
	v := Vector{"b.x": 2, "a.y": 1}
	assert.Equal(t, []string{"a.y", "b.x"}, v.Keys())

	c := v.Clone()
	c["a.y"] = 5
	assert.Equal(t, 1.0, v["a.y"])
}
