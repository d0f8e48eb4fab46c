// Package lm provides language-model log-probability clients for the
// perplexity features: a REST scoring sidecar, an OpenAI-compatible
// completions endpoint, and a caching, rate-limited decorator.
package lm

import (
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"ai-detector/internal/common"
	"ai-detector/internal/features"
)

// Config selects and tunes the oracle backend.
type Config struct {
	Kind     string
	URL      string
	APIKey   string
	Model    string
	Timeout  time.Duration
	RPS      float64
	CacheTTL time.Duration
}

// New builds the LogProbScorer described by cfg. Kind "none" returns a nil
// scorer, which disables the perplexity group.
func New(cfg Config, metrics CacheMetrics) (features.LogProbScorer, error) {
	var base features.LogProbScorer

	switch cfg.Kind {
	case "", common.OracleNone:
		log.Info().Msg("No language-model oracle configured, perplexity features disabled")
		return nil, nil
	case common.OracleREST:
		if cfg.URL == "" {
			return nil, fmt.Errorf("oracle kind %q requires a URL", cfg.Kind)
		}
		base = features.FromOracle(NewRESTOracle(cfg.URL, cfg.Timeout))
	case common.OracleOpenAI:
		scorer, err := NewOpenAIScorer(cfg.URL, cfg.APIKey, cfg.Model)
		if err != nil {
			return nil, err
		}
		base = scorer
	default:
		return nil, fmt.Errorf("unknown oracle kind %q", cfg.Kind)
	}

	log.Info().
		Str("kind", cfg.Kind).
		Str("url", cfg.URL).
		Str("model", cfg.Model).
		Dur("cache_ttl", cfg.CacheTTL).
		Float64("rps", cfg.RPS).
		Msg("Language-model oracle configured")

	return NewCached(base, cfg.CacheTTL, cfg.RPS, metrics), nil
}
