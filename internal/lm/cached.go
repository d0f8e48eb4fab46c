package lm

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"

	"ai-detector/internal/features"
)

// CacheMetrics receives cache telemetry.
type CacheMetrics interface {
	OracleCacheHitsInc()
}

// Cached deduplicates oracle calls for identical texts and bounds the
// request rate to the wrapped scorer.
type Cached struct {
	next    features.LogProbScorer
	cache   *gocache.Cache
	limiter *rate.Limiter
	metrics CacheMetrics
}

// NewCached wraps next. A non-positive ttl disables caching and a
// non-positive rps disables rate limiting.
func NewCached(next features.LogProbScorer, ttl time.Duration, rps float64, metrics CacheMetrics) *Cached {
	c := &Cached{
		next:    next,
		limiter: rate.NewLimiter(rate.Inf, 0),
		metrics: metrics,
	}
	if ttl > 0 {
		c.cache = gocache.New(ttl, 2*ttl)
	}
	if rps > 0 {
		burst := int(rps)
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
	return c
}

// LogProbs implements features.LogProbScorer.
func (c *Cached) LogProbs(ctx context.Context, text string) (features.TokenScores, error) {
	key := cacheKey(text)
	if c.cache != nil {
		if v, found := c.cache.Get(key); found {
			if c.metrics != nil {
				c.metrics.OracleCacheHitsInc()
			}
			return cloneScores(v.(features.TokenScores)), nil
		}
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return features.TokenScores{}, err
	}

	scores, err := c.next.LogProbs(ctx, text)
	if err != nil {
		return features.TokenScores{}, err
	}

	if c.cache != nil {
		c.cache.Set(key, cloneScores(scores), gocache.DefaultExpiration)
	}
	return scores, nil
}

func cacheKey(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])
}

func cloneScores(s features.TokenScores) features.TokenScores {
	out := features.TokenScores{Tokens: s.Tokens}
	if s.LogProbs != nil {
		out.LogProbs = append([]float64(nil), s.LogProbs...)
	}
	return out
}
