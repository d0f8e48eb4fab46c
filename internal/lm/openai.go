package lm

import (
	"context"
	"fmt"
	"unicode/utf8"

	"github.com/sashabaranov/go-openai"

	"ai-detector/internal/common"
	"ai-detector/internal/features"
)

// OpenAIScorer reads prompt log-probabilities from an OpenAI-compatible
// legacy completions endpoint by echoing the prompt.
type OpenAIScorer struct {
	client *openai.Client
	model  string
}

// NewOpenAIScorer creates a scorer. An empty baseURL targets api.openai.com.
func NewOpenAIScorer(baseURL, apiKey, model string) (*OpenAIScorer, error) {
	if baseURL == "" && apiKey == "" {
		return nil, fmt.Errorf("openai oracle requires an API key or a base URL")
	}
	if model == "" {
		model = common.DefaultOracleModel
	}

	clientConfig := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		clientConfig.BaseURL = baseURL
	}

	return &OpenAIScorer{
		client: openai.NewClientWithConfig(clientConfig),
		model:  model,
	}, nil
}

// LogProbs implements features.LogProbScorer.
func (s *OpenAIScorer) LogProbs(ctx context.Context, text string) (features.TokenScores, error) {
	resp, err := s.client.CreateCompletion(ctx, openai.CompletionRequest{
		Model:     s.model,
		Prompt:    text,
		Echo:      true,
		LogProbs:  1,
		MaxTokens: 1,
	})
	if err != nil {
		return features.TokenScores{}, fmt.Errorf("completion request failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return features.TokenScores{}, fmt.Errorf("no choices in completion response")
	}

	lp := resp.Choices[0].LogProbs
	n := promptTokens(lp, utf8.RuneCountInString(text))
	if n < 2 {
		return features.TokenScores{Tokens: n}, nil
	}
	if len(lp.TokenLogprobs) < n {
		return features.TokenScores{}, fmt.Errorf("completion returned %d log-probs for %d prompt tokens", len(lp.TokenLogprobs), n)
	}

	out := make([]float64, n-1)
	for i := 1; i < n; i++ {
		out[i-1] = float64(lp.TokenLogprobs[i])
	}
	return features.TokenScores{Tokens: n, LogProbs: out}, nil
}

// promptTokens counts echoed tokens that start inside the prompt. Without
// offsets the single generated token is assumed to be last.
func promptTokens(lp openai.LogprobResult, promptLen int) int {
	if len(lp.TextOffset) == len(lp.Tokens) && len(lp.TextOffset) > 0 {
		n := 0
		for _, off := range lp.TextOffset {
			if off < promptLen {
				n++
			}
		}
		return n
	}
	if len(lp.Tokens) == 0 {
		return 0
	}
	return len(lp.Tokens) - 1
}
