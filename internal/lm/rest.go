package lm

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

// RESTOracle talks to a scoring sidecar exposing POST /tokenize and
// POST /score.
type RESTOracle struct {
	base string
	rest *resty.Client
}

type tokenizeReq struct {
	Content string `json:"content"`
}

type tokenizeResp struct {
	Tokens []int `json:"tokens"`
}

type scoreReq struct {
	Tokens []int `json:"tokens"`
}

type scoreResp struct {
	LogProbs []float64 `json:"logprobs"`
}

func NewRESTOracle(base string, timeout time.Duration) *RESTOracle {
	r := resty.New()
	if timeout > 0 {
		r.SetTimeout(timeout)
	} else {
		r.SetTimeout(10 * time.Second)
	}
	r.SetHeader("Content-Type", "application/json")
	return &RESTOracle{base: strings.TrimRight(base, "/"), rest: r}
}

// Tokenize returns the model token ids of text.
func (o *RESTOracle) Tokenize(ctx context.Context, text string) ([]int, error) {
	out := &tokenizeResp{}
	if err := o.post(ctx, "/tokenize", tokenizeReq{Content: text}, out); err != nil {
		return nil, err
	}
	return out.Tokens, nil
}

// Score returns the log-probability of each token after the first.
func (o *RESTOracle) Score(ctx context.Context, ids []int) ([]float64, error) {
	out := &scoreResp{}
	if err := o.post(ctx, "/score", scoreReq{Tokens: ids}, out); err != nil {
		return nil, err
	}
	return out.LogProbs, nil
}

func (o *RESTOracle) post(ctx context.Context, path string, body, result any) error {
	resp, err := o.rest.R().
		SetContext(ctx).
		SetBody(body).
		SetResult(result).
		Post(o.base + path)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	if resp.IsError() {
		return fmt.Errorf("oracle error: status %d, body: %s", resp.StatusCode(), resp.String())
	}
	return nil
}
