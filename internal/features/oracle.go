package features

import (
	"context"
	"fmt"
)

type oracleScorer struct {
	oracle Oracle
}

// FromOracle adapts a tokenize + score oracle to a LogProbScorer.
func FromOracle(o Oracle) LogProbScorer {
	if o == nil {
		return nil
	}
	return oracleScorer{oracle: o}
}

func (p oracleScorer) LogProbs(ctx context.Context, text string) (TokenScores, error) {
	ids, err := p.oracle.Tokenize(ctx, text)
	if err != nil {
		return TokenScores{}, fmt.Errorf("tokenize: %w", err)
	}
	if len(ids) < 2 {
		return TokenScores{Tokens: len(ids)}, nil
	}

	lp, err := p.oracle.Score(ctx, ids)
	if err != nil {
		return TokenScores{}, fmt.Errorf("score: %w", err)
	}
	if len(lp) != len(ids)-1 {
		return TokenScores{}, fmt.Errorf("oracle returned %d log-probs for %d tokens", len(lp), len(ids))
	}

	return TokenScores{Tokens: len(ids), LogProbs: lp}, nil
}
