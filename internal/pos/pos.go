// Package pos adapts a Penn Treebank part-of-speech tagger for the
// stylometry features.
package pos

import (
	"fmt"
	"strings"

	"github.com/jdkato/prose/v2"
)

// Tagged is a token paired with its Penn Treebank tag.
type Tagged struct {
	Text string
	Tag  string
}

// Penn Treebank tag classes used by stylometry.
var (
	PronounTags = map[string]bool{"PRP": true, "PRP$": true, "WP": true, "WP$": true}
	NounTags    = map[string]bool{"NN": true, "NNS": true, "NNP": true, "NNPS": true}
)

// ProseTagger tags with the averaged perceptron model bundled in prose.
// The tagger re-tokenizes its input, so the returned slice may differ in
// length from the tokens passed in. The model is decoded once and only read
// afterwards, so a ProseTagger is safe for concurrent use.
type ProseTagger struct {
	model *prose.Model
}

// NewProseTagger decodes the embedded tagging model.
func NewProseTagger() (*ProseTagger, error) {
	doc, err := prose.NewDocument("",
		prose.WithSegmentation(false),
		prose.WithExtraction(false))
	if err != nil {
		return nil, fmt.Errorf("load pos model: %w", err)
	}
	return &ProseTagger{model: doc.Model}, nil
}

// Tag assigns a tag to every token produced from tokens.
func (t *ProseTagger) Tag(tokens []string) ([]Tagged, error) {
	if len(tokens) == 0 {
		return nil, nil
	}

	doc, err := prose.NewDocument(strings.Join(tokens, " "),
		prose.UsingModel(t.model),
		prose.WithSegmentation(false),
		prose.WithExtraction(false))
	if err != nil {
		return nil, fmt.Errorf("pos tagging failed: %w", err)
	}

	out := make([]Tagged, 0, len(tokens))
	for _, tok := range doc.Tokens() {
		out = append(out, Tagged{Text: tok.Text, Tag: tok.Tag})
	}
	return out, nil
}
