package features

import (
	"context"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"ai-detector/internal/common"
	"ai-detector/internal/pos"
	"ai-detector/internal/textutil"
)

var stylometryFunctionWords = map[string]struct{}{
	"the": {}, "a": {}, "an": {}, "is": {}, "are": {}, "was": {}, "were": {},
	"be": {}, "been": {}, "being": {}, "and": {}, "or": {}, "but": {}, "if": {},
	"because": {}, "therefore": {}, "however": {}, "thus": {}, "also": {},
}

func (e *Extractor) stylometry(_ context.Context, text string) (Vector, error) {
	tokens := textutil.Tokenize(text)
	total := float64(len(tokens))

	freq := make(map[string]int)
	var alpha, alphaRunes, functional int
	for _, tok := range tokens {
		lower := strings.ToLower(tok)
		if _, ok := stylometryFunctionWords[lower]; ok {
			functional++
		}
		if textutil.IsAlpha(tok) {
			alpha++
			alphaRunes += utf8.RuneCountInString(tok)
			freq[lower]++
		}
	}

	hapax := 0
	for _, n := range freq {
		if n == 1 {
			hapax++
		}
	}

	v := make(Vector, 10)
	g := common.GroupStylometry
	v.set(g, "ttr", textutil.Ratio(float64(len(freq)), float64(alpha)))
	v.set(g, "function_word_ratio", textutil.Ratio(float64(functional), total))
	v.set(g, "rare_word_ratio", textutil.Ratio(float64(hapax), float64(len(freq))))
	v.set(g, "avg_word_length", textutil.Ratio(float64(alphaRunes), float64(alpha)))

	if e.tagger != nil {
		tagged, err := e.tagger.Tag(tokens)
		if err != nil {
			return nil, fmt.Errorf("pos tagger: %w", err)
		}
		tags := make(map[string]struct{})
		var pronouns, nouns int
		for _, t := range tagged {
			tags[t.Tag] = struct{}{}
			if pos.PronounTags[t.Tag] {
				pronouns++
			}
			if pos.NounTags[t.Tag] {
				nouns++
			}
		}
		v.set(g, "pronoun_ratio", textutil.Ratio(float64(pronouns), total))
		v.set(g, "noun_ratio", textutil.Ratio(float64(nouns), total))
		v.set(g, "pos_tag_variety", float64(len(tags)))
	}

	sentences := float64(len(textutil.Sentences(text)))
	exclamations := strings.Count(text, "!") + strings.Count(text, "！")
	ellipses := strings.Count(text, "...") + strings.Count(text, "…")
	v.set(g, "exclamation_ratio", textutil.Ratio(float64(exclamations), sentences))
	v.set(g, "ellipsis_ratio", textutil.Ratio(float64(ellipses), sentences))

	var upper, runes int
	for _, r := range text {
		runes++
		if unicode.IsUpper(r) {
			upper++
		}
	}
	v.set(g, "uppercase_ratio", textutil.Ratio(float64(upper), float64(runes)))

	return v, nil
}
