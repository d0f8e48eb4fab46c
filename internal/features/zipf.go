package features

import (
	"context"
	"sort"
	"strings"

	"ai-detector/internal/common"
	"ai-detector/internal/textutil"
)

const (
	zipfCoverage  = 0.8
	zipfMinTokens = 10
)

func zipf(_ context.Context, text string) (Vector, error) {
	freq := make(map[string]int)
	total := 0
	for _, tok := range textutil.Tokenize(text) {
		if textutil.IsAlpha(tok) {
			freq[strings.ToLower(tok)]++
			total++
		}
	}

	v := make(Vector, 3)
	g := common.GroupZipf
	v.set(g, "vocab_size", float64(len(freq)))
	if total < zipfMinTokens {
		v.set(g, "tail_ratio", 0)
		v.set(g, "richness", 0)
		return v, nil
	}

	counts := make([]int, 0, len(freq))
	for _, n := range freq {
		counts = append(counts, n)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(counts)))

	target := zipfCoverage * float64(total)
	covered, needed := 0, 0
	for _, n := range counts {
		covered += n
		needed++
		if float64(covered) >= target {
			break
		}
	}

	distinct := float64(len(freq))
	v.set(g, "tail_ratio", (distinct-float64(needed))/distinct)
	v.set(g, "richness", distinct/float64(total))
	return v, nil
}
