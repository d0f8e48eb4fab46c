package textutil

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// MatchStrategy selects how a marker is located in text.
type MatchStrategy int

const (
	// MatchSubstring is used for scripts without word spacing.
	MatchSubstring MatchStrategy = iota
	// MatchWholeWord requires word boundaries on both sides.
	MatchWholeWord
)

func (s MatchStrategy) String() string {
	if s == MatchSubstring {
		return "substring"
	}
	return "whole_word"
}

type marker struct {
	text     string
	strategy MatchStrategy
	re       *regexp.Regexp
}

// MarkerMatcher counts case-insensitive occurrences of a fixed marker
// dictionary. The strategy is picked per marker from the script of its first
// rune: CJK markers match as substrings, everything else as whole words.
type MarkerMatcher struct {
	markers []marker
}

// NewMarkerMatcher builds a matcher. Duplicate and empty markers are skipped.
func NewMarkerMatcher(words ...string) *MarkerMatcher {
	m := &MarkerMatcher{markers: make([]marker, 0, len(words))}
	seen := make(map[string]bool, len(words))
	for _, w := range words {
		w = strings.ToLower(strings.TrimSpace(w))
		if w == "" || seen[w] {
			continue
		}
		seen[w] = true

		mk := marker{text: w, strategy: StrategyFor(w)}
		if mk.strategy == MatchWholeWord {
			mk.re = regexp.MustCompile(`\b` + regexp.QuoteMeta(w) + `\b`)
		}
		m.markers = append(m.markers, mk)
	}
	return m
}

// StrategyFor returns the strategy used for a marker.
func StrategyFor(marker string) MatchStrategy {
	r, _ := utf8.DecodeRuneInString(marker)
	if IsCJK(r) || unicode.Is(unicode.Hangul, r) {
		return MatchSubstring
	}
	return MatchWholeWord
}

// Find returns the distinct markers present in text, in dictionary order.
func (m *MarkerMatcher) Find(text string) []string {
	if m == nil || text == "" {
		return nil
	}
	lower := strings.ToLower(text)
	var found []string
	for _, mk := range m.markers {
		var hit bool
		if mk.strategy == MatchSubstring {
			hit = strings.Contains(lower, mk.text)
		} else {
			hit = mk.re.MatchString(lower)
		}
		if hit {
			found = append(found, mk.text)
		}
	}
	return found
}

// Count returns the number of distinct markers present in text.
func (m *MarkerMatcher) Count(text string) int {
	return len(m.Find(text))
}

// Len returns the dictionary size.
func (m *MarkerMatcher) Len() int {
	if m == nil {
		return 0
	}
	return len(m.markers)
}
