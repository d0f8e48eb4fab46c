// Package textutil holds the text primitives shared by the feature extractor
// and the heuristic scorer: tokenization, sentence and paragraph splitting,
// population statistics and lexical marker matching.
package textutil

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

var paragraphBreak = regexp.MustCompile(`\n[ \t]*\n`)

// IsCJK reports whether r belongs to a script written without word spacing.
func IsCJK(r rune) bool {
	return unicode.Is(unicode.Han, r) ||
		unicode.Is(unicode.Hiragana, r) ||
		unicode.Is(unicode.Katakana, r)
}

// IsSentenceTerminator recognizes Latin and full-width CJK terminators.
func IsSentenceTerminator(r rune) bool {
	switch r {
	case '.', '!', '?', '。', '！', '？':
		return true
	}
	return false
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsMark(r)
}

// Tokenize splits text into word and punctuation tokens. Letter and digit
// runs form words (an apostrophe or hyphen between letters stays inside the
// word), every CJK ideograph is its own token, and every other non-space rune
// is emitted as a single punctuation token.
func Tokenize(text string) []string {
	runes := []rune(text)
	tokens := make([]string, 0, len(runes)/4)
	var cur []rune

	flush := func() {
		if len(cur) > 0 {
			tokens = append(tokens, string(cur))
			cur = cur[:0]
		}
	}

	for i, r := range runes {
		switch {
		case unicode.IsSpace(r):
			flush()
		case IsCJK(r):
			flush()
			tokens = append(tokens, string(r))
		case isWordRune(r):
			cur = append(cur, r)
		case (r == '\'' || r == '’' || r == '-') && len(cur) > 0 &&
			i+1 < len(runes) && unicode.IsLetter(runes[i+1]):
			cur = append(cur, r)
		default:
			flush()
			tokens = append(tokens, string(r))
		}
	}
	flush()

	return tokens
}

// Words returns the tokens of text that carry a letter or digit.
func Words(text string) []string {
	tokens := Tokenize(text)
	words := tokens[:0]
	for _, t := range tokens {
		if IsWord(t) {
			words = append(words, t)
		}
	}
	return words
}

// IsWord reports whether the token contains at least one letter or digit.
func IsWord(token string) bool {
	for _, r := range token {
		if isWordRune(r) {
			return true
		}
	}
	return false
}

// IsAlpha reports whether every rune of a non-empty token is a letter.
func IsAlpha(token string) bool {
	if token == "" {
		return false
	}
	for _, r := range token {
		if !unicode.IsLetter(r) {
			return false
		}
	}
	return true
}

// Sentences splits text after runs of sentence terminators. Fragments that
// carry no word content (a lone "..." for instance) are dropped.
func Sentences(text string) []string {
	var sentences []string
	var b strings.Builder

	emit := func() {
		s := strings.TrimSpace(b.String())
		b.Reset()
		if s != "" && IsWord(s) {
			sentences = append(sentences, s)
		}
	}

	runes := []rune(text)
	for i := 0; i < len(runes); i++ {
		r := runes[i]
		b.WriteRune(r)
		if !IsSentenceTerminator(r) {
			continue
		}
		for i+1 < len(runes) && IsSentenceTerminator(runes[i+1]) {
			i++
			b.WriteRune(runes[i])
		}
		emit()
	}
	emit()

	return sentences
}

// Paragraphs splits text on blank lines.
func Paragraphs(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	var out []string
	for _, p := range paragraphBreak.Split(text, -1) {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// ContainsASCII reports whether text has at least one ASCII character.
func ContainsASCII(text string) bool {
	for i := 0; i < len(text); i++ {
		if text[i] < utf8.RuneSelf {
			return true
		}
	}
	return false
}
