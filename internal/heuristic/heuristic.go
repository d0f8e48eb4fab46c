// Package heuristic scores text for machine authorship without a trained
// model. Seven independently capped signals are measured from the raw text
// and summed into a probability clamped to [0,1].
package heuristic

import (
	"fmt"
	"math"
	"strings"
	"unicode"
	"unicode/utf8"

	"ai-detector/internal/textutil"
)

// Factor names, in evaluation order.
const (
	FactorVocabulary   = "vocabulary_diversity"
	FactorConsistency  = "sentence_consistency"
	FactorFunctionWord = "function_words"
	FactorPunctuation  = "punctuation_pattern"
	FactorLiterary     = "literary_style"
	FactorHumanization = "humanization"
	FactorStructure    = "structure"
)

// FactorNames lists every factor in evaluation order.
var FactorNames = []string{
	FactorVocabulary,
	FactorConsistency,
	FactorFunctionWord,
	FactorPunctuation,
	FactorLiterary,
	FactorHumanization,
	FactorStructure,
}

// Factors maps a factor name to its signed contribution.
type Factors map[string]float64

// Sum adds every contribution.
func (f Factors) Sum() float64 {
	var total float64
	for _, v := range f {
		total += v
	}
	return total
}

// Signals are the raw measurements the factors are computed from.
type Signals struct {
	Words          int
	TypeTokenRatio float64

	Sentences  int
	SentenceCV float64

	HasASCII          bool
	FunctionWordRatio float64

	PunctuationDensity float64

	LiteraryMarkers []string

	QuestionRatio   float64
	HasEllipsis     bool
	PersonalMarkers []string

	Paragraphs  int
	ParagraphCV float64
}

// Scorer computes heuristic AI probabilities. It is safe for concurrent use.
type Scorer struct {
	cfg      Config
	literary *textutil.MarkerMatcher
	personal *textutil.MarkerMatcher
}

// New validates cfg and builds a Scorer.
func New(cfg Config) (*Scorer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Scorer{
		cfg:      cfg,
		literary: textutil.NewMarkerMatcher(literaryMarkers...),
		personal: textutil.NewMarkerMatcher(personalMarkers...),
	}, nil
}

// MustNew is like New but panics on an invalid config.
func MustNew(cfg Config) *Scorer {
	s, err := New(cfg)
	if err != nil {
		panic(fmt.Sprintf("heuristic: %v", err))
	}
	return s
}

// Config returns the scorer configuration.
func (s *Scorer) Config() Config {
	return s.cfg
}

// Score returns the AI probability of text and the per-factor breakdown.
func (s *Scorer) Score(text string) (float64, Factors) {
	return s.Combine(s.Measure(text))
}

// Measure extracts the signals of text. Empty or degenerate input yields
// zero-valued signals.
func (s *Scorer) Measure(text string) Signals {
	var sig Signals

	words := strings.Fields(strings.ToLower(text))
	sig.Words = len(words)
	if len(words) > 0 {
		distinct := make(map[string]struct{}, len(words))
		functional := 0
		for _, w := range words {
			distinct[w] = struct{}{}
			if _, ok := functionWords[trimEdgePunct(w)]; ok {
				functional++
			}
		}
		sig.TypeTokenRatio = float64(len(distinct)) / float64(len(words))
		sig.FunctionWordRatio = float64(functional) / float64(len(words))
	}
	sig.HasASCII = textutil.ContainsASCII(text)

	sentences := textutil.Sentences(text)
	sig.Sentences = len(sentences)
	if len(sentences) > 1 {
		sig.SentenceCV = textutil.CV(fieldCounts(sentences))
	}

	if n := utf8.RuneCountInString(text); n > 0 {
		punct := 0
		for _, r := range text {
			if strings.ContainsRune(punctuationRunes, r) {
				punct++
			}
		}
		sig.PunctuationDensity = float64(punct) / float64(n)
	}

	sig.LiteraryMarkers = s.literary.Find(text)

	questions := strings.Count(text, "?") + strings.Count(text, "？")
	sig.QuestionRatio = float64(questions) / float64(max(len(sentences), 1))
	sig.HasEllipsis = strings.Contains(text, "...") ||
		strings.Contains(text, "…") ||
		strings.Contains(text, "。。。")
	sig.PersonalMarkers = s.personal.Find(text)

	paragraphs := textutil.Paragraphs(text)
	sig.Paragraphs = len(paragraphs)
	if len(paragraphs) > 1 {
		sig.ParagraphCV = textutil.CV(fieldCounts(paragraphs))
	}

	return sig
}

// Combine turns signals into the clamped probability and its factors. Every
// factor is present in the result, zero when it does not apply.
func (s *Scorer) Combine(sig Signals) (float64, Factors) {
	c := s.cfg
	f := make(Factors, len(FactorNames))

	f[FactorVocabulary] = 0
	if sig.Words > 0 {
		f[FactorVocabulary] = textutil.Clamp((sig.TypeTokenRatio-c.TTRFloor)/c.TTRSpan, 0, 1) * c.VocabularyWeight
	}

	f[FactorConsistency] = 0
	if sig.Sentences > 1 {
		f[FactorConsistency] = textutil.Clamp(1-math.Min(sig.SentenceCV, c.CVCeiling)/c.CVCeiling, 0, 1) * c.ConsistencyWeight
	}

	f[FactorFunctionWord] = 0
	if sig.HasASCII && sig.Words > 0 {
		f[FactorFunctionWord] = textutil.Clamp(sig.FunctionWordRatio/c.FunctionWordSaturation, 0, 1) * c.FunctionWordWeight
	}

	switch {
	case sig.PunctuationDensity < c.PunctuationLow:
		f[FactorPunctuation] = 0
	case sig.PunctuationDensity < c.PunctuationHigh:
		f[FactorPunctuation] = c.PunctuationWeight / 2
	default:
		f[FactorPunctuation] = c.PunctuationWeight
	}

	f[FactorLiterary] = 0
	if n := len(sig.LiteraryMarkers); n > 0 {
		f[FactorLiterary] = -math.Min(float64(n)*c.LiteraryPenaltyPerMarker, c.LiteraryPenaltyCap)
	}

	var human float64
	if sig.QuestionRatio > c.QuestionRatioThreshold {
		human += c.QuestionBonus
	}
	if sig.HasEllipsis {
		human += c.EllipsisBonus
	}
	if len(sig.PersonalMarkers) > c.PersonalMinMarkers {
		human += c.PersonalBonus
	}
	f[FactorHumanization] = -math.Min(human, c.HumanizationWeight)

	switch {
	case sig.Paragraphs == 0:
		f[FactorStructure] = 0
	case sig.Paragraphs == 1:
		f[FactorStructure] = c.StructureWeight / 2
	default:
		f[FactorStructure] = (1 - math.Min(sig.ParagraphCV, 1)) * c.StructureWeight
	}

	return textutil.Clamp(f.Sum(), 0, 1), f
}

func fieldCounts(parts []string) []float64 {
	counts := make([]float64, len(parts))
	for i, p := range parts {
		counts[i] = float64(len(strings.Fields(p)))
	}
	return counts
}

func trimEdgePunct(w string) string {
	return strings.TrimFunc(w, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}
