package heuristic

import "math"

// Confidence levels
const (
	LevelVeryHigh = "very_high"
	LevelHigh     = "high"
	LevelMedium   = "medium"
	LevelLow      = "low"
)

// Confidence maps an AI probability to a confidence in [0.5, 1].
func Confidence(p float64) float64 {
	return math.Max(math.Abs(p-0.5)*2, 0.5)
}

// Level buckets a confidence value.
func Level(confidence float64) string {
	switch {
	case confidence >= 0.85:
		return LevelVeryHigh
	case confidence >= 0.70:
		return LevelHigh
	case confidence >= 0.55:
		return LevelMedium
	default:
		return LevelLow
	}
}

// Verdict gives a human-readable label for an AI probability.
func Verdict(p float64) string {
	switch {
	case p >= 0.75:
		return "LIKELY AI"
	case p >= 0.60:
		return "PROBABLY AI"
	case p >= 0.49:
		return "MIXED SIGNALS"
	case p >= 0.35:
		return "PROBABLY HUMAN"
	default:
		return "LIKELY HUMAN"
	}
}
