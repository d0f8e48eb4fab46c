package heuristic

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidConfig is returned when a Config fails validation.
var ErrInvalidConfig = errors.New("invalid heuristic config")

const weightSumTolerance = 1e-9

// Config holds the weights and thresholds of the seven scoring factors.
// The five additive weights plus the nominal weights of the two subtractive
// factors must sum to 1.0.
type Config struct {
	VocabularyWeight   float64 `yaml:"vocabulary_weight"`
	ConsistencyWeight  float64 `yaml:"consistency_weight"`
	FunctionWordWeight float64 `yaml:"function_word_weight"`
	PunctuationWeight  float64 `yaml:"punctuation_weight"`
	LiteraryWeight     float64 `yaml:"literary_weight"`
	HumanizationWeight float64 `yaml:"humanization_weight"`
	StructureWeight    float64 `yaml:"structure_weight"`

	// Vocabulary diversity ramps from TTRFloor to TTRFloor+TTRSpan.
	TTRFloor float64 `yaml:"ttr_floor"`
	TTRSpan  float64 `yaml:"ttr_span"`

	// CV at or above CVCeiling earns nothing for consistency.
	CVCeiling float64 `yaml:"cv_ceiling"`

	FunctionWordSaturation float64 `yaml:"function_word_saturation"`

	PunctuationLow  float64 `yaml:"punctuation_low"`
	PunctuationHigh float64 `yaml:"punctuation_high"`

	LiteraryPenaltyPerMarker float64 `yaml:"literary_penalty_per_marker"`
	LiteraryPenaltyCap       float64 `yaml:"literary_penalty_cap"`

	QuestionRatioThreshold float64 `yaml:"question_ratio_threshold"`
	QuestionBonus          float64 `yaml:"question_bonus"`
	EllipsisBonus          float64 `yaml:"ellipsis_bonus"`
	PersonalBonus          float64 `yaml:"personal_bonus"`
	// PersonalMinMarkers must be exceeded for the personal bonus to apply.
	PersonalMinMarkers int `yaml:"personal_min_markers"`
}

// DefaultConfig returns the frozen production weighting.
func DefaultConfig() Config {
	return Config{
		VocabularyWeight:   0.31,
		ConsistencyWeight:  0.29,
		FunctionWordWeight: 0.08,
		PunctuationWeight:  0.06,
		LiteraryWeight:     0.10,
		HumanizationWeight: 0.07,
		StructureWeight:    0.09,

		TTRFloor:  0.54,
		TTRSpan:   0.26,
		CVCeiling: 1.3,

		FunctionWordSaturation: 0.30,

		PunctuationLow:  0.015,
		PunctuationHigh: 0.03,

		LiteraryPenaltyPerMarker: 0.25,
		LiteraryPenaltyCap:       0.40,

		QuestionRatioThreshold: 0.15,
		QuestionBonus:          0.035,
		EllipsisBonus:          0.02,
		PersonalBonus:          0.015,
		PersonalMinMarkers:     1,
	}
}

// WeightSum returns the sum of all seven factor weights.
func (c Config) WeightSum() float64 {
	return c.VocabularyWeight + c.ConsistencyWeight + c.FunctionWordWeight +
		c.PunctuationWeight + c.LiteraryWeight + c.HumanizationWeight +
		c.StructureWeight
}

// Validate checks weight ranges, the weight sum and threshold ordering.
func (c Config) Validate() error {
	weights := map[string]float64{
		"vocabulary_weight":    c.VocabularyWeight,
		"consistency_weight":   c.ConsistencyWeight,
		"function_word_weight": c.FunctionWordWeight,
		"punctuation_weight":   c.PunctuationWeight,
		"literary_weight":      c.LiteraryWeight,
		"humanization_weight":  c.HumanizationWeight,
		"structure_weight":     c.StructureWeight,
	}
	for name, w := range weights {
		if w < 0 || w > 1 || math.IsNaN(w) {
			return fmt.Errorf("%w: %s must be in [0,1], got %f", ErrInvalidConfig, name, w)
		}
	}

	if sum := c.WeightSum(); math.Abs(sum-1.0) > weightSumTolerance {
		return fmt.Errorf("%w: weights sum to %.12f, want 1.0", ErrInvalidConfig, sum)
	}

	if c.TTRSpan <= 0 {
		return fmt.Errorf("%w: ttr_span must be positive, got %f", ErrInvalidConfig, c.TTRSpan)
	}
	if c.CVCeiling <= 0 {
		return fmt.Errorf("%w: cv_ceiling must be positive, got %f", ErrInvalidConfig, c.CVCeiling)
	}
	if c.FunctionWordSaturation <= 0 {
		return fmt.Errorf("%w: function_word_saturation must be positive, got %f", ErrInvalidConfig, c.FunctionWordSaturation)
	}
	if c.PunctuationLow < 0 || c.PunctuationHigh < c.PunctuationLow {
		return fmt.Errorf("%w: punctuation thresholds must satisfy 0 <= low <= high, got %f/%f",
			ErrInvalidConfig, c.PunctuationLow, c.PunctuationHigh)
	}
	if c.LiteraryPenaltyPerMarker < 0 || c.LiteraryPenaltyCap < 0 {
		return fmt.Errorf("%w: literary penalty must be non-negative", ErrInvalidConfig)
	}
	if c.QuestionBonus < 0 || c.EllipsisBonus < 0 || c.PersonalBonus < 0 {
		return fmt.Errorf("%w: humanization bonuses must be non-negative", ErrInvalidConfig)
	}
	if c.PersonalMinMarkers < 0 {
		return fmt.Errorf("%w: personal_min_markers must be non-negative, got %d", ErrInvalidConfig, c.PersonalMinMarkers)
	}

	return nil
}
