package ml

import (
	"math"
	"sort"

	"ai-detector/internal/features"
)

// Model is a trained logistic-regression classifier with its
// standardization statistics. A Model is immutable once built.
type Model struct {
	Version      string    `json:"version"`
	Coefficients []float64 `json:"coefficients"`
	Intercept    float64   `json:"intercept"`
	ScalerMean   []float64 `json:"scaler_mean"`
	ScalerStd    []float64 `json:"scaler_std"`
	FeatureNames []string  `json:"feature_name_order"`
}

// Contribution is the signed share of one feature in the decision function:
// coefficient times the standardized feature value.
type Contribution struct {
	Feature      string  `json:"feature"`
	Value        float64 `json:"value"`
	Standardized float64 `json:"standardized"`
	Contribution float64 `json:"contribution"`
}

// Prediction is the classifier output for one feature vector.
type Prediction struct {
	Label            int            `json:"prediction"`
	AIProbability    float64        `json:"ai_probability"`
	HumanProbability float64        `json:"human_probability"`
	Confidence       float64        `json:"confidence"`
	Decision         float64        `json:"decision"`
	Contributions    []Contribution `json:"contributions"`
}

// Project aligns v to the canonical feature order. Missing features become
// 0 and unknown features are dropped.
func (m *Model) Project(v features.Vector) []float64 {
	row := make([]float64, len(m.FeatureNames))
	for i, name := range m.FeatureNames {
		row[i] = v[name]
	}
	return row
}

// Predict classifies a feature vector. Contributions are sorted by
// descending magnitude.
func (m *Model) Predict(v features.Vector) Prediction {
	raw := m.Project(v)
	x := standardize(raw, m.ScalerMean, m.ScalerStd)

	z := m.Intercept
	contribs := make([]Contribution, len(x))
	for i, xi := range x {
		c := m.Coefficients[i] * xi
		z += c
		contribs[i] = Contribution{
			Feature:      m.FeatureNames[i],
			Value:        raw[i],
			Standardized: xi,
			Contribution: c,
		}
	}
	sortContributions(contribs)

	p1 := sigmoid(z)
	label := 0
	if z > 0 {
		label = 1
	}

	return Prediction{
		Label:            label,
		AIProbability:    p1,
		HumanProbability: 1 - p1,
		Confidence:       math.Max(p1, 1-p1),
		Decision:         z,
		Contributions:    contribs,
	}
}

// TopContributions returns the k largest contributions by magnitude. A
// non-positive k returns all of them.
func (p Prediction) TopContributions(k int) []Contribution {
	if k <= 0 || k >= len(p.Contributions) {
		return p.Contributions
	}
	return p.Contributions[:k]
}

func sortContributions(c []Contribution) {
	sort.SliceStable(c, func(i, j int) bool {
		ai, aj := math.Abs(c[i].Contribution), math.Abs(c[j].Contribution)
		if ai != aj {
			return ai > aj
		}
		return c[i].Feature < c[j].Feature
	})
}
