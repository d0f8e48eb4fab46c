package ml

import (
	"math"
	"sort"
)

// FeatureWeight is the global influence of one feature. Coefficients act on
// standardized inputs, so their magnitudes are comparable across features.
type FeatureWeight struct {
	Feature     string  `json:"feature"`
	Coefficient float64 `json:"coefficient"`
	Importance  float64 `json:"importance"`
	Mean        float64 `json:"mean"`
	StdDev      float64 `json:"std_dev"`
}

// Importance ranks the model's features by absolute coefficient, normalized
// so the importances sum to 1. A non-positive k returns every feature.
func (m *Model) Importance(k int) []FeatureWeight {
	var total float64
	for _, c := range m.Coefficients {
		total += math.Abs(c)
	}

	out := make([]FeatureWeight, len(m.FeatureNames))
	for i, name := range m.FeatureNames {
		w := FeatureWeight{
			Feature:     name,
			Coefficient: m.Coefficients[i],
			Mean:        m.ScalerMean[i],
			StdDev:      m.ScalerStd[i],
		}
		if total > 0 {
			w.Importance = math.Abs(m.Coefficients[i]) / total
		}
		out[i] = w
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Importance != out[j].Importance {
			return out[i].Importance > out[j].Importance
		}
		return out[i].Feature < out[j].Feature
	})

	if k > 0 && k < len(out) {
		out = out[:k]
	}
	return out
}
