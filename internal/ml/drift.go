package ml

import (
	"math"
	"sort"

	"ai-detector/internal/features"
)

// DefaultDriftThreshold is the moment-shift score above which a feature is
// reported as drifted.
const DefaultDriftThreshold = 0.25

// Drift severities
const (
	DriftLow      = "low"
	DriftMedium   = "medium"
	DriftHigh     = "high"
	DriftCritical = "critical"
)

// DriftAlert flags a feature whose distribution in a batch moved away from
// the training distribution captured by the model's scaler.
type DriftAlert struct {
	Feature      string  `json:"feature"`
	Score        float64 `json:"drift_score"`
	Threshold    float64 `json:"threshold"`
	Severity     string  `json:"severity"`
	BaselineMean float64 `json:"baseline_mean"`
	BaselineStd  float64 `json:"baseline_std"`
	CurrentMean  float64 `json:"current_mean"`
	CurrentStd   float64 `json:"current_std"`
}

// Drift compares the moments of every model feature over vectors with the
// training moments. Nil vectors are skipped and fewer than two usable
// vectors yield no alerts. Alerts are sorted by descending score.
func (m *Model) Drift(vectors []features.Vector, threshold float64) []DriftAlert {
	if threshold <= 0 {
		threshold = DefaultDriftThreshold
	}

	rows := make([][]float64, 0, len(vectors))
	for _, v := range vectors {
		if v != nil {
			rows = append(rows, m.Project(v))
		}
	}
	if len(rows) < 2 {
		return nil
	}

	var alerts []DriftAlert
	for j, name := range m.FeatureNames {
		mean, std := columnMoments(rows, j)
		score := momentShift(m.ScalerMean[j], m.ScalerStd[j], mean, std)
		if score < threshold {
			continue
		}
		alerts = append(alerts, DriftAlert{
			Feature:      name,
			Score:        score,
			Threshold:    threshold,
			Severity:     driftSeverity(score, threshold),
			BaselineMean: m.ScalerMean[j],
			BaselineStd:  m.ScalerStd[j],
			CurrentMean:  mean,
			CurrentStd:   std,
		})
	}

	sort.SliceStable(alerts, func(a, b int) bool {
		return alerts[a].Score > alerts[b].Score
	})
	return alerts
}

// momentShift averages the relative change of mean and standard deviation.
func momentShift(baseMean, baseStd, mean, std float64) float64 {
	meanShift := math.Abs(baseMean-mean) / (1 + math.Abs(baseMean))
	stdShift := math.Abs(baseStd-std) / (1 + baseStd)
	return (meanShift + stdShift) / 2
}

func columnMoments(rows [][]float64, j int) (mean, std float64) {
	for _, r := range rows {
		mean += r[j]
	}
	mean /= float64(len(rows))
	for _, r := range rows {
		d := r[j] - mean
		std += d * d
	}
	return mean, math.Sqrt(std / float64(len(rows)))
}

func driftSeverity(score, threshold float64) string {
	switch {
	case score >= 4*threshold:
		return DriftCritical
	case score >= 2*threshold:
		return DriftHigh
	case score >= 1.5*threshold:
		return DriftMedium
	default:
		return DriftLow
	}
}
