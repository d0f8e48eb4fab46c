package ml

import (
	"math"

	"gonum.org/v1/gonum/floats"

	"ai-detector/internal/textutil"
)

// fitScaler computes per-column mean and population std. Columns with zero
// spread get std 1 so they standardize to 0.
func fitScaler(rows [][]float64, width int) (mean, std []float64) {
	mean = make([]float64, width)
	std = make([]float64, width)
	col := make([]float64, len(rows))
	for j := 0; j < width; j++ {
		for i, r := range rows {
			col[i] = r[j]
		}
		mean[j] = textutil.Mean(col)
		std[j] = textutil.PopStd(col)
		if std[j] == 0 || math.IsNaN(std[j]) {
			std[j] = 1
		}
	}
	return mean, std
}

func standardize(row, mean, std []float64) []float64 {
	out := make([]float64, len(row))
	floats.SubTo(out, row, mean)
	floats.Div(out, std)
	return out
}

func standardizeAll(rows [][]float64, mean, std []float64) [][]float64 {
	out := make([][]float64, len(rows))
	for i, r := range rows {
		out[i] = standardize(r, mean, std)
	}
	return out
}
