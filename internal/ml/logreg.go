package ml

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

type fitResult struct {
	weights    []float64
	bias       float64
	iterations int
	converged  bool
}

// sigmoid converts a score to a probability without overflowing for large
// magnitudes.
func sigmoid(z float64) float64 {
	if z >= 0 {
		return 1.0 / (1.0 + math.Exp(-z))
	}
	e := math.Exp(z)
	return e / (1.0 + e)
}

// fitLogistic minimizes the mean log-loss plus an L2 penalty scaled like
// liblinear's C by full-batch gradient descent. The step size is the inverse
// of a Lipschitz bound on the gradient, so the loss never increases and the
// result depends only on the input.
func fitLogistic(x [][]float64, y []int, c float64, maxIter int, tol float64) fitResult {
	n := len(x)
	res := fitResult{}
	if n == 0 {
		return res
	}
	d := len(x[0])
	res.weights = make([]float64, d)

	var sq float64
	for _, row := range x {
		sq += floats.Dot(row, row)
	}
	nf := float64(n)
	reg := 1.0 / (c * nf)
	lipschitz := 0.25*(sq/nf+1) + reg
	lr := 1.0 / lipschitz

	gradW := make([]float64, d)
	for it := 0; it < maxIter; it++ {
		for j := range gradW {
			gradW[j] = 0
		}
		var gradB float64

		for i, row := range x {
			e := sigmoid(res.bias+floats.Dot(res.weights, row)) - float64(y[i])
			gradB += e
			floats.AddScaled(gradW, e, row)
		}

		gradB /= nf
		floats.Scale(1/nf, gradW)
		floats.AddScaled(gradW, reg, res.weights)
		maxGrad := math.Max(math.Abs(gradB), floats.Norm(gradW, math.Inf(1)))

		res.iterations = it
		if maxGrad < tol {
			res.converged = true
			return res
		}

		res.bias -= lr * gradB
		floats.AddScaled(res.weights, -lr, gradW)
	}
	res.iterations = maxIter
	return res
}
