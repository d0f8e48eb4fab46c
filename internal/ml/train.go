package ml

import (
	"context"
	"fmt"
	"sort"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"ai-detector/internal/features"
)

// Sample is one labeled training text. Label 1 marks machine-generated text.
type Sample struct {
	Text  string `json:"text"`
	Label int    `json:"label"`
}

// TrainOptions controls a training run. Zero values select the defaults.
type TrainOptions struct {
	ValidationFraction float64
	Seed               int64
	Parallelism        int

	C             float64
	MaxIterations int
	Tolerance     float64
}

// DefaultTrainOptions returns the standard training configuration.
func DefaultTrainOptions() TrainOptions {
	return TrainOptions{
		ValidationFraction: 0.2,
		Seed:               42,
		Parallelism:        4,
		C:                  1.0,
		MaxIterations:      1000,
		Tolerance:          1e-6,
	}
}

func (o TrainOptions) withDefaults() TrainOptions {
	d := DefaultTrainOptions()
	if o.Parallelism <= 0 {
		o.Parallelism = 1
	}
	if o.C <= 0 {
		o.C = d.C
	}
	if o.MaxIterations <= 0 {
		o.MaxIterations = d.MaxIterations
	}
	if o.Tolerance <= 0 {
		o.Tolerance = d.Tolerance
	}
	return o
}

// Train extracts features for every sample and fits a fresh model.
func Train(ctx context.Context, extractor Extractor, corpus []Sample, opts TrainOptions) (*Model, *Report, error) {
	labels, err := validateCorpus(corpus)
	if err != nil {
		return nil, nil, err
	}
	if err := checkFraction(opts.ValidationFraction); err != nil {
		return nil, nil, err
	}
	opts = opts.withDefaults()

	start := time.Now()
	vectors := make([]features.Vector, len(corpus))
	var failed atomic.Int64

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(opts.Parallelism)
	for i, s := range corpus {
		i, s := i, s
		g.Go(func() error {
			if err := gCtx.Err(); err != nil {
				return err
			}
			x := extractor.Extract(gCtx, s.Text)
			if len(x.Failures) > 0 {
				failed.Add(1)
			}
			vectors[i] = x.Vector
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, fmt.Errorf("feature extraction: %w", err)
	}

	log.Info().
		Int("samples", len(corpus)).
		Int64("partial_failures", failed.Load()).
		Dur("elapsed", time.Since(start)).
		Msg("Training features extracted")

	model, report, err := Fit(vectors, labels, opts)
	if err != nil {
		return nil, nil, err
	}
	report.FailedExtractions = int(failed.Load())
	return model, report, nil
}

// Fit trains on pre-extracted vectors. The canonical feature order is the
// sorted union of all vector keys.
func Fit(vectors []features.Vector, labels []int, opts TrainOptions) (*Model, *Report, error) {
	if len(vectors) != len(labels) {
		return nil, nil, fmt.Errorf("got %d vectors for %d labels", len(vectors), len(labels))
	}
	if err := checkLabels(labels); err != nil {
		return nil, nil, err
	}
	if err := checkFraction(opts.ValidationFraction); err != nil {
		return nil, nil, err
	}
	opts = opts.withDefaults()

	names := canonicalOrder(vectors)
	if len(names) == 0 {
		return nil, nil, fmt.Errorf("no features extracted from %d samples", len(vectors))
	}

	model := &Model{FeatureNames: names}
	matrix := make([][]float64, len(vectors))
	for i, v := range vectors {
		matrix[i] = model.Project(v)
	}

	trainIdx, testIdx := stratifiedSplit(labels, opts.ValidationFraction, opts.Seed)
	xTrain, yTrain := subset(matrix, labels, trainIdx)
	xTest, yTest := subset(matrix, labels, testIdx)

	model.ScalerMean, model.ScalerStd = fitScaler(xTrain, len(names))
	sTrain := standardizeAll(xTrain, model.ScalerMean, model.ScalerStd)
	sTest := standardizeAll(xTest, model.ScalerMean, model.ScalerStd)

	fit := fitLogistic(sTrain, yTrain, opts.C, opts.MaxIterations, opts.Tolerance)
	model.Coefficients = fit.weights
	model.Intercept = fit.bias
	model.Version = time.Now().UTC().Format("20060102-150405")

	report := &Report{
		TrainSamples: len(trainIdx),
		TestSamples:  len(testIdx),
		FeatureCount: len(names),
		Iterations:   fit.iterations,
		Converged:    fit.converged,
	}
	report.TrainAccuracy = accuracy(yTrain, model.labelsOf(sTrain))

	testScores := model.scoresOf(sTest)
	testPred := make([]int, len(testScores))
	for i, p := range testScores {
		if p > 0.5 {
			testPred[i] = 1
		}
	}
	report.TestAccuracy = accuracy(yTest, testPred)
	report.ConfusionMatrix = confusionMatrix(yTest, testPred)
	report.TestPrecision, report.TestRecall, report.TestF1 = precisionRecallF1(report.ConfusionMatrix)
	report.TestROCAUC = rocAUC(yTest, testScores)

	if !fit.converged {
		log.Warn().Int("iterations", fit.iterations).Msg("Logistic regression did not converge")
	}
	log.Info().
		Str("version", model.Version).
		Int("features", len(names)).
		Int("train_samples", report.TrainSamples).
		Int("test_samples", report.TestSamples).
		Float64("train_accuracy", report.TrainAccuracy).
		Float64("test_accuracy", report.TestAccuracy).
		Float64("test_roc_auc", report.TestROCAUC).
		Msg("Model trained")

	return model, report, nil
}

func validateCorpus(corpus []Sample) ([]int, error) {
	labels := make([]int, len(corpus))
	for i, s := range corpus {
		labels[i] = s.Label
	}
	if err := checkLabels(labels); err != nil {
		return nil, err
	}
	return labels, nil
}

func checkFraction(f float64) error {
	if f < 0 || f >= 1 {
		return fmt.Errorf("validation fraction must be in [0,1), got %f", f)
	}
	return nil
}

func checkLabels(labels []int) error {
	seen := [2]bool{}
	for i, y := range labels {
		if y != 0 && y != 1 {
			return fmt.Errorf("sample %d: %w, got %d", i, ErrInvalidLabel, y)
		}
		seen[y] = true
	}
	classes := 0
	for _, ok := range seen {
		if ok {
			classes++
		}
	}
	if len(labels) == 0 || classes < 2 {
		return &InsufficientDataError{Samples: len(labels), Classes: classes}
	}
	return nil
}

func canonicalOrder(vectors []features.Vector) []string {
	set := make(map[string]struct{})
	for _, v := range vectors {
		for k := range v {
			set[k] = struct{}{}
		}
	}
	names := make([]string, 0, len(set))
	for k := range set {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

func subset(matrix [][]float64, labels []int, idx []int) ([][]float64, []int) {
	x := make([][]float64, len(idx))
	y := make([]int, len(idx))
	for i, j := range idx {
		x[i] = matrix[j]
		y[i] = labels[j]
	}
	return x, y
}

// scoresOf returns P(label=1) for already standardized rows.
func (m *Model) scoresOf(rows [][]float64) []float64 {
	out := make([]float64, len(rows))
	for i, r := range rows {
		z := m.Intercept
		for j, v := range r {
			z += m.Coefficients[j] * v
		}
		out[i] = sigmoid(z)
	}
	return out
}

func (m *Model) labelsOf(rows [][]float64) []int {
	scores := m.scoresOf(rows)
	out := make([]int, len(scores))
	for i, p := range scores {
		if p > 0.5 {
			out[i] = 1
		}
	}
	return out
}
