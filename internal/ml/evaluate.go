package ml

import (
	"gonum.org/v1/gonum/integrate"
	"gonum.org/v1/gonum/stat"
)

// Report summarizes a training run. ConfusionMatrix is [[TN, FP], [FN, TP]]
// on the validation split.
type Report struct {
	TrainAccuracy   float64   `json:"train_accuracy"`
	TestAccuracy    float64   `json:"test_accuracy"`
	TestPrecision   float64   `json:"test_precision"`
	TestRecall      float64   `json:"test_recall"`
	TestF1          float64   `json:"test_f1"`
	TestROCAUC      float64   `json:"test_roc_auc"`
	ConfusionMatrix [2][2]int `json:"confusion_matrix"`

	TrainSamples      int  `json:"train_samples"`
	TestSamples       int  `json:"test_samples"`
	FeatureCount      int  `json:"feature_count"`
	Iterations        int  `json:"iterations"`
	Converged         bool `json:"converged"`
	FailedExtractions int  `json:"failed_extractions"`
}

func accuracy(yTrue, yPred []int) float64 {
	if len(yTrue) == 0 {
		return 0
	}
	correct := 0
	for i := range yTrue {
		if yTrue[i] == yPred[i] {
			correct++
		}
	}
	return float64(correct) / float64(len(yTrue))
}

func confusionMatrix(yTrue, yPred []int) [2][2]int {
	var cm [2][2]int
	for i := range yTrue {
		cm[yTrue[i]][yPred[i]]++
	}
	return cm
}

// precisionRecallF1 treats label 1 as positive. Undefined ratios are 0.
func precisionRecallF1(cm [2][2]int) (precision, recall, f1 float64) {
	tp := float64(cm[1][1])
	fp := float64(cm[0][1])
	fn := float64(cm[1][0])

	if tp+fp > 0 {
		precision = tp / (tp + fp)
	}
	if tp+fn > 0 {
		recall = tp / (tp + fn)
	}
	if precision+recall > 0 {
		f1 = 2 * precision * recall / (precision + recall)
	}
	return precision, recall, f1
}

// rocAUC integrates the ROC curve with the trapezoidal rule, so tied scores
// count half, as with average ranks. A single-class input returns 0.5.
func rocAUC(yTrue []int, scores []float64) float64 {
	y := make([]float64, len(scores))
	copy(y, scores)
	classes := make([]bool, len(yTrue))
	var pos int
	for i, label := range yTrue {
		classes[i] = label == 1
		if classes[i] {
			pos++
		}
	}
	if pos == 0 || pos == len(yTrue) {
		return 0.5
	}

	stat.SortWeightedLabeled(y, classes, nil)
	tpr, fpr, _ := stat.ROC(nil, y, classes, nil)
	return integrate.Trapezoidal(fpr, tpr)
}
