package metrics

import (
	"math"
	"sort"

	"github.com/YuminosukeSato/linbag/pkg/errors"
)

// logLossEpsilon keeps log() finite for saturated probabilities.
const logLossEpsilon = 1e-6

// Binary classification metrics take parallel slices of decision values and
// true labels. A label y > 0 is the positive class, y <= 0 the negative one,
// so both {+1,-1} and {1,0} encodings are accepted.

func checkInputs(op string, decisionValues, labels []float64) error {
	if len(labels) == 0 {
		return errors.NewValueError(op, "empty input")
	}
	if len(decisionValues) != len(labels) {
		return errors.NewDimensionError(op, len(labels), len(decisionValues))
	}
	return nil
}

// confusion counts predictions with decision >= 0 as positive.
type confusion struct {
	tp, fp, fn, tn int
}

func countConfusion(decisionValues, labels []float64) confusion {
	var c confusion
	for i, d := range decisionValues {
		pos := labels[i] > 0
		switch {
		case d >= 0 && pos:
			c.tp++
		case d >= 0 && !pos:
			c.fp++
		case d < 0 && pos:
			c.fn++
		default:
			c.tn++
		}
	}
	return c
}

// Accuracy returns the fraction of instances whose decision value sign
// matches the label; a decision value of exactly 0 counts as negative.
func Accuracy(decisionValues, labels []float64) (float64, error) {
	if err := checkInputs("Accuracy", decisionValues, labels); err != nil {
		return 0, err
	}
	correct := 0
	for i, d := range decisionValues {
		if (d > 0) == (labels[i] > 0) {
			correct++
		}
	}
	return float64(correct) / float64(len(labels)), nil
}

// LogLoss returns the mean log-likelihood of the labels under
// p = sigmoid(decision value), i.e. mean(log(p+eps)) for positives and
// mean(log(1-p+eps)) for negatives. Values are <= 0; larger is better.
func LogLoss(decisionValues, labels []float64) (float64, error) {
	if err := checkInputs("LogLoss", decisionValues, labels); err != nil {
		return 0, err
	}
	var sum float64
	for i, d := range decisionValues {
		p := errors.Sigmoid(d)
		if labels[i] > 0 {
			sum += math.Log(p + logLossEpsilon)
		} else {
			sum += math.Log(1 - p + logLossEpsilon)
		}
	}
	return sum / float64(len(labels)), nil
}

// Precision returns tp/(tp+fp). Without positive predictions it warns and returns 0.
func Precision(decisionValues, labels []float64) (float64, error) {
	if err := checkInputs("Precision", decisionValues, labels); err != nil {
		return 0, err
	}
	c := countConfusion(decisionValues, labels)
	return precision(c), nil
}

func precision(c confusion) float64 {
	if c.tp+c.fp == 0 {
		errors.Warn(errors.NewUndefinedMetricWarning("precision", "no positive predicted label", 0))
		return 0
	}
	return float64(c.tp) / float64(c.tp+c.fp)
}

// Recall returns tp/(tp+fn). Without positive true labels it warns and returns 0.
func Recall(decisionValues, labels []float64) (float64, error) {
	if err := checkInputs("Recall", decisionValues, labels); err != nil {
		return 0, err
	}
	c := countConfusion(decisionValues, labels)
	return recall(c), nil
}

func recall(c confusion) float64 {
	if c.tp+c.fn == 0 {
		errors.Warn(errors.NewUndefinedMetricWarning("recall", "no positive true label", 0))
		return 0
	}
	return float64(c.tp) / float64(c.tp+c.fn)
}

// FScore returns the harmonic mean of precision and recall.
func FScore(decisionValues, labels []float64) (float64, error) {
	if err := checkInputs("FScore", decisionValues, labels); err != nil {
		return 0, err
	}
	c := countConfusion(decisionValues, labels)
	p, r := precision(c), recall(c)
	if p+r == 0 {
		errors.Warn(errors.NewUndefinedMetricWarning("F-score", "precision + recall = 0", 0))
		return 0, nil
	}
	return 2 * p * r / (p + r), nil
}

// BAC returns the balanced accuracy (specificity + recall) / 2. A term whose
// denominator is zero is warned about and counted as 0.
func BAC(decisionValues, labels []float64) (float64, error) {
	if err := checkInputs("BAC", decisionValues, labels); err != nil {
		return 0, err
	}
	c := countConfusion(decisionValues, labels)

	var specificity float64
	if c.tn+c.fp == 0 {
		errors.Warn(errors.NewUndefinedMetricWarning("specificity", "no negative true label", 0))
	} else {
		specificity = float64(c.tn) / float64(c.tn+c.fp)
	}
	return (specificity + recall(c)) / 2, nil
}

// AUC returns the area under the ROC curve by ranking decision values in
// descending order and counting, for every negative, the positives ranked
// above it. Ties keep input order. With no positive or no negative labels it
// warns and returns 0.
func AUC(decisionValues, labels []float64) (float64, error) {
	if err := checkInputs("AUC", decisionValues, labels); err != nil {
		return 0, err
	}

	indices := make([]int, len(decisionValues))
	for i := range indices {
		indices[i] = i
	}
	sort.SliceStable(indices, func(a, b int) bool {
		return decisionValues[indices[a]] > decisionValues[indices[b]]
	})

	var roc float64
	tp, fp := 0, 0
	for _, i := range indices {
		if labels[i] > 0 {
			tp++
		} else {
			roc += float64(tp)
			fp++
		}
	}

	if tp == 0 || fp == 0 {
		errors.Warn(errors.NewUndefinedMetricWarning("AUC", "too few positive true labels or negative true labels", 0))
		return 0, nil
	}
	return roc / float64(tp) / float64(fp), nil
}
