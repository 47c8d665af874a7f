package metrics

import (
	"math"

	"github.com/YuminosukeSato/linbag/pkg/errors"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// MSE は平均二乗誤差（Mean Squared Error）を計算する
func MSE(yTrue, yPred *mat.VecDense) (float64, error) {
	n, err := checkVectors("MSE", yTrue, yPred)
	if err != nil {
		return 0, err
	}

	// MSE = (1/n) * Σ(yPred - yTrue)²
	var sum float64
	for i := 0; i < n; i++ {
		diff := yPred.AtVec(i) - yTrue.AtVec(i)
		sum += diff * diff
	}
	return sum / float64(n), nil
}

// MAE は平均絶対誤差（Mean Absolute Error）を計算する
func MAE(yTrue, yPred *mat.VecDense) (float64, error) {
	n, err := checkVectors("MAE", yTrue, yPred)
	if err != nil {
		return 0, err
	}

	// MAE = (1/n) * Σ|yPred - yTrue|
	var sum float64
	for i := 0; i < n; i++ {
		sum += math.Abs(yPred.AtVec(i) - yTrue.AtVec(i))
	}
	return sum / float64(n), nil
}

// RSquared は予測値と真値の相関係数の二乗を計算する
//
//	r² = (nΣvy - ΣvΣy)² / ((nΣv² - (Σv)²)(nΣy² - (Σy)²))
//
// どちらかの分散が0の場合は警告を出して0を返す
func RSquared(yTrue, yPred *mat.VecDense) (float64, error) {
	n, err := checkVectors("RSquared", yTrue, yPred)
	if err != nil {
		return 0, err
	}

	v := yTrue.RawVector().Data
	y := yPred.RawVector().Data
	if yTrue.RawVector().Inc != 1 || yPred.RawVector().Inc != 1 {
		v = mat.Col(nil, 0, yTrue)
		y = mat.Col(nil, 0, yPred)
	}

	ll := float64(n)
	sumV, sumY := floats.Sum(v[:n]), floats.Sum(y[:n])
	sumVV, sumYY := floats.Dot(v[:n], v[:n]), floats.Dot(y[:n], y[:n])
	sumVY := floats.Dot(v[:n], y[:n])

	num := ll*sumVY - sumV*sumY
	den := (ll*sumVV - sumV*sumV) * (ll*sumYY - sumY*sumY)
	if den == 0 {
		errors.Warn(errors.NewUndefinedMetricWarning("squared correlation coefficient", "zero variance", 0))
		return 0, nil
	}
	return num * num / den, nil
}

func checkVectors(op string, yTrue, yPred *mat.VecDense) (int, error) {
	if yTrue == nil || yPred == nil || yTrue.Len() == 0 {
		return 0, errors.NewValueError(op, "empty vector")
	}
	n := yTrue.Len()
	if yPred.Len() != n {
		return 0, errors.NewDimensionError(op, n, yPred.Len())
	}
	return n, nil
}

// MeanSquaredError adapts MSE to the (predictions, targets) slice form used by
// cross-validation.
func MeanSquaredError(predValues, trueValues []float64) (float64, error) {
	yTrue, yPred, err := toVectors("MeanSquaredError", predValues, trueValues)
	if err != nil {
		return 0, err
	}
	return MSE(yTrue, yPred)
}

// MeanAbsoluteError adapts MAE to the slice form used by cross-validation.
func MeanAbsoluteError(predValues, trueValues []float64) (float64, error) {
	yTrue, yPred, err := toVectors("MeanAbsoluteError", predValues, trueValues)
	if err != nil {
		return 0, err
	}
	return MAE(yTrue, yPred)
}

// SquaredCorrelation adapts RSquared to the slice form used by cross-validation.
func SquaredCorrelation(predValues, trueValues []float64) (float64, error) {
	yTrue, yPred, err := toVectors("SquaredCorrelation", predValues, trueValues)
	if err != nil {
		return 0, err
	}
	return RSquared(yTrue, yPred)
}

func toVectors(op string, predValues, trueValues []float64) (*mat.VecDense, *mat.VecDense, error) {
	if err := checkInputs(op, predValues, trueValues); err != nil {
		return nil, nil, err
	}
	return mat.NewVecDense(len(trueValues), trueValues), mat.NewVecDense(len(predValues), predValues), nil
}
