package errors

import (
	"math"
	"strconv"
)

// NumericalInstabilityError は数値計算が不安定になった場合のエラーです。
// 学習中の損失や勾配に NaN や Inf が現れたことを示します。
type NumericalInstabilityError struct {
	Operation string    // 発生した操作（例: "gradient_update", "loss_calculation"）
	Values    []float64 // 問題のある値
	Iteration int       // 発生したイテレーション番号
}

func (e *NumericalInstabilityError) Error() string {
	valStr := ""
	for i, v := range e.Values {
		if i > 0 {
			valStr += ", "
		}
		if i >= 5 {
			valStr += "..."
			break
		}
		valStr += formatFloat(v)
	}
	return "linbag: numerical instability detected in " + e.Operation +
		" at iteration " + formatInt(e.Iteration) + ". Values: [" + valStr + "]"
}

// NewNumericalInstabilityError は新しいNumericalInstabilityErrorを作成します。
func NewNumericalInstabilityError(operation string, values []float64, iteration int) error {
	err := &NumericalInstabilityError{
		Operation: operation,
		Values:    values,
		Iteration: iteration,
	}
	return WithStack(err)
}

// CheckScalar checks a single scalar value for numerical instability.
func CheckScalar(operation string, value float64, iteration int) error {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return NewNumericalInstabilityError(operation, []float64{value}, iteration)
	}
	return nil
}

// StabilizeExp computes exp with protection against overflow.
// Clips the input to prevent exp from returning Inf.
func StabilizeExp(value float64) float64 {
	const maxExp = 700.0 // exp(700) is close to the maximum float64
	if value > maxExp {
		return math.Exp(maxExp)
	}
	if value < -maxExp {
		return 0
	}
	return math.Exp(value)
}

// Sigmoid computes 1/(1+exp(-z)) without overflowing for large |z|.
func Sigmoid(z float64) float64 {
	if z >= 0 {
		return 1.0 / (1.0 + StabilizeExp(-z))
	}
	ez := StabilizeExp(z)
	return ez / (1.0 + ez)
}

// LogOnePlusExp computes log(1+exp(z)) in a numerically stable way.
func LogOnePlusExp(z float64) float64 {
	if z > 0 {
		return z + math.Log1p(StabilizeExp(-z))
	}
	return math.Log1p(StabilizeExp(z))
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', 6, 64)
}

func formatInt(v int) string {
	return strconv.Itoa(v)
}
