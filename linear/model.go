package linear

import (
	"math"

	"github.com/YuminosukeSato/linbag/core/model"
	"github.com/YuminosukeSato/linbag/core/sparse"
	"github.com/YuminosukeSato/linbag/pkg/errors"
)

// Model is a trained linear model. Its exported fields are what gets persisted.
type Model struct {
	Solver      SolverType
	Param       Parameter
	ClassLabels []float64   // nil for regression
	W           [][]float64 // one weight vector per classifier, bias weight last
	NrFeature   int         // number of features without the bias feature
	Bias        float64     // < 0 when the model has no bias feature
}

var (
	_ model.ProbabilityPredictor = (*Model)(nil)
	_ model.Persistable          = (*Model)(nil)
)

// Labels returns the class labels in first-appearance order.
func (m *Model) Labels() []float64 {
	return m.ClassLabels
}

// NumFeatures returns the training dimensionality, bias excluded.
func (m *Model) NumFeatures() int {
	return m.NrFeature
}

// IsRegression reports whether the model predicts real values.
func (m *Model) IsRegression() bool {
	return m.Solver.IsRegression()
}

// DecisionValues returns one value per classifier: a single value for binary
// classification and regression, one per label for one-vs-rest models.
func (m *Model) DecisionValues(x sparse.Vector) []float64 {
	out := make([]float64, len(m.W))
	for k, w := range m.W {
		out[k] = dot(w, x)
	}
	return out
}

// DecisionValue returns the value of the first classifier. For a binary model
// a positive value means Labels()[0].
func (m *Model) DecisionValue(x sparse.Vector) float64 {
	if len(m.W) == 0 {
		return 0
	}
	return dot(m.W[0], x)
}

// PredictLabel returns the predicted label, or the predicted value for regression.
func (m *Model) PredictLabel(x sparse.Vector) float64 {
	dec := m.DecisionValues(x)
	if m.IsRegression() || len(m.ClassLabels) == 0 {
		return dec[0]
	}
	if len(m.W) == 1 {
		if dec[0] > 0 || len(m.ClassLabels) == 1 {
			return m.ClassLabels[0]
		}
		return m.ClassLabels[1]
	}
	best := 0
	for k := 1; k < len(dec); k++ {
		if dec[k] > dec[best] {
			best = k
		}
	}
	return m.ClassLabels[best]
}

// PredictProbability returns the predicted label and one probability per label.
// Only logistic solvers support it.
func (m *Model) PredictProbability(x sparse.Vector) (float64, []float64, error) {
	if !m.Solver.IsLogistic() {
		return 0, nil, errors.NewModelError("PredictProbability",
			"probability output is only supported for logistic regression", nil)
	}
	dec := m.DecisionValues(x)
	probs := make([]float64, len(m.ClassLabels))
	if len(m.W) == 1 {
		probs[0] = errors.Sigmoid(dec[0])
		if len(probs) > 1 {
			probs[1] = 1 - probs[0]
		}
	} else {
		var sum float64
		for k, d := range dec {
			probs[k] = errors.Sigmoid(d)
			sum += probs[k]
		}
		for k := range probs {
			probs[k] /= sum
		}
	}

	best := 0
	for k := 1; k < len(probs); k++ {
		if probs[k] > probs[best] {
			best = k
		}
	}
	return m.ClassLabels[best], probs, nil
}

// Norm returns the L2 norm of every weight vector, bias weight excluded.
func (m *Model) Norm() []float64 {
	out := make([]float64, len(m.W))
	for k, w := range m.W {
		var s float64
		for j := 0; j < m.NrFeature && j < len(w); j++ {
			s += w[j] * w[j]
		}
		out[k] = math.Sqrt(s)
	}
	return out
}

// Save はモデルをファイルに保存する
func (m *Model) Save(path string) error {
	return model.SaveModel(m, path)
}

// Load はファイルからモデルを読み込む
func (m *Model) Load(path string) error {
	return model.LoadModel(m, path)
}

// LoadModel reads a model written by Save.
func LoadModel(path string) (*Model, error) {
	m := &Model{}
	if err := m.Load(path); err != nil {
		return nil, err
	}
	return m, nil
}
