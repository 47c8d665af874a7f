// Package model defines the interfaces every trained predictor satisfies and
// the gob persistence used to store them.
package model

import (
	"github.com/YuminosukeSato/linbag/core/sparse"
)

// DecisionFunction scores a single instance before thresholding.
type DecisionFunction interface {
	// DecisionValue returns the real-valued score of x. For binary classifiers a
	// positive value means Labels()[0]; for regressors it is the prediction.
	DecisionValue(x sparse.Vector) float64
}

// Predictor is a trained model as consumed by cross-validation and the
// prediction tool.
type Predictor interface {
	DecisionFunction

	// PredictLabel returns the predicted label of x.
	PredictLabel(x sparse.Vector) float64

	// Labels returns the class labels in the model's internal order.
	// Regression models return nil.
	Labels() []float64

	// NumFeatures returns the number of features the model was trained on,
	// not counting the bias feature.
	NumFeatures() int
}

// ProbabilityPredictor is implemented by models that produce class probabilities.
type ProbabilityPredictor interface {
	Predictor

	// PredictProbability returns the predicted label and one probability per
	// entry of Labels().
	PredictProbability(x sparse.Vector) (float64, []float64, error)
}

// Persistable is the interface for models that can be saved and loaded.
type Persistable interface {
	Save(path string) error
	Load(path string) error
}
