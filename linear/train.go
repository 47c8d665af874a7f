package linear

import (
	"math"

	"github.com/YuminosukeSato/linbag/core/model"
	"github.com/YuminosukeSato/linbag/core/parallel"
	"github.com/YuminosukeSato/linbag/core/sparse"
	"github.com/YuminosukeSato/linbag/pkg/errors"
	"github.com/YuminosukeSato/linbag/pkg/log"
)

// 決定値の計算を並列化する閾値（この値以下のインスタンス数では逐次処理）
const parallelThreshold = 2048

// Step decay applied to the non-smooth losses, whose subgradients never vanish.
const stepDecay = 0.1

// Train fits a linear model on ds.
//
// Classification labels are ordered by first appearance in ds. With at most
// two labels a single weight vector is learned and a positive decision value
// means Labels()[0]; with more labels one vector per label is trained one
// versus the rest. The bias feature, when present, is learned like any other
// feature.
func Train(ds *sparse.Dataset, param Parameter) (*Model, error) {
	if ds == nil || ds.Len() == 0 {
		return nil, errors.NewModelError("linear.Train", "empty data", errors.ErrEmptyData)
	}
	if err := CheckParameter(param); err != nil {
		return nil, err
	}

	m := &Model{
		Solver:    param.Solver,
		Param:     param.Apply(),
		NrFeature: ds.NumFeatures(),
		Bias:      ds.Bias(),
	}
	if ds.HasBias() {
		m.NrFeature--
	}

	logger := log.GetLogger().With(
		log.OperationKey, log.OperationTrain,
		log.SolverKey, param.Solver.String(),
		log.RegularizationKey, param.C,
	)

	l := ds.Len()
	targets := make([]float64, l)
	costs := make([]float64, l)

	if param.Solver.IsRegression() {
		for i := 0; i < l; i++ {
			targets[i] = ds.Label(i)
			costs[i] = 1
		}
		w, iter, err := fitBinary(ds, targets, costs, param)
		if err != nil {
			return nil, err
		}
		m.W = [][]float64{w}
		logger.Debug("regressor trained", log.SamplesKey, l, log.IterationKey, iter)
		return m, nil
	}

	m.ClassLabels = ds.DistinctLabels()
	for i := 0; i < l; i++ {
		costs[i] = param.ClassWeight(ds.Label(i))
	}

	nrClassifier := len(m.ClassLabels)
	if nrClassifier <= 2 {
		nrClassifier = 1
	}
	m.W = make([][]float64, nrClassifier)
	for k := range m.W {
		positive := m.ClassLabels[k]
		for i := 0; i < l; i++ {
			if ds.Label(i) == positive {
				targets[i] = 1
			} else {
				targets[i] = -1
			}
		}
		w, iter, err := fitBinary(ds, targets, costs, param)
		if err != nil {
			return nil, err
		}
		m.W[k] = w
		logger.Debug("classifier trained",
			log.SamplesKey, l,
			log.ClassesKey, len(m.ClassLabels),
			log.IterationKey, iter,
		)
	}
	return m, nil
}

// lossDerivative returns d loss(z, y) / dz.
func lossDerivative(solver SolverType, z, y, p float64) float64 {
	switch solver {
	case L2RLogistic, L1RLogistic, L2RLogisticDual:
		return -y * errors.Sigmoid(-y*z)
	case L2RL1LossSVCDual:
		if y*z < 1 {
			return -y
		}
		return 0
	case L2RL2LossSVR, L2RL2LossSVRDual:
		d := math.Abs(z-y) - p
		if d <= 0 {
			return 0
		}
		return 2 * math.Copysign(d, z-y)
	case L2RL1LossSVRDual:
		if math.Abs(z-y) <= p {
			return 0
		}
		return math.Copysign(1, z-y)
	default: // squared hinge
		return -2 * y * math.Max(0, 1-y*z)
	}
}

// curvature bounds the second derivative of the loss; it sizes the step.
func curvature(solver SolverType) float64 {
	switch solver {
	case L2RLogistic, L1RLogistic, L2RLogisticDual:
		return 0.25
	case L2RL1LossSVCDual, L2RL1LossSVRDual:
		return 1
	default:
		return 2
	}
}

func smooth(solver SolverType) bool {
	return solver != L2RL1LossSVCDual && solver != L2RL1LossSVRDual
}

// fitBinary minimizes R(w) + sum_i costs[i]*C*loss(w.x_i, targets[i]) by
// proximal gradient descent, R being ||w||^2/2 or ||w||_1. The objective is
// divided by C*l to keep the step size independent of the data size. It stops
// when the gradient mapping falls below Eps times its initial value. A NaN or
// Inf mapping aborts with a NumericalInstabilityError.
func fitBinary(ds *sparse.Dataset, targets, costs []float64, param Parameter) ([]float64, int, error) {
	l := ds.Len()
	n := ds.NumFeatures()
	w := make([]float64, n)
	z := make([]float64, l)
	grad := make([]float64, n)

	lambda := 1 / (param.C * float64(l))
	maxSq, maxCost := 0.0, 0.0
	for i := 0; i < l; i++ {
		maxSq = math.Max(maxSq, sparse.SquaredNorm(ds.At(i).Features))
		maxCost = math.Max(maxCost, costs[i])
	}
	eta0 := 1 / (curvature(param.Solver)*maxSq*maxCost + lambda)
	l1 := param.Solver.l1Regularized()

	var initial float64
	iter := 0
	for ; iter < param.MaxIter; iter++ {
		parallel.ParallelizeWithThreshold(l, parallelThreshold, 0, func(start, end int) {
			for i := start; i < end; i++ {
				z[i] = dot(w, ds.At(i).Features)
			}
		})

		for j := range grad {
			grad[j] = 0
		}
		for i := 0; i < l; i++ {
			g := costs[i] / float64(l) * lossDerivative(param.Solver, z[i], targets[i], param.P)
			if g == 0 {
				continue
			}
			for _, f := range ds.At(i).Features {
				grad[f.Index-1] += g * f.Value
			}
		}
		if !l1 {
			for j := range grad {
				grad[j] += lambda * w[j]
			}
		}

		eta := eta0
		if !smooth(param.Solver) {
			eta = eta0 / (1 + stepDecay*float64(iter))
		}

		var mapping float64
		for j := range w {
			next := w[j] - eta*grad[j]
			if l1 {
				next = softThreshold(next, eta*lambda)
			}
			mapping = math.Max(mapping, math.Abs(w[j]-next)/eta)
			w[j] = next
		}

		if err := errors.CheckScalar("gradient_mapping", mapping, iter); err != nil {
			return nil, iter, err
		}
		if iter == 0 {
			initial = mapping
		}
		if mapping == 0 || mapping <= param.Eps*initial {
			iter++
			break
		}
	}

	if iter >= param.MaxIter {
		log.GetLogger().Debug("reached max number of iterations",
			log.SolverKey, param.Solver.String(),
			log.IterationKey, iter,
		)
	}
	return w, iter, nil
}

func softThreshold(v, t float64) float64 {
	switch {
	case v > t:
		return v - t
	case v < -t:
		return v + t
	default:
		return 0
	}
}

// dot ignores features beyond the model's dimensionality.
func dot(w []float64, x sparse.Vector) float64 {
	var s float64
	for _, f := range x {
		if f.Index > len(w) {
			break
		}
		s += w[f.Index-1] * f.Value
	}
	return s
}

// DefaultTrainer adapts Train to the trainer interface consumed by
// cross-validation and bagging.
type DefaultTrainer struct {
	Param Parameter
}

// Train implements the trainer interface.
func (t DefaultTrainer) Train(ds *sparse.Dataset) (model.Predictor, error) {
	m, err := Train(ds, t.Param)
	if err != nil {
		return nil, err
	}
	return m, nil
}
