package model_selection

import (
	"context"
	"math/rand/v2"
	"time"

	"github.com/YuminosukeSato/linbag/core/model"
	"github.com/YuminosukeSato/linbag/core/parallel"
	"github.com/YuminosukeSato/linbag/core/sparse"
	"github.com/YuminosukeSato/linbag/metrics"
	"github.com/YuminosukeSato/linbag/pkg/errors"
	"github.com/YuminosukeSato/linbag/pkg/log"
)

// DefaultFolds is the fold count used when none is given.
const DefaultFolds = 5

// Trainer fits a model on a dataset. linear.DefaultTrainer is the usual implementation.
type Trainer interface {
	Train(ds *sparse.Dataset) (model.Predictor, error)
}

// TrainerFunc adapts a function to Trainer.
type TrainerFunc func(ds *sparse.Dataset) (model.Predictor, error)

// Train implements Trainer.
func (f TrainerFunc) Train(ds *sparse.Dataset) (model.Predictor, error) {
	return f(ds)
}

// CVOptions configures a cross-validation run.
type CVOptions struct {
	Folds int
	// Rand drives the fold permutation. nil draws a random seed.
	Rand *rand.Rand
	// Parallelism is the number of folds trained at once; values <= 1 run
	// the folds sequentially.
	Parallelism int
}

// CVOption is a functional option for CVOptions.
type CVOption func(*CVOptions)

// WithFolds sets the number of folds.
func WithFolds(k int) CVOption {
	return func(o *CVOptions) { o.Folds = k }
}

// WithRand sets the random source of the fold permutation.
func WithRand(rng *rand.Rand) CVOption {
	return func(o *CVOptions) { o.Rand = rng }
}

// WithParallelism sets how many folds are trained concurrently.
func WithParallelism(n int) CVOption {
	return func(o *CVOptions) { o.Parallelism = n }
}

func newCVOptions(opts []CVOption) CVOptions {
	o := CVOptions{Folds: DefaultFolds}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// EvaluationRecord holds the held-out decision values of every fold and the
// matching true values: +1/-1 for classification, raw targets for regression.
type EvaluationRecord struct {
	DecisionValues []float64
	Labels         []float64
}

// CrossValidate estimates a binary classifier with k-fold cross-validation and
// scores all held-out decision values at once with metric. A true label is
// normalized to +1 when it equals the fold model's first label and -1
// otherwise. A fold model with other than two labels is a ConfigurationError.
func CrossValidate(ctx context.Context, ds *sparse.Dataset, trainer Trainer, metric metrics.Metric, opts ...CVOption) (float64, error) {
	if metric.IsRegression() {
		return 0, errors.NewValidationError("metric", "classification cross-validation needs a classification metric", metric.String())
	}
	return crossValidate(ctx, ds, trainer, metric, false, newCVOptions(opts))
}

// CrossValidateRegression is CrossValidate for regression: raw targets are
// compared with the predicted values using a regression metric.
func CrossValidateRegression(ctx context.Context, ds *sparse.Dataset, trainer Trainer, metric metrics.Metric, opts ...CVOption) (float64, error) {
	if !metric.IsRegression() {
		return 0, errors.NewValidationError("metric", "regression cross-validation needs a regression metric", metric.String())
	}
	return crossValidate(ctx, ds, trainer, metric, true, newCVOptions(opts))
}

func crossValidate(ctx context.Context, ds *sparse.Dataset, trainer Trainer, metric metrics.Metric, regression bool, o CVOptions) (float64, error) {
	start := time.Now()
	rec, err := Collect(ctx, ds, trainer, regression, o)
	if err != nil {
		return 0, err
	}

	score, err := metric.Score(rec.DecisionValues, rec.Labels)
	if err != nil {
		return 0, err
	}

	log.GetLogger().Debug("cross validation finished",
		log.OperationKey, log.OperationCrossValidate,
		log.MetricKey, metric.String(),
		log.ScoreKey, score,
		log.FoldsKey, o.Folds,
		log.SamplesKey, ds.Len(),
		log.DurationMsKey, time.Since(start).Milliseconds(),
	)
	return score, nil
}

// Collect trains one model per fold and gathers the held-out predictions in
// permutation order. Fold models are discarded after scoring.
func Collect(ctx context.Context, ds *sparse.Dataset, trainer Trainer, regression bool, o CVOptions) (*EvaluationRecord, error) {
	if ds == nil {
		return nil, errors.NewModelError("CrossValidate", "empty data", errors.ErrEmptyData)
	}
	folds, _, err := NewKFold(o.Folds, o.Rand).Split(ds.Len())
	if err != nil {
		return nil, err
	}

	offsets := make([]int, len(folds)+1)
	for j, f := range folds {
		offsets[j+1] = offsets[j] + len(f.TestIndices)
	}
	rec := &EvaluationRecord{
		DecisionValues: make([]float64, ds.Len()),
		Labels:         make([]float64, ds.Len()),
	}

	workers := o.Parallelism
	if workers < 1 {
		workers = 1
	}
	err = parallel.ForEach(ctx, len(folds), workers, func(ctx context.Context, j int) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		return runFold(ds, trainer, folds[j], j, regression, rec, offsets[j])
	})
	if err != nil {
		return nil, err
	}
	return rec, nil
}

// runFold writes its held-out results into rec starting at offset; fold
// ranges are disjoint so concurrent folds never share a slot.
func runFold(ds *sparse.Dataset, trainer Trainer, fold CVFold, j int, regression bool, rec *EvaluationRecord, offset int) error {
	train, err := ds.Subset(fold.TrainIndices)
	if err != nil {
		return err
	}
	m, err := trainer.Train(train)
	if err != nil {
		return errors.Wrapf(err, "fold %d", j)
	}

	var positive float64
	if !regression {
		labels := m.Labels()
		if len(labels) != 2 {
			return errors.NewConfigurationError("CrossValidate", errors.ErrNotBinary.Error())
		}
		positive = labels[0]
	}

	for n, idx := range fold.TestIndices {
		inst := ds.At(idx)
		rec.DecisionValues[offset+n] = m.DecisionValue(inst.Features)
		switch {
		case regression:
			rec.Labels[offset+n] = inst.Label
		case inst.Label == positive:
			rec.Labels[offset+n] = 1
		default:
			rec.Labels[offset+n] = -1
		}
	}

	log.GetLogger().Debug("fold finished",
		log.FoldKey, j,
		log.SamplesKey, train.Len(),
		log.PhaseKey, log.PhaseValidation,
	)
	return nil
}
