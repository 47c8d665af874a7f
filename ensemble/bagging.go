// Package ensemble builds bagged linear models: one bootstrap sample per base
// learner, a cross-validated search for C on that sample, and a final model
// trained on the whole sample and written next to the base model file.
package ensemble

import (
	"context"
	"math/rand/v2"
	"time"

	"github.com/YuminosukeSato/linbag/core/model"
	"github.com/YuminosukeSato/linbag/core/parallel"
	"github.com/YuminosukeSato/linbag/core/sparse"
	"github.com/YuminosukeSato/linbag/linear"
	"github.com/YuminosukeSato/linbag/metrics"
	"github.com/YuminosukeSato/linbag/model_selection"
	"github.com/YuminosukeSato/linbag/pkg/errors"
	"github.com/YuminosukeSato/linbag/pkg/log"
)

// DefaultBaseLearners are the solver families bagged by default.
var DefaultBaseLearners = []linear.SolverType{
	linear.L2RLogistic,
	linear.L2RL2LossSVC,
	linear.L1RLogistic,
	linear.L1RL2LossSVC,
}

// TrainFunc trains one model. linear.Train is the default.
type TrainFunc func(ds *sparse.Dataset, param linear.Parameter) (model.Predictor, error)

// SaveFunc persists one model.
type SaveFunc func(m model.Predictor, path string) error

// Bagging trains and persists one independently tuned model per base learner.
// The members are not combined at prediction time.
type Bagging struct {
	BaseLearners []linear.SolverType
	// Base carries the settings shared by every member (P, class weights,
	// iteration limit). Solver, tolerance and C are set per member.
	Base        linear.Parameter
	Fraction    float64
	Grid        []float64
	Folds       int
	Metric      metrics.Metric
	Parallelism int
	Rand        *rand.Rand
	Train       TrainFunc
	Save        SaveFunc
}

// Member describes one trained base learner.
type Member struct {
	Solver     linear.SolverType           `json:"-"`
	SolverName string                      `json:"solver"`
	Tolerance  float64                     `json:"tolerance"`
	SampleSize int                         `json:"sample_size"`
	BestC      float64                     `json:"best_c"`
	BestScore  float64                     `json:"best_score"`
	Search     *model_selection.GridResult `json:"grid"`
	ModelPath  string                      `json:"model_path"`
	Model      model.Predictor             `json:"-"`
}

// Option is a functional option for Bagging.
type Option func(*Bagging)

// NewBagging creates a Bagging with the default learners, a 0.6 bootstrap
// fraction, C in 2^-3..2^10, 5 folds and the log-loss metric.
func NewBagging(opts ...Option) *Bagging {
	bg := &Bagging{
		BaseLearners: append([]linear.SolverType(nil), DefaultBaseLearners...),
		Base:         linear.DefaultParameter(),
		Fraction:     model_selection.DefaultBootstrapFraction,
		Grid:         model_selection.DefaultCGrid(),
		Folds:        model_selection.DefaultFolds,
		Metric:       metrics.DefaultClassification,
	}
	for _, opt := range opts {
		opt(bg)
	}
	return bg
}

// WithBaseLearners replaces the list of bagged solver families.
func WithBaseLearners(solvers ...linear.SolverType) Option {
	return func(bg *Bagging) { bg.BaseLearners = solvers }
}

// WithBaseParameter sets the settings shared by every member.
func WithBaseParameter(p linear.Parameter) Option {
	return func(bg *Bagging) { bg.Base = p }
}

// WithFraction sets the bootstrap fraction.
func WithFraction(f float64) Option {
	return func(bg *Bagging) { bg.Fraction = f }
}

// WithGrid sets the candidate values of C.
func WithGrid(grid []float64) Option {
	return func(bg *Bagging) { bg.Grid = grid }
}

// WithFolds sets the cross-validation fold count.
func WithFolds(k int) Option {
	return func(bg *Bagging) { bg.Folds = k }
}

// WithMetric sets the classification metric maximized by the search.
func WithMetric(m metrics.Metric) Option {
	return func(bg *Bagging) { bg.Metric = m }
}

// WithParallelism trains up to n members concurrently.
func WithParallelism(n int) Option {
	return func(bg *Bagging) { bg.Parallelism = n }
}

// WithRand sets the random source from which every member's source is derived.
func WithRand(rng *rand.Rand) Option {
	return func(bg *Bagging) { bg.Rand = rng }
}

// WithTrainFunc replaces the trainer.
func WithTrainFunc(fn TrainFunc) Option {
	return func(bg *Bagging) { bg.Train = fn }
}

// WithSaveFunc replaces model persistence.
func WithSaveFunc(fn SaveFunc) Option {
	return func(bg *Bagging) { bg.Save = fn }
}

// ModelPath returns the file name of a bagged member: "<base>.<SOLVER_NAME>".
func ModelPath(base string, solver linear.SolverType) string {
	return base + "." + solver.String()
}

func defaultTrain(ds *sparse.Dataset, param linear.Parameter) (model.Predictor, error) {
	return linear.Train(ds, param)
}

func defaultSave(m model.Predictor, path string) error {
	if p, ok := m.(model.Persistable); ok {
		return p.Save(path)
	}
	return model.SaveModel(m, path)
}

// Fit trains every base learner on its own bootstrap sample of ds and saves
// it under ModelPath(modelFile, solver). A save failure aborts the run.
func (bg *Bagging) Fit(ctx context.Context, ds *sparse.Dataset, modelFile string) ([]Member, error) {
	if err := bg.validate(ds); err != nil {
		return nil, err
	}

	master := bg.Rand
	if master == nil {
		master = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	// derived up front so concurrent members stay reproducible
	sources := make([]*rand.Rand, len(bg.BaseLearners))
	for i := range sources {
		sources[i] = rand.New(rand.NewPCG(master.Uint64(), master.Uint64()))
	}

	members := make([]Member, len(bg.BaseLearners))
	workers := bg.Parallelism
	if workers < 1 {
		workers = 1
	}
	err := parallel.ForEach(ctx, len(bg.BaseLearners), workers, func(ctx context.Context, i int) error {
		m, err := bg.fitMember(ctx, ds, bg.BaseLearners[i], modelFile, sources[i])
		if err != nil {
			return err
		}
		members[i] = m
		return nil
	})
	if err != nil {
		return nil, err
	}
	return members, nil
}

func (bg *Bagging) validate(ds *sparse.Dataset) error {
	if ds == nil || ds.Len() == 0 {
		return errors.NewModelError("Bagging.Fit", "empty data", errors.ErrEmptyData)
	}
	if len(bg.BaseLearners) == 0 {
		return errors.NewValidationError("base_learners", "at least one base learner is required", 0)
	}
	if len(bg.Grid) == 0 {
		return errors.NewValidationError("grid", "at least one value of C is required", 0)
	}
	if bg.Metric.IsRegression() {
		return errors.NewValidationError("metric", "bagging needs a classification metric", bg.Metric.String())
	}
	for _, s := range bg.BaseLearners {
		if s.IsRegression() {
			return errors.NewValidationError("base_learners", "regression solvers cannot be bagged", s.String())
		}
	}
	return nil
}

func (bg *Bagging) fitMember(ctx context.Context, ds *sparse.Dataset, solver linear.SolverType, modelFile string, rng *rand.Rand) (Member, error) {
	start := time.Now()
	train := bg.Train
	if train == nil {
		train = defaultTrain
	}
	save := bg.Save
	if save == nil {
		save = defaultSave
	}

	boot, err := model_selection.Bootstrap(ds, bg.Fraction, rng)
	if err != nil {
		return Member{}, err
	}

	param := bg.Base.Apply(linear.WithSolver(solver), linear.WithEps(linear.DefaultTolerance(solver)))
	if err := linear.CheckParameter(param); err != nil {
		return Member{}, err
	}

	search := model_selection.GridSearch{
		Candidates: bg.Grid,
		Minimize:   !bg.Metric.GreaterIsBetter(),
	}
	res, err := search.Run(ctx, func(ctx context.Context, c float64) (float64, error) {
		candidate := param.Apply(linear.WithC(c))
		trainer := model_selection.TrainerFunc(func(sub *sparse.Dataset) (model.Predictor, error) {
			return train(sub, candidate)
		})
		return model_selection.CrossValidate(ctx, boot, trainer, bg.Metric,
			model_selection.WithFolds(bg.Folds),
			model_selection.WithRand(rng),
		)
	})
	if err != nil {
		return Member{}, errors.Wrapf(err, "grid search for %s", solver)
	}

	final := param.Apply(linear.WithC(res.BestValue))
	m, err := train(boot, final)
	if err != nil {
		return Member{}, err
	}

	path := ModelPath(modelFile, solver)
	if err := save(m, path); err != nil {
		return Member{}, errors.NewModelError("Bagging.Fit", "can't save model to file "+path, err)
	}

	log.GetLogger().Info("bagged model saved",
		log.OperationKey, log.OperationBagging,
		log.PhaseKey, log.PhaseTraining,
		log.SolverKey, solver.String(),
		log.ToleranceKey, param.Eps,
		log.FractionKey, bg.Fraction,
		log.RegularizationKey, res.BestValue,
		log.MetricKey, bg.Metric.String(),
		log.ScoreKey, res.BestScore,
		log.SamplesKey, boot.Len(),
		log.ModelPathKey, path,
		log.DurationMsKey, time.Since(start).Milliseconds(),
	)

	return Member{
		Solver:     solver,
		SolverName: solver.String(),
		Tolerance:  param.Eps,
		SampleSize: boot.Len(),
		BestC:      res.BestValue,
		BestScore:  res.BestScore,
		Search:     res,
		ModelPath:  path,
		Model:      m,
	}, nil
}
