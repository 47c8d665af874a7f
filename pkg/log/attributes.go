// Standard attribute keys for model-selection logging. Keys follow a
// hierarchical "category.name" convention so records can be filtered by prefix.

package log

// Model and Operation Context
const (
	// ModelNameKey identifies the type of model ("linear", "knn").
	ModelNameKey = "model.name"

	// SolverKey names the base-learner kind, e.g. "L2R_LR".
	SolverKey = "model.solver"

	// ModelPathKey is the file a model was written to or read from.
	ModelPathKey = "model.path"

	// OperationKey specifies the operation being performed.
	// Standard values: "train", "predict", "cross_validate", "grid_search", "bagging"
	OperationKey = "ml.operation"

	// ComponentKey identifies which package is performing the operation.
	ComponentKey = "ml.component"

	// PhaseKey indicates the phase of the run.
	PhaseKey = "ml.phase"
)

// Data Shape and Characteristics
const (
	// SamplesKey indicates the number of instances in the dataset.
	SamplesKey = "data.samples"

	// FeaturesKey indicates the feature dimensionality.
	FeaturesKey = "data.features"

	// ClassesKey indicates the number of distinct labels.
	ClassesKey = "data.classes"

	// SourceKey names the file a dataset was read from.
	SourceKey = "data.source"
)

// Evaluation
const (
	// MetricKey names the active scoring function.
	MetricKey = "eval.metric"

	// ScoreKey records a cross-validated score.
	ScoreKey = "eval.score"

	// FoldsKey records the number of cross-validation folds.
	FoldsKey = "eval.folds"

	// FoldKey records the index of a single fold.
	FoldKey = "eval.fold"

	// AccuracyKey records an accuracy value.
	AccuracyKey = "metrics.accuracy"

	// LossKey records a loss value.
	LossKey = "metrics.loss"
)

// Hyperparameters
const (
	// RegularizationKey records the regularization constant C.
	RegularizationKey = "hyperparams.regularization"

	// ToleranceKey records the stopping tolerance.
	ToleranceKey = "hyperparams.tolerance"

	// NeighborsKey records the k of k-nearest-neighbors.
	NeighborsKey = "hyperparams.k"

	// FractionKey records the bootstrap fraction.
	FractionKey = "hyperparams.bootstrap_fraction"

	// RandomSeedKey records the random seed for reproducibility.
	RandomSeedKey = "config.random_seed"
)

// Performance
const (
	// DurationMsKey records the execution time of an operation in milliseconds.
	DurationMsKey = "perf.duration_ms"

	// IterationKey records the number of solver iterations.
	IterationKey = "training.iteration"

	// WorkersKey records how many goroutines an operation fanned out to.
	WorkersKey = "infra.workers"
)

// Error Context
const (
	// StacktraceKey contains stack trace information for debugging.
	StacktraceKey = "error.stacktrace"

	// WarningKey carries a structured warning object.
	WarningKey = "warning"
)

// Standard attribute values.
const (
	OperationTrain         = "train"
	OperationPredict       = "predict"
	OperationCrossValidate = "cross_validate"
	OperationGridSearch    = "grid_search"
	OperationBagging       = "bagging"
	OperationSelectK       = "select_k"

	PhaseTraining   = "training"
	PhaseValidation = "validation"
	PhaseInference  = "inference"
)
