// Package config loads the harness configuration from YAML. Every field has a
// default, so an empty file is a valid configuration.
package config

import (
	"math/rand/v2"
	"os"
	"strconv"

	"github.com/goccy/go-yaml"

	"github.com/YuminosukeSato/linbag/ensemble"
	"github.com/YuminosukeSato/linbag/linear"
	"github.com/YuminosukeSato/linbag/metrics"
	"github.com/YuminosukeSato/linbag/model_selection"
	"github.com/YuminosukeSato/linbag/neighbors"
	"github.com/YuminosukeSato/linbag/pkg/errors"
	"github.com/YuminosukeSato/linbag/pkg/log"
)

// Config is the harness configuration.
type Config struct {
	Folds             int     `yaml:"folds"`
	BootstrapFraction float64 `yaml:"bootstrap_fraction"`
	Log2CStart        int     `yaml:"log2_c_start"`
	Log2CEnd          int     `yaml:"log2_c_end"`
	// BaseLearners are solver names or numeric ids.
	BaseLearners         []string           `yaml:"base_learners"`
	ClassificationMetric string             `yaml:"classification_metric"`
	RegressionMetric     string             `yaml:"regression_metric"`
	Bias                 float64            `yaml:"bias"`
	ClassWeights         map[string]float64 `yaml:"class_weights"`
	KStep                int                `yaml:"k_step"`
	KSelection           string             `yaml:"k_selection"`
	// Seed makes runs reproducible; nil draws a random seed.
	Seed        *uint64 `yaml:"seed"`
	Parallelism int     `yaml:"parallelism"`
	LogLevel    string  `yaml:"log_level"`
	LogFormat   string  `yaml:"log_format"`
}

// Default returns the reference settings.
func Default() Config {
	learners := make([]string, len(ensemble.DefaultBaseLearners))
	for i, s := range ensemble.DefaultBaseLearners {
		learners[i] = s.String()
	}
	return Config{
		Folds:                model_selection.DefaultFolds,
		BootstrapFraction:    model_selection.DefaultBootstrapFraction,
		Log2CStart:           model_selection.DefaultLog2CStart,
		Log2CEnd:             model_selection.DefaultLog2CEnd,
		BaseLearners:         learners,
		ClassificationMetric: metrics.DefaultClassification.String(),
		RegressionMetric:     metrics.DefaultRegression.String(),
		Bias:                 -1,
		KStep:                neighbors.DefaultKStep,
		KSelection:           neighbors.SelectMaximizeLogLoss.String(),
		Parallelism:          1,
		LogLevel:             "info",
		LogFormat:            "console",
	}
}

// Load reads path over the defaults and validates the result.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, errors.NewModelError("config.Load", "can't open config file "+path, err)
	}
	return Parse(data)
}

// Parse decodes YAML over the defaults. Unknown keys are rejected.
func Parse(data []byte) (Config, error) {
	c := Default()
	if err := yaml.UnmarshalWithOptions(data, &c, yaml.Strict()); err != nil {
		return Config{}, errors.NewConfigurationError("config.Parse", yaml.FormatError(err, false, true))
	}
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

// Marshal encodes c as YAML.
func (c Config) Marshal() ([]byte, error) {
	return yaml.Marshal(c)
}

// Validate checks every field and returns the first problem found.
func (c Config) Validate() error {
	if c.Folds < 2 {
		return errors.NewValidationError("folds", "n-fold cross validation: n must >= 2", c.Folds)
	}
	if c.BootstrapFraction <= 0 || c.BootstrapFraction > 1 {
		return errors.NewValidationError("bootstrap_fraction", "must be in (0, 1]", c.BootstrapFraction)
	}
	if c.Log2CEnd < c.Log2CStart {
		return errors.NewValidationError("log2_c_end", "must be >= log2_c_start", c.Log2CEnd)
	}
	if c.KStep < 1 {
		return errors.NewValidationError("k_step", "must be >= 1", c.KStep)
	}
	if _, err := c.Solvers(); err != nil {
		return err
	}
	if _, err := c.ClassificationMetricValue(); err != nil {
		return err
	}
	if _, err := c.RegressionMetricValue(); err != nil {
		return err
	}
	if _, err := c.Weights(); err != nil {
		return err
	}
	if _, err := c.SelectionMode(); err != nil {
		return err
	}
	if _, err := log.ParseLevel(c.LogLevel); err != nil {
		return err
	}
	if c.LogFormat != "console" && c.LogFormat != "json" {
		return errors.NewValidationError("log_format", "must be console or json", c.LogFormat)
	}
	return nil
}

// Solvers resolves BaseLearners.
func (c Config) Solvers() ([]linear.SolverType, error) {
	if len(c.BaseLearners) == 0 {
		return nil, errors.NewValidationError("base_learners", "at least one base learner is required", 0)
	}
	out := make([]linear.SolverType, len(c.BaseLearners))
	for i, name := range c.BaseLearners {
		s, err := linear.ParseSolver(name)
		if err != nil {
			return nil, err
		}
		out[i] = s
	}
	return out, nil
}

// ClassificationMetricValue resolves ClassificationMetric.
func (c Config) ClassificationMetricValue() (metrics.Metric, error) {
	m, err := metrics.ParseMetric(c.ClassificationMetric)
	if err != nil {
		return 0, err
	}
	if m.IsRegression() {
		return 0, errors.NewValidationError("classification_metric", "not a classification metric", c.ClassificationMetric)
	}
	return m, nil
}

// RegressionMetricValue resolves RegressionMetric.
func (c Config) RegressionMetricValue() (metrics.Metric, error) {
	m, err := metrics.ParseMetric(c.RegressionMetric)
	if err != nil {
		return 0, err
	}
	if !m.IsRegression() {
		return 0, errors.NewValidationError("regression_metric", "not a regression metric", c.RegressionMetric)
	}
	return m, nil
}

// Weights converts ClassWeights to label -> weight.
func (c Config) Weights() (map[float64]float64, error) {
	if len(c.ClassWeights) == 0 {
		return nil, nil
	}
	out := make(map[float64]float64, len(c.ClassWeights))
	for k, w := range c.ClassWeights {
		label, err := strconv.ParseFloat(k, 64)
		if err != nil {
			return nil, errors.NewValidationError("class_weights", "label must be numeric", k)
		}
		if w <= 0 {
			return nil, errors.NewValidationError("class_weights", "weight must be > 0", w)
		}
		out[label] = w
	}
	return out, nil
}

// SelectionMode resolves KSelection.
func (c Config) SelectionMode() (neighbors.SelectionMode, error) {
	return neighbors.ParseSelectionMode(c.KSelection)
}

// Grid returns the candidate values of C.
func (c Config) Grid() []float64 {
	return model_selection.CGrid(c.Log2CStart, c.Log2CEnd)
}

// Rand returns a source seeded from Seed, or a randomly seeded one.
func (c Config) Rand() *rand.Rand {
	if c.Seed != nil {
		return model_selection.NewSeededRand(*c.Seed)
	}
	return rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
}

// Parameter builds the training parameter for solver with the configured
// class weights.
func (c Config) Parameter(solver linear.SolverType) (linear.Parameter, error) {
	weights, err := c.Weights()
	if err != nil {
		return linear.Parameter{}, err
	}
	opts := []linear.Option{}
	for label, w := range weights {
		opts = append(opts, linear.WithClassWeight(label, w))
	}
	return linear.NewParameter(solver, opts...), nil
}
