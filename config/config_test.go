package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/YuminosukeSato/linbag/linear"
	"github.com/YuminosukeSato/linbag/metrics"
	"github.com/YuminosukeSato/linbag/neighbors"
	"github.com/YuminosukeSato/linbag/pkg/errors"
)

func TestDefaultIsValid(t *testing.T) {
	c := Default()
	require.NoError(t, c.Validate())

	assert.Equal(t, 5, c.Folds)
	assert.Equal(t, 0.6, c.BootstrapFraction)
	assert.Len(t, c.Grid(), 14)
	assert.Equal(t, -1.0, c.Bias)

	solvers, err := c.Solvers()
	require.NoError(t, err)
	assert.Equal(t, []linear.SolverType{linear.L2RLogistic, linear.L2RL2LossSVC, linear.L1RLogistic, linear.L1RL2LossSVC}, solvers)

	m, err := c.ClassificationMetricValue()
	require.NoError(t, err)
	assert.Equal(t, metrics.MetricLogLoss, m)

	r, err := c.RegressionMetricValue()
	require.NoError(t, err)
	assert.Equal(t, metrics.MetricMeanSquaredError, r)
}

func TestParseOverridesDefaults(t *testing.T) {
	data := []byte(`
folds: 10
log2_c_start: -1
log2_c_end: 2
base_learners: [L2R_LR, "5"]
classification_metric: auc
class_weights:
  "1": 2.5
  "-1": 1
k_selection: minimize
seed: 42
`)
	c, err := Parse(data)
	require.NoError(t, err)

	assert.Equal(t, 10, c.Folds)
	assert.Equal(t, []float64{0.5, 1, 2, 4}, c.Grid())
	solvers, err := c.Solvers()
	require.NoError(t, err)
	assert.Equal(t, []linear.SolverType{linear.L2RLogistic, linear.L1RL2LossSVC}, solvers)

	m, err := c.ClassificationMetricValue()
	require.NoError(t, err)
	assert.Equal(t, metrics.MetricAUC, m)

	mode, err := c.SelectionMode()
	require.NoError(t, err)
	assert.Equal(t, neighbors.SelectMinimizeLogLoss, mode)

	p, err := c.Parameter(linear.L2RLogistic)
	require.NoError(t, err)
	assert.Equal(t, 2.5, p.ClassWeight(1))
	assert.Equal(t, 1.0, p.ClassWeight(-1))

	require.NotNil(t, c.Seed)
	a, b := c.Rand(), c.Rand()
	assert.Equal(t, a.Uint64(), b.Uint64())

	// untouched fields keep their defaults
	assert.Equal(t, 0.6, c.BootstrapFraction)
	assert.Equal(t, "mse", c.RegressionMetric)
}

func TestParseRejectsInvalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"one fold", "folds: 1"},
		{"fraction", "bootstrap_fraction: 1.5"},
		{"grid order", "log2_c_start: 3\nlog2_c_end: 1"},
		{"solver", "base_learners: [FOO]"},
		{"metric kind", "classification_metric: mse"},
		{"regression metric kind", "regression_metric: auc"},
		{"weights", "class_weights:\n  abc: 1"},
		{"selection", "k_selection: sideways"},
		{"log format", "log_format: xml"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			require.Error(t, err)
			var ve *errors.ValidationError
			assert.True(t, errors.As(err, &ve))
		})
	}
}

func TestParseRejectsUnknownKeys(t *testing.T) {
	_, err := Parse([]byte("foldz: 3"))
	require.Error(t, err)
	var ce *errors.ConfigurationError
	assert.True(t, errors.As(err, &ce))
}

func TestLoadRoundTrip(t *testing.T) {
	c := Default()
	c.Folds = 3
	c.KStep = 5
	data, err := c.Marshal()
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "linbag.yaml")
	require.NoError(t, os.WriteFile(path, data, 0o600))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 3, loaded.Folds)
	assert.Equal(t, 5, loaded.KStep)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
