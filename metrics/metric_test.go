package metrics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMetric(t *testing.T) {
	for _, name := range MetricNames() {
		m, err := ParseMetric(name)
		require.NoError(t, err, name)
		assert.Equal(t, name, m.String())
	}

	m, err := ParseMetric("  AUC ")
	require.NoError(t, err)
	assert.Equal(t, MetricAUC, m)

	_, err = ParseMetric("hinge")
	assert.Error(t, err)
}

func TestMetricProperties(t *testing.T) {
	assert.Equal(t, MetricLogLoss, DefaultClassification)
	assert.False(t, DefaultClassification.IsRegression())
	assert.True(t, DefaultRegression.IsRegression())
	assert.False(t, MetricMeanSquaredError.GreaterIsBetter())
	assert.True(t, MetricAccuracy.GreaterIsBetter())
	assert.Equal(t, "unknown", Metric(99).String())

	_, err := Metric(99).Score([]float64{1}, []float64{1})
	assert.Error(t, err)
}

func TestMetricScoreDispatch(t *testing.T) {
	dec := []float64{2, -1, 0.5, -3}
	labels := []float64{1, -1, -1, -1}

	direct, err := Accuracy(dec, labels)
	require.NoError(t, err)
	viaMetric, err := MetricAccuracy.Score(dec, labels)
	require.NoError(t, err)
	assert.Equal(t, direct, viaMetric)
}
