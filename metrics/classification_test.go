package metrics

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/YuminosukeSato/linbag/pkg/errors"
	"github.com/YuminosukeSato/linbag/pkg/log"
)

func TestAccuracy(t *testing.T) {
	tests := []struct {
		name   string
		dec    []float64
		labels []float64
		want   float64
	}{
		{"all correct", []float64{1.5, -0.3, 2, -4}, []float64{1, -1, 1, -1}, 1.0},
		{"zero is negative", []float64{0, 0}, []float64{1, -1}, 0.5},
		{"zero-one labels", []float64{0.2, -0.2, 0.2}, []float64{1, 0, 0}, 2.0 / 3.0},
		{"all wrong", []float64{-1, 1}, []float64{1, -1}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Accuracy(tt.dec, tt.labels)
			require.NoError(t, err)
			assert.InDelta(t, tt.want, got, 1e-12)
		})
	}
}

func TestInputValidation(t *testing.T) {
	_, err := Accuracy(nil, nil)
	require.Error(t, err)
	var valueErr *errors.ValueError
	assert.True(t, errors.As(err, &valueErr))

	_, err = AUC([]float64{1, 2}, []float64{1})
	require.Error(t, err)
	var dimErr *errors.DimensionError
	assert.True(t, errors.As(err, &dimErr))
}

func TestLogLoss(t *testing.T) {
	got, err := LogLoss([]float64{0, 0}, []float64{1, -1})
	require.NoError(t, err)
	assert.InDelta(t, math.Log(0.5+logLossEpsilon), got, 1e-12)

	confident, err := LogLoss([]float64{10, -10}, []float64{1, -1})
	require.NoError(t, err)
	wrong, err := LogLoss([]float64{-10, 10}, []float64{1, -1})
	require.NoError(t, err)
	assert.Greater(t, confident, got)
	assert.Less(t, wrong, got)
	assert.LessOrEqual(t, confident, 0.0)
	assert.False(t, math.IsInf(wrong, 0))
}

func TestPrecisionRecallFScore(t *testing.T) {
	// tp=2 fp=1 fn=1 tn=1
	dec := []float64{1, 0, 0.5, -1, -2}
	labels := []float64{1, 1, -1, 1, -1}

	p, err := Precision(dec, labels)
	require.NoError(t, err)
	assert.InDelta(t, 2.0/3.0, p, 1e-12)

	r, err := Recall(dec, labels)
	require.NoError(t, err)
	assert.InDelta(t, 2.0/3.0, r, 1e-12)

	f, err := FScore(dec, labels)
	require.NoError(t, err)
	assert.InDelta(t, 2.0/3.0, f, 1e-12)

	bac, err := BAC(dec, labels)
	require.NoError(t, err)
	assert.InDelta(t, (0.5+2.0/3.0)/2, bac, 1e-12)
}

func TestUndefinedMetricsWarn(t *testing.T) {
	logger, restore := log.CaptureWarnings()
	defer restore()

	p, err := Precision([]float64{-1, -2}, []float64{1, -1})
	require.NoError(t, err)
	assert.Equal(t, 0.0, p)
	assert.True(t, logger.ContainsMessage("precision"))

	logger.Clear()
	r, err := Recall([]float64{1, -1}, []float64{-1, -1})
	require.NoError(t, err)
	assert.Equal(t, 0.0, r)
	assert.Equal(t, 1, logger.CountLevel("WARN"))

	logger.Clear()
	auc, err := AUC([]float64{0.3, 0.9}, []float64{1, 1})
	require.NoError(t, err)
	assert.Equal(t, 0.0, auc)
	assert.True(t, logger.ContainsMessage("AUC"))
}

func TestAUC(t *testing.T) {
	tests := []struct {
		name   string
		dec    []float64
		labels []float64
		want   float64
	}{
		{"perfect ranking", []float64{0.9, 0.8, 0.2, 0.1}, []float64{1, 1, -1, -1}, 1.0},
		{"inverted ranking", []float64{0.1, 0.2, 0.8, 0.9}, []float64{1, 1, -1, -1}, 0.0},
		{"one swap", []float64{0.9, 0.7, 0.8, 0.1}, []float64{1, 1, -1, -1}, 0.75},
		{"zero-one labels", []float64{3, 2, 1}, []float64{1, 0, 0}, 1.0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := AUC(tt.dec, tt.labels)
			require.NoError(t, err)
			assert.InDelta(t, tt.want, got, 1e-12)
		})
	}
}
