package linear

import (
	"math"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/YuminosukeSato/linbag/core/sparse"
	"github.com/YuminosukeSato/linbag/pkg/errors"
)

// separable builds n positive instances on feature 1 and n negative ones on
// feature 2, interleaved, with a bias feature.
func separable(t *testing.T, n int, pos, neg float64) *sparse.Dataset {
	t.Helper()
	b := sparse.NewBuilder(1)
	for i := 0; i < n; i++ {
		v := 1 + float64(i%3)*0.5
		require.NoError(t, b.Add(pos, []sparse.Feature{{Index: 1, Value: v}}))
		require.NoError(t, b.Add(neg, []sparse.Feature{{Index: 2, Value: v}}))
	}
	ds, err := b.Build()
	require.NoError(t, err)
	return ds
}

func trainingAccuracy(m *Model, ds *sparse.Dataset) float64 {
	correct := 0
	for i := 0; i < ds.Len(); i++ {
		if m.PredictLabel(ds.At(i).Features) == ds.Label(i) {
			correct++
		}
	}
	return float64(correct) / float64(ds.Len())
}

func TestSolverNames(t *testing.T) {
	tests := []struct {
		solver SolverType
		name   string
		eps    float64
	}{
		{L2RLogistic, "L2R_LR", 0.01},
		{L2RL2LossSVCDual, "L2R_L2LOSS_SVC_DUAL", 0.1},
		{L2RL2LossSVC, "L2R_L2LOSS_SVC", 0.01},
		{L1RL2LossSVC, "L1R_L2LOSS_SVC", 0.01},
		{L1RLogistic, "L1R_LR", 0.01},
		{L2RL2LossSVR, "L2R_L2LOSS_SVR", 0.001},
		{L2RL1LossSVRDual, "L2R_L1LOSS_SVR_DUAL", 0.1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.name, tt.solver.String())
			assert.Equal(t, tt.eps, DefaultTolerance(tt.solver))

			byName, err := ParseSolver(tt.name)
			require.NoError(t, err)
			assert.Equal(t, tt.solver, byName)
		})
	}

	s, err := ParseSolver("6")
	require.NoError(t, err)
	assert.Equal(t, L1RLogistic, s)

	_, err = ParseSolver("9")
	assert.Error(t, err)
	assert.Contains(t, SolverType(9).String(), "UNKNOWN")
}

func TestCheckParameter(t *testing.T) {
	assert.NoError(t, CheckParameter(DefaultParameter()))

	tests := []struct {
		name  string
		param Parameter
	}{
		{"non-positive C", NewParameter(L2RLogistic, WithC(0))},
		{"non-positive eps", NewParameter(L2RLogistic, WithEps(-1))},
		{"negative p", NewParameter(L2RL2LossSVR, WithP(-0.1))},
		{"bad class weight", NewParameter(L2RLogistic, WithClassWeight(1, 0))},
		{"unknown solver", NewParameter(SolverType(42))},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CheckParameter(tt.param)
			require.Error(t, err)
			var ve *errors.ValidationError
			assert.True(t, errors.As(err, &ve))
		})
	}

	err := CheckParameter(NewParameter(MCSVMCS))
	var ce *errors.ConfigurationError
	assert.True(t, errors.As(err, &ce))
}

func TestParameterApplyCopies(t *testing.T) {
	base := NewParameter(L2RLogistic, WithClassWeight(1, 2))
	derived := base.Apply(WithC(8), WithClassWeight(-1, 3))

	assert.Equal(t, 1.0, base.C)
	assert.Equal(t, 8.0, derived.C)
	assert.Len(t, base.Weights, 1)
	assert.Len(t, derived.Weights, 2)
	assert.Equal(t, 3.0, derived.ClassWeight(-1))
	assert.Equal(t, 1.0, base.ClassWeight(-1))
}

func TestTrainBinarySeparable(t *testing.T) {
	ds := separable(t, 6, 1, -1)
	for _, solver := range []SolverType{L2RLogistic, L2RL2LossSVCDual, L2RL2LossSVC, L2RL1LossSVCDual, L1RL2LossSVC, L1RLogistic} {
		t.Run(solver.String(), func(t *testing.T) {
			m, err := Train(ds, NewParameter(solver))
			require.NoError(t, err)

			assert.Equal(t, []float64{1, -1}, m.Labels())
			assert.Equal(t, 2, m.NumFeatures())
			assert.Len(t, m.W, 1)
			assert.Equal(t, 1.0, trainingAccuracy(m, ds))

			pos := sparse.Vector{{Index: 1, Value: 1}, {Index: 3, Value: 1}}
			assert.Greater(t, m.DecisionValue(pos), 0.0)
		})
	}
}

func TestLabelOrderFollowsFirstAppearance(t *testing.T) {
	ds := separable(t, 4, 0, 1)
	m, err := Train(ds, NewParameter(L2RLogistic))
	require.NoError(t, err)

	assert.Equal(t, []float64{0, 1}, m.Labels())
	// a positive decision value means the first label
	x := sparse.Vector{{Index: 1, Value: 1.5}, {Index: 3, Value: 1}}
	assert.Greater(t, m.DecisionValue(x), 0.0)
	assert.Equal(t, 0.0, m.PredictLabel(x))
}

func TestTrainOneVersusRest(t *testing.T) {
	b := sparse.NewBuilder(1)
	for i := 0; i < 5; i++ {
		for c := 1; c <= 3; c++ {
			require.NoError(t, b.Add(float64(c), []sparse.Feature{{Index: c, Value: 2}}))
		}
	}
	ds, err := b.Build()
	require.NoError(t, err)

	m, err := Train(ds, NewParameter(L2RLogistic))
	require.NoError(t, err)
	assert.Len(t, m.W, 3)
	assert.Equal(t, 1.0, trainingAccuracy(m, ds))

	label, probs, err := m.PredictProbability(sparse.Vector{{Index: 2, Value: 2}, {Index: 4, Value: 1}})
	require.NoError(t, err)
	assert.Equal(t, 2.0, label)
	assert.InDelta(t, 1.0, probs[0]+probs[1]+probs[2], 1e-9)
}

func TestPredictProbability(t *testing.T) {
	ds := separable(t, 6, 1, -1)

	m, err := Train(ds, NewParameter(L2RLogistic))
	require.NoError(t, err)
	label, probs, err := m.PredictProbability(sparse.Vector{{Index: 1, Value: 2}, {Index: 3, Value: 1}})
	require.NoError(t, err)
	assert.Equal(t, 1.0, label)
	require.Len(t, probs, 2)
	assert.Greater(t, probs[0], 0.5)
	assert.InDelta(t, 1.0, probs[0]+probs[1], 1e-12)

	svc, err := Train(ds, NewParameter(L2RL2LossSVC))
	require.NoError(t, err)
	_, _, err = svc.PredictProbability(sparse.Vector{{Index: 1, Value: 2}})
	assert.Error(t, err)
}

func TestTrainRegression(t *testing.T) {
	b := sparse.NewBuilder(1)
	for i := 0; i < 20; i++ {
		x := float64(i) / 10
		require.NoError(t, b.Add(2*x+1, []sparse.Feature{{Index: 1, Value: x}}))
	}
	ds, err := b.Build()
	require.NoError(t, err)

	m, err := Train(ds, NewParameter(L2RL2LossSVR, WithC(100), WithP(0), WithEps(1e-6), WithMaxIter(20000)))
	require.NoError(t, err)
	assert.True(t, m.IsRegression())
	assert.Nil(t, m.Labels())

	got := m.PredictLabel(sparse.Vector{{Index: 1, Value: 1}, {Index: 2, Value: 1}})
	assert.InDelta(t, 3.0, got, 0.2)
}

func TestTrainErrors(t *testing.T) {
	_, err := Train(nil, DefaultParameter())
	assert.Error(t, err)

	ds := separable(t, 2, 1, -1)
	_, err = Train(ds, NewParameter(MCSVMCS))
	var ce *errors.ConfigurationError
	assert.True(t, errors.As(err, &ce))
}

func TestTrainRejectsNonFiniteFeatures(t *testing.T) {
	b := sparse.NewBuilder(-1)
	require.NoError(t, b.Add(1, []sparse.Feature{{Index: 1, Value: math.Inf(1)}}))
	require.NoError(t, b.Add(-1, []sparse.Feature{{Index: 1, Value: -1}}))
	ds, err := b.Build()
	require.NoError(t, err)

	_, err = Train(ds, NewParameter(L2RLogistic))
	var ne *errors.NumericalInstabilityError
	assert.True(t, errors.As(err, &ne))
}

func TestFeaturesBeyondModelAreIgnored(t *testing.T) {
	ds := separable(t, 4, 1, -1)
	m, err := Train(ds, NewParameter(L2RLogistic))
	require.NoError(t, err)

	x := sparse.Vector{{Index: 1, Value: 1}, {Index: 3, Value: 1}}
	extended := append(sparse.Vector{}, x...)
	extended = append(extended, sparse.Feature{Index: 50, Value: 9})
	assert.Equal(t, m.DecisionValue(x), m.DecisionValue(extended))
}

func TestSaveLoadRoundTrip(t *testing.T) {
	ds := separable(t, 4, 1, -1)
	m, err := Train(ds, NewParameter(L2RLogistic, WithClassWeight(1, 2)))
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "model.L2R_LR")
	require.NoError(t, m.Save(path))

	loaded, err := LoadModel(path)
	require.NoError(t, err)
	assert.Equal(t, m.Labels(), loaded.Labels())
	assert.Equal(t, m.W, loaded.W)
	assert.Equal(t, m.Bias, loaded.Bias)
	assert.Equal(t, 2.0, loaded.Param.ClassWeight(1))

	_, err = LoadModel(filepath.Join(t.TempDir(), "missing"))
	assert.Error(t, err)
}
