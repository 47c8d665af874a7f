package sparse

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/YuminosukeSato/linbag/pkg/errors"
)

func TestBuilderBias(t *testing.T) {
	b := NewBuilder(1)
	require.NoError(t, b.Add(1, vec(1, 0.5, 4, 2)))
	require.NoError(t, b.Add(-1, vec(2, 1)))
	ds, err := b.Build()
	require.NoError(t, err)

	assert.Equal(t, 5, ds.NumFeatures())
	assert.True(t, ds.HasBias())
	assert.Equal(t, Feature{Index: 5, Value: 1}, ds.At(0).Features[2])
	assert.Equal(t, Feature{Index: 5, Value: 1}, ds.At(1).Features[1])

	_, err = b.Build()
	assert.Error(t, err)
}

func TestBuilderRejectsUnsortedIndices(t *testing.T) {
	b := NewBuilder(-1)
	err := b.Add(1, vec(3, 1, 2, 1))
	var vErr *errors.ValidationError
	require.ErrorAs(t, err, &vErr)

	err = b.Add(1, vec(0, 1))
	require.ErrorAs(t, err, &vErr)
}

func TestBuilderEmpty(t *testing.T) {
	_, err := NewBuilder(-1).Build()
	assert.True(t, errors.Is(err, errors.ErrEmptyData))
}

func TestSubsetAliases(t *testing.T) {
	b := NewBuilder(-1)
	for i := 0; i < 5; i++ {
		require.NoError(t, b.Add(float64(i), vec(float64(i+1), 1)))
	}
	ds, err := b.Build()
	require.NoError(t, err)

	sub, err := ds.Subset([]int{4, 4, 1})
	require.NoError(t, err)
	assert.Equal(t, 3, sub.Len())
	assert.Equal(t, []float64{4, 4, 1}, sub.Labels())
	assert.Same(t, ds.At(4), sub.At(0))
	assert.Same(t, sub.At(0), sub.At(1))
	assert.Equal(t, []int{4, 4, 1}, sub.IDs())

	nested, err := sub.Subset([]int{2})
	require.NoError(t, err)
	assert.Same(t, ds.At(1), nested.At(0))

	_, err = ds.Subset([]int{5})
	assert.Error(t, err)
}

func TestDistinctLabels(t *testing.T) {
	ds, err := ReadLibSVM(strings.NewReader("2 1:1\n-1 1:2\n2 1:3\n7 1:4\n"), ReadOptions{Bias: -1})
	require.NoError(t, err)
	assert.Equal(t, []float64{2, -1, 7}, ds.DistinctLabels())
}

func TestReadLibSVM(t *testing.T) {
	input := "+1 1:0.5 3:1\n-1 2:2.5\t4:-1 \n"
	ds, err := ReadLibSVM(strings.NewReader(input), ReadOptions{Source: "mem", Bias: -1})
	require.NoError(t, err)

	assert.Equal(t, 2, ds.Len())
	assert.Equal(t, 4, ds.NumFeatures())
	assert.Equal(t, 1.0, ds.Label(0))
	assert.Equal(t, Vector{{2, 2.5}, {4, -1}}, ds.At(1).Features)
}

func TestReadLibSVMErrors(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		wantLine int
	}{
		{"bad label", "1 1:1\nabc 1:2\n", 2},
		{"non increasing", "1 1:1\n1 1:1\n-1 3:1 2:1\n", 3},
		{"bad value", "1 1:x\n", 1},
		{"missing colon", "1 1:1 2\n", 1},
		{"empty line", "1 1:1\n\n", 2},
		{"zero index", "1 0:1\n", 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadLibSVM(strings.NewReader(tt.input), ReadOptions{Source: "train", Bias: -1})
			var pErr *errors.ParseError
			require.ErrorAs(t, err, &pErr)
			assert.Equal(t, tt.wantLine, pErr.Line)
			assert.Equal(t, "train", pErr.Source)
		})
	}
}

func TestReadLibSVMMaxIndexDropsUnknownFeatures(t *testing.T) {
	input := "1 1:1 3:1 9:4\n"
	ds, err := ReadLibSVM(strings.NewReader(input), ReadOptions{Bias: 1, MaxIndex: 3})
	require.NoError(t, err)
	assert.Equal(t, Vector{{1, 1}, {3, 1}, {4, 1}}, ds.At(0).Features)
	assert.Equal(t, 4, ds.NumFeatures())
}
