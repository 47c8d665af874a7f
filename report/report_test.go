package report

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/YuminosukeSato/linbag/ensemble"
	"github.com/YuminosukeSato/linbag/linear"
	"github.com/YuminosukeSato/linbag/model_selection"
	"github.com/YuminosukeSato/linbag/neighbors"
)

func members() []ensemble.Member {
	return []ensemble.Member{
		{
			Solver:     linear.L2RLogistic,
			SolverName: linear.L2RLogistic.String(),
			BestC:      2,
			BestScore:  -0.2,
			ModelPath:  "train.model.L2R_LR",
			Search: &model_selection.GridResult{
				Values: []float64{0.5, 1, 2}, Scores: []float64{-0.4, -0.3, -0.2},
				BestIndex: 2, BestValue: 2, BestScore: -0.2,
			},
		},
		{
			Solver:     linear.L1RLogistic,
			SolverName: linear.L1RLogistic.String(),
			BestC:      0.5,
			Search: &model_selection.GridResult{
				Values: []float64{0.5, 1, 2}, Scores: []float64{-0.1, -0.3, -0.5},
			},
		},
	}
}

func TestWriteJSON(t *testing.T) {
	rep := BaggingReport{
		Dataset:     "train.txt",
		ModelFile:   "train.model",
		Metric:      "logloss",
		Folds:       5,
		Fraction:    0.6,
		Members:     members(),
		GeneratedAt: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
	}
	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, rep))

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, "logloss", decoded["metric"])
	ms := decoded["members"].([]any)
	require.Len(t, ms, 2)
	first := ms[0].(map[string]any)
	assert.Equal(t, "L2R_LR", first["solver"])
	assert.Equal(t, 2.0, first["best_c"])
	assert.NotContains(t, first, "Model")
}

func TestSaveJSONAndPlots(t *testing.T) {
	dir := t.TempDir()

	jsonPath := filepath.Join(dir, "report.json")
	require.NoError(t, SaveJSON(jsonPath, KNNReport{Dataset: "a", TestAccuracy: 0.9}))
	data, err := os.ReadFile(jsonPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"test_accuracy": 0.9`)

	gridPath := filepath.Join(dir, "grid.png")
	require.NoError(t, PlotGridSearch(gridPath, members(), "logloss"))
	assert.FileExists(t, gridPath)

	sel := &neighbors.Selection{Scores: []neighbors.KScore{
		{K: 1, LogLoss: -0.1, Accuracy: 0.9},
		{K: 11, LogLoss: -0.3, Accuracy: 0.95},
	}}
	kPath := filepath.Join(dir, "k.png")
	require.NoError(t, PlotKSelection(kPath, sel))
	assert.FileExists(t, kPath)

	assert.Error(t, PlotGridSearch(gridPath, nil, "x"))
	assert.Error(t, PlotKSelection(kPath, nil))
	assert.Error(t, SaveJSON(filepath.Join(dir, "missing", "r.json"), sel))
}
