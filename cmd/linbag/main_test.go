package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/YuminosukeSato/linbag/core/sparse"
	"github.com/YuminosukeSato/linbag/ensemble"
	"github.com/YuminosukeSato/linbag/linear"
	"github.com/YuminosukeSato/linbag/pkg/errors"
)

// writeBlobs writes n instances per class around (2,2) and (-2,-2).
func writeBlobs(t *testing.T, path string, n int) {
	t.Helper()
	var b strings.Builder
	for i := 0; i < n; i++ {
		d := float64(i%5) * 0.1
		fmt.Fprintf(&b, "1 1:%g 2:%g\n", 2+d, 2-d)
		fmt.Fprintf(&b, "-1 1:%g 2:%g\n", -2-d, -2+d)
	}
	require.NoError(t, os.WriteFile(path, []byte(b.String()), 0o644))
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := rootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestParseWeights(t *testing.T) {
	w, err := parseWeights([]string{"1:2.5", "-1:0.5"})
	require.NoError(t, err)
	assert.Equal(t, map[float64]float64{1: 2.5, -1: 0.5}, w)

	w, err = parseWeights(nil)
	require.NoError(t, err)
	assert.Nil(t, w)

	for _, bad := range []string{"1", "a:1", "1:b"} {
		_, err := parseWeights([]string{bad})
		assert.Error(t, err, bad)
	}
}

func TestDefaultModelFile(t *testing.T) {
	assert.Equal(t, "heart_scale.model", defaultModelFile("/data/heart_scale"))
}

func TestScoringTargets(t *testing.T) {
	b := sparse.NewBuilder(-1)
	require.NoError(t, b.Add(3, []sparse.Feature{{Index: 1, Value: 1}}))
	require.NoError(t, b.Add(7, []sparse.Feature{{Index: 1, Value: 2}}))
	test, err := b.Build()
	require.NoError(t, err)

	clf := &linear.Model{Solver: linear.L2RLogistic, ClassLabels: []float64{7, 3}}
	assert.Equal(t, []float64{-1, 1}, scoringTargets(clf, test))

	reg := &linear.Model{Solver: linear.L2RL2LossSVR}
	assert.Equal(t, []float64{3, 7}, scoringTargets(reg, test))
}

func TestTrainPredictRoundTrip(t *testing.T) {
	dir := t.TempDir()
	trainFile := filepath.Join(dir, "blobs")
	writeBlobs(t, trainFile, 20)
	modelFile := filepath.Join(dir, "blobs.model")
	reportFile := filepath.Join(dir, "report.json")

	_, err := execute(t, "train", "-q", "--seed", "7", "--report", reportFile, trainFile, modelFile)
	require.NoError(t, err)
	for _, s := range ensemble.DefaultBaseLearners {
		assert.FileExists(t, ensemble.ModelPath(modelFile, s))
	}
	assert.FileExists(t, reportFile)

	outFile := filepath.Join(dir, "out")
	stdout, err := execute(t, "predict", "--metric", "accuracy", "-o", "2",
		trainFile, ensemble.ModelPath(modelFile, linear.L2RLogistic), outFile)
	require.NoError(t, err)
	assert.Contains(t, stdout, "accuracy = 1")

	data, err := os.ReadFile(outFile)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 41)
	assert.ElementsMatch(t, []string{"labels", "1", "-1"}, strings.Fields(lines[0]))
	assert.True(t, strings.HasPrefix(lines[1], "1 "))
}

func TestPredictRejectsProbabilityForSVM(t *testing.T) {
	dir := t.TempDir()
	trainFile := filepath.Join(dir, "blobs")
	writeBlobs(t, trainFile, 10)

	m, err := linear.Train(mustRead(t, trainFile), linear.NewParameter(linear.L2RL2LossSVC))
	require.NoError(t, err)
	modelFile := filepath.Join(dir, "svc.model")
	require.NoError(t, m.Save(modelFile))

	_, err = execute(t, "predict", "-o", "2", trainFile, modelFile, filepath.Join(dir, "out"))
	assert.Error(t, err)
}

func TestPredictRejectsMultiClassModel(t *testing.T) {
	dir := t.TempDir()
	trainFile := filepath.Join(dir, "three")
	var b strings.Builder
	for i := 0; i < 6; i++ {
		fmt.Fprintf(&b, "1 1:%d\n2 2:%d\n3 3:%d\n", i+1, i+1, i+1)
	}
	require.NoError(t, os.WriteFile(trainFile, []byte(b.String()), 0o644))

	m, err := linear.Train(mustRead(t, trainFile), linear.NewParameter(linear.L2RLogistic))
	require.NoError(t, err)
	require.Len(t, m.Labels(), 3)
	modelFile := filepath.Join(dir, "three.model")
	require.NoError(t, m.Save(modelFile))

	_, err = execute(t, "predict", "--metric", "accuracy", trainFile, modelFile, filepath.Join(dir, "out"))
	var ce *errors.ConfigurationError
	require.True(t, errors.As(err, &ce))
	assert.Contains(t, err.Error(), errors.ErrNotBinary.Error())
}

func TestCVCommand(t *testing.T) {
	dir := t.TempDir()
	trainFile := filepath.Join(dir, "blobs")
	writeBlobs(t, trainFile, 10)

	stdout, err := execute(t, "cv", "-q", "--seed", "1", "-s", "0", "--metric", "accuracy", trainFile)
	require.NoError(t, err)
	assert.Contains(t, stdout, "Cross Validation accuracy = 1")

	stdout, err = execute(t, "cv", "-q", "--seed", "1", "-s", "L2R_L2LOSS_SVR", "--metric", "mse", "--grid", trainFile)
	require.NoError(t, err)
	assert.Contains(t, stdout, "Best cross validation mse")

	_, err = execute(t, "cv", "-q", "-s", "0", "--metric", "mse", trainFile)
	assert.Error(t, err)

	_, err = execute(t, "cv", "-q", "-v", "1", trainFile)
	assert.Error(t, err)
}

func TestKNNCommand(t *testing.T) {
	dir := t.TempDir()
	trainFile := filepath.Join(dir, "train")
	testFile := filepath.Join(dir, "test")
	writeBlobs(t, trainFile, 20)
	writeBlobs(t, testFile, 5)

	stdout, err := execute(t, "knn", "--seed", "3", "--log-level", "error", trainFile, testFile)
	require.NoError(t, err)
	assert.Contains(t, stdout, "K 1, Cross validation logloss")
	assert.Contains(t, stdout, "acc 1 (10/10)")
}

func TestConfigFile(t *testing.T) {
	dir := t.TempDir()
	cfgFile := filepath.Join(dir, "linbag.yaml")
	require.NoError(t, os.WriteFile(cfgFile, []byte("folds: 1\n"), 0o644))
	trainFile := filepath.Join(dir, "blobs")
	writeBlobs(t, trainFile, 10)

	_, err := execute(t, "--config", cfgFile, "cv", trainFile)
	assert.Error(t, err)
}

func mustRead(t *testing.T, path string) *sparse.Dataset {
	t.Helper()
	ds, err := sparse.ReadLibSVMFile(path, sparse.ReadOptions{Bias: -1})
	require.NoError(t, err)
	return ds
}
