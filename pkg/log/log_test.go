package log

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/YuminosukeSato/linbag/pkg/errors"
)

func TestZerologLoggerWritesFields(t *testing.T) {
	var buf bytes.Buffer
	logger := NewZerologLogger(&buf, LevelInfo).With(ComponentKey, "model_selection")
	logger.Info("grid candidate evaluated", RegularizationKey, 0.5, ScoreKey, 0.9)
	logger.Debug("suppressed")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 1)

	var rec map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &rec))
	assert.Equal(t, "grid candidate evaluated", rec["message"])
	assert.Equal(t, "model_selection", rec[ComponentKey])
	assert.Equal(t, 0.5, rec[RegularizationKey])
}

func TestZerologLoggerErrorCarriesError(t *testing.T) {
	var buf bytes.Buffer
	logger := NewZerologLogger(&buf, LevelDebug)
	logger.Error("save failed", errors.NewModelError("SaveModel", "cannot create file", nil), ModelPathKey, "/tmp/x")

	var rec map[string]interface{}
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &rec))
	assert.Equal(t, "linbag: SaveModel: cannot create file", rec["error"])
	assert.Equal(t, "/tmp/x", rec[ModelPathKey])
}

func TestEnabled(t *testing.T) {
	logger := NewZerologLogger(&bytes.Buffer{}, LevelWarn)
	ctx := context.Background()
	assert.False(t, logger.Enabled(ctx, LevelInfo))
	assert.True(t, logger.Enabled(ctx, LevelWarn))
	assert.True(t, logger.Enabled(ctx, LevelError))
}

func TestParseLevel(t *testing.T) {
	lvl, err := ParseLevel("warn")
	require.NoError(t, err)
	assert.Equal(t, LevelWarn, lvl)

	_, err = ParseLevel("loud")
	assert.Error(t, err)
}

func TestCaptureWarnings(t *testing.T) {
	logger, restore := CaptureWarnings()
	defer restore()

	errors.Warn(errors.NewParameterClampWarning("k", 0, 1, "k must be at least 1"))

	assert.Equal(t, 1, logger.CountLevel("WARN"))
	assert.True(t, logger.ContainsMessage("k=0 is out of range"))
}

func TestTestLoggerWith(t *testing.T) {
	logger, _ := NewTestLogger(LevelInfo)
	child := logger.With(SolverKey, "L2R_LR")
	child.Info("trained")
	logger.Debug("hidden")

	assert.True(t, logger.ContainsField(SolverKey, "L2R_LR"))
	assert.Equal(t, 1, logger.CountLevel("INFO"))
	assert.Equal(t, 0, logger.CountLevel("DEBUG"))
}
