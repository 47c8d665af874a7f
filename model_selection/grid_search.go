package model_selection

import (
	"context"
	"math"

	"github.com/YuminosukeSato/linbag/core/parallel"
	"github.com/YuminosukeSato/linbag/pkg/errors"
	"github.com/YuminosukeSato/linbag/pkg/log"
)

// DefaultLog2CStart and DefaultLog2CEnd bound the default regularization grid.
const (
	DefaultLog2CStart = -3
	DefaultLog2CEnd   = 10
)

// CGrid returns 2^i for i in [log2Start, log2End].
func CGrid(log2Start, log2End int) []float64 {
	if log2End < log2Start {
		return nil
	}
	grid := make([]float64, 0, log2End-log2Start+1)
	for i := log2Start; i <= log2End; i++ {
		grid = append(grid, math.Ldexp(1, i))
	}
	return grid
}

// DefaultCGrid returns 2^-3 ... 2^10.
func DefaultCGrid() []float64 {
	return CGrid(DefaultLog2CStart, DefaultLog2CEnd)
}

// ScoreFunc evaluates one candidate value, typically by cross-validation.
type ScoreFunc func(ctx context.Context, value float64) (float64, error)

// GridSearch sweeps Candidates in order.
type GridSearch struct {
	Candidates []float64
	// Minimize selects the lowest score instead of the highest, for error
	// metrics such as mean squared error.
	Minimize bool
	// Parallelism is the number of candidates scored at once; <= 1 is sequential.
	Parallelism int
}

// GridResult is the outcome of a sweep.
type GridResult struct {
	Values    []float64 `json:"values"`
	Scores    []float64 `json:"scores"`
	BestIndex int       `json:"best_index"`
	BestValue float64   `json:"best_value"`
	BestScore float64   `json:"best_score"`
}

// Run scores every candidate and keeps the first candidate whose score is
// strictly better than all earlier ones, so ties go to the earlier candidate
// regardless of the order in which concurrent evaluations finish.
func (g GridSearch) Run(ctx context.Context, score ScoreFunc) (*GridResult, error) {
	if len(g.Candidates) == 0 {
		return nil, errors.NewValueError("GridSearch.Run", "no candidate values")
	}

	scores := make([]float64, len(g.Candidates))
	workers := g.Parallelism
	if workers < 1 {
		workers = 1
	}
	err := parallel.ForEach(ctx, len(g.Candidates), workers, func(ctx context.Context, i int) error {
		s, err := score(ctx, g.Candidates[i])
		if err != nil {
			return err
		}
		scores[i] = s
		log.GetLogger().Debug("grid candidate evaluated",
			log.OperationKey, log.OperationGridSearch,
			log.RegularizationKey, g.Candidates[i],
			log.ScoreKey, s,
		)
		return nil
	})
	if err != nil {
		return nil, err
	}

	best := 0
	for i := 1; i < len(scores); i++ {
		if g.better(scores[i], scores[best]) {
			best = i
		}
	}

	values := make([]float64, len(g.Candidates))
	copy(values, g.Candidates)
	return &GridResult{
		Values:    values,
		Scores:    scores,
		BestIndex: best,
		BestValue: values[best],
		BestScore: scores[best],
	}, nil
}

func (g GridSearch) better(candidate, incumbent float64) bool {
	if math.IsNaN(incumbent) {
		return !math.IsNaN(candidate)
	}
	if g.Minimize {
		return candidate < incumbent
	}
	return candidate > incumbent
}

// SelectBest runs a sequential maximizing sweep and returns the winning value and score.
func SelectBest(ctx context.Context, candidates []float64, score ScoreFunc) (float64, float64, error) {
	res, err := GridSearch{Candidates: candidates}.Run(ctx, score)
	if err != nil {
		return 0, 0, err
	}
	return res.BestValue, res.BestScore, nil
}
