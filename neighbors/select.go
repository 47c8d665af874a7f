package neighbors

import (
	"context"
	"math"
	"math/rand/v2"
	"strings"

	"github.com/YuminosukeSato/linbag/core/sparse"
	"github.com/YuminosukeSato/linbag/model_selection"
	"github.com/YuminosukeSato/linbag/pkg/errors"
	"github.com/YuminosukeSato/linbag/pkg/log"
)

// DefaultKStep is the increment between candidate values of k.
const DefaultKStep = 10

const logLossEpsilon = 1e-6

// SelectionMode decides which cross-validated log-loss wins the k sweep.
type SelectionMode int

const (
	// SelectMaximizeLogLoss keeps the k with the highest log-loss score.
	// The score is a mean of log-probabilities, so higher means more confident.
	SelectMaximizeLogLoss SelectionMode = iota
	// SelectMinimizeLogLoss keeps the k with the lowest score.
	SelectMinimizeLogLoss
)

func (m SelectionMode) String() string {
	if m == SelectMinimizeLogLoss {
		return "minimize"
	}
	return "maximize"
}

// ParseSelectionMode accepts "maximize" or "minimize".
func ParseSelectionMode(s string) (SelectionMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "maximize", "max", "":
		return SelectMaximizeLogLoss, nil
	case "minimize", "min":
		return SelectMinimizeLogLoss, nil
	}
	return 0, errors.NewValidationError("selection_mode", "must be maximize or minimize", s)
}

// KScore is the cross-validated result of one k.
type KScore struct {
	K        int     `json:"k"`
	LogLoss  float64 `json:"logloss"`
	Accuracy float64 `json:"accuracy"`
}

// Selection is the outcome of a k sweep.
type Selection struct {
	Scores   []KScore `json:"scores"`
	Best     KScore   `json:"best"`
	Mode     string   `json:"mode"`
	NumFolds int      `json:"folds"`
}

// Selector sweeps k = 1, 1+Step, ... while k < 4*l/Folds.
type Selector struct {
	Folds       int
	Step        int
	Mode        SelectionMode
	Rand        *rand.Rand
	Parallelism int
}

// NewSelector returns a Selector with 5 folds, step 10 and the maximize mode.
func NewSelector() Selector {
	return Selector{Folds: model_selection.DefaultFolds, Step: DefaultKStep}
}

// Candidates returns the values of k evaluated for l training instances.
func (s Selector) Candidates(l int) []int {
	step := s.Step
	if step < 1 {
		step = DefaultKStep
	}
	if s.Folds < 1 {
		return nil
	}
	end := 4 * l / s.Folds
	var ks []int
	for k := 1; k < end; k += step {
		ks = append(ks, k)
	}
	return ks
}

// Select cross-validates every candidate k on ds, drawing a fresh fold
// permutation per k, and returns all scores with the winner. Ties keep the
// smaller k. When no k lies below 4*l/Folds nothing is evaluated and k falls
// back to 1 with a warning. NumFolds reports the fold count after clamping
// to l.
func (s Selector) Select(ctx context.Context, ds *sparse.Dataset) (*Selection, error) {
	if ds == nil || ds.Len() == 0 {
		return nil, errors.NewModelError("Selector.Select", "empty data", errors.ErrEmptyData)
	}
	if s.Folds < 2 {
		return nil, errors.NewValidationError("nr_fold", "n-fold cross validation: n must >= 2", s.Folds)
	}
	numFolds := min(s.Folds, ds.Len())

	ks := s.Candidates(ds.Len())
	if len(ks) == 0 {
		errors.Warn(errors.NewParameterClampWarning("k", 0, 1, "no candidate k below 4*l/nr_fold"))
		return &Selection{
			Scores:   []KScore{},
			Best:     KScore{K: 1},
			Mode:     s.Mode.String(),
			NumFolds: numFolds,
		}, nil
	}

	rng := s.Rand
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	cache := sparse.NewNormCache(ds.Arena())
	kf := model_selection.NewKFold(s.Folds, rng)

	candidates := make([]float64, len(ks))
	for i, k := range ks {
		candidates[i] = float64(k)
	}
	accuracy := make(map[int]float64, len(ks))

	search := model_selection.GridSearch{
		Candidates: candidates,
		Minimize:   s.Mode == SelectMinimizeLogLoss,
	}
	res, err := search.Run(ctx, func(ctx context.Context, value float64) (float64, error) {
		k := int(value)
		ll, acc, err := s.crossValidate(ctx, ds, kf, cache, k)
		if err != nil {
			return 0, err
		}
		accuracy[k] = acc
		log.GetLogger().Info("k evaluated",
			log.OperationKey, log.OperationSelectK,
			log.NeighborsKey, k,
			log.LossKey, ll,
			log.AccuracyKey, acc,
		)
		return ll, nil
	})
	if err != nil {
		return nil, err
	}

	sel := &Selection{Scores: make([]KScore, len(ks)), Mode: s.Mode.String(), NumFolds: numFolds}
	for i, k := range ks {
		sel.Scores[i] = KScore{K: k, LogLoss: res.Scores[i], Accuracy: accuracy[k]}
	}
	sel.Best = sel.Scores[res.BestIndex]
	return sel, nil
}

func (s Selector) crossValidate(ctx context.Context, ds *sparse.Dataset, kf *model_selection.KFold, cache *sparse.NormCache, k int) (float64, float64, error) {
	folds, _, err := kf.Split(ds.Len())
	if err != nil {
		return 0, 0, err
	}

	pred := make([]float64, 0, ds.Len())
	conf := make([]float64, 0, ds.Len())
	truth := make([]float64, 0, ds.Len())
	for _, fold := range folds {
		if err := ctx.Err(); err != nil {
			return 0, 0, err
		}
		train, err := ds.Subset(fold.TrainIndices)
		if err != nil {
			return 0, 0, err
		}
		clf := NewClassifier(train, cache)
		clf.Parallelism = s.Parallelism
		for _, idx := range fold.TestIndices {
			p, err := clf.Predict(k, ds.At(idx))
			if err != nil {
				return 0, 0, err
			}
			pred = append(pred, p.Label)
			conf = append(conf, p.Confidence)
			truth = append(truth, ds.Label(idx))
		}
	}

	ll, acc := ConfidenceLogLoss(pred, conf, truth)
	return ll, acc, nil
}

// ConfidenceLogLoss scores k-NN predictions using the vote share as a
// probability: a correct prediction adds log(conf+eps), a wrong one
// log(1-conf+eps). A label > 0 is positive. It also returns the accuracy.
func ConfidenceLogLoss(pred, conf, truth []float64) (logLoss, accuracy float64) {
	if len(truth) == 0 {
		return 0, 0
	}
	correct := 0
	for i := range truth {
		if (truth[i] > 0) == (pred[i] > 0) {
			correct++
			logLoss += math.Log(conf[i] + logLossEpsilon)
		} else {
			logLoss += math.Log(1 - conf[i] + logLossEpsilon)
		}
	}
	n := float64(len(truth))
	return logLoss / n, float64(correct) / n
}
