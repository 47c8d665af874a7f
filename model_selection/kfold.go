// Package model_selection provides k-fold partitioning, bootstrap resampling,
// cross-validation and grid search over a trainer.
package model_selection

import (
	"math/rand/v2"

	"github.com/YuminosukeSato/linbag/pkg/errors"
)

// CVFold represents a single fold in cross-validation. Indices are positions
// in the dataset being partitioned.
type CVFold struct {
	TrainIndices []int
	TestIndices  []int
}

// KFold splits a dataset into NSplits contiguous folds over a random
// permutation. Every Split draws a fresh permutation.
type KFold struct {
	NSplits int
	rng     *rand.Rand
}

// NewKFold creates a k-fold splitter. A nil rng uses a randomly seeded source.
func NewKFold(nSplits int, rng *rand.Rand) *KFold {
	if rng == nil {
		rng = newRand()
	}
	return &KFold{NSplits: nSplits, rng: rng}
}

func newRand() *rand.Rand {
	return rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
}

// NewSeededRand returns a deterministic source for reproducible runs.
func NewSeededRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed))
}

// GetNSplits returns the number of splits
func (kf *KFold) GetNSplits() int {
	return kf.NSplits
}

// Permutation returns a uniformly random permutation of [0,l): position i is
// swapped with a random position in [i,l).
func (kf *KFold) Permutation(l int) []int {
	perm := make([]int, l)
	for i := range perm {
		perm[i] = i
	}
	for i := 0; i < l; i++ {
		j := i + kf.rng.IntN(l-i)
		perm[i], perm[j] = perm[j], perm[i]
	}
	return perm
}

// FoldStarts returns the k+1 boundary offsets start[j] = j*l/k.
func FoldStarts(l, k int) []int {
	starts := make([]int, k+1)
	for j := 0; j <= k; j++ {
		starts[j] = j * l / k
	}
	return starts
}

// Split partitions l instances. Fold j validates on perm[start[j]:start[j+1]]
// and trains on the rest of the permutation, in permuted order.
//
// More folds than instances are clamped to l with a warning.
func (kf *KFold) Split(l int) ([]CVFold, []int, error) {
	k, err := kf.folds(l)
	if err != nil {
		return nil, nil, err
	}

	perm := kf.Permutation(l)
	starts := FoldStarts(l, k)
	folds := make([]CVFold, k)
	for j := 0; j < k; j++ {
		begin, end := starts[j], starts[j+1]
		train := make([]int, 0, l-(end-begin))
		train = append(train, perm[:begin]...)
		train = append(train, perm[end:]...)
		test := make([]int, end-begin)
		copy(test, perm[begin:end])
		folds[j] = CVFold{TrainIndices: train, TestIndices: test}
	}
	return folds, perm, nil
}

func (kf *KFold) folds(l int) (int, error) {
	if kf.NSplits < 2 {
		return 0, errors.NewValidationError("nr_fold", "n-fold cross validation: n must >= 2", kf.NSplits)
	}
	if l == 0 {
		return 0, errors.NewModelError("KFold.Split", "empty data", errors.ErrEmptyData)
	}
	if kf.NSplits > l {
		errors.Warn(errors.NewParameterClampWarning("nr_fold", float64(kf.NSplits), float64(l),
			"# folds > # data"))
		return l, nil
	}
	return kf.NSplits, nil
}
