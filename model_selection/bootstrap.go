package model_selection

import (
	"math/rand/v2"

	"github.com/YuminosukeSato/linbag/core/sparse"
	"github.com/YuminosukeSato/linbag/pkg/errors"
)

// DefaultBootstrapFraction is the share of the training set drawn per bootstrap sample.
const DefaultBootstrapFraction = 0.6

// BootstrapIndices draws floor(fraction*l) positions uniformly from [0,l)
// with replacement.
func BootstrapIndices(l int, fraction float64, rng *rand.Rand) ([]int, error) {
	if fraction <= 0 {
		return nil, errors.NewValidationError("fraction", "must be > 0", fraction)
	}
	subl := int(fraction * float64(l))
	if subl == 0 {
		return nil, errors.NewValueError("BootstrapIndices", "bootstrap sample would be empty")
	}
	if rng == nil {
		rng = newRand()
	}

	idx := make([]int, subl)
	for i := range idx {
		idx[i] = rng.IntN(l)
	}
	return idx, nil
}

// Bootstrap returns a resample of ds. The instances are shared with ds.
func Bootstrap(ds *sparse.Dataset, fraction float64, rng *rand.Rand) (*sparse.Dataset, error) {
	idx, err := BootstrapIndices(ds.Len(), fraction, rng)
	if err != nil {
		return nil, err
	}
	return ds.Subset(idx)
}
