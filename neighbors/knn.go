// Package neighbors implements a k-nearest-neighbor classifier over sparse
// instances and a cross-validated sweep for k.
package neighbors

import (
	"container/heap"
	"sort"

	"github.com/YuminosukeSato/linbag/core/parallel"
	"github.com/YuminosukeSato/linbag/core/sparse"
	"github.com/YuminosukeSato/linbag/pkg/errors"
)

// neighbor is one training instance seen from a query.
type neighbor struct {
	distance float64
	label    float64
}

// neighborHeap is a min-heap ordered by distance, then label.
type neighborHeap []neighbor

func (h neighborHeap) Len() int { return len(h) }
func (h neighborHeap) Less(i, j int) bool {
	if h[i].distance != h[j].distance {
		return h[i].distance < h[j].distance
	}
	return h[i].label < h[j].label
}
func (h neighborHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *neighborHeap) Push(x any) { *h = append(*h, x.(neighbor)) }

func (h *neighborHeap) Pop() any {
	old := *h
	n := len(old)
	x := old[n-1]
	*h = old[:n-1]
	return x
}

// Prediction is the outcome of one k-NN query.
type Prediction struct {
	Label float64
	// Confidence is the share of the k nearest neighbors voting for Label.
	Confidence float64
	// K is the neighbor count actually used after clamping.
	K int
}

// Classifier answers k-NN queries against a training dataset. Squared norms
// are memoized in a NormCache keyed by arena position; sub-datasets of the
// same arena can share one cache.
type Classifier struct {
	train *sparse.Dataset
	cache *sparse.NormCache
	// Parallelism is the number of goroutines computing distances; <= 1 is sequential.
	Parallelism int
}

// NewClassifier creates a classifier over train. A nil cache creates a new one
// for train's arena.
func NewClassifier(train *sparse.Dataset, cache *sparse.NormCache) *Classifier {
	if cache == nil && train != nil {
		cache = sparse.NewNormCache(train.Arena())
	}
	return &Classifier{train: train, cache: cache}
}

// ClampK limits k to [1, l], warning when the requested value is outside.
func ClampK(k, l int) int {
	switch {
	case k > l:
		errors.Warn(errors.NewParameterClampWarning("k", float64(k), float64(l),
			"it must be less than or equal to #training instances"))
		return l
	case k < 1:
		errors.Warn(errors.NewParameterClampWarning("k", float64(k), 1,
			"it must be greater than or equal to 1"))
		return 1
	}
	return k
}

// Predict returns the majority label among the k training instances closest
// to query. Distance ties are broken by the smaller label, and a tie in the
// vote goes to the smallest label value.
func (c *Classifier) Predict(k int, query *sparse.Instance) (Prediction, error) {
	if c.train == nil || c.train.Len() == 0 {
		return Prediction{}, errors.NewModelError("Classifier.Predict", "empty training set", errors.ErrEmptyData)
	}
	l := c.train.Len()
	k = ClampK(k, l)

	h := make(neighborHeap, l)
	fill := func(start, end int) {
		for i := start; i < end; i++ {
			inst := c.train.At(i)
			h[i] = neighbor{distance: c.cache.Distance(inst, query), label: inst.Label}
		}
	}
	if c.Parallelism > 1 {
		parallel.Parallelize(l, c.Parallelism, fill)
	} else {
		fill(0, l)
	}
	heap.Init(&h)

	votes := make(map[float64]int)
	for i := 0; i < k; i++ {
		nn := heap.Pop(&h).(neighbor)
		votes[nn.label]++
	}

	labels := make([]float64, 0, len(votes))
	for label := range votes {
		labels = append(labels, label)
	}
	sort.Float64s(labels)

	major, count := labels[0], votes[labels[0]]
	for _, label := range labels[1:] {
		if votes[label] > count {
			major, count = label, votes[label]
		}
	}
	return Prediction{Label: major, Confidence: float64(count) / float64(k), K: k}, nil
}

// Evaluate predicts every instance of test with k neighbors and returns the
// predictions and the fraction equal to the true label.
func (c *Classifier) Evaluate(k int, test *sparse.Dataset) ([]Prediction, float64, error) {
	if test == nil || test.Len() == 0 {
		return nil, 0, errors.NewModelError("Classifier.Evaluate", "empty test set", errors.ErrEmptyData)
	}
	if c.train != nil && c.train.Len() > 0 {
		// clamp once so the warning is not repeated per query
		k = ClampK(k, c.train.Len())
	}
	preds := make([]Prediction, test.Len())
	correct := 0
	for i := 0; i < test.Len(); i++ {
		p, err := c.Predict(k, test.At(i))
		if err != nil {
			return nil, 0, err
		}
		preds[i] = p
		if p.Label == test.Label(i) {
			correct++
		}
	}
	return preds, float64(correct) / float64(test.Len()), nil
}
