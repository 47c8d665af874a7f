package sparse

import (
	"github.com/YuminosukeSato/linbag/pkg/errors"
)

// Instance is one labeled sparse vector. ID is its position in the owning
// Arena, or -1 for instances that do not belong to one (ad-hoc queries).
type Instance struct {
	ID       int
	Features Vector
	Label    float64
}

// Arena owns instance storage. Datasets refer into it by position and never
// copy or mutate instances.
type Arena struct {
	instances []Instance
}

// Len returns the number of instances in the arena.
func (a *Arena) Len() int {
	return len(a.instances)
}

// Get returns the instance at arena position id.
func (a *Arena) Get(id int) *Instance {
	return &a.instances[id]
}

// Dataset is an ordered view over an Arena. Sub-datasets produced by Subset
// alias the same instances; only the index list is allocated.
type Dataset struct {
	arena       *Arena
	ids         []int
	numFeatures int
	bias        float64
}

// Len returns the number of instances in the dataset.
func (d *Dataset) Len() int {
	return len(d.ids)
}

// At returns the i-th instance of the dataset.
func (d *Dataset) At(i int) *Instance {
	return d.arena.Get(d.ids[i])
}

// Label returns the label of the i-th instance.
func (d *Dataset) Label(i int) float64 {
	return d.arena.instances[d.ids[i]].Label
}

// Labels returns a freshly allocated slice of all labels in dataset order.
func (d *Dataset) Labels() []float64 {
	out := make([]float64, len(d.ids))
	for i, id := range d.ids {
		out[i] = d.arena.instances[id].Label
	}
	return out
}

// NumFeatures returns the dimensionality, including the bias feature when present.
func (d *Dataset) NumFeatures() int {
	return d.numFeatures
}

// Bias returns the bias value appended to each instance, or a negative value
// when no bias feature was added.
func (d *Dataset) Bias() float64 {
	return d.bias
}

// HasBias reports whether a bias feature was appended.
func (d *Dataset) HasBias() bool {
	return d.bias >= 0
}

// Arena returns the backing store shared by all views of this dataset.
func (d *Dataset) Arena() *Arena {
	return d.arena
}

// IDs returns a copy of the arena positions of the dataset's instances.
func (d *Dataset) IDs() []int {
	out := make([]int, len(d.ids))
	copy(out, d.ids)
	return out
}

// Subset returns a view containing the instances at the given dataset
// positions, in that order. Positions may repeat.
func (d *Dataset) Subset(positions []int) (*Dataset, error) {
	ids := make([]int, len(positions))
	for k, p := range positions {
		if p < 0 || p >= len(d.ids) {
			return nil, errors.NewValueError("Dataset.Subset", "position out of range")
		}
		ids[k] = d.ids[p]
	}
	return &Dataset{
		arena:       d.arena,
		ids:         ids,
		numFeatures: d.numFeatures,
		bias:        d.bias,
	}, nil
}

// DistinctLabels returns the labels present in d in order of first appearance.
func (d *Dataset) DistinctLabels() []float64 {
	seen := make(map[float64]struct{})
	var out []float64
	for _, id := range d.ids {
		y := d.arena.instances[id].Label
		if _, ok := seen[y]; !ok {
			seen[y] = struct{}{}
			out = append(out, y)
		}
	}
	return out
}
