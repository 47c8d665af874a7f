package sparse

import (
	"fmt"

	"github.com/YuminosukeSato/linbag/pkg/errors"
)

// Builder accumulates instances and produces an immutable Dataset.
// Each Add validates its vector; Build appends the bias feature.
type Builder struct {
	bias      float64
	maxIndex  int
	fixed     bool
	instances []Instance
	built     bool
}

// NewBuilder creates a Builder. A bias >= 0 appends a constant feature with
// that value at index maxIndex+1 to every instance when Build is called.
func NewBuilder(bias float64) *Builder {
	return &Builder{bias: bias}
}

// WithMaxIndex fixes the dimensionality instead of deriving it from the data.
// Features with a larger index are dropped, so a test set lines up with the
// features a model was trained on.
func (b *Builder) WithMaxIndex(maxIndex int) *Builder {
	b.maxIndex = maxIndex
	b.fixed = true
	return b
}

// Add appends one instance. Features must have strictly increasing indices >= 1.
func (b *Builder) Add(label float64, features []Feature) error {
	if b.built {
		return errors.NewValueError("Builder.Add", "builder already produced a dataset")
	}
	if err := validate(features); err != nil {
		return err
	}
	if b.fixed {
		features = trim(features, b.maxIndex)
	}
	v := make(Vector, len(features), len(features)+1)
	copy(v, features)
	if m := v.MaxIndex(); m > b.maxIndex {
		b.maxIndex = m
	}
	b.instances = append(b.instances, Instance{
		ID:       len(b.instances),
		Features: v,
		Label:    label,
	})
	return nil
}

func validate(features []Feature) error {
	prev := 0
	for _, f := range features {
		if f.Index <= prev {
			return errors.NewValidationError("feature index",
				fmt.Sprintf("indices must be >= 1 and strictly increasing (previous %d)", prev), f.Index)
		}
		prev = f.Index
	}
	return nil
}

func trim(features []Feature, maxIndex int) []Feature {
	n := len(features)
	for n > 0 && features[n-1].Index > maxIndex {
		n--
	}
	return features[:n]
}

// Len returns the number of instances added so far.
func (b *Builder) Len() int {
	return len(b.instances)
}

// Build finalizes the dataset. The builder cannot be reused afterwards.
func (b *Builder) Build() (*Dataset, error) {
	if b.built {
		return nil, errors.NewValueError("Builder.Build", "builder already produced a dataset")
	}
	if len(b.instances) == 0 {
		return nil, errors.NewModelError("Builder.Build", "no instances", errors.ErrEmptyData)
	}
	b.built = true

	n := b.maxIndex
	if b.bias >= 0 {
		n = b.maxIndex + 1
		for i := range b.instances {
			b.instances[i].Features = append(b.instances[i].Features, Feature{Index: n, Value: b.bias})
		}
	}

	ids := make([]int, len(b.instances))
	for i := range ids {
		ids[i] = i
	}
	return &Dataset{
		arena:       &Arena{instances: b.instances},
		ids:         ids,
		numFeatures: n,
		bias:        b.bias,
	}, nil
}
