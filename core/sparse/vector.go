// Package sparse holds the sparse feature vectors, datasets and distance
// primitives shared by the linear trainer, cross-validation and k-NN.
//
// A vector is a slice of Features with strictly increasing Index. The end of
// the slice plays the role of the terminator that merge-style algorithms
// stop on.
package sparse

import (
	"math"
)

// Sentinel is the index value that terminates a vector in the text model
// format and in Terminated.
const Sentinel = -1

// Feature is a single (index, value) pair. Indices are 1-based.
type Feature struct {
	Index int
	Value float64
}

// Vector is an ordered sparse feature list.
type Vector []Feature

// Terminated returns a copy of v followed by a Sentinel feature.
func (v Vector) Terminated() []Feature {
	out := make([]Feature, len(v)+1)
	copy(out, v)
	out[len(v)] = Feature{Index: Sentinel}
	return out
}

// MaxIndex returns the largest feature index in v, or 0 for an empty vector.
func (v Vector) MaxIndex() int {
	if len(v) == 0 {
		return 0
	}
	return v[len(v)-1].Index
}

// Dot computes the inner product of two sorted vectors by merge-join.
// It returns 0 if either vector is empty.
func Dot(a, b Vector) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}

	var prod float64
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		switch {
		case a[i].Index == b[j].Index:
			prod += a[i].Value * b[j].Value
			i++
			j++
		case a[i].Index > b[j].Index:
			j++
		default:
			i++
		}
	}
	return prod
}

// SquaredNorm returns the sum of squared values of v.
func SquaredNorm(v Vector) float64 {
	var s float64
	for _, f := range v {
		s += f.Value * f.Value
	}
	return s
}

// Distance returns the Euclidean distance between a and b computed as
// sqrt(|a|^2 + |b|^2 - 2<a,b>).
func Distance(a, b Vector) float64 {
	return distanceFromNorms(SquaredNorm(a), SquaredNorm(b), Dot(a, b))
}

func distanceFromNorms(na, nb, dot float64) float64 {
	d2 := na + nb - 2*dot
	// rounding can leave a tiny negative remainder for identical vectors
	if d2 < 0 {
		return 0
	}
	return math.Sqrt(d2)
}
