package sparse

import (
	"math"
	"sync/atomic"
)

// NormCache memoizes squared norms by arena position. A cache belongs to one
// logical run (one cross-validation call or one k-NN session) over a single
// Arena and is safe for concurrent use.
type NormCache struct {
	arena *Arena
	bits  []atomic.Uint64
	ready []atomic.Bool
}

// NewNormCache creates an empty cache for instances of arena.
func NewNormCache(arena *Arena) *NormCache {
	n := arena.Len()
	return &NormCache{
		arena: arena,
		bits:  make([]atomic.Uint64, n),
		ready: make([]atomic.Bool, n),
	}
}

// SquaredNorm returns the squared norm of inst, computing and storing it on
// first use. Instances outside the cache's arena are computed directly.
func (c *NormCache) SquaredNorm(inst *Instance) float64 {
	id := inst.ID
	if c == nil || id < 0 || id >= len(c.bits) || c.arena.Get(id) != inst {
		return SquaredNorm(inst.Features)
	}
	if c.ready[id].Load() {
		return math.Float64frombits(c.bits[id].Load())
	}
	n := SquaredNorm(inst.Features)
	c.bits[id].Store(math.Float64bits(n))
	c.ready[id].Store(true)
	return n
}

// Distance returns the Euclidean distance between a and b using cached norms.
func (c *NormCache) Distance(a, b *Instance) float64 {
	return distanceFromNorms(c.SquaredNorm(a), c.SquaredNorm(b), Dot(a.Features, b.Features))
}

// Cached reports how many norms have been stored.
func (c *NormCache) Cached() int {
	n := 0
	for i := range c.ready {
		if c.ready[i].Load() {
			n++
		}
	}
	return n
}
