package linear

import (
	"github.com/YuminosukeSato/linbag/pkg/errors"
)

// Parameter holds the training configuration of a linear model.
type Parameter struct {
	Solver SolverType
	C      float64 // cost of constraint violation
	Eps    float64 // stopping tolerance
	P      float64 // epsilon of the SVR loss
	// Weights multiplies C for instances of the given label.
	Weights map[float64]float64
	MaxIter int
}

const defaultMaxIter = 1000

// DefaultParameter returns the command line defaults: L2-loss SVC (dual),
// C=1, p=0.1 and the solver's default tolerance.
func DefaultParameter() Parameter {
	return NewParameter(L2RL2LossSVCDual)
}

// NewParameter creates a Parameter for solver with default values and applies opts.
func NewParameter(solver SolverType, opts ...Option) Parameter {
	p := Parameter{
		Solver:  solver,
		C:       1,
		Eps:     DefaultTolerance(solver),
		P:       0.1,
		MaxIter: defaultMaxIter,
	}
	return p.Apply(opts...)
}

// Apply returns a copy of p with opts applied. p itself is not modified.
func (p Parameter) Apply(opts ...Option) Parameter {
	if p.Weights != nil {
		w := make(map[float64]float64, len(p.Weights))
		for k, v := range p.Weights {
			w[k] = v
		}
		p.Weights = w
	}
	for _, opt := range opts {
		opt(&p)
	}
	return p
}

// ClassWeight returns the C multiplier of label.
func (p Parameter) ClassWeight(label float64) float64 {
	if w, ok := p.Weights[label]; ok {
		return w
	}
	return 1
}

// CheckParameter validates p before training.
func CheckParameter(p Parameter) error {
	if !p.Solver.valid() {
		return errors.NewValidationError("solver", "unknown solver type", int(p.Solver))
	}
	if p.Solver == MCSVMCS {
		return errors.NewConfigurationError("CheckParameter", "solver MCSVM_CS is not supported")
	}
	if p.C <= 0 {
		return errors.NewValidationError("C", "must be > 0", p.C)
	}
	if p.Eps <= 0 {
		return errors.NewValidationError("eps", "must be > 0", p.Eps)
	}
	if p.P < 0 {
		return errors.NewValidationError("p", "must be >= 0", p.P)
	}
	if p.MaxIter <= 0 {
		return errors.NewValidationError("max_iter", "must be > 0", p.MaxIter)
	}
	for label, w := range p.Weights {
		if w <= 0 {
			return errors.NewValidationError("weight", "class weights must be > 0", label)
		}
	}
	return nil
}
