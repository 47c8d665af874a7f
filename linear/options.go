package linear

// Option is a function that configures a Parameter.
type Option func(*Parameter)

// WithSolver sets the solver. The tolerance is reset to the solver's default.
func WithSolver(s SolverType) Option {
	return func(p *Parameter) {
		p.Solver = s
		p.Eps = DefaultTolerance(s)
	}
}

// WithC sets the cost of constraint violation.
func WithC(c float64) Option {
	return func(p *Parameter) {
		p.C = c
	}
}

// WithEps sets the stopping tolerance.
func WithEps(eps float64) Option {
	return func(p *Parameter) {
		p.Eps = eps
	}
}

// WithP sets the epsilon of the SVR loss.
func WithP(eps float64) Option {
	return func(p *Parameter) {
		p.P = eps
	}
}

// WithClassWeight multiplies C by weight for instances labelled label.
func WithClassWeight(label, weight float64) Option {
	return func(p *Parameter) {
		if p.Weights == nil {
			p.Weights = make(map[float64]float64)
		}
		p.Weights[label] = weight
	}
}

// WithMaxIter bounds the number of gradient steps per classifier.
func WithMaxIter(n int) Option {
	return func(p *Parameter) {
		p.MaxIter = n
	}
}
