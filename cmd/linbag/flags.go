package main

import (
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/YuminosukeSato/linbag/linear"
	"github.com/YuminosukeSato/linbag/pkg/errors"
)

// trainingFlags are the trainer settings accepted by train and cv.
type trainingFlags struct {
	solver  string
	c       float64
	eps     float64
	p       float64
	bias    float64
	weights []string
	folds   int
}

// register adds the flags; withSolver adds -s, -c and -e, which bagging
// chooses per member instead.
func (f *trainingFlags) register(cmd *cobra.Command, withSolver bool) {
	fl := cmd.Flags()
	if withSolver {
		fl.StringVarP(&f.solver, "solver", "s", "1", "solver type, id or name (default 1: L2R_L2LOSS_SVC_DUAL)")
		fl.Float64VarP(&f.c, "cost", "c", 1, "cost parameter C")
		fl.Float64VarP(&f.eps, "eps", "e", 0, "tolerance of termination criterion (default: per solver)")
	}
	fl.Float64VarP(&f.p, "epsilon", "p", 0.1, "epsilon in the loss function of SVR")
	fl.Float64VarP(&f.bias, "bias", "B", -1, "if bias >= 0, instance x becomes [x; bias]")
	fl.StringSliceVarP(&f.weights, "weight", "w", nil, "class weight as label:weight, repeatable")
	fl.IntVarP(&f.folds, "folds", "v", 0, "n-fold cross validation (default from config)")
}

// parseWeights parses "label:weight" pairs.
func parseWeights(pairs []string) (map[float64]float64, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	out := make(map[float64]float64, len(pairs))
	for _, pair := range pairs {
		label, weight, ok := strings.Cut(pair, ":")
		if !ok {
			return nil, errors.NewValidationError("weight", "expected label:weight", pair)
		}
		l, err := strconv.ParseFloat(strings.TrimSpace(label), 64)
		if err != nil {
			return nil, errors.NewValidationError("weight", "label must be numeric", pair)
		}
		w, err := strconv.ParseFloat(strings.TrimSpace(weight), 64)
		if err != nil {
			return nil, errors.NewValidationError("weight", "weight must be numeric", pair)
		}
		out[l] = w
	}
	return out, nil
}

// parameter combines flags with the configured class weights; flag weights win.
func (f *trainingFlags) parameter(cmd *cobra.Command, g *globals, solver linear.SolverType) (linear.Parameter, error) {
	param, err := g.cfg.Parameter(solver)
	if err != nil {
		return linear.Parameter{}, err
	}
	weights, err := parseWeights(f.weights)
	if err != nil {
		return linear.Parameter{}, err
	}

	opts := []linear.Option{linear.WithP(f.p)}
	if cmd.Flags().Lookup("cost") != nil {
		opts = append(opts, linear.WithC(f.c))
	}
	if f.eps > 0 {
		opts = append(opts, linear.WithEps(f.eps))
	}
	for label, w := range weights {
		opts = append(opts, linear.WithClassWeight(label, w))
	}
	param = param.Apply(opts...)
	return param, linear.CheckParameter(param)
}

func (f *trainingFlags) resolveBias(cmd *cobra.Command, g *globals) float64 {
	if cmd.Flags().Changed("bias") {
		return f.bias
	}
	return g.cfg.Bias
}

func (f *trainingFlags) resolveFolds(g *globals) (int, error) {
	if f.folds == 0 {
		return g.cfg.Folds, nil
	}
	if f.folds < 2 {
		return 0, errors.NewValidationError("folds", "n-fold cross validation: n must >= 2", f.folds)
	}
	return f.folds, nil
}

// defaultModelFile returns "<basename of input>.model".
func defaultModelFile(input string) string {
	return filepath.Base(input) + ".model"
}
