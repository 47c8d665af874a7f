package linear

import (
	"strconv"
	"strings"

	"github.com/YuminosukeSato/linbag/pkg/errors"
)

// SolverType selects the loss and regularizer of a linear model. The numeric
// values follow the widely used LIBLINEAR numbering so model files and
// command lines stay interchangeable.
type SolverType int

const (
	L2RLogistic      SolverType = 0  // L2-regularized logistic regression (primal)
	L2RL2LossSVCDual SolverType = 1  // L2-regularized L2-loss SVC (dual)
	L2RL2LossSVC     SolverType = 2  // L2-regularized L2-loss SVC (primal)
	L2RL1LossSVCDual SolverType = 3  // L2-regularized L1-loss SVC (dual)
	MCSVMCS          SolverType = 4  // Crammer and Singer multi-class SVC
	L1RL2LossSVC     SolverType = 5  // L1-regularized L2-loss SVC
	L1RLogistic      SolverType = 6  // L1-regularized logistic regression
	L2RLogisticDual  SolverType = 7  // L2-regularized logistic regression (dual)
	L2RL2LossSVR     SolverType = 11 // L2-regularized L2-loss SVR (primal)
	L2RL2LossSVRDual SolverType = 12 // L2-regularized L2-loss SVR (dual)
	L2RL1LossSVRDual SolverType = 13 // L2-regularized L1-loss SVR (dual)
)

// solverNames is indexed by SolverType; unused slots are empty.
var solverNames = [...]string{
	"L2R_LR", "L2R_L2LOSS_SVC_DUAL", "L2R_L2LOSS_SVC", "L2R_L1LOSS_SVC_DUAL", "MCSVM_CS",
	"L1R_L2LOSS_SVC", "L1R_LR", "L2R_LR_DUAL",
	"", "", "",
	"L2R_L2LOSS_SVR", "L2R_L2LOSS_SVR_DUAL", "L2R_L1LOSS_SVR_DUAL",
}

// defaultTolerance is the stopping tolerance used when none is given.
var defaultTolerance = [...]float64{
	0.01, 0.1, 0.01, 0.1, 0.1, 0.01, 0.01, 0.1,
	0, 0, 0,
	0.001, 0.1, 0.1,
}

// String returns the solver's canonical name, used as the suffix of bagged
// model files.
func (s SolverType) String() string {
	if s.valid() {
		return solverNames[s]
	}
	return "UNKNOWN_SOLVER(" + strconv.Itoa(int(s)) + ")"
}

func (s SolverType) valid() bool {
	return s >= 0 && int(s) < len(solverNames) && solverNames[s] != ""
}

// DefaultTolerance returns the default stopping tolerance of s.
func DefaultTolerance(s SolverType) float64 {
	if s.valid() {
		return defaultTolerance[s]
	}
	return 0.1
}

// IsRegression reports whether s fits real-valued targets.
func (s SolverType) IsRegression() bool {
	return s == L2RL2LossSVR || s == L2RL2LossSVRDual || s == L2RL1LossSVRDual
}

// IsLogistic reports whether s produces probability estimates.
func (s SolverType) IsLogistic() bool {
	return s == L2RLogistic || s == L1RLogistic || s == L2RLogisticDual
}

func (s SolverType) l1Regularized() bool {
	return s == L1RL2LossSVC || s == L1RLogistic
}

// ParseSolver accepts either the numeric id ("2") or the name ("L2R_L2LOSS_SVC").
func ParseSolver(text string) (SolverType, error) {
	text = strings.TrimSpace(text)
	if n, err := strconv.Atoi(text); err == nil {
		s := SolverType(n)
		if !s.valid() {
			return 0, errors.NewValidationError("solver", "unknown solver type", n)
		}
		return s, nil
	}
	for i, name := range solverNames {
		if name != "" && strings.EqualFold(name, text) {
			return SolverType(i), nil
		}
	}
	return 0, errors.NewValidationError("solver", "unknown solver type", text)
}
