// Package linbag is a model selection and bagging harness for sparse linear
// classifiers, with a k-nearest-neighbor baseline.
//
// It reads libsvm-format data, trains linear models with several solvers,
// estimates their quality with stratification-free k-fold cross validation,
// searches the cost parameter C over a power-of-two grid, and bags several
// solvers, each trained on its own bootstrap sample.
//
// # Installation
//
//	go install github.com/YuminosukeSato/linbag/cmd/linbag@latest
//
// # Quick Start
//
// Bag the default base learners and save one model per solver:
//
//	package main
//
//	import (
//	    "context"
//	    "log"
//
//	    "github.com/YuminosukeSato/linbag/core/sparse"
//	    "github.com/YuminosukeSato/linbag/ensemble"
//	    "github.com/YuminosukeSato/linbag/model_selection"
//	)
//
//	func main() {
//	    ds, err := sparse.ReadLibSVMFile("heart_scale", sparse.ReadOptions{Bias: -1})
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//
//	    bagging := ensemble.NewBagging(
//	        ensemble.WithRand(model_selection.NewSeededRand(1)),
//	        ensemble.WithParallelism(4),
//	    )
//	    // writes heart_scale.model.L2R_LR, heart_scale.model.L2R_L2LOSS_SVC, ...
//	    members, err := bagging.Fit(context.Background(), ds, "heart_scale.model")
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    for _, m := range members {
//	        log.Printf("%s: C=%g score=%g", m.SolverName, m.BestC, m.BestScore)
//	    }
//	}
//
// # Packages
//
//   - core/sparse: libsvm reader, sparse vectors, datasets and the norm cache
//   - core/model: predictor interfaces and model persistence
//   - core/parallel: worker pools for fold and member level parallelism
//   - linear: solver catalogue, training parameters and linear models
//   - metrics: classification and regression metrics over decision values
//   - model_selection: k-fold partitioning, bootstrap, cross validation, grid search
//   - ensemble: bagging of base learners
//   - neighbors: k-NN classifier and cross-validated selection of k
//   - config: YAML configuration
//   - report: JSON run summaries and PNG selection curves
//   - cmd/linbag: the command line interface
//
// # Reproducibility
//
// Every source of randomness takes a *rand.Rand. With a fixed seed, fold
// permutations, bootstrap samples and results are identical whether members
// and folds run sequentially or in parallel.
//
// # License
//
// linbag is released under the MIT License.
package linbag
