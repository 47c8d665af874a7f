package main

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/YuminosukeSato/linbag/core/sparse"
	"github.com/YuminosukeSato/linbag/neighbors"
	"github.com/YuminosukeSato/linbag/pkg/log"
	"github.com/YuminosukeSato/linbag/report"
)

func knnCmd(g *globals) *cobra.Command {
	var (
		folds      int
		step       int
		selection  string
		reportPath string
		plotPath   string
		showPreds  bool
	)

	cmd := &cobra.Command{
		Use:   "knn TRAINING_SET_FILE TEST_FILE",
		Short: "select k by cross validation and report k-NN test accuracy",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run("knn", func() error {
				cfg := g.cfg
				if folds != 0 {
					cfg.Folds = folds
				}
				if step != 0 {
					cfg.KStep = step
				}
				if selection != "" {
					cfg.KSelection = selection
				}
				if err := cfg.Validate(); err != nil {
					return err
				}
				mode, err := cfg.SelectionMode()
				if err != nil {
					return err
				}

				train, err := readData(args[0], sparse.ReadOptions{Bias: -1})
				if err != nil {
					return err
				}
				test, err := readData(args[1], sparse.ReadOptions{Bias: -1})
				if err != nil {
					return err
				}

				selector := neighbors.Selector{
					Folds:       cfg.Folds,
					Step:        cfg.KStep,
					Mode:        mode,
					Rand:        cfg.Rand(),
					Parallelism: cfg.Parallelism,
				}
				sel, err := selector.Select(cmd.Context(), train)
				if err != nil {
					return err
				}

				clf := neighbors.NewClassifier(train, sparse.NewNormCache(train.Arena()))
				clf.Parallelism = cfg.Parallelism
				preds, acc, err := clf.Evaluate(sel.Best.K, test)
				if err != nil {
					return err
				}

				log.GetLogger().Info("k-NN test set evaluated",
					log.OperationKey, log.OperationPredict,
					log.PhaseKey, log.PhaseInference,
					log.ModelNameKey, "knn",
					log.NeighborsKey, sel.Best.K,
					log.SamplesKey, test.Len(),
					log.AccuracyKey, acc,
				)
				if !g.quiet {
					printSelection(cmd.OutOrStdout(), sel, preds, test, acc, showPreds)
				}
				if reportPath != "" {
					rep := report.KNNReport{
						Dataset:      args[0],
						TestFile:     args[1],
						Selection:    sel,
						TestAccuracy: acc,
						GeneratedAt:  time.Now().UTC(),
					}
					if err := report.SaveJSON(reportPath, rep); err != nil {
						return err
					}
				}
				if plotPath != "" && len(sel.Scores) > 0 {
					return report.PlotKSelection(plotPath, sel)
				}
				return nil
			})
		},
	}

	cmd.Flags().IntVarP(&folds, "folds", "v", 0, "n-fold cross validation (default from config)")
	cmd.Flags().IntVar(&step, "step", 0, "distance between candidate values of k (default from config)")
	cmd.Flags().StringVar(&selection, "selection", "", "k selection mode: maximize or minimize the logloss (default from config)")
	cmd.Flags().BoolVar(&showPreds, "predictions", false, "print the test predictions")
	cmd.Flags().StringVar(&reportPath, "report", "", "write a JSON summary of the run")
	cmd.Flags().StringVar(&plotPath, "plot", "", "write the k sweep as PNG")
	return cmd
}

func printSelection(w io.Writer, sel *neighbors.Selection, preds []neighbors.Prediction, test *sparse.Dataset, acc float64, showPreds bool) {
	for _, s := range sel.Scores {
		fmt.Fprintf(w, "K %d, Cross validation logloss %g, acc %g\n", s.K, s.LogLoss, s.Accuracy)
	}
	fmt.Fprintf(w, "Best cross validation logloss %g at K %d\n", sel.Best.LogLoss, sel.Best.K)

	correct := 0
	for i, p := range preds {
		if showPreds {
			fmt.Fprintf(w, "%g %g %g\n", test.Label(i), p.Label, p.Confidence)
		}
		if p.Label == test.Label(i) {
			correct++
		}
	}
	fmt.Fprintf(w, "acc %g (%d/%d)\n", acc, correct, len(preds))
}
