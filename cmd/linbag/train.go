package main

import (
	"fmt"
	"io"
	"math"
	"time"

	"github.com/spf13/cobra"

	"github.com/YuminosukeSato/linbag/core/sparse"
	"github.com/YuminosukeSato/linbag/ensemble"
	"github.com/YuminosukeSato/linbag/metrics"
	"github.com/YuminosukeSato/linbag/report"
)

func trainCmd(g *globals) *cobra.Command {
	var (
		tf         trainingFlags
		learners   []string
		metricName string
		fraction   float64
		reportPath string
		plotPath   string
	)

	cmd := &cobra.Command{
		Use:   "train TRAINING_SET_FILE [MODEL_FILE]",
		Short: "bag every base learner with a per-member grid search over C",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run("train", func() error {
				input := args[0]
				modelFile := defaultModelFile(input)
				if len(args) == 2 {
					modelFile = args[1]
				}

				cfg := g.cfg
				if len(learners) > 0 {
					cfg.BaseLearners = learners
				}
				if metricName != "" {
					cfg.ClassificationMetric = metricName
				}
				if cmd.Flags().Changed("fraction") {
					cfg.BootstrapFraction = fraction
				}
				if err := cfg.Validate(); err != nil {
					return err
				}
				solvers, err := cfg.Solvers()
				if err != nil {
					return err
				}
				metric, err := cfg.ClassificationMetricValue()
				if err != nil {
					return err
				}
				folds, err := tf.resolveFolds(g)
				if err != nil {
					return err
				}
				g.cfg = cfg
				base, err := tf.parameter(cmd, g, solvers[0])
				if err != nil {
					return err
				}

				ds, err := readData(input, sparse.ReadOptions{Bias: tf.resolveBias(cmd, g)})
				if err != nil {
					return err
				}

				bagging := ensemble.NewBagging(
					ensemble.WithBaseLearners(solvers...),
					ensemble.WithBaseParameter(base),
					ensemble.WithFraction(cfg.BootstrapFraction),
					ensemble.WithGrid(cfg.Grid()),
					ensemble.WithFolds(folds),
					ensemble.WithMetric(metric),
					ensemble.WithParallelism(cfg.Parallelism),
					ensemble.WithRand(cfg.Rand()),
				)
				members, err := bagging.Fit(cmd.Context(), ds, modelFile)
				if err != nil {
					return err
				}
				if !g.quiet {
					printMembers(cmd.OutOrStdout(), members, metric)
				}

				if reportPath != "" {
					rep := report.BaggingReport{
						Dataset:     input,
						ModelFile:   modelFile,
						Metric:      metric.String(),
						Folds:       folds,
						Fraction:    cfg.BootstrapFraction,
						Members:     members,
						GeneratedAt: time.Now().UTC(),
					}
					if err := report.SaveJSON(reportPath, rep); err != nil {
						return err
					}
				}
				if plotPath != "" {
					return report.PlotGridSearch(plotPath, members, metric.String())
				}
				return nil
			})
		},
	}

	tf.register(cmd, false)
	cmd.Flags().StringSliceVar(&learners, "learners", nil, "base learners, solver names or ids (default from config)")
	cmd.Flags().StringVar(&metricName, "metric", "", "classification metric for the grid search (default from config)")
	cmd.Flags().Float64Var(&fraction, "fraction", 0.6, "bootstrap sample size as a fraction of the training set")
	cmd.Flags().StringVar(&reportPath, "report", "", "write a JSON summary of the run")
	cmd.Flags().StringVar(&plotPath, "plot", "", "write the grid search curves as PNG")
	return cmd
}

func printMembers(w io.Writer, members []ensemble.Member, metric metrics.Metric) {
	for _, m := range members {
		fmt.Fprintf(w, "%s (tolerance %g, %d samples)\n", m.SolverName, m.Tolerance, m.SampleSize)
		if m.Search != nil {
			for i, c := range m.Search.Values {
				fmt.Fprintf(w, "  log2c=%g C=%g %s=%g\n", math.Log2(c), c, metric, m.Search.Scores[i])
			}
		}
		fmt.Fprintf(w, "  Best cross validation %s %g at C %g\n", metric, m.BestScore, m.BestC)
		fmt.Fprintf(w, "  Saved sub-model as %s\n", m.ModelPath)
	}
}
