package main

import (
	"context"
	"fmt"
	"math"

	"github.com/spf13/cobra"

	"github.com/YuminosukeSato/linbag/core/model"
	"github.com/YuminosukeSato/linbag/core/sparse"
	"github.com/YuminosukeSato/linbag/linear"
	"github.com/YuminosukeSato/linbag/metrics"
	"github.com/YuminosukeSato/linbag/model_selection"
)

func cvCmd(g *globals) *cobra.Command {
	var (
		tf         trainingFlags
		metricName string
		grid       bool
	)

	cmd := &cobra.Command{
		Use:   "cv TRAINING_SET_FILE",
		Short: "cross-validate one solver, optionally over the grid of C",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run("cv", func() error {
				solver, err := linear.ParseSolver(tf.solver)
				if err != nil {
					return err
				}
				param, err := tf.parameter(cmd, g, solver)
				if err != nil {
					return err
				}
				folds, err := tf.resolveFolds(g)
				if err != nil {
					return err
				}
				metric, err := cvMetric(g, solver, metricName)
				if err != nil {
					return err
				}

				ds, err := readData(args[0], sparse.ReadOptions{Bias: tf.resolveBias(cmd, g)})
				if err != nil {
					return err
				}

				rng := g.cfg.Rand()
				score := func(ctx context.Context, c float64) (float64, error) {
					candidate := param.Apply(linear.WithC(c))
					trainer := model_selection.TrainerFunc(func(sub *sparse.Dataset) (model.Predictor, error) {
						return linear.Train(sub, candidate)
					})
					opts := []model_selection.CVOption{
						model_selection.WithFolds(folds),
						model_selection.WithRand(rng),
						model_selection.WithParallelism(g.cfg.Parallelism),
					}
					if solver.IsRegression() {
						return model_selection.CrossValidateRegression(ctx, ds, trainer, metric, opts...)
					}
					return model_selection.CrossValidate(ctx, ds, trainer, metric, opts...)
				}

				out := cmd.OutOrStdout()
				if !grid {
					s, err := score(cmd.Context(), param.C)
					if err != nil {
						return err
					}
					fmt.Fprintf(out, "Cross Validation %s = %g\n", metric, s)
					return nil
				}

				search := model_selection.GridSearch{
					Candidates: g.cfg.Grid(),
					Minimize:   !metric.GreaterIsBetter(),
				}
				res, err := search.Run(cmd.Context(), score)
				if err != nil {
					return err
				}
				for i, c := range res.Values {
					fmt.Fprintf(out, "log2c=%g C=%g %s=%g\n", math.Log2(c), c, metric, res.Scores[i])
				}
				fmt.Fprintf(out, "Best cross validation %s %g at C %g\n", metric, res.BestScore, res.BestValue)
				return nil
			})
		},
	}

	tf.register(cmd, true)
	cmd.Flags().StringVar(&metricName, "metric", "", "evaluation metric (default from config)")
	cmd.Flags().BoolVar(&grid, "grid", false, "search C over 2^log2_c_start .. 2^log2_c_end")
	return cmd
}

// cvMetric resolves the metric for solver: an explicit name wins, otherwise
// the configured classification or regression default applies.
func cvMetric(g *globals, solver linear.SolverType, name string) (metrics.Metric, error) {
	if name != "" {
		m, err := metrics.ParseMetric(name)
		if err != nil {
			return 0, err
		}
		if m.IsRegression() != solver.IsRegression() {
			return 0, metricMismatch(m, solver)
		}
		return m, nil
	}
	if solver.IsRegression() {
		return g.cfg.RegressionMetricValue()
	}
	return g.cfg.ClassificationMetricValue()
}
