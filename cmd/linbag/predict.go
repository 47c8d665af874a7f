package main

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/YuminosukeSato/linbag/core/sparse"
	"github.com/YuminosukeSato/linbag/linear"
	"github.com/YuminosukeSato/linbag/metrics"
	"github.com/YuminosukeSato/linbag/pkg/errors"
	"github.com/YuminosukeSato/linbag/pkg/log"
)

// Output options of the predict command.
const (
	outputLabel       = 0
	outputDecision    = 1
	outputProbability = 2
)

func predictCmd(g *globals) *cobra.Command {
	var (
		output     int
		metricName string
	)

	cmd := &cobra.Command{
		Use:   "predict TEST_FILE MODEL_FILE OUTPUT_FILE",
		Short: "score a test set with a saved model and report a metric",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run("predict", func() error {
				if output < outputLabel || output > outputProbability {
					return errors.NewValidationError("output", "must be 0, 1 or 2", output)
				}
				m, err := linear.LoadModel(args[1])
				if err != nil {
					return err
				}
				if !m.IsRegression() && len(m.Labels()) != 2 {
					return errors.NewConfigurationError("predict", errors.ErrNotBinary.Error())
				}
				if output == outputProbability && !m.Solver.IsLogistic() {
					return errors.NewConfigurationError("predict", "probability output is only supported for logistic regression")
				}
				metric, err := cvMetric(g, m.Solver, metricName)
				if err != nil {
					return err
				}

				test, err := readData(args[0], sparse.ReadOptions{
					Bias:     m.Bias,
					MaxIndex: m.NrFeature,
				})
				if err != nil {
					return err
				}

				f, err := os.Create(args[2])
				if err != nil {
					return errors.Wrapf(err, "can't open output file %s", args[2])
				}
				w := bufio.NewWriter(f)
				dec, err := writePredictions(w, m, test, output)
				if err == nil {
					err = w.Flush()
				}
				if cerr := f.Close(); err == nil {
					err = cerr
				}
				if err != nil {
					return err
				}

				score, err := metric.Score(dec, scoringTargets(m, test))
				if err != nil {
					return err
				}
				log.GetLogger().Info("predictions written",
					log.OperationKey, log.OperationPredict,
					log.PhaseKey, log.PhaseInference,
					log.ModelNameKey, "linear",
					log.ModelPathKey, args[1],
					log.SamplesKey, test.Len(),
					log.MetricKey, metric.String(),
					log.ScoreKey, score,
				)
				fmt.Fprintf(cmd.OutOrStdout(), "%s = %g\n", metric, score)
				return nil
			})
		},
	}

	cmd.Flags().IntVarP(&output, "output", "o", outputLabel, "0: labels, 1: decision values, 2: probabilities (logistic only)")
	cmd.Flags().StringVar(&metricName, "metric", "", "evaluation metric (default from config)")
	return cmd
}

// writePredictions writes one line per test instance and returns the decision
// values used for scoring.
func writePredictions(w io.Writer, m *linear.Model, test *sparse.Dataset, output int) ([]float64, error) {
	labels := m.Labels()
	if output == outputProbability {
		if _, err := fmt.Fprint(w, "labels"); err != nil {
			return nil, err
		}
		for _, l := range labels {
			fmt.Fprintf(w, " %g", l)
		}
		fmt.Fprintln(w)
	}

	dec := make([]float64, test.Len())
	for i := 0; i < test.Len(); i++ {
		x := test.At(i).Features
		dec[i] = m.DecisionValue(x)

		var err error
		switch output {
		case outputDecision:
			_, err = fmt.Fprintf(w, "%g\n", dec[i])
		case outputProbability:
			label, probs, perr := m.PredictProbability(x)
			if perr != nil {
				return nil, perr
			}
			_, err = fmt.Fprintf(w, "%g", label)
			for _, p := range probs {
				fmt.Fprintf(w, " %g", p)
			}
			fmt.Fprintln(w)
		default:
			_, err = fmt.Fprintf(w, "%g\n", m.PredictLabel(x))
		}
		if err != nil {
			return nil, errors.Wrap(err, "write prediction")
		}
	}
	return dec, nil
}

// scoringTargets returns raw targets for regression models and ±1 against the
// first model label otherwise.
func scoringTargets(m *linear.Model, test *sparse.Dataset) []float64 {
	targets := test.Labels()
	if m.IsRegression() {
		return targets
	}
	first := m.Labels()[0]
	ty := make([]float64, len(targets))
	for i, t := range targets {
		if t == first {
			ty[i] = 1
		} else {
			ty[i] = -1
		}
	}
	return ty
}

func metricMismatch(m metrics.Metric, solver linear.SolverType) error {
	return errors.NewConfigurationError("metric",
		fmt.Sprintf("metric %s does not apply to solver %s", m, solver))
}
