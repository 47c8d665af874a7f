package metrics

import (
	"strings"

	"github.com/YuminosukeSato/linbag/pkg/errors"
)

// Metric selects one evaluation function. Cross-validation, grid search and
// the predict tool take a Metric value instead of consulting global state.
type Metric int

const (
	MetricLogLoss Metric = iota
	MetricAccuracy
	MetricPrecision
	MetricRecall
	MetricFScore
	MetricBAC
	MetricAUC
	MetricMeanSquaredError
	MetricMeanAbsoluteError
	MetricSquaredCorrelation
)

// Defaults used when nothing is configured.
const (
	DefaultClassification = MetricLogLoss
	DefaultRegression     = MetricMeanSquaredError
)

// ScoreFunc scores predictions against true values.
type ScoreFunc func(predValues, trueValues []float64) (float64, error)

type metricInfo struct {
	name       string
	fn         ScoreFunc
	regression bool
	greater    bool
}

var metricTable = map[Metric]metricInfo{
	MetricLogLoss:            {"logloss", LogLoss, false, true},
	MetricAccuracy:           {"accuracy", Accuracy, false, true},
	MetricPrecision:          {"precision", Precision, false, true},
	MetricRecall:             {"recall", Recall, false, true},
	MetricFScore:             {"fscore", FScore, false, true},
	MetricBAC:                {"bac", BAC, false, true},
	MetricAUC:                {"auc", AUC, false, true},
	MetricMeanSquaredError:   {"mse", MeanSquaredError, true, false},
	MetricMeanAbsoluteError:  {"mae", MeanAbsoluteError, true, false},
	MetricSquaredCorrelation: {"r2", SquaredCorrelation, true, true},
}

// String returns the metric's short name as accepted by ParseMetric.
func (m Metric) String() string {
	if info, ok := metricTable[m]; ok {
		return info.name
	}
	return "unknown"
}

// Score evaluates the metric.
func (m Metric) Score(predValues, trueValues []float64) (float64, error) {
	info, ok := metricTable[m]
	if !ok {
		return 0, errors.NewValidationError("metric", "unknown metric", int(m))
	}
	return info.fn(predValues, trueValues)
}

// IsRegression reports whether the metric compares real-valued targets.
func (m Metric) IsRegression() bool {
	return metricTable[m].regression
}

// GreaterIsBetter reports the optimisation direction of the metric.
func (m Metric) GreaterIsBetter() bool {
	return metricTable[m].greater
}

// ParseMetric looks a metric up by its short name (case-insensitive).
func ParseMetric(name string) (Metric, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for m, info := range metricTable {
		if info.name == name {
			return m, nil
		}
	}
	return 0, errors.NewValidationError("metric", "must be one of "+strings.Join(MetricNames(), ", "), name)
}

// MetricNames lists every metric name in declaration order.
func MetricNames() []string {
	names := make([]string, 0, len(metricTable))
	for m := MetricLogLoss; m <= MetricSquaredCorrelation; m++ {
		names = append(names, metricTable[m].name)
	}
	return names
}
