// Package report writes run summaries as JSON and selection curves as PNG.
package report

import (
	"io"
	"math"
	"os"
	"time"

	"github.com/goccy/go-json"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"

	"github.com/YuminosukeSato/linbag/ensemble"
	"github.com/YuminosukeSato/linbag/neighbors"
	"github.com/YuminosukeSato/linbag/pkg/errors"
)

// BaggingReport summarizes one bagging run.
type BaggingReport struct {
	Dataset     string            `json:"dataset"`
	ModelFile   string            `json:"model_file"`
	Metric      string            `json:"metric"`
	Folds       int               `json:"folds"`
	Fraction    float64           `json:"bootstrap_fraction"`
	Members     []ensemble.Member `json:"members"`
	GeneratedAt time.Time         `json:"generated_at"`
}

// KNNReport summarizes a k sweep and the final test accuracy.
type KNNReport struct {
	Dataset      string               `json:"dataset"`
	TestFile     string               `json:"test_file,omitempty"`
	Selection    *neighbors.Selection `json:"selection"`
	TestAccuracy float64              `json:"test_accuracy"`
	GeneratedAt  time.Time            `json:"generated_at"`
}

// WriteJSON writes v as indented JSON.
func WriteJSON(w io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return errors.Wrap(err, "encode report")
	}
	data = append(data, '\n')
	_, err = w.Write(data)
	return err
}

// SaveJSON writes v as indented JSON to path.
func SaveJSON(path string, v any) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "can't create report file %s", path)
	}
	if err := WriteJSON(f, v); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// PlotGridSearch draws one line per member: cross-validated score against log2(C).
func PlotGridSearch(path string, members []ensemble.Member, metric string) error {
	if len(members) == 0 {
		return errors.NewValueError("PlotGridSearch", "no members to plot")
	}
	p := plot.New()
	p.Title.Text = "Grid search"
	p.X.Label.Text = "log2(C)"
	p.Y.Label.Text = metric

	var lines []any
	for _, m := range members {
		if m.Search == nil {
			continue
		}
		pts := make(plotter.XYs, len(m.Search.Values))
		for i, c := range m.Search.Values {
			pts[i].X = math.Log2(c)
			pts[i].Y = m.Search.Scores[i]
		}
		lines = append(lines, m.SolverName, pts)
	}
	if err := plotutil.AddLinePoints(p, lines...); err != nil {
		return errors.Wrap(err, "plot grid search")
	}
	return save(p, path)
}

// PlotKSelection draws the cross-validated log-loss and accuracy against k.
func PlotKSelection(path string, sel *neighbors.Selection) error {
	if sel == nil || len(sel.Scores) == 0 {
		return errors.NewValueError("PlotKSelection", "no scores to plot")
	}
	p := plot.New()
	p.Title.Text = "k selection"
	p.X.Label.Text = "k"
	p.Y.Label.Text = "score"

	ll := make(plotter.XYs, len(sel.Scores))
	acc := make(plotter.XYs, len(sel.Scores))
	for i, s := range sel.Scores {
		ll[i].X, ll[i].Y = float64(s.K), s.LogLoss
		acc[i].X, acc[i].Y = float64(s.K), s.Accuracy
	}
	if err := plotutil.AddLinePoints(p, "logloss", ll, "accuracy", acc); err != nil {
		return errors.Wrap(err, "plot k selection")
	}
	return save(p, path)
}

func save(p *plot.Plot, path string) error {
	if err := p.Save(8*vg.Inch, 4*vg.Inch, path); err != nil {
		return errors.Wrapf(err, "can't save plot to %s", path)
	}
	return nil
}
