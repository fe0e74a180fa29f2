// Package report renders training results as static plots (gonum/plot) and
// interactive HTML pages (go-echarts).
package report

import (
	"fmt"
	"io"
	"math"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/ezoic/olsfit/pkg/errors"
)

const (
	plotWidth  = 8 * vg.Inch
	plotHeight = 6 * vg.Inch
)

func checkSeries(op string, series ...[]float64) error {
	n := len(series[0])
	if n == 0 {
		return errors.NewValueErrorWrap(op, "no points to draw", errors.ErrEmptyData)
	}
	for _, s := range series[1:] {
		if len(s) != n {
			return errors.NewDimensionError(op, n, len(s), 0)
		}
	}
	return nil
}

func xys(x, y []float64) plotter.XYs {
	pts := make(plotter.XYs, len(x))
	for i := range x {
		pts[i].X = x[i]
		pts[i].Y = y[i]
	}
	return pts
}

// PlotFit draws the training points of a single feature together with the
// fitted regression line and saves the figure to path. The image format
// follows the file extension.
func PlotFit(path string, feature, actual, predicted []float64, title string) error {
	if err := checkSeries("PlotFit", feature, actual, predicted); err != nil {
		return err
	}

	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "feature"
	p.Y.Label.Text = "target"

	scatter, err := plotter.NewScatter(xys(feature, actual))
	if err != nil {
		return errors.Wrap(err, "create scatter")
	}
	p.Add(scatter)
	p.Legend.Add("Data points", scatter)

	// The fitted values of a single feature lie on one line, so its end
	// points are the predictions at the smallest and largest feature.
	lo, hi := floats.MinIdx(feature), floats.MaxIdx(feature)
	line, err := plotter.NewLine(plotter.XYs{
		{X: feature[lo], Y: predicted[lo]},
		{X: feature[hi], Y: predicted[hi]},
	})
	if err != nil {
		return errors.Wrap(err, "create regression line")
	}
	line.Width = vg.Points(2)
	p.Add(line)
	p.Legend.Add("Regression line", line)

	if err := p.Save(plotWidth, plotHeight, path); err != nil {
		return errors.Wrapf(err, "save plot %s", path)
	}
	return nil
}

// PlotResiduals draws predicted against actual values with the identity
// line y = x. Points on the line are predicted exactly.
func PlotResiduals(path string, actual, predicted []float64) error {
	if err := checkSeries("PlotResiduals", actual, predicted); err != nil {
		return err
	}

	p := plot.New()
	p.Title.Text = "Actual vs predicted"
	p.X.Label.Text = "actual"
	p.Y.Label.Text = "predicted"

	scatter, err := plotter.NewScatter(xys(actual, predicted))
	if err != nil {
		return errors.Wrap(err, "create scatter")
	}
	p.Add(scatter)

	lo := math.Min(floats.Min(actual), floats.Min(predicted))
	hi := math.Max(floats.Max(actual), floats.Max(predicted))
	identity, err := plotter.NewLine(plotter.XYs{{X: lo, Y: lo}, {X: hi, Y: hi}})
	if err != nil {
		return errors.Wrap(err, "create identity line")
	}
	identity.Dashes = []vg.Length{vg.Points(4), vg.Points(2)}
	p.Add(identity)
	p.Legend.Add("y = x", identity)

	if err := p.Save(plotWidth, plotHeight, path); err != nil {
		return errors.Wrapf(err, "save plot %s", path)
	}
	return nil
}

// FitLine builds an echarts line chart of actual and predicted values
// indexed by row.
func FitLine(title string, actual, predicted []float64) *charts.Line {
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithTitleOpts(
			opts.Title{
				Title: title,
			},
		),
	)

	rows := make([]string, len(actual))
	lineDataActual := make([]opts.LineData, 0, len(actual))
	lineDataPredicted := make([]opts.LineData, 0, len(predicted))
	for i := range actual {
		rows[i] = fmt.Sprintf("%d", i+1)
		lineDataActual = append(lineDataActual, opts.LineData{Value: actual[i]})
		lineDataPredicted = append(lineDataPredicted, opts.LineData{Value: predicted[i]})
	}

	line.SetXAxis(rows).
		AddSeries("Actual", lineDataActual).
		AddSeries("Predicted", lineDataPredicted)
	return line
}

// WriteHTML renders an HTML page with the FitLine chart to w.
func WriteHTML(w io.Writer, title string, actual, predicted []float64) error {
	if err := checkSeries("WriteHTML", actual, predicted); err != nil {
		return err
	}

	page := components.NewPage()
	page.PageTitle = title
	page.AddCharts(FitLine(title, actual, predicted))
	if err := page.Render(w); err != nil {
		return errors.Wrap(err, "render report")
	}
	return nil
}
