// Package report renders forecast results as a PDF chart and a text summary.
package report

import (
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-pdf/fpdf"

	"PriceForecast/internal/model"
)

// ErrNothingToPlot is returned when a prediction carries no actual series.
var ErrNothingToPlot = errors.New("nothing to plot")

type rgb struct{ r, g, b int }

var (
	actualColor = rgb{31, 119, 180}
	seriesStyle = map[string]struct {
		label string
		color rgb
	}{
		"lstm":   {"LSTM", rgb{214, 39, 40}},
		"conv1d": {"Conv1D", rgb{0, 0, 0}},
		"gru":    {"GRU", rgb{44, 160, 44}},
	}
	otherColor = rgb{127, 127, 127}
)

// plot area in mm on a landscape A4 page
const (
	plotLeft   = 25.0
	plotTop    = 25.0
	plotRight  = 270.0
	plotBottom = 180.0
	yTicks     = 6
	xTicks     = 8
)

// WriteChart renders the chart to a PDF file, creating its directory.
func WriteChart(path, company string, pred *model.Prediction) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create chart dir: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create chart: %w", err)
	}
	if err := RenderChart(f, company, pred); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// RenderChart draws the actual close as a dashed line over its full range
// and every forecast over its test dates.
func RenderChart(w io.Writer, company string, pred *model.Prediction) error {
	if pred == nil || len(pred.Actual) == 0 {
		return ErrNothingToPlot
	}

	t0, t1 := pred.Actual[0].Date, pred.Actual[len(pred.Actual)-1].Date
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, p := range pred.Actual {
		lo, hi = math.Min(lo, p.Close), math.Max(hi, p.Close)
	}
	for _, f := range pred.Forecasts {
		for i, v := range f.Values {
			if i >= len(pred.Dates) || math.IsNaN(v) || math.IsInf(v, 0) {
				continue
			}
			lo, hi = math.Min(lo, v), math.Max(hi, v)
		}
	}
	for _, d := range pred.Dates {
		if d.Before(t0) {
			t0 = d
		}
		if d.After(t1) {
			t1 = d
		}
	}
	pad := (hi - lo) * 0.05
	if pad == 0 {
		pad = math.Max(math.Abs(hi)*0.05, 1)
	}
	ax := axes{t0: t0, t1: t1, lo: lo - pad, hi: hi + pad}

	pdf := fpdf.New("L", "mm", "A4", "")
	pdf.SetMargins(10, 10, 10)
	pdf.SetAutoPageBreak(false, 0)
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 14)
	pdf.Text(plotLeft, 15, fmt.Sprintf("%s close price forecast", company))
	drawAxes(pdf, ax)

	actual := make([]point, len(pred.Actual))
	for i, p := range pred.Actual {
		actual[i] = point{p.Date, p.Close}
	}
	pdf.SetDashPattern([]float64{2, 1}, 0)
	drawSeries(pdf, ax, actual, actualColor)
	pdf.SetDashPattern([]float64{}, 0)

	legend := []legendEntry{{"Actual", actualColor, true}}
	for _, f := range pred.Forecasts {
		label, color := styleFor(f.Model)
		pts := make([]point, 0, len(f.Values))
		for i, v := range f.Values {
			if i < len(pred.Dates) {
				pts = append(pts, point{pred.Dates[i], v})
			}
		}
		drawSeries(pdf, ax, pts, color)
		legend = append(legend, legendEntry{label, color, false})
	}
	drawLegend(pdf, legend)

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("render chart: %w", err)
	}
	return nil
}

type point struct {
	date  time.Time
	value float64
}

type axes struct {
	t0, t1 time.Time
	lo, hi float64
}

func (a axes) x(t time.Time) float64 {
	span := a.t1.Sub(a.t0).Seconds()
	if span <= 0 {
		return (plotLeft + plotRight) / 2
	}
	return plotLeft + (plotRight-plotLeft)*t.Sub(a.t0).Seconds()/span
}

func (a axes) y(v float64) float64 {
	return plotBottom - (plotBottom-plotTop)*(v-a.lo)/(a.hi-a.lo)
}

func styleFor(name string) (string, rgb) {
	if s, ok := seriesStyle[name]; ok {
		return s.label, s.color
	}
	return strings.ToUpper(name), otherColor
}

func drawAxes(pdf *fpdf.Fpdf, ax axes) {
	pdf.SetDrawColor(0, 0, 0)
	pdf.SetLineWidth(0.3)
	pdf.Line(plotLeft, plotBottom, plotRight, plotBottom)
	pdf.Line(plotLeft, plotTop, plotLeft, plotBottom)

	pdf.SetFont("Arial", "", 8)
	pdf.SetLineWidth(0.1)
	for i := 0; i <= yTicks; i++ {
		v := ax.lo + (ax.hi-ax.lo)*float64(i)/yTicks
		y := ax.y(v)
		pdf.SetDrawColor(220, 220, 220)
		pdf.Line(plotLeft, y, plotRight, y)
		label := fmt.Sprintf("%.2f", v)
		pdf.Text(plotLeft-pdf.GetStringWidth(label)-2, y+1, label)
	}
	for i := 0; i <= xTicks; i++ {
		t := ax.t0.Add(time.Duration(float64(ax.t1.Sub(ax.t0)) * float64(i) / xTicks))
		x := ax.x(t)
		pdf.SetDrawColor(0, 0, 0)
		pdf.Line(x, plotBottom, x, plotBottom+1.5)
		label := t.Format("2006-01-02")
		pdf.Text(x-pdf.GetStringWidth(label)/2, plotBottom+5, label)
	}

	pdf.SetFont("Arial", "", 10)
	pdf.Text((plotLeft+plotRight)/2-pdf.GetStringWidth("Time")/2, plotBottom+12, "Time")
	yLabelX, yLabelY := 10.0, (plotTop+plotBottom)/2
	pdf.TransformBegin()
	pdf.TransformRotate(90, yLabelX, yLabelY)
	pdf.Text(yLabelX, yLabelY, "Close")
	pdf.TransformEnd()
}

func drawSeries(pdf *fpdf.Fpdf, ax axes, pts []point, c rgb) {
	pdf.SetDrawColor(c.r, c.g, c.b)
	pdf.SetLineWidth(0.35)
	started := false
	for _, p := range pts {
		if math.IsNaN(p.value) || math.IsInf(p.value, 0) {
			started = false
			continue
		}
		x, y := ax.x(p.date), ax.y(p.value)
		if !started {
			pdf.MoveTo(x, y)
			started = true
			continue
		}
		pdf.LineTo(x, y)
	}
	if started {
		pdf.DrawPath("D")
	}
}

type legendEntry struct {
	label  string
	color  rgb
	dashed bool
}

func drawLegend(pdf *fpdf.Fpdf, entries []legendEntry) {
	pdf.SetFont("Arial", "", 9)
	x, y := plotLeft+5, plotTop+5
	for _, e := range entries {
		pdf.SetDrawColor(e.color.r, e.color.g, e.color.b)
		pdf.SetLineWidth(0.5)
		if e.dashed {
			pdf.SetDashPattern([]float64{2, 1}, 0)
		}
		pdf.Line(x, y, x+8, y)
		pdf.SetDashPattern([]float64{}, 0)
		pdf.Text(x+10, y+1, e.label)
		y += 5
	}
}
