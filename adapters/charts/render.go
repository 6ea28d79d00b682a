// Package charts renders dashboard comparisons as SVG box plots and histograms.
package charts

import (
	"fmt"
	"io"
	"math"
	"strconv"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"absentee/internal/dashboard"
	"absentee/internal/errors"
)

const (
	defaultWidth  = 800
	defaultHeight = 480

	// boxHalfWidth is half the box width in x units; segments sit at x = 1, 2, ...
	boxHalfWidth = 0.25
	capHalfWidth = 0.1
)

var palette = []drawing.Color{chart.ColorBlue, chart.ColorOrange, chart.ColorGreen, chart.ColorRed}

// Renderer draws the four dashboard charts
type Renderer struct {
	Width  int
	Height int
}

// NewRenderer creates a renderer with the default canvas size
func NewRenderer() *Renderer {
	return &Renderer{Width: defaultWidth, Height: defaultHeight}
}

// Render writes the named chart of d as SVG. Unknown names are NOT_FOUND.
func (r *Renderer) Render(w io.Writer, name string, d *dashboard.Dashboard) error {
	switch name {
	case dashboard.ChartBoxSex:
		return r.BoxPlot(w, d.SexComparison)
	case dashboard.ChartHistSex:
		return r.Histogram(w, d.SexComparison)
	case dashboard.ChartBoxAge:
		return r.BoxPlot(w, d.AgeComparison)
	case dashboard.ChartHistAge:
		return r.Histogram(w, d.AgeComparison)
	default:
		return errors.NotFound(fmt.Sprintf("chart %q", name))
	}
}

// BoxPlot draws one box per segment: the Q1-Q3 box, the median, whiskers with caps and outlier dots
func (r *Renderer) BoxPlot(w io.Writer, cmp dashboard.Comparison) error {
	var series []chart.Series
	ticks := make([]chart.Tick, len(cmp.Segments))
	lo, hi := math.Inf(1), math.Inf(-1)

	for i, seg := range cmp.Segments {
		x := float64(i + 1)
		ticks[i] = chart.Tick{Value: x, Label: fmt.Sprintf("%s (n=%d)", seg.Label, seg.Count)}
		if seg.Box == nil {
			continue
		}
		b := seg.Box
		lo, hi = math.Min(lo, b.Min), math.Max(hi, b.Max)
		st := lineStyle(palette[i%len(palette)])

		series = append(series,
			line(seg.Label,
				[]float64{x - boxHalfWidth, x + boxHalfWidth, x + boxHalfWidth, x - boxHalfWidth, x - boxHalfWidth},
				[]float64{b.Q1, b.Q1, b.Q3, b.Q3, b.Q1}, st),
			line(seg.Label+" median", []float64{x - boxHalfWidth, x + boxHalfWidth}, []float64{b.Median, b.Median}, boldStyle(palette[i%len(palette)])),
			line(seg.Label+" lower whisker", []float64{x, x}, []float64{b.LowerWhisker, b.Q1}, st),
			line(seg.Label+" upper whisker", []float64{x, x}, []float64{b.Q3, b.UpperWhisker}, st),
			line(seg.Label+" lower cap", []float64{x - capHalfWidth, x + capHalfWidth}, []float64{b.LowerWhisker, b.LowerWhisker}, st),
			line(seg.Label+" upper cap", []float64{x - capHalfWidth, x + capHalfWidth}, []float64{b.UpperWhisker, b.UpperWhisker}, st),
		)
		if len(b.Outliers) > 0 {
			xs := make([]float64, len(b.Outliers))
			for j := range xs {
				xs[j] = x
			}
			series = append(series, chart.ContinuousSeries{
				Name:    seg.Label + " outliers",
				XValues: xs,
				YValues: b.Outliers,
				Style:   pointStyle(palette[i%len(palette)]),
			})
		}
	}

	yRange := paddedRange(lo, hi)
	if len(series) == 0 {
		series = append(series, placeholder(float64(len(cmp.Segments)+1)/2, yRange))
	}

	ch := chart.Chart{
		Title:      cmp.Title,
		Width:      r.Width,
		Height:     r.Height,
		Background: chart.Style{Padding: chart.Box{Top: 40, Left: 16, Right: 16, Bottom: 16}},
		XAxis: chart.XAxis{
			Name:  cmp.GroupLabel,
			Range: &chart.ContinuousRange{Min: 0.5, Max: float64(len(cmp.Segments)) + 0.5},
			Ticks: ticks,
		},
		YAxis: chart.YAxis{
			Name:  "Sick days",
			Range: yRange,
		},
		Series: series,
	}
	return render(w, &ch)
}

// Histogram draws side-by-side bars per bin for every segment on the shared bin edges
func (r *Renderer) Histogram(w io.Writer, cmp dashboard.Comparison) error {
	edges := cmp.BinEdges
	var series []chart.Series
	peak := 0

	if len(edges) >= 2 && len(cmp.Segments) > 0 {
		slots := float64(len(cmp.Segments))
		for i, seg := range cmp.Segments {
			var xs, ys []float64
			for k, count := range seg.Frequency {
				width := (edges[k+1] - edges[k]) / slots
				left := edges[k] + float64(i)*width
				right := left + width
				h := float64(count)
				xs = append(xs, left, left, right, right)
				ys = append(ys, 0, h, h, 0)
				peak = max(peak, count)
			}
			if len(xs) == 0 {
				continue
			}
			series = append(series, chart.ContinuousSeries{
				Name:    fmt.Sprintf("%s (n=%d)", seg.Label, seg.Count),
				XValues: xs,
				YValues: ys,
				Style:   barStyle(palette[i%len(palette)]),
			})
		}
	}

	xRange := &chart.ContinuousRange{Min: 0, Max: 1}
	var ticks []chart.Tick
	if len(edges) >= 2 {
		xRange = &chart.ContinuousRange{Min: edges[0], Max: edges[len(edges)-1]}
		for _, e := range edges {
			ticks = append(ticks, chart.Tick{Value: e, Label: strconv.FormatFloat(e, 'f', -1, 64)})
		}
	}
	yRange := &chart.ContinuousRange{Min: 0, Max: math.Max(1, math.Ceil(float64(peak)*1.1))}

	empty := len(series) == 0
	if empty {
		series = append(series, placeholder((xRange.Min+xRange.Max)/2, yRange))
	}

	ch := chart.Chart{
		Title:      cmp.Title,
		Width:      r.Width,
		Height:     r.Height,
		Background: chart.Style{Padding: chart.Box{Top: 40, Left: 16, Right: 16, Bottom: 16}},
		XAxis: chart.XAxis{
			Name:  "Sick days",
			Range: xRange,
			Ticks: ticks,
		},
		YAxis: chart.YAxis{
			Name:  "Frequency",
			Range: yRange,
		},
		Series: series,
	}
	if !empty {
		ch.Elements = []chart.Renderable{chart.Legend(&ch)}
	}
	return render(w, &ch)
}

func render(w io.Writer, ch *chart.Chart) error {
	if err := ch.Render(chart.SVG, w); err != nil {
		return errors.Wrapf(err, "failed to render chart %q", ch.Title)
	}
	return nil
}

func line(name string, xs, ys []float64, st chart.Style) chart.ContinuousSeries {
	return chart.ContinuousSeries{Name: name, XValues: xs, YValues: ys, Style: st}
}

func lineStyle(col drawing.Color) chart.Style {
	return chart.Style{StrokeColor: col, StrokeWidth: 1.5}
}

func boldStyle(col drawing.Color) chart.Style {
	return chart.Style{StrokeColor: col, StrokeWidth: 3}
}

func barStyle(col drawing.Color) chart.Style {
	return chart.Style{StrokeColor: col, StrokeWidth: 1, FillColor: col.WithAlpha(128)}
}

// pointStyle renders points only
func pointStyle(col drawing.Color) chart.Style {
	return chart.Style{StrokeColor: chart.ColorTransparent, StrokeWidth: 0, DotWidth: 4, DotColor: col}
}

// placeholder keeps axes and title on a chart whose segments are all empty
func placeholder(x float64, yRange *chart.ContinuousRange) chart.ContinuousSeries {
	y := (yRange.Min + yRange.Max) / 2
	return chart.ContinuousSeries{
		Name:    "no data",
		XValues: []float64{x},
		YValues: []float64{y},
		Style:   chart.Style{StrokeColor: chart.ColorTransparent, DotColor: chart.ColorTransparent},
	}
}

// paddedRange widens [lo, hi] by one unit each side so a constant segment still has height
func paddedRange(lo, hi float64) *chart.ContinuousRange {
	if math.IsInf(lo, 1) {
		return &chart.ContinuousRange{Min: 0, Max: 1}
	}
	return &chart.ContinuousRange{Min: lo - 1, Max: hi + 1}
}
