package render

import (
	"time"

	chart "github.com/wcharczuk/go-chart/v2"

	"github.com/chrissnell/glucosereport/internal/types"
)

// xOf places a time on a continuous x axis.
func xOf(t time.Time) float64 {
	return float64(t.Unix())
}

// points adapts one run of hourly points to chart.ValuesProvider.
type points []types.HourlyPoint

func (p points) Len() int { return len(p) }

func (p points) GetValues(i int) (float64, float64) {
	return xOf(p[i].Time), p[i].Mean
}

// trendSeries draws each run of consecutive hours as its own polyline, so a
// missing hour shows up as a break instead of a straight line across it.
type trendSeries struct {
	Name     string
	Style    chart.Style
	Segments [][]types.HourlyPoint
}

func (ts trendSeries) GetName() string { return ts.Name }

func (ts trendSeries) GetYAxis() chart.YAxisType { return chart.YAxisPrimary }

func (ts trendSeries) GetStyle() chart.Style { return ts.Style }

func (ts trendSeries) Validate() error { return nil }

func (ts trendSeries) Render(r chart.Renderer, canvasBox chart.Box, xrange, yrange chart.Range, defaults chart.Style) {
	style := ts.Style.InheritFrom(defaults)
	for _, seg := range ts.Segments {
		chart.Draw.LineSeries(r, canvasBox, xrange, yrange, style, points(seg))
	}
}

// rangeBars draws a vertical min-max bar for every day.
type rangeBars struct {
	Name  string
	Style chart.Style
	Days  []types.DailySummary
}

func (rb rangeBars) GetName() string { return rb.Name }

func (rb rangeBars) GetYAxis() chart.YAxisType { return chart.YAxisPrimary }

func (rb rangeBars) GetStyle() chart.Style { return rb.Style }

func (rb rangeBars) Validate() error { return nil }

func (rb rangeBars) Render(r chart.Renderer, canvasBox chart.Box, xrange, yrange chart.Range, defaults chart.Style) {
	style := rb.Style.InheritFrom(defaults)
	if !style.ShouldDrawStroke() {
		return
	}
	style.GetStrokeOptions().WriteDrawingOptionsToRenderer(r)

	for _, d := range rb.Days {
		x := canvasBox.Left + xrange.Translate(xOf(d.Date))
		r.MoveTo(x, canvasBox.Bottom-yrange.Translate(d.Min))
		r.LineTo(x, canvasBox.Bottom-yrange.Translate(d.Max))
		r.Stroke()
	}
}
