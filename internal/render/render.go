// Package render draws the two-panel glucose report as a PNG.
package render

import (
	"bytes"
	"fmt"
	"image"
	"image/draw"
	"image/png"
	"io"
	"math"
	"time"

	chart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/chrissnell/glucosereport/internal/aggregate"
	"github.com/chrissnell/glucosereport/internal/constants"
	"github.com/chrissnell/glucosereport/internal/types"
)

// Renderer turns a summary into an image file at path.
type Renderer interface {
	Render(s *types.Summary, path string) error
}

// PNGRenderer renders with go-chart. The image is square, constants.ReportInches
// on a side at DPI dots per inch; the trend panel takes the top two thirds.
type PNGRenderer struct {
	DPI int
}

// NewPNGRenderer returns a renderer at the given resolution, falling back to the default DPI.
func NewPNGRenderer(dpi int) *PNGRenderer {
	if dpi <= 0 {
		dpi = constants.DefaultDPI
	}
	return &PNGRenderer{DPI: dpi}
}

// Size returns the pixel dimensions of the full report and of the trend panel.
func (p *PNGRenderer) Size() (width, height, trendHeight int) {
	side := constants.ReportInches * p.DPI
	return side, side, side * 2 / 3
}

// Render draws both panels and writes the PNG atomically; any failure leaves
// no file at path and is returned as a *types.RenderError.
func (p *PNGRenderer) Render(s *types.Summary, path string) error {
	if s == nil || len(s.Daily) == 0 {
		return &types.RenderError{Path: path, Err: fmt.Errorf("nothing to render")}
	}

	width, height, trendHeight := p.Size()

	top, err := rasterize(p.trendChart(s, width, trendHeight))
	if err != nil {
		return &types.RenderError{Path: path, Err: fmt.Errorf("trend panel: %w", err)}
	}
	bottom, err := rasterize(p.dailyChart(s, width, height-trendHeight))
	if err != nil {
		return &types.RenderError{Path: path, Err: fmt.Errorf("daily panel: %w", err)}
	}

	canvas := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(canvas, image.Rect(0, 0, width, trendHeight), top, top.Bounds().Min, draw.Src)
	draw.Draw(canvas, image.Rect(0, trendHeight, width, height), bottom, bottom.Bounds().Min, draw.Src)

	err = writeAtomic(path, func(w io.Writer) error {
		return png.Encode(w, canvas)
	})
	if err != nil {
		return &types.RenderError{Path: path, Err: err}
	}
	return nil
}

func rasterize(c chart.Chart) (image.Image, error) {
	var buf bytes.Buffer
	if err := c.Render(chart.PNG, &buf); err != nil {
		return nil, err
	}
	return png.Decode(&buf)
}

var (
	lowZone     = drawing.Color{R: 0xFF, G: 0xCC, B: 0xCC, A: 0xFF}
	targetZone  = drawing.Color{R: 0xE8, G: 0xF8, B: 0xF5, A: 0xFF}
	highZone    = drawing.Color{R: 0xFC, G: 0xF3, B: 0xCF, A: 0xFF}
	trendStroke = drawing.Color{R: 0x29, G: 0x80, B: 0xB9, A: 0xFF}
	avgStroke   = drawing.Color{R: 0x80, G: 0x00, B: 0x80, A: 0xFF}
	gridStroke  = drawing.Color{R: 0x80, G: 0x80, B: 0x80, A: 0x80}
	barStroke   = drawing.Color{R: 0x80, G: 0x80, B: 0x80, A: 0x80}
	maxColor    = drawing.Color{R: 0xE7, G: 0x4C, B: 0x3C, A: 0xFF}
	minColor    = drawing.Color{R: 0x29, G: 0x6F, B: 0xD6, A: 0xFF}
	meanColor   = drawing.Color{R: 0x27, G: 0xAE, B: 0x60, A: 0xFF}
)

// pinTicks brackets ticks with unlabelled ticks at lo and hi. go-chart sizes
// the x range from the ticks when any are given.
func pinTicks(ticks []chart.Tick, lo, hi time.Time) []chart.Tick {
	out := make([]chart.Tick, 0, len(ticks)+2)
	out = append(out, chart.Tick{Value: xOf(lo)})
	out = append(out, ticks...)
	return append(out, chart.Tick{Value: xOf(hi)})
}

func valueFormatter(v interface{}) string {
	if f, ok := v.(float64); ok {
		return fmt.Sprintf("%.1f", f)
	}
	return ""
}

// trendChart is the upper panel: zone bands, the hourly trend and the weekly average.
func (p *PNGRenderer) trendChart(s *types.Summary, width, height int) chart.Chart {
	xMin := s.WindowStart
	xMax := types.Midnight(s.WindowEnd).Add(24*time.Hour - time.Second)

	yMin, yMax := 3.0, 11.5
	for _, h := range s.Hourly {
		yMin = math.Min(yMin, math.Floor(h.Mean-0.5))
		yMax = math.Max(yMax, math.Ceil(h.Mean+0.5))
	}
	yMin = math.Max(yMin, 0)

	band := func(name string, top float64, fill drawing.Color) chart.Series {
		top = math.Min(top, yMax)
		return chart.ContinuousSeries{
			Name: name,
			Style: chart.Style{
				StrokeWidth: 1,
				StrokeColor: fill,
				FillColor:   fill,
			},
			XValues: []float64{xOf(xMin), xOf(xMax)},
			YValues: []float64{top, top},
		}
	}

	th := s.Thresholds
	unit := s.DisplayUnit
	series := []chart.Series{
		band(fmt.Sprintf("High (> %.1f)", th.High), th.Ceiling, highZone),
		band(fmt.Sprintf("Target (%.1f - %.1f)", th.Low, th.High), th.High, targetZone),
		band(fmt.Sprintf("Low (< %.1f)", th.Low), th.Low, lowZone),
		trendSeries{
			Name: "Hourly Avg Glucose",
			Style: chart.Style{
				StrokeWidth: 3,
				StrokeColor: trendStroke,
				DotWidth:    2,
				DotColor:    trendStroke,
			},
			Segments: aggregate.Segments(s.Hourly),
		},
		chart.ContinuousSeries{
			Name: fmt.Sprintf("Weekly Avg (%.2f)", s.WeeklyAvg),
			Style: chart.Style{
				StrokeWidth:     2,
				StrokeColor:     avgStroke,
				StrokeDashArray: []float64{8, 6},
			},
			XValues: []float64{xOf(xMin), xOf(xMax)},
			YValues: []float64{s.WeeklyAvg, s.WeeklyAvg},
		},
		chart.AnnotationSeries{
			Style: chart.Style{
				FontColor:   avgStroke,
				StrokeColor: avgStroke,
			},
			Annotations: []chart.Value2{{
				XValue: xOf(s.Hourly[len(s.Hourly)-1].Time),
				YValue: s.WeeklyAvg,
				Label:  fmt.Sprintf("%.2f", s.WeeklyAvg),
			}},
		},
	}

	var ticks []chart.Tick
	var midnights []chart.GridLine
	for day := types.Midnight(xMin); !day.After(xMax); day = day.AddDate(0, 0, 1) {
		midnights = append(midnights, chart.GridLine{Value: xOf(day)})
		six := day.Add(6 * time.Hour)
		if !six.Before(xMin) && !six.After(xMax) {
			ticks = append(ticks, chart.Tick{Value: xOf(six), Label: six.Format("02/01 15:04")})
		}
	}

	graph := chart.Chart{
		Title:  fmt.Sprintf("%d-Day Glucose Trends (Hourly Average)", s.Days),
		Width:  width,
		Height: height,
		DPI:    float64(p.DPI),
		Background: chart.Style{
			Padding: chart.Box{Top: 60, Left: 20, Right: 40, Bottom: 20},
		},
		XAxis: chart.XAxis{
			Range:     &chart.ContinuousRange{Min: xOf(xMin), Max: xOf(xMax)},
			Ticks:     pinTicks(ticks, xMin, xMax),
			GridLines: midnights,
			GridMajorStyle: chart.Style{
				StrokeColor:     gridStroke,
				StrokeWidth:     1,
				StrokeDashArray: []float64{4, 4},
			},
		},
		YAxis: chart.YAxis{
			Name:           fmt.Sprintf("Glucose (%s)", unit),
			Range:          &chart.ContinuousRange{Min: yMin, Max: yMax},
			ValueFormatter: valueFormatter,
		},
		Series: series,
	}
	graph.Elements = []chart.Renderable{chart.Legend(&graph)}
	return graph
}

// dailyChart is the lower panel: per-day min/max range and mean.
func (p *PNGRenderer) dailyChart(s *types.Summary, width, height int) chart.Chart {
	first := s.Daily[0].Date
	last := s.Daily[len(s.Daily)-1].Date
	xMin := first.Add(-12 * time.Hour)
	xMax := last.Add(12 * time.Hour)

	yMin, yMax := 2.0, 12.0
	xs := make([]float64, len(s.Daily))
	mins := make([]float64, len(s.Daily))
	maxs := make([]float64, len(s.Daily))
	means := make([]float64, len(s.Daily))
	var ticks []chart.Tick
	var labels []chart.Value2
	for i, d := range s.Daily {
		xs[i] = xOf(d.Date)
		mins[i], maxs[i], means[i] = d.Min, d.Max, d.Mean
		yMin = math.Min(yMin, math.Floor(d.Min-1))
		yMax = math.Max(yMax, math.Ceil(d.Max+1))

		ticks = append(ticks, chart.Tick{Value: xs[i], Label: d.Date.Format("02/01")})
		labels = append(labels,
			chart.Value2{XValue: xs[i], YValue: d.Max, Label: fmt.Sprintf("%.1f", d.Max)},
			chart.Value2{XValue: xs[i], YValue: d.Min, Label: fmt.Sprintf("%.1f", d.Min)},
			chart.Value2{XValue: xs[i], YValue: d.Mean, Label: fmt.Sprintf("%.1f", d.Mean)},
		)
	}
	yMin = math.Max(yMin, 0)

	marker := func(name string, ys []float64, c drawing.Color, width float64) chart.Series {
		return chart.ContinuousSeries{
			Name: name,
			Style: chart.Style{
				StrokeWidth: chart.Disabled,
				StrokeColor: c,
				DotWidth:    width,
				DotColor:    c,
			},
			XValues: xs,
			YValues: ys,
		}
	}

	graph := chart.Chart{
		Title:  "Daily Summary: Min, Max, and Average",
		Width:  width,
		Height: height,
		DPI:    float64(p.DPI),
		Background: chart.Style{
			Padding: chart.Box{Top: 50, Left: 20, Right: 40, Bottom: 20},
		},
		XAxis: chart.XAxis{
			Range: &chart.ContinuousRange{Min: xOf(xMin), Max: xOf(xMax)},
			Ticks: pinTicks(ticks, xMin, xMax),
		},
		YAxis: chart.YAxis{
			Name:           fmt.Sprintf("Glucose (%s)", s.DisplayUnit),
			Range:          &chart.ContinuousRange{Min: yMin, Max: yMax},
			ValueFormatter: valueFormatter,
		},
		Series: []chart.Series{
			rangeBars{
				Name:  "Range",
				Style: chart.Style{StrokeWidth: 3, StrokeColor: barStroke},
				Days:  s.Daily,
			},
			marker("Max", maxs, maxColor, 6),
			marker("Min", mins, minColor, 6),
			marker("Daily Avg", means, meanColor, 7),
			chart.AnnotationSeries{Annotations: labels},
		},
	}
	graph.Elements = []chart.Renderable{chart.Legend(&graph)}
	return graph
}
