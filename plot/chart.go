package plot

import (
	"bytes"
	"errors"
	"image"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

// ErrNoData is returned when a panel has nothing to draw.
var ErrNoData = errors.New("plot: no data")

// Line is one series of a line panel.
type Line struct {
	Name string
	X, Y []float64
	// Scatter draws dots instead of a line.
	Scatter bool
	// Color overrides the cycle color when its alpha is non-zero.
	Color drawing.Color
	Width float64
}

// LinePanel draws lines and scatter series with shared axes.
type LinePanel struct {
	Title          string
	XLabel, YLabel string
	// YRange fixes the y axis when Max > Min.
	YRange [2]float64
	Legend bool
	Lines  []Line
}

// Render implements Panel.
func (p *LinePanel) Render(width, height int, label string) (image.Image, error) {
	if len(p.Lines) == 0 {
		return nil, ErrNoData
	}

	series := make([]chart.Series, len(p.Lines))
	for i, l := range p.Lines {
		series[i] = lineSeries(l, i)
	}

	graph := chart.Chart{
		Title:  titled(label, p.Title),
		Width:  width,
		Height: height,
		Background: chart.Style{
			Padding: chart.Box{Top: 40, Left: 10, Right: 10, Bottom: 10},
		},
		XAxis:  chart.XAxis{Name: p.XLabel},
		YAxis:  chart.YAxis{Name: p.YLabel},
		Series: series,
	}

	if p.YRange[1] > p.YRange[0] {
		graph.YAxis.Range = &chart.ContinuousRange{Min: p.YRange[0], Max: p.YRange[1]}
	}

	if p.Legend {
		graph.Elements = []chart.Renderable{chart.Legend(&graph)}
	}

	return renderChart(graph)
}

func lineSeries(l Line, i int) chart.Series {
	c := l.Color
	if c.A == 0 {
		c = CycleColor(i)
	}

	width := l.Width
	if width == 0 {
		width = 1.5
	}

	style := chart.Style{StrokeColor: c, StrokeWidth: width}
	if l.Scatter {
		style = chart.Style{StrokeWidth: chart.Disabled, DotWidth: 3, DotColor: c}
	}

	return chart.ContinuousSeries{Name: l.Name, Style: style, XValues: l.X, YValues: l.Y}
}

func renderChart(graph chart.Chart) (image.Image, error) {
	var buf bytes.Buffer
	if err := graph.Render(chart.PNG, &buf); err != nil {
		return nil, err
	}

	return decodePNG(&buf)
}

// BarPanel draws one bar per value.
type BarPanel struct {
	Title  string
	Labels []string
	Values []float64
	YLabel string
}

// Render implements Panel.
func (p *BarPanel) Render(width, height int, label string) (image.Image, error) {
	if len(p.Values) == 0 {
		return nil, ErrNoData
	}

	bars := make([]chart.Value, len(p.Values))
	for i, v := range p.Values {
		name := ""
		if i < len(p.Labels) {
			name = p.Labels[i]
		}

		bars[i] = chart.Value{
			Value: v,
			Label: name,
			Style: chart.Style{FillColor: CycleColor(0), StrokeColor: CycleColor(0)},
		}
	}

	barWidth := max(2, (width-80)/(2*len(bars)))

	graph := chart.BarChart{
		Title:  titled(label, p.Title),
		Width:  width,
		Height: height,
		Background: chart.Style{
			Padding: chart.Box{Top: 40, Left: 10, Right: 10, Bottom: 10},
		},
		BarWidth: barWidth,
		YAxis:    chart.YAxis{Name: p.YLabel},
		Bars:     bars,
	}

	var buf bytes.Buffer
	if err := graph.Render(chart.PNG, &buf); err != nil {
		return nil, err
	}

	return decodePNG(&buf)
}
