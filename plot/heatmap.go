package plot

import (
	"fmt"
	"image"
	"math"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

// Heatmap rasterises Matrix[row][col] with row 0 at the bottom. X and Y
// give the column and row coordinates for the axes; when nil the indices
// are used.
type Heatmap struct {
	Title          string
	XLabel, YLabel string
	Matrix         [][]float64
	X, Y           []float64
	Cmap           Colormap
	// VMin and VMax bound the color scale. Equal values autoscale to the
	// finite data range.
	VMin, VMax float64
}

// Render implements Panel.
func (h *Heatmap) Render(width, height int, label string) (image.Image, error) {
	rows := len(h.Matrix)
	if rows == 0 || len(h.Matrix[0]) == 0 {
		return nil, ErrNoData
	}

	cols := len(h.Matrix[0])
	for i, r := range h.Matrix {
		if len(r) != cols {
			return nil, fmt.Errorf("plot: heatmap row %d has %d columns, want %d", i, len(r), cols)
		}
	}

	vmin, vmax := h.VMin, h.VMax
	if vmax <= vmin {
		vmin, vmax = finiteRange(h.Matrix)
	}

	x0, x1 := extent(h.X, cols)
	y0, y1 := extent(h.Y, rows)

	graph := chart.Chart{
		Title:  titled(label, h.Title),
		Width:  width,
		Height: height,
		Background: chart.Style{
			Padding: chart.Box{Top: 40, Left: 10, Right: 10, Bottom: 10},
		},
		XAxis: chart.XAxis{Name: h.XLabel, Range: &chart.ContinuousRange{Min: x0, Max: x1}},
		YAxis: chart.YAxis{Name: h.YLabel, Range: &chart.ContinuousRange{Min: y0, Max: y1}},
		Series: []chart.Series{
			chart.ContinuousSeries{
				Style:   chart.Style{StrokeColor: drawing.ColorTransparent},
				XValues: []float64{x0, x1},
				YValues: []float64{y0, y1},
			},
		},
		Elements: []chart.Renderable{h.raster(vmin, vmax)},
	}

	return renderChart(graph)
}

// raster fills the plot area block by block, one block per output pixel
// when the matrix is denser than the canvas.
func (h *Heatmap) raster(vmin, vmax float64) chart.Renderable {
	return func(r chart.Renderer, box chart.Box, _ chart.Style) {
		rows, cols := len(h.Matrix), len(h.Matrix[0])
		w, ht := box.Right-box.Left, box.Bottom-box.Top

		if w <= 0 || ht <= 0 {
			return
		}

		nx, ny := min(cols, w), min(rows, ht)

		for by := range ny {
			top := box.Bottom - (by+1)*ht/ny
			bottom := box.Bottom - by*ht/ny
			row := by * rows / ny

			for bx := range nx {
				left := box.Left + bx*w/nx
				right := box.Left + (bx+1)*w/nx
				col := bx * cols / nx

				c := h.Cmap.At(h.Matrix[row][col], vmin, vmax)
				if c.A == 0 {
					continue
				}

				r.SetFillColor(drawing.Color{R: c.R, G: c.G, B: c.B, A: c.A})
				r.MoveTo(left, top)
				r.LineTo(right, top)
				r.LineTo(right, bottom)
				r.LineTo(left, bottom)
				r.Close()
				r.Fill()
			}
		}
	}
}

func extent(axis []float64, n int) (float64, float64) {
	if len(axis) < 2 {
		return 0, float64(max(n-1, 1))
	}

	lo, hi := axis[0], axis[len(axis)-1]
	if lo > hi {
		lo, hi = hi, lo
	}

	if lo == hi {
		hi = lo + 1
	}

	return lo, hi
}

func finiteRange(m [][]float64) (float64, float64) {
	lo, hi := math.Inf(1), math.Inf(-1)

	for _, r := range m {
		for _, v := range r {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				continue
			}

			lo, hi = min(lo, v), max(hi, v)
		}
	}

	if lo > hi {
		return 0, 1
	}

	if lo == hi {
		hi = lo + 1
	}

	return lo, hi
}
