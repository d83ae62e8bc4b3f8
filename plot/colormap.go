package plot

import (
	"image/color"
	"math"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

// Colormap maps normalised values in [0, 1] to colors. A listed colormap
// picks the nearest entry; a nil list falls back to viridis.
type Colormap struct {
	Name   string
	colors []drawing.Color
}

// At returns the color of v scaled between vmin and vmax. NaN maps to
// transparent.
func (c Colormap) At(v, vmin, vmax float64) color.RGBA {
	if math.IsNaN(v) {
		return color.RGBA{}
	}

	if vmax <= vmin {
		vmax = vmin + 1
	}

	t := min(1, max(0, (v-vmin)/(vmax-vmin)))

	if len(c.colors) == 0 {
		return rgba(chart.Viridis(t, 0, 1))
	}

	i := int(t * float64(len(c.colors)))
	if i == len(c.colors) {
		i--
	}

	return rgba(c.colors[i])
}

// Len is the number of listed colors, 0 for continuous maps.
func (c Colormap) Len() int { return len(c.colors) }

func rgba(d drawing.Color) color.RGBA {
	return color.RGBA{R: d.R, G: d.G, B: d.B, A: d.A}
}

// Viridis is the default continuous map.
func Viridis() Colormap { return Colormap{Name: "viridis"} }

// Dynamic starts with white and steps through red, brown, green, blue and
// purple ramps. Low values stay blank so weak activity reads as
// background.
func Dynamic() Colormap {
	return Colormap{Name: "dynamic", colors: concat(white(12), seasons()...)}
}

// Dynamic2 is Dynamic with a wider white band.
func Dynamic2() Colormap {
	return Colormap{Name: "dynamic2", colors: concat(white(20), seasons()...)}
}

// Dynamic3 is diverging: dark blue to white, then yellow through red to
// purple.
func Dynamic3() Colormap {
	return Colormap{Name: "dynamic3", colors: concat(
		ramp(16, "08306b", "6baed6", "c6dbef"),
		white(20),
		ramp(4, "ffeda0", "fed976", "feb24c", "fd8d3c"),
		ramp(4, "fd8d3c", "fc6c33", "fc4e2a"),
		ramp(4, "f03b20", "e31a1c", "cb1020"),
		ramp(4, "f768a1", "ae017e", "49006a"),
	)}
}

// Dynamic4 wraps a jet ramp in grey shoulders.
func Dynamic4() Colormap {
	grey := ramp(12, "969696", "404040")
	rev := make([]drawing.Color, len(grey))
	for i, c := range grey {
		rev[len(grey)-1-i] = c
	}

	return Colormap{Name: "dynamic4", colors: concat(
		grey,
		ramp(30, "00007f", "0000ff", "0080ff", "00ffff", "80ff80", "ffff00", "ff8000", "ff0000", "7f0000"),
		rev,
	)}
}

// ColormapByName resolves viridis, dynamic, dynamic2, dynamic3 and
// dynamic4.
func ColormapByName(name string) (Colormap, bool) {
	switch name {
	case "", "viridis":
		return Viridis(), true
	case "dynamic":
		return Dynamic(), true
	case "dynamic2":
		return Dynamic2(), true
	case "dynamic3":
		return Dynamic3(), true
	case "dynamic4":
		return Dynamic4(), true
	}

	return Colormap{}, false
}

func seasons() [][]drawing.Color {
	return [][]drawing.Color{
		ramp(16, "fcbba1", "fb6a4a", "cb181d"),
		ramp(16, "fee391", "fe9929", "cc4c02"),
		ramp(16, "c7e9c0", "74c476", "238b45"),
		ramp(16, "c6dbef", "6baed6", "2171b5"),
		ramp(16, "dadaeb", "9e9ac8", "6a51a3"),
	}
}

func white(n int) []drawing.Color {
	out := make([]drawing.Color, n)
	for i := range out {
		out[i] = drawing.ColorWhite
	}

	return out
}

// ramp samples n colors evenly along the piecewise-linear path through
// the hex stops.
func ramp(n int, stops ...string) []drawing.Color {
	cs := make([]drawing.Color, len(stops))
	for i, s := range stops {
		cs[i] = drawing.ColorFromHex(s)
	}

	out := make([]drawing.Color, n)
	if len(cs) == 1 || n == 1 {
		for i := range out {
			out[i] = cs[0]
		}

		return out
	}

	segs := float64(len(cs) - 1)
	for i := range out {
		pos := float64(i) / float64(n-1) * segs
		k := min(int(pos), len(cs)-2)
		out[i] = lerp(cs[k], cs[k+1], pos-float64(k))
	}

	return out
}

func lerp(a, b drawing.Color, t float64) drawing.Color {
	mix := func(x, y uint8) uint8 {
		return uint8(math.Round(float64(x) + t*(float64(y)-float64(x))))
	}

	return drawing.Color{R: mix(a.R, b.R), G: mix(a.G, b.G), B: mix(a.B, b.B), A: 255}
}

func concat(first []drawing.Color, rest ...[]drawing.Color) []drawing.Color {
	out := append([]drawing.Color(nil), first...)
	for _, r := range rest {
		out = append(out, r...)
	}

	return out
}

// palette is the line color cycle.
var palette = []string{
	"5cc0eb", "faa49d", "05d69e", "253237", "ef6e4e", "f0a8e6",
	"aaa8f0", "f0a8af", "dfe36b", "825265", "e8594f",
}

// CycleColor returns the i-th line color, wrapping around.
func CycleColor(i int) drawing.Color {
	return drawing.ColorFromHex(palette[i%len(palette)])
}
