package plot

import (
	"fmt"

	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/cwbudde/algo-ephys/analysis/oscillation"
	"github.com/cwbudde/algo-ephys/core"
	"github.com/cwbudde/algo-ephys/stats/desc"
)

// SpectrogramPanel shows power over time and frequency.
func SpectrogramPanel(sg *core.Spectrogram, cmap Colormap) *Heatmap {
	return &Heatmap{
		Title:  "Spectrogram",
		XLabel: "Time (s)",
		YLabel: "Frequency (Hz)",
		Matrix: sg.Traces,
		X:      sg.Time(),
		Y:      sg.Freqs,
		Cmap:   cmap,
	}
}

// PSDPanel overlays one PSD per channel.
func PSDPanel(freqs []float64, psd [][]float64, names []string) *LinePanel {
	p := &LinePanel{Title: "PSD", XLabel: "Frequency (Hz)", YLabel: "Power", Legend: len(names) > 0}

	for i, row := range psd {
		l := Line{X: freqs, Y: row}
		if i < len(names) {
			l.Name = names[i]
		}

		p.Lines = append(p.Lines, l)
	}

	return p
}

// BicoherencePanel shows the masked bicoherence of one channel with f1 on
// the x axis and f2 on the y axis.
func BicoherencePanel(res *oscillation.BicoherenceResult, ch int, sigma float64, cmap Colormap) (*Heatmap, error) {
	m, err := res.Masked(ch, sigma)
	if err != nil {
		return nil, err
	}

	return &Heatmap{
		Title:  fmt.Sprintf("Bicoherence ch %d", ch),
		XLabel: "f1 (Hz)",
		YLabel: "f2 (Hz)",
		Matrix: m,
		X:      res.Freqs,
		Y:      res.Freqs,
		Cmap:   cmap,
	}, nil
}

// PACPanel draws the phase-binned amplitude over two theta cycles.
func PACPanel(res *oscillation.PACResult) *LinePanel {
	n := len(res.Centers)
	x := make([]float64, 0, 2*n)
	y := make([]float64, 0, 2*n)

	for cycle := range 2 {
		for i, c := range res.Centers {
			x = append(x, c+360*float64(cycle))
			y = append(y, res.Amplitude[i])
		}
	}

	return &LinePanel{
		Title:  fmt.Sprintf("PAC, MI %.4f", res.ModulationIndex),
		XLabel: "Phase (deg)",
		YLabel: "Normalized amplitude",
		Lines: []Line{
			{X: x, Y: y, Width: 2},
			{X: x, Y: y, Scatter: true},
		},
	}
}

// ThetaSanityPanels returns the raw trace with the filtered theta,
// peaks and troughs marked, and the theta phase, both over window
// samples starting at start.
func ThetaSanityPanels(raw []float64, th *oscillation.Theta, start, window int) (*LinePanel, *LinePanel, error) {
	if start < 0 || window <= 0 || start+window > len(raw) || len(raw) != len(th.Filtered) {
		return nil, nil, fmt.Errorf("plot: theta window [%d, %d) outside %d samples", start, start+window, len(raw))
	}

	stop := start + window
	t := make([]float64, window)
	for i := range t {
		t[i] = float64(start+i) / th.Fs
	}

	marks := func(idx []int, x []float64) ([]float64, []float64) {
		var mx, my []float64

		for _, k := range idx {
			if k >= start && k < stop {
				mx = append(mx, float64(k)/th.Fs)
				my = append(my, x[k])
			}
		}

		return mx, my
	}

	px, py := marks(th.Peak, th.Filtered)
	tx, ty := marks(th.Trough, th.Filtered)

	trace := &LinePanel{
		Title:  "Theta",
		XLabel: "Time (s)",
		YLabel: "Amplitude",
		Legend: true,
		Lines: []Line{
			{Name: "raw", X: t, Y: desc.ZScore(raw[start:stop]), Color: drawing.ColorFromHex("9e9e9e")},
			{Name: "theta", X: t, Y: desc.ZScore(th.Filtered[start:stop]), Color: CycleColor(0)},
		},
	}

	// z-scored marks follow the z-scored filtered trace
	mean, sd := desc.Mean(th.Filtered[start:stop]), desc.PopStd(th.Filtered[start:stop])
	if sd > 0 {
		for i := range py {
			py[i] = (py[i] - mean) / sd
		}

		for i := range ty {
			ty[i] = (ty[i] - mean) / sd
		}
	}

	if len(px) > 0 {
		trace.Lines = append(trace.Lines, Line{Name: "peak", X: px, Y: py, Scatter: true, Color: CycleColor(4)})
	}

	if len(tx) > 0 {
		trace.Lines = append(trace.Lines, Line{Name: "trough", X: tx, Y: ty, Scatter: true, Color: CycleColor(2)})
	}

	phase := &LinePanel{
		Title:  "Theta phase",
		XLabel: "Time (s)",
		YLabel: "Phase (deg)",
		YRange: [2]float64{0, 360},
		Lines:  []Line{{X: t, Y: th.Angle[start:stop], Color: CycleColor(3)}},
	}

	return trace, phase, nil
}

// CSDPanel shows current source density over depth and peri-event time.
func CSDPanel(m *oscillation.CSDMap, cmap Colormap) *Heatmap {
	return &Heatmap{
		Title:  "CSD",
		XLabel: "Time (s)",
		YLabel: "Depth",
		Matrix: m.Map,
		X:      m.Time,
		Y:      m.Coords,
		Cmap:   cmap,
	}
}

// ComodulogramPanel shows the modulation index over phase and amplitude
// band centres.
func ComodulogramPanel(c *oscillation.Comodulogram, cmap Colormap) *Heatmap {
	centre := func(bands [][2]float64) []float64 {
		out := make([]float64, len(bands))
		for i, b := range bands {
			out[i] = (b[0] + b[1]) / 2
		}

		return out
	}

	// rows are amplitude bands so phase runs along x
	m := make([][]float64, len(c.AmpBands))
	for a := range m {
		m[a] = make([]float64, len(c.PhaseBands))
		for p := range c.PhaseBands {
			m[a][p] = c.MI[p][a]
		}
	}

	return &Heatmap{
		Title:  "Comodulogram",
		XLabel: "Phase frequency (Hz)",
		YLabel: "Amplitude frequency (Hz)",
		Matrix: m,
		X:      centre(c.PhaseBands),
		Y:      centre(c.AmpBands),
		Cmap:   cmap,
	}
}
