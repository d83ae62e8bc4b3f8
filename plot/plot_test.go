package plot

import (
	"image/png"
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cwbudde/algo-ephys/analysis/oscillation"
	"github.com/cwbudde/algo-ephys/core"
)

func TestPanelLabel(t *testing.T) {
	assert.Equal(t, "A", PanelLabel(0))
	assert.Equal(t, "Z", PanelLabel(25))
	assert.Equal(t, "AA", PanelLabel(26))
	assert.Equal(t, "AB", PanelLabel(27))
}

func TestColormaps(t *testing.T) {
	d := Dynamic()
	assert.Equal(t, 12+5*16, d.Len())
	assert.Equal(t, 20+5*16, Dynamic2().Len())
	assert.Equal(t, 16+20+4*4, Dynamic3().Len())
	assert.Equal(t, 12+30+12, Dynamic4().Len())

	lo := d.At(0, 0, 1)
	assert.Equal(t, uint8(255), lo.R)
	assert.Equal(t, uint8(255), lo.G)
	assert.Equal(t, uint8(255), lo.B)

	assert.Equal(t, d.At(1, 0, 1), d.At(5, 0, 1))
	assert.Zero(t, d.At(math.NaN(), 0, 1).A)

	v := Viridis()
	assert.Zero(t, v.Len())
	assert.NotEqual(t, v.At(0, 0, 1), v.At(1, 0, 1))

	for _, name := range []string{"viridis", "dynamic", "dynamic2", "dynamic3", "dynamic4"} {
		c, ok := ColormapByName(name)
		require.True(t, ok, name)
		assert.Equal(t, name, c.Name)
	}

	_, ok := ColormapByName("jet")
	assert.False(t, ok)
}

func TestRampEndpoints(t *testing.T) {
	r := ramp(5, "000000", "ffffff")
	require.Len(t, r, 5)
	assert.Equal(t, uint8(0), r[0].R)
	assert.Equal(t, uint8(255), r[4].R)
	assert.Equal(t, uint8(128), r[2].R)
}

func TestFigGrid(t *testing.T) {
	_, err := NewFig(0, 2)
	require.ErrorIs(t, err, ErrGrid)

	f, err := NewFig(2, 2, WithSize(4, 3), WithDPI(50))
	require.NoError(t, err)

	w, h := f.Pixels()
	assert.Equal(t, 200, w)
	assert.Equal(t, 150, h)

	require.ErrorIs(t, f.Add(2, 0, &LinePanel{}), ErrGrid)
	require.ErrorIs(t, f.AddSpan(1, 1, 1, 2, &LinePanel{}), ErrGrid)
	require.NoError(t, f.AddSpan(0, 0, 1, 2, &LinePanel{}))
	assert.Equal(t, 1, f.Len())
}

func TestCaptionText(t *testing.T) {
	f, err := NewFig(1, 1, WithCaption("Theta power across sessions."), WithScript("/home/u/analysis/fig2.go"))
	require.NoError(t, err)

	got := f.captionText(time.Date(2021, 3, 4, 0, 0, 0, 0, time.UTC))
	assert.Equal(t, "fig2.go\nDate: 03/04/21\n\nTheta power across sessions.\n", got)
	assert.Equal(t, "/tmp/a/fig.caption.txt", CaptionPath("/tmp/a/fig.png"))
}

func TestEmptyPanels(t *testing.T) {
	_, err := (&LinePanel{}).Render(100, 100, "A")
	require.ErrorIs(t, err, ErrNoData)

	_, err = (&BarPanel{}).Render(100, 100, "A")
	require.ErrorIs(t, err, ErrNoData)

	_, err = (&Heatmap{}).Render(100, 100, "A")
	require.ErrorIs(t, err, ErrNoData)

	_, err = (&Heatmap{Matrix: [][]float64{{1, 2}, {3}}}).Render(100, 100, "A")
	require.Error(t, err)
}

func TestSaveFigure(t *testing.T) {
	f, err := NewFig(2, 2, WithSize(6, 4), WithDPI(100), WithCaption("demo"))
	require.NoError(t, err)

	x := []float64{0, 1, 2, 3, 4}
	require.NoError(t, f.Add(0, 0, &LinePanel{Title: "line", Lines: []Line{{X: x, Y: []float64{0, 1, 0, 1, 0}}}}))
	require.NoError(t, f.Add(0, 1, &BarPanel{Title: "bars", Labels: []string{"a", "b"}, Values: []float64{1, 2}}))

	sg := &core.Spectrogram{
		Traces:       [][]float64{{0, 1, 2}, {3, 4, 5}},
		Freqs:        []float64{1, 2},
		SamplingRate: 1,
	}
	require.NoError(t, f.Add(1, 0, SpectrogramPanel(sg, Dynamic())))

	pac := &oscillation.PACResult{
		Centers:         []float64{90, 270},
		Amplitude:       []float64{0.4, 0.6},
		ModulationIndex: 0.01,
	}
	require.NoError(t, f.Add(1, 1, PACPanel(pac)))

	dir := t.TempDir()
	require.NoError(t, f.Save(filepath.Join(dir, "fig.pdf")))

	out := filepath.Join(dir, "fig.png")
	fh, err := os.Open(out)
	require.NoError(t, err)
	defer fh.Close()

	img, err := png.Decode(fh)
	require.NoError(t, err)
	assert.Equal(t, 600, img.Bounds().Dx())
	assert.Equal(t, 400, img.Bounds().Dy())

	assert.FileExists(t, filepath.Join(dir, "fig.caption.txt"))
}

func TestThetaSanityPanelsWindow(t *testing.T) {
	th := &oscillation.Theta{Fs: 100, Filtered: make([]float64, 10), Angle: make([]float64, 10)}

	_, _, err := ThetaSanityPanels(make([]float64, 10), th, 5, 10)
	require.Error(t, err)

	tr, ph, err := ThetaSanityPanels(make([]float64, 10), th, 0, 10)
	require.NoError(t, err)
	assert.Len(t, tr.Lines, 2)
	assert.Len(t, ph.Lines, 1)
}

func TestComodulogramPanelTranspose(t *testing.T) {
	c := &oscillation.Comodulogram{
		PhaseBands: [][2]float64{{4, 6}, {6, 8}, {8, 10}},
		AmpBands:   [][2]float64{{30, 40}, {40, 50}},
		MI:         [][]float64{{1, 2}, {3, 4}, {5, 6}},
	}

	h := ComodulogramPanel(c, Viridis())
	assert.Equal(t, [][]float64{{1, 3, 5}, {2, 4, 6}}, h.Matrix)
	assert.Equal(t, []float64{5, 7, 9}, h.X)
	assert.Equal(t, []float64{35, 45}, h.Y)
}
