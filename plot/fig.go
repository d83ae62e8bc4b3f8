package plot

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// ErrGrid is returned for panels placed outside the figure grid.
var ErrGrid = errors.New("plot: cell outside grid")

// Panel draws itself into a width x height pixel image. label is the
// panel letter to show in the title.
type Panel interface {
	Render(width, height int, label string) (image.Image, error)
}

// Fig is a rows x cols grid of panels.
type Fig struct {
	Rows, Cols int
	// Width and Height are in inches.
	Width, Height float64
	DPI           float64
	Caption       string
	Script        string

	cells []cell
}

type cell struct {
	row, col, rowSpan, colSpan int
	panel                      Panel
}

// FigOption configures a Fig.
type FigOption func(*Fig)

// WithSize sets the figure size in inches.
func WithSize(w, h float64) FigOption {
	return func(f *Fig) {
		if w > 0 && h > 0 {
			f.Width, f.Height = w, h
		}
	}
}

// WithDPI sets the pixel density.
func WithDPI(dpi float64) FigOption {
	return func(f *Fig) {
		if dpi > 0 {
			f.DPI = dpi
		}
	}
}

// WithCaption attaches a caption written next to the figure on Save.
func WithCaption(text string) FigOption {
	return func(f *Fig) { f.Caption = text }
}

// WithScript records the name of the producing program on the caption.
func WithScript(name string) FigOption {
	return func(f *Fig) { f.Script = filepath.Base(name) }
}

// NewFig returns an empty letter-size figure at 100 dpi.
func NewFig(rows, cols int, opts ...FigOption) (*Fig, error) {
	if rows <= 0 || cols <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrGrid, rows, cols)
	}

	f := &Fig{Rows: rows, Cols: cols, Width: 8.5, Height: 11, DPI: 100}
	for _, o := range opts {
		o(f)
	}

	return f, nil
}

// Add places p in one grid cell.
func (f *Fig) Add(row, col int, p Panel) error {
	return f.AddSpan(row, col, 1, 1, p)
}

// AddSpan places p over rowSpan x colSpan cells starting at (row, col).
func (f *Fig) AddSpan(row, col, rowSpan, colSpan int, p Panel) error {
	if row < 0 || col < 0 || rowSpan < 1 || colSpan < 1 ||
		row+rowSpan > f.Rows || col+colSpan > f.Cols {
		return fmt.Errorf("%w: (%d,%d) span %dx%d in %dx%d", ErrGrid, row, col, rowSpan, colSpan, f.Rows, f.Cols)
	}

	f.cells = append(f.cells, cell{row: row, col: col, rowSpan: rowSpan, colSpan: colSpan, panel: p})

	return nil
}

// Len is the number of panels added.
func (f *Fig) Len() int { return len(f.cells) }

// PanelLabel returns the letter for the i-th panel: A..Z, then AA, AB...
func PanelLabel(i int) string {
	s := ""
	for i++; i > 0; i = (i - 1) / 26 {
		s = string(rune('A'+(i-1)%26)) + s
	}

	return s
}

// Pixels returns the figure size in pixels.
func (f *Fig) Pixels() (int, int) {
	return int(f.Width * f.DPI), int(f.Height * f.DPI)
}

// Render draws every panel on a white canvas.
func (f *Fig) Render() (*image.RGBA, error) {
	w, h := f.Pixels()
	canvas := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(canvas, canvas.Bounds(), &image.Uniform{C: color.White}, image.Point{}, draw.Src)

	cw, ch := w/f.Cols, h/f.Rows

	for i, c := range f.cells {
		img, err := c.panel.Render(cw*c.colSpan, ch*c.rowSpan, PanelLabel(i))
		if err != nil {
			return nil, fmt.Errorf("panel %s: %w", PanelLabel(i), err)
		}

		at := image.Pt(c.col*cw, c.row*ch)
		draw.Draw(canvas, img.Bounds().Sub(img.Bounds().Min).Add(at), img, img.Bounds().Min, draw.Over)
	}

	return canvas, nil
}

// Save renders the figure to a PNG at path (the extension is forced to
// .png). With a caption or script name set it also writes
// <name>.caption.txt.
func (f *Fig) Save(path string) error {
	path = strings.TrimSuffix(path, filepath.Ext(path)) + ".png"

	img, err := f.Render()
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return fmt.Errorf("encode png: %w", err)
	}

	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return err
	}

	if f.Caption == "" && f.Script == "" {
		return nil
	}

	return os.WriteFile(CaptionPath(path), []byte(f.captionText(time.Now())), 0o644)
}

// CaptionPath returns the sidecar path for a figure file.
func CaptionPath(figPath string) string {
	return strings.TrimSuffix(figPath, filepath.Ext(figPath)) + ".caption.txt"
}

func (f *Fig) captionText(now time.Time) string {
	var b strings.Builder

	if f.Script != "" {
		fmt.Fprintf(&b, "%s\n", f.Script)
	}

	fmt.Fprintf(&b, "Date: %s\n", now.Format("01/02/06"))

	if f.Caption != "" {
		fmt.Fprintf(&b, "\n%s\n", f.Caption)
	}

	return b.String()
}

// decodePNG turns a go-chart PNG buffer back into an image.
func decodePNG(buf *bytes.Buffer) (image.Image, error) {
	img, err := png.Decode(buf)
	if err != nil {
		return nil, fmt.Errorf("decode panel: %w", err)
	}

	return img, nil
}

func titled(label, title string) string {
	if title == "" {
		return label
	}

	return label + "  " + title
}
