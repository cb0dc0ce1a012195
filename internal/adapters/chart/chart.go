// Package chart renders the static PNG charts of a report run.
package chart

import (
	"bytes"
	"errors"
	"fmt"
	"image/color"
	"path/filepath"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette/moreland"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"

	"github.com/okian/sleeplab/internal/adapters/snapshot"
	"github.com/okian/sleeplab/internal/domain/correlation"
	"github.com/okian/sleeplab/internal/domain/model"
)

// ErrRender reports a chart that could not be drawn or written.
var ErrRender = errors.New("render chart")

// Scatter axes of the fixed overview chart.
const (
	ScatterX     = "start of sleep"
	ScatterY     = "HR mini"
	ScatterColor = "dayofweek"
	ScatterFile  = "scatter1.png"
)

var (
	candidateColor = color.RGBA{R: 0x1f, G: 0x77, B: 0xb4, A: 0xff}
	referenceColor = color.RGBA{G: 0x80, A: 0xff}
)

// Renderer writes charts into a directory.
type Renderer struct {
	dir         string
	width       vg.Length
	panelHeight vg.Length
}

// Option applies a configuration option to the Renderer.
type Option func(*Renderer)

// WithSize sets the image width and the height of each stacked panel.
func WithSize(width, panelHeight vg.Length) Option {
	return func(r *Renderer) {
		if width > 0 && panelHeight > 0 {
			r.width, r.panelHeight = width, panelHeight
		}
	}
}

// New creates a Renderer writing below dir.
func New(dir string, opts ...Option) *Renderer {
	r := &Renderer{dir: dir, width: 8 * vg.Inch, panelHeight: 3 * vg.Inch}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// FileName is the chart name for a reference and correlation sign.
func FileName(reference string, sign correlation.Sign) string {
	return fmt.Sprintf("sleep-%s-%s.png", reference, sign)
}

// Correlations draws one image per sign with a panel per correlated
// column. The reference series is scaled onto each panel's range. For
// negative correlations the candidate's axis is inverted and the reference
// is mapped in reverse, so both lines move together on screen.
// Signs without entries produce no file. Written paths are returned.
func (r *Renderer) Correlations(ds *model.Dataset, res correlation.Result) ([]string, error) {
	ref, err := ds.Column(res.Reference)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRender, err)
	}
	var written []string
	for _, sign := range []correlation.Sign{correlation.Positive, correlation.Negative} {
		var entries []correlation.Entry
		if sign == correlation.Positive {
			entries = res.Positive()
		} else {
			entries = res.Negative()
		}
		if len(entries) == 0 {
			continue
		}

		plots := make([][]*plot.Plot, len(entries))
		for i, e := range entries {
			col, err := ds.Column(e.Column)
			if err != nil {
				return written, fmt.Errorf("%w: %w", ErrRender, err)
			}
			p, err := panel(ds.Rows(), ref, col, e, res.Reference, sign == correlation.Negative)
			if err != nil {
				return written, err
			}
			plots[i] = []*plot.Plot{p}
		}
		plots[0][0].Title.Text = fmt.Sprintf("effect of '%s' is %s on ...\n%s", res.Reference, sign, plots[0][0].Title.Text)

		img := vgimg.New(r.width, r.panelHeight*vg.Length(len(entries)))
		dc := draw.New(img)
		tiles := draw.Tiles{
			Rows: len(entries), Cols: 1,
			PadTop: vg.Millimeter * 2, PadBottom: vg.Millimeter * 2,
			PadLeft: vg.Millimeter * 2, PadRight: vg.Millimeter * 2,
			PadY: vg.Millimeter * 4,
		}
		canvases := plot.Align(plots, tiles, dc)
		for i := range plots {
			plots[i][0].Draw(canvases[i][0])
		}

		path := filepath.Join(r.dir, FileName(res.Reference, sign))
		if err := writePNG(img, path); err != nil {
			return written, err
		}
		written = append(written, path)
	}
	return written, nil
}

func panel(rows []model.NightRow, ref, col []model.Optional[float64], e correlation.Entry, refName string, invert bool) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = fmt.Sprintf("%s: %s", e.Column, correlation.FormatR(e))
	p.Title.TextStyle.Color = candidateColor
	p.Y.Label.Text = e.Column
	p.Y.Label.TextStyle.Color = candidateColor
	p.X.Tick.Marker = plot.TimeTicks{Format: "2006-01-02"}
	if invert {
		p.Y.Scale = plot.InvertedScale{Normalizer: plot.LinearScale{}}
	}
	p.Add(plotter.NewGrid())

	cand := series(rows, col)
	lo, hi := bounds(cand)
	refXY := referenceSeries(series(rows, ref), lo, hi, invert)

	candLine, err := plotter.NewLine(cand)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrRender, e.Column, err)
	}
	candLine.Color = candidateColor
	candLine.Width = vg.Points(2)

	refLine, err := plotter.NewLine(refXY)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrRender, refName, err)
	}
	refLine.Color = referenceColor
	refLine.Width = vg.Points(2)

	p.Add(candLine, refLine)
	p.Legend.Add(e.Column, candLine)
	p.Legend.Add(refName+" (scaled)", refLine)
	p.Legend.Top = true
	return p, nil
}

// Scatter draws start of sleep against the lowest heart rate, coloured by
// day of week. Nights missing either value are skipped; with no points no
// file is written and the returned path is empty.
func (r *Renderer) Scatter(ds *model.Dataset) (string, error) {
	xs, err := ds.Column(ScatterX)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrRender, err)
	}
	ys, err := ds.Column(ScatterY)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrRender, err)
	}
	days, err := ds.Column(ScatterColor)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrRender, err)
	}

	cm := moreland.SmoothBlueRed()
	cm.SetMin(0)
	cm.SetMax(6)

	var pts plotter.XYs
	var colors []color.Color
	for i := range xs {
		if !xs[i].Valid || !ys[i].Valid {
			continue
		}
		c, err := cm.At(days[i].Or(0))
		if err != nil {
			return "", fmt.Errorf("%w: %w", ErrRender, err)
		}
		pts = append(pts, plotter.XY{X: xs[i].Value, Y: ys[i].Value})
		colors = append(colors, c)
	}
	if len(pts) == 0 {
		return "", nil
	}

	p := plot.New()
	p.Title.Text = fmt.Sprintf("%s vs %s (colour: %s)", ScatterX, ScatterY, ScatterColor)
	p.X.Label.Text = ScatterX
	p.Y.Label.Text = ScatterY
	p.Add(plotter.NewGrid())

	s, err := plotter.NewScatter(pts)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrRender, err)
	}
	s.GlyphStyleFunc = func(i int) draw.GlyphStyle {
		return draw.GlyphStyle{Color: colors[i], Radius: vg.Points(3), Shape: draw.CircleGlyph{}}
	}
	p.Add(s)

	img := vgimg.New(r.width, 6*vg.Inch)
	p.Draw(draw.New(img))
	path := filepath.Join(r.dir, ScatterFile)
	if err := writePNG(img, path); err != nil {
		return "", err
	}
	return path, nil
}

// series turns a column into time-indexed points, skipping missing cells.
func series(rows []model.NightRow, col []model.Optional[float64]) plotter.XYs {
	out := make(plotter.XYs, 0, len(col))
	for i, v := range col {
		if v.Valid {
			out = append(out, plotter.XY{X: float64(rows[i].Day.Unix()), Y: v.Value})
		}
	}
	return out
}

func bounds(xys plotter.XYs) (lo, hi float64) {
	for i, p := range xys {
		if i == 0 || p.Y < lo {
			lo = p.Y
		}
		if i == 0 || p.Y > hi {
			hi = p.Y
		}
	}
	return lo, hi
}

// referenceSeries fits the reference onto the candidate range [lo, hi].
// On an inverted axis it is mapped high to low so it still reads upright.
func referenceSeries(xys plotter.XYs, lo, hi float64, invert bool) plotter.XYs {
	if invert {
		return rescale(xys, hi, lo)
	}
	return rescale(xys, lo, hi)
}

// rescale maps the y range of xys linearly onto [lo, hi].
func rescale(xys plotter.XYs, lo, hi float64) plotter.XYs {
	srcLo, srcHi := bounds(xys)
	out := make(plotter.XYs, len(xys))
	for i, p := range xys {
		y := lo
		if srcHi > srcLo {
			y = lo + (p.Y-srcLo)/(srcHi-srcLo)*(hi-lo)
		}
		out[i] = plotter.XY{X: p.X, Y: y}
	}
	return out
}

func writePNG(img *vgimg.Canvas, path string) error {
	var buf bytes.Buffer
	if _, err := (vgimg.PngCanvas{Canvas: img}).WriteTo(&buf); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrRender, path, err)
	}
	if err := snapshot.WriteFileAtomic(path, buf.Bytes()); err != nil {
		return fmt.Errorf("%w: %w", ErrRender, err)
	}
	return nil
}
