package report

import (
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/contactkeval/option-surface/internal/pricing"
)

// surfaceGrid adapts a surface to plotter.GridXYZ: columns are spot
// samples and rows are time samples.
type surfaceGrid struct {
	s *pricing.Surface
}

func (g surfaceGrid) Dims() (c, r int) {
	return len(g.s.Grid.SpotAxis), len(g.s.Grid.TimeAxis)
}

func (g surfaceGrid) Z(c, r int) float64 { return g.s.Values.At(r, c) }
func (g surfaceGrid) X(c int) float64    { return g.s.Grid.SpotAxis[c] }
func (g surfaceGrid) Y(r int) float64    { return g.s.Grid.TimeAxis[r] }

// PNGSink draws <dir>/<greek>.png as a heat map seen from above the
// surface.
type PNGSink struct {
	Dir    string
	Width  vg.Length
	Height vg.Length
	Colors int
}

// NewPNGSink uses a 7x5 inch canvas and a 64-colour heat palette.
func NewPNGSink(dir string) PNGSink {
	return PNGSink{Dir: dir, Width: 7 * vg.Inch, Height: 5 * vg.Inch, Colors: 64}
}

func (p PNGSink) Render(s *pricing.Surface) error {
	pl := plot.New()
	pl.Title.Text = s.Label
	pl.X.Label.Text = pricing.SpotAxisLabel
	pl.Y.Label.Text = pricing.TimeAxisLabel

	pl.Add(plotter.NewHeatMap(surfaceGrid{s: s}, palette.Heat(p.Colors, 1)))

	return pl.Save(p.Width, p.Height, fileName(p.Dir, s, "png"))
}
