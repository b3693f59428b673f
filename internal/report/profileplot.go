package report

import (
	"fmt"
	"image/color"
	"math"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/riverbend-data/riverflow/internal/transect"
)

// SaveProfilePlot writes a PNG of the surveyed section: bed elevation and
// the water surface against the along-section distance, with the median
// depth-integrated velocity on a second axis-less overlay scaled into the
// water column. Points with unknown bed elevation leave a gap in the line.
func SaveProfilePlot(path string, ds *transect.Dataset, refs transect.GaugeRefs, site string) error {
	if ds.Quantiles == nil {
		return fmt.Errorf("profile plot needs a quantile-reduced dataset")
	}

	p := plot.New()
	p.Title.Text = fmt.Sprintf("Cross-section profile: %s", site)
	p.X.Label.Text = "s (m)"
	p.Y.Label.Text = "elevation (m)"

	bedPts := finiteXYs(ds.S, ds.Z)
	bedLine, err := plotter.NewLine(bedPts)
	if err != nil {
		return fmt.Errorf("failed to build bed line: %w", err)
	}
	bedLine.Width = vg.Points(1.5)
	bedLine.Color = color.RGBA{R: 139, G: 90, B: 43, A: 255}
	p.Add(bedLine)
	p.Legend.Add("bed", bedLine)

	level := refs.Z0 + refs.HRef + medianHA(ds)
	surfacePts := make(plotter.XYs, 0, len(ds.S))
	for _, s := range ds.S {
		if math.IsNaN(s) {
			continue
		}
		surfacePts = append(surfacePts, plotter.XY{X: s, Y: level})
	}
	surfaceLine, err := plotter.NewLine(surfacePts)
	if err != nil {
		return fmt.Errorf("failed to build surface line: %w", err)
	}
	surfaceLine.Width = vg.Points(1)
	surfaceLine.Color = color.RGBA{R: 30, G: 100, B: 200, A: 255}
	p.Add(surfaceLine)
	p.Legend.Add("water surface", surfaceLine)

	if q := ds.Var("q"); q != nil {
		if mi := medianIndex(ds.Quantiles); mi >= 0 {
			row := make([]float64, ds.NumPoints())
			for pi := range row {
				row[pi] = q.At(mi, pi)
			}
			if overlay := fluxOverlay(ds.S, row, level); len(overlay) > 1 {
				fluxLine, err := plotter.NewLine(overlay)
				if err != nil {
					return fmt.Errorf("failed to build flux overlay: %w", err)
				}
				fluxLine.Width = vg.Points(1)
				fluxLine.Dashes = []vg.Length{vg.Points(4), vg.Points(2)}
				fluxLine.Color = color.RGBA{R: 200, G: 40, B: 40, A: 255}
				p.Add(fluxLine)
				p.Legend.Add("q p50 (scaled)", fluxLine)
			}
		}
	}
	p.Legend.Top = true

	if err := p.Save(10*vg.Inch, 4*vg.Inch, path); err != nil {
		return fmt.Errorf("failed to save profile plot: %w", err)
	}
	return nil
}

// finiteXYs pairs the coordinates, dropping any pair with a NaN member so
// the plotter never sees a non-finite vertex.
func finiteXYs(xs, ys []float64) plotter.XYs {
	pts := make(plotter.XYs, 0, len(xs))
	for i := range xs {
		if math.IsNaN(xs[i]) || math.IsNaN(ys[i]) {
			continue
		}
		pts = append(pts, plotter.XY{X: xs[i], Y: ys[i]})
	}
	return pts
}

// fluxOverlay rescales q onto a band one metre above the water surface so
// the flux shape reads against the geometry without a second axis.
func fluxOverlay(s, q []float64, level float64) plotter.XYs {
	maxQ := 0.0
	for _, v := range q {
		if !math.IsNaN(v) && math.Abs(v) > maxQ {
			maxQ = math.Abs(v)
		}
	}
	if maxQ == 0 {
		return nil
	}
	pts := make(plotter.XYs, 0, len(s))
	for i := range s {
		if math.IsNaN(s[i]) || math.IsNaN(q[i]) {
			continue
		}
		pts = append(pts, plotter.XY{X: s[i], Y: level + q[i]/maxQ})
	}
	return pts
}
