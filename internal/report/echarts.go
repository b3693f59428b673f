// Package report renders discharge results for humans: a standalone HTML
// report built with go-echarts and a PNG cross-section profile built with
// gonum/plot. Both consume a quantile-reduced dataset produced by the
// transect pipeline.
package report

import (
	"fmt"
	"math"
	"os"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/riverbend-data/riverflow/internal/transect"
	"github.com/riverbend-data/riverflow/internal/units"
)

// WriteHTML renders the discharge report for a reduced dataset to path. The
// report carries three charts: the section profile (bed and water surface
// elevation over the along-section distance), the per-point depth-integrated
// velocity per quantile, and the per-quantile discharge. dischargeUnits
// selects the presentation units for the discharge chart; everything else
// stays metric.
func WriteHTML(path string, ds *transect.Dataset, refs transect.GaugeRefs, site, dischargeUnits, velocityUnits string) error {
	if ds.Quantiles == nil {
		return fmt.Errorf("report needs a quantile-reduced dataset")
	}
	flow := ds.Var("river_flow")
	if flow == nil {
		return &transect.MissingVariableError{
			Variable: "river_flow",
			Remedy:   "compute the discharge with GetRiverFlow before reporting",
		}
	}

	page := components.NewPage()
	page.PageTitle = fmt.Sprintf("riverflow report: %s", site)
	page.AddCharts(
		profileChart(ds, refs, site),
		velocityChart(ds, velocityUnits),
		fluxChart(ds),
		dischargeChart(ds, flow, dischargeUnits),
	)

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create report file: %w", err)
	}
	defer f.Close()
	if err := page.Render(f); err != nil {
		return fmt.Errorf("failed to render report: %w", err)
	}
	return nil
}

// profileChart draws bed elevation and the water surface over the
// along-section distance. The water surface is flat at z_0 + h_ref + h_a
// for the median quantile's water level.
func profileChart(ds *transect.Dataset, refs transect.GaugeRefs, site string) *charts.Line {
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{
			Title:    "Cross-section profile",
			Subtitle: fmt.Sprintf("site=%s points=%d", site, ds.NumPoints()),
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Name: "s (m)"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "elevation (m)", Scale: opts.Bool(true)}),
	)

	bed := make([]opts.LineData, ds.NumPoints())
	surface := make([]opts.LineData, ds.NumPoints())
	level := refs.Z0 + refs.HRef + medianHA(ds)
	for p := 0; p < ds.NumPoints(); p++ {
		bed[p] = lineCell(ds.Z[p])
		surface[p] = lineCell(level)
	}
	line.SetXAxis(axisLabels(ds.S)).
		AddSeries("bed", bed).
		AddSeries("water surface", surface)
	return line
}

// velocityChart draws the effective velocity along the section, one series
// per quantile, converted to the requested presentation units.
func velocityChart(ds *transect.Dataset, velocityUnits string) *charts.Line {
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: "Effective velocity"}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Name: "s (m)"}),
		charts.WithYAxisOpts(opts.YAxis{Name: fmt.Sprintf("v (%s)", units.VelocityLabel(velocityUnits))}),
	)
	line.SetXAxis(axisLabels(ds.S))

	vEff := ds.Var("v_eff")
	if vEff == nil {
		vEff = ds.Var("v_eff_nofill")
	}
	if vEff != nil {
		for qi, p := range ds.Quantiles {
			cells := make([]opts.LineData, ds.NumPoints())
			for pi := 0; pi < ds.NumPoints(); pi++ {
				cells[pi] = lineCell(units.ConvertVelocity(vEff.At(qi, pi), velocityUnits))
			}
			line.AddSeries(fmt.Sprintf("v p%02.0f", p*100), cells)
		}
	}
	return line
}

// fluxChart draws the depth-integrated velocity q along the section, one
// series per quantile, with the unfilled variant dashed for the median.
func fluxChart(ds *transect.Dataset) *charts.Line {
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: "Depth-integrated velocity"}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Name: "s (m)"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "q (m²/s)"}),
	)
	line.SetXAxis(axisLabels(ds.S))

	if q := ds.Var("q"); q != nil {
		for qi, p := range ds.Quantiles {
			cells := make([]opts.LineData, ds.NumPoints())
			for pi := 0; pi < ds.NumPoints(); pi++ {
				cells[pi] = lineCell(q.At(qi, pi))
			}
			line.AddSeries(fmt.Sprintf("q p%02.0f", p*100), cells)
		}
	}
	if qn := ds.Var("q_nofill"); qn != nil {
		if mi := medianIndex(ds.Quantiles); mi >= 0 {
			cells := make([]opts.LineData, ds.NumPoints())
			for pi := 0; pi < ds.NumPoints(); pi++ {
				cells[pi] = lineCell(qn.At(mi, pi))
			}
			line.AddSeries("q_nofill p50", cells,
				charts.WithLineStyleOpts(opts.LineStyle{Type: "dashed"}))
		}
	}
	return line
}

// dischargeChart draws the per-quantile discharge as bars, converted to the
// requested presentation units.
func dischargeChart(ds *transect.Dataset, flow *transect.Variable, dischargeUnits string) *charts.Bar {
	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: "Discharge"}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Name: "quantile"}),
		charts.WithYAxisOpts(opts.YAxis{Name: fmt.Sprintf("Q (%s)", units.DischargeLabel(dischargeUnits))}),
	)

	labels := make([]string, len(ds.Quantiles))
	values := make([]opts.BarData, len(ds.Quantiles))
	for qi, p := range ds.Quantiles {
		labels[qi] = fmt.Sprintf("p%02.0f", p*100)
		v := flow.Data[qi]
		if math.IsNaN(v) {
			values[qi] = opts.BarData{Value: nil}
		} else {
			values[qi] = opts.BarData{Value: units.ConvertDischarge(v, dischargeUnits)}
		}
	}
	bar.SetXAxis(labels).AddSeries("Q", values)
	return bar
}

// lineCell maps a value to a chart cell, turning NaN into a gap rather than
// a zero.
func lineCell(v float64) opts.LineData {
	if math.IsNaN(v) {
		return opts.LineData{Value: nil}
	}
	return opts.LineData{Value: v}
}

func axisLabels(s []float64) []string {
	out := make([]string, len(s))
	for i, v := range s {
		out[i] = fmt.Sprintf("%.2f", v)
	}
	return out
}

// medianHA returns the water level at the quantile closest to the median.
func medianHA(ds *transect.Dataset) float64 {
	if mi := medianIndex(ds.Quantiles); mi >= 0 {
		return ds.HA[mi]
	}
	return 0
}

func medianIndex(quantiles []float64) int {
	best, bestDist := -1, math.Inf(1)
	for i, q := range quantiles {
		if d := math.Abs(q - 0.5); d < bestDist {
			best, bestDist = i, d
		}
	}
	return best
}
