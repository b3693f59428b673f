package transect

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/riverbend-data/riverflow/internal/monitoring"
)

// ProfileCurve evaluates a fitted vertical velocity profile at a given local
// water depth.
type ProfileCurve interface {
	Eval(depth float64) float64
}

// ProfileFitter fits a vertical velocity profile to (depth, velocity)
// samples from one quantile group. Implementations decide the functional
// form; the pipeline only needs something it can evaluate at the depths of
// the unfilled points. Fit returns an error when the samples cannot
// constrain the profile, in which case the group is left unfilled.
type ProfileFitter interface {
	Fit(depth, v []float64) (ProfileCurve, error)
}

// LogLawFitter fits the logarithmic velocity profile
//
//	v(d) = beta * ln(d) + alpha
//
// by ordinary least squares of velocity against log-depth. alpha and beta
// absorb the shear velocity and roughness length of the classic log law, so
// the fit is linear. Samples with non-positive depth carry no information
// for a log profile and are dropped before fitting.
type LogLawFitter struct {
	// MinSamples is the minimum number of usable samples required to fit;
	// values below 2 are treated as 2 (a line needs two points).
	MinSamples int
}

type logLawCurve struct {
	alpha, beta float64
}

func (c logLawCurve) Eval(depth float64) float64 {
	if depth <= 0 {
		return math.NaN()
	}
	return c.alpha + c.beta*math.Log(depth)
}

// Fit implements ProfileFitter.
func (f LogLawFitter) Fit(depth, v []float64) (ProfileCurve, error) {
	if len(depth) != len(v) {
		return nil, fmt.Errorf("depth and velocity sample counts differ: %d vs %d", len(depth), len(v))
	}
	min := f.MinSamples
	if min < 2 {
		min = 2
	}
	var lnD, vs []float64
	for i := range depth {
		if depth[i] > 0 && !math.IsNaN(v[i]) {
			lnD = append(lnD, math.Log(depth[i]))
			vs = append(vs, v[i])
		}
	}
	if len(vs) < min {
		return nil, fmt.Errorf("%d usable samples, need at least %d", len(vs), min)
	}
	if allEqual(lnD) {
		// Degenerate abscissa: every sample sits at the same depth, so the
		// log profile is unconstrained.
		return nil, fmt.Errorf("all %d samples at identical depth", len(vs))
	}
	alpha, beta := stat.LinearRegression(lnD, vs, nil, false)
	if math.IsNaN(alpha) || math.IsNaN(beta) {
		return nil, fmt.Errorf("regression did not converge")
	}
	return logLawCurve{alpha: alpha, beta: beta}, nil
}

func allEqual(vals []float64) bool {
	for i := 1; i < len(vals); i++ {
		if vals[i] != vals[0] {
			return false
		}
	}
	return true
}

// FillVelocity reconstructs effective velocity at gap cells of a
// quantile-reduced dataset by fitting a vertical profile against the local
// water depth of the valid points, and stores the result as the v_eff
// variable. Each quantile group is fitted independently so no information
// leaks between probability levels.
//
// Cells that already carry a value pass through unchanged. A gap cell is
// filled only when its own depth is positive and the group's fit succeeded;
// groups with too few valid points are left as-is rather than failing the
// pipeline. Pass nil to fit with the default log-law fitter.
func FillVelocity(ds *Dataset, z0, hRef float64, fitter ProfileFitter) error {
	if ds.Quantiles == nil {
		return fmt.Errorf("velocity fill needs a quantile-reduced dataset; call Reduce first")
	}
	src := ds.Var("v_eff_nofill")
	if src == nil {
		return &MissingVariableError{
			Variable: "v_eff_nofill",
			Remedy:   "compute the effective velocity with VectorToScalar before reducing",
		}
	}
	if fitter == nil {
		fitter = LogLawFitter{}
	}

	nQ, nP := len(ds.Quantiles), ds.NumPoints()
	filled := newVariable("v_eff", src.Attrs, []Dim{DimQuantile, DimPoints}, []int{nQ, nP})
	copy(filled.Data, src.Data)

	for qi := 0; qi < nQ; qi++ {
		depth := make([]float64, nP)
		for p := 0; p < nP; p++ {
			depth[p] = localDepth(ds.Z[p], z0, hRef, ds.HA[qi])
		}
		var fitDepth, fitV []float64
		for p := 0; p < nP; p++ {
			if v := src.At(qi, p); !math.IsNaN(v) {
				fitDepth = append(fitDepth, depth[p])
				fitV = append(fitV, v)
			}
		}
		curve, err := fitter.Fit(fitDepth, fitV)
		if err != nil {
			monitoring.Logf("transect: leaving quantile %v unfilled: %v", ds.Quantiles[qi], err)
			continue
		}
		for p := 0; p < nP; p++ {
			if !math.IsNaN(src.At(qi, p)) || depth[p] <= 0 {
				continue
			}
			filled.Set(qi, p, curve.Eval(depth[p]))
		}
	}
	ds.SetVar(filled)
	return nil
}

// localDepth is the water column height at a point: acquisition water level
// plus reference gauge height, minus the bed elevation referenced to the
// datum. NaN when the bed elevation is unknown.
func localDepth(z, z0, hRef, hA float64) float64 {
	return hA + hRef - (z - z0)
}
