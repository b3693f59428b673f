package transect

import (
	"fmt"
	"math"
)

// DefaultVCorr is the empirical coefficient converting near-surface velocity
// to depth-averaged velocity.
const DefaultVCorr = 0.9

// DepthIntegrate converts the per-point effective velocity in srcName into a
// depth-integrated velocity (flux per unit width, m2 s-1) and stores it
// under name. The water depth at each point is hA + hRef - (z - z0); a
// non-positive depth means there is no water column at that point, so the
// result is NaN there, never a negative flux. NaN velocities propagate,
// which gives the q_nofill variant its gap semantics.
func DepthIntegrate(ds *Dataset, srcName, name string, z0, hRef, vCorr float64) error {
	if ds.Quantiles == nil {
		return fmt.Errorf("depth integration needs a quantile-reduced dataset; call Reduce first")
	}
	src := ds.Var(srcName)
	if src == nil {
		return &MissingVariableError{
			Variable: srcName,
			Remedy:   "compute the effective velocity with VectorToScalar and Reduce first",
		}
	}

	nQ, nP := len(ds.Quantiles), ds.NumPoints()
	q := newVariable(name, Attrs{
		StandardName: "depth_integrated_velocity",
		LongName:     "velocity perpendicular to cross section, integrated over water depth",
		Units:        "m2 s-1",
	}, []Dim{DimQuantile, DimPoints}, []int{nQ, nP})
	for qi := 0; qi < nQ; qi++ {
		for p := 0; p < nP; p++ {
			depth := localDepth(ds.Z[p], z0, hRef, ds.HA[qi])
			if math.IsNaN(depth) || depth <= 0 {
				q.Set(qi, p, math.NaN())
				continue
			}
			q.Set(qi, p, vCorr*src.At(qi, p)*depth)
		}
	}
	ds.SetVar(q)
	return nil
}
